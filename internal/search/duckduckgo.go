// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/litreview-engine/internal/httputil"
	"github.com/pdiddy/litreview-engine/pkg/types"
)

// duckduckgoAPIBase is the DuckDuckGo Instant Answer endpoint. Declared as a
// var so tests can substitute an httptest server.
var duckduckgoAPIBase = "https://api.duckduckgo.com/"

// DuckDuckGoProvider queries the DuckDuckGo Instant Answer API for general
// web results. Web records carry no author or year metadata.
type DuckDuckGoProvider struct {
	Client *http.Client
}

// Name returns the provider identifier.
func (p *DuckDuckGoProvider) Name() string { return "duckduckgo" }

// Kind classifies DuckDuckGo as a web source.
func (p *DuckDuckGoProvider) Kind() types.SourceKind { return types.SourceWeb }

// Search queries the Instant Answer API and returns normalized records,
// flattening grouped related topics.
func (p *DuckDuckGoProvider) Search(ctx context.Context, query string, cfg types.SearchConfig) ([]types.SourceRecord, error) {
	maxResults := cfg.PerProviderMaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	params := url.Values{
		"q":       {query + " research paper"},
		"format":  {"json"},
		"no_html": {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, duckduckgoAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("DuckDuckGo API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("DuckDuckGo API returned HTTP %d", resp.StatusCode)
	}

	var ddg ddgResponse
	if err := json.NewDecoder(resp.Body).Decode(&ddg); err != nil {
		return nil, fmt.Errorf("parsing DuckDuckGo response: %w", err)
	}

	var records []types.SourceRecord

	// The abstract, when present, is the best single answer.
	if ddg.AbstractText != "" && ddg.AbstractURL != "" {
		records = append(records, types.SourceRecord{
			Title:    ddg.Heading,
			Abstract: ddg.AbstractText,
			URL:      ddg.AbstractURL,
			Kind:     types.SourceWeb,
		})
	}

	for _, topic := range flattenTopics(ddg.RelatedTopics) {
		if len(records) >= maxResults {
			break
		}
		if topic.FirstURL == "" || topic.Text == "" {
			continue
		}
		records = append(records, types.SourceRecord{
			Title:    topicTitle(topic.Text),
			Abstract: topic.Text,
			URL:      topic.FirstURL,
			Kind:     types.SourceWeb,
		})
	}

	return records, nil
}

// DuckDuckGo Instant Answer JSON structures. Related topics may be nested
// one level under category groups.
type ddgResponse struct {
	Heading       string     `json:"Heading"`
	AbstractText  string     `json:"AbstractText"`
	AbstractURL   string     `json:"AbstractURL"`
	RelatedTopics []ddgTopic `json:"RelatedTopics"`
}

type ddgTopic struct {
	Text     string     `json:"Text"`
	FirstURL string     `json:"FirstURL"`
	Topics   []ddgTopic `json:"Topics"`
}

// flattenTopics expands grouped topics into a flat list.
func flattenTopics(topics []ddgTopic) []ddgTopic {
	var flat []ddgTopic
	for _, t := range topics {
		if len(t.Topics) > 0 {
			flat = append(flat, flattenTopics(t.Topics)...)
			continue
		}
		flat = append(flat, t)
	}
	return flat
}

// topicTitle derives a short title from a topic's text, which DuckDuckGo
// formats as "Title - description".
func topicTitle(text string) string {
	if idx := strings.Index(text, " - "); idx > 0 {
		return text[:idx]
	}
	return text
}
