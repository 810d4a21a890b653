// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries paper and web search providers and returns
// normalized records. Each provider (arXiv, DuckDuckGo) implements the
// Provider interface per the Strategy pattern; a provider failure degrades
// to a logged warning and an empty contribution rather than aborting the
// other providers.
package search

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/pdiddy/litreview-engine/pkg/types"
)

// Provider searches a single external source.
type Provider interface {
	Name() string
	Kind() types.SourceKind
	Search(ctx context.Context, query string, cfg types.SearchConfig) ([]types.SourceRecord, error)
}

// Output holds the combined provider results. Record order carries no
// meaning; ranking happens downstream.
type Output struct {
	Records        []types.SourceRecord
	ProviderErrors []string
}

// Search fans the query out to all providers concurrently and merges their
// results. A single provider error is recorded and logged but does not fail
// the call; Search only errors on an empty query or an empty provider set.
func Search(ctx context.Context, query string, providers []Provider, cfg types.SearchConfig, w io.Writer) (Output, error) {
	if strings.TrimSpace(query) == "" {
		return Output{}, fmt.Errorf("query is empty: provide a research topic")
	}
	if len(providers) == 0 {
		return Output{}, fmt.Errorf("no search providers configured")
	}

	type providerResult struct {
		records []types.SourceRecord
		err     error
		name    string
	}

	ch := make(chan providerResult, len(providers))
	var wg sync.WaitGroup

	for _, p := range providers {
		wg.Add(1)
		go func(p Provider) {
			defer wg.Done()
			records, err := p.Search(ctx, query, cfg)
			ch <- providerResult{records: records, err: err, name: p.Name()}
		}(p)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	var out Output
	for pr := range ch {
		if pr.err != nil {
			out.ProviderErrors = append(out.ProviderErrors, fmt.Sprintf("%s: %v", pr.name, pr.err))
			fmt.Fprintf(w, "warning: provider %s failed: %v\n", pr.name, pr.err)
			continue
		}
		out.Records = append(out.Records, pr.records...)
	}

	return out, nil
}
