package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pdiddy/litreview-engine/pkg/types"
)

func init() {
	backoffBase = time.Millisecond
}

// promptGen scripts responses keyed by a substring of the prompt. Unmatched
// prompts get the default response.
type promptGen struct {
	mu      sync.Mutex
	failFor map[string]int // title substring, number of failures before success
	errFor  map[string]error
	calls   int
}

func (g *promptGen) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++

	for sub, err := range g.errFor {
		if strings.Contains(prompt, sub) {
			return "", err
		}
	}
	for sub := range g.failFor {
		if strings.Contains(prompt, sub) && g.failFor[sub] > 0 {
			g.failFor[sub]--
			return "", fmt.Errorf("transient failure")
		}
	}
	return `{"methodology": "survey", "key_findings": "it works", "relevance_note": "on topic"}`, nil
}

func testCandidates(n int) []types.RankedCandidate {
	var out []types.RankedCandidate
	for i := 1; i <= n; i++ {
		out = append(out, types.RankedCandidate{
			SourceRecord: types.SourceRecord{
				Title:    fmt.Sprintf("Paper %d", i),
				Abstract: fmt.Sprintf("Abstract %d", i),
			},
			Rank: i,
		})
	}
	return out
}

func TestExtractAllSuccess(t *testing.T) {
	e := &Extractor{Gen: &promptGen{}}
	var buf bytes.Buffer

	findings, err := e.ExtractAll(context.Background(), "q", testCandidates(5), &buf)
	if err != nil {
		t.Fatalf("ExtractAll: %v", err)
	}
	if len(findings) != 5 {
		t.Fatalf("len(findings) = %d, want 5", len(findings))
	}
	// Findings must come back in candidate order regardless of completion order.
	for i, f := range findings {
		if f.CandidateIndex != i+1 {
			t.Errorf("findings[%d].CandidateIndex = %d, want %d", i, f.CandidateIndex, i+1)
		}
	}
}

func TestExtractAllRetriesTransientFailure(t *testing.T) {
	g := &promptGen{failFor: map[string]int{"Paper 2": 2}}
	e := &Extractor{Gen: g, MaxRetries: 2}
	var buf bytes.Buffer

	findings, err := e.ExtractAll(context.Background(), "q", testCandidates(3), &buf)
	if err != nil {
		t.Fatalf("ExtractAll: %v", err)
	}
	if len(findings) != 3 {
		t.Errorf("len(findings) = %d, want 3 after retries", len(findings))
	}
}

func TestExtractAllDropsFailedCandidate(t *testing.T) {
	g := &promptGen{errFor: map[string]error{"Paper 3": fmt.Errorf("permanent failure")}}
	e := &Extractor{Gen: g, MaxRetries: 1}
	var buf bytes.Buffer

	findings, err := e.ExtractAll(context.Background(), "q", testCandidates(4), &buf)
	if err != nil {
		t.Fatalf("ExtractAll should survive one dropped candidate: %v", err)
	}
	if len(findings) != 3 {
		t.Fatalf("len(findings) = %d, want 3", len(findings))
	}
	for _, f := range findings {
		if f.CandidateIndex == 3 {
			t.Error("failed candidate should not appear in findings")
		}
	}
	if !strings.Contains(buf.String(), "warning: dropping candidate") {
		t.Error("expected a drop warning")
	}
}

func TestExtractAllInsufficientFindings(t *testing.T) {
	g := &promptGen{errFor: map[string]error{
		"Paper 1": fmt.Errorf("down"),
		"Paper 2": fmt.Errorf("down"),
	}}
	e := &Extractor{Gen: g, MaxRetries: 1}
	var buf bytes.Buffer

	findings, err := e.ExtractAll(context.Background(), "q", testCandidates(3), &buf)
	if !errors.Is(err, ErrInsufficientFindings) {
		t.Fatalf("expected ErrInsufficientFindings, got: %v", err)
	}
	if len(findings) != 1 {
		t.Errorf("len(findings) = %d, want 1 survivor", len(findings))
	}
}

func TestExtractAllConcurrencyLimit(t *testing.T) {
	e := &Extractor{Gen: &promptGen{}, Concurrency: 2}
	var buf bytes.Buffer

	findings, err := e.ExtractAll(context.Background(), "q", testCandidates(5), &buf)
	if err != nil {
		t.Fatalf("ExtractAll: %v", err)
	}
	if len(findings) != 5 {
		t.Errorf("len(findings) = %d, want 5", len(findings))
	}
}

func TestExtractOneRejectsMissingKeyFindings(t *testing.T) {
	g := &scriptedExtractGen{response: `{"methodology": "m", "key_findings": "", "relevance_note": "r"}`}
	e := &Extractor{Gen: g, MaxRetries: 1}

	_, err := e.extractOne(context.Background(), "q", testCandidates(1)[0])
	if !errors.Is(err, ErrExtractionFailed) {
		t.Errorf("expected ErrExtractionFailed on empty key_findings, got: %v", err)
	}
}

type scriptedExtractGen struct {
	response string
}

func (g *scriptedExtractGen) Generate(_ context.Context, _ string) (string, error) {
	return g.response, nil
}

func TestRenderExtractionPrompt(t *testing.T) {
	c := types.RankedCandidate{
		SourceRecord: types.SourceRecord{
			Title:    "Attention Is All You Need",
			Authors:  []string{"Vaswani", "Shazeer"},
			Abstract: "We propose the Transformer.",
			Year:     2017,
		},
		Rank: 1,
	}
	prompt, err := renderExtractionPrompt("sequence transduction", c)
	if err != nil {
		t.Fatalf("renderExtractionPrompt: %v", err)
	}
	for _, want := range []string{"Attention Is All You Need", "Vaswani, Shazeer", "2017", "sequence transduction"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestRenderExtractionPromptOmitsUnknownYear(t *testing.T) {
	c := types.RankedCandidate{
		SourceRecord: types.SourceRecord{Title: "Web result", Abstract: "Snippet."},
		Rank:         1,
	}
	prompt, err := renderExtractionPrompt("q", c)
	if err != nil {
		t.Fatalf("renderExtractionPrompt: %v", err)
	}
	if strings.Contains(prompt, "Year:") {
		t.Error("prompt should omit Year for web results without one")
	}
	if strings.Contains(prompt, "Authors:") {
		t.Error("prompt should omit Authors when empty")
	}
}
