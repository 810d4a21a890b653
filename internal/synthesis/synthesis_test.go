package synthesis

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/pdiddy/litreview-engine/pkg/types"
)

type scriptedGen struct {
	response   string
	err        error
	lastPrompt string
}

func (g *scriptedGen) Generate(_ context.Context, prompt string) (string, error) {
	g.lastPrompt = prompt
	return g.response, g.err
}

func fixtures(n int) ([]types.RankedCandidate, []types.ExtractedFinding) {
	var candidates []types.RankedCandidate
	var findings []types.ExtractedFinding
	for i := 1; i <= n; i++ {
		candidates = append(candidates, types.RankedCandidate{
			SourceRecord: types.SourceRecord{
				Title:   fmt.Sprintf("Paper %d", i),
				Authors: []string{fmt.Sprintf("Author%d Surname%d", i, i)},
				Year:    2020 + i,
				URL:     fmt.Sprintf("https://example.com/%d", i),
			},
			Rank: i,
		})
		findings = append(findings, types.ExtractedFinding{
			CandidateIndex: i,
			Methodology:    fmt.Sprintf("method %d", i),
			KeyFindings:    fmt.Sprintf("finding %d", i),
			RelevanceNote:  fmt.Sprintf("relevance %d", i),
		})
	}
	return candidates, findings
}

func paragraphsJSON(n int) string {
	var ps []string
	for i := 1; i <= n; i++ {
		ps = append(ps, fmt.Sprintf(`"Surname%d et al. discuss things. [%d]"`, i, i))
	}
	return fmt.Sprintf(`{"paragraphs": [%s]}`, strings.Join(ps, ","))
}

func TestSynthesizeParagraphCountMatchesFindings(t *testing.T) {
	for _, n := range []int{1, 2, 5} {
		candidates, findings := fixtures(n)
		s := &Synthesizer{Gen: &scriptedGen{response: paragraphsJSON(n)}}

		draft, err := s.Synthesize(context.Background(), "q", candidates, findings, nil, nil)
		if err != nil {
			t.Fatalf("Synthesize(n=%d): %v", n, err)
		}
		if len(draft.Paragraphs) != n {
			t.Errorf("n=%d: len(Paragraphs) = %d, want %d", n, len(draft.Paragraphs), n)
		}
	}
}

func TestSynthesizeEmptyFindings(t *testing.T) {
	s := &Synthesizer{Gen: &scriptedGen{}}
	if _, err := s.Synthesize(context.Background(), "q", nil, nil, nil, nil); err == nil {
		t.Error("expected error for empty findings")
	}
}

func TestSynthesizeTruncatesExtraParagraphs(t *testing.T) {
	candidates, findings := fixtures(2)
	s := &Synthesizer{Gen: &scriptedGen{response: paragraphsJSON(5)}}

	draft, err := s.Synthesize(context.Background(), "q", candidates, findings, nil, nil)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if len(draft.Paragraphs) != 2 {
		t.Errorf("len(Paragraphs) = %d, want 2", len(draft.Paragraphs))
	}
}

func TestSynthesizeFillsMissingParagraphs(t *testing.T) {
	candidates, findings := fixtures(4)
	s := &Synthesizer{Gen: &scriptedGen{response: paragraphsJSON(2)}}

	draft, err := s.Synthesize(context.Background(), "q", candidates, findings, nil, nil)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if len(draft.Paragraphs) != 4 {
		t.Fatalf("len(Paragraphs) = %d, want 4", len(draft.Paragraphs))
	}
	// Filled paragraphs come from the finding text and still carry markers.
	if !strings.Contains(draft.Paragraphs[2], "finding 3") {
		t.Errorf("fallback paragraph should carry finding text, got %q", draft.Paragraphs[2])
	}
	if !strings.Contains(draft.Paragraphs[3], "[4]") {
		t.Errorf("fallback paragraph should carry marker [4], got %q", draft.Paragraphs[3])
	}
}

func TestSynthesizeAppendsMissingMarkers(t *testing.T) {
	candidates, findings := fixtures(2)
	s := &Synthesizer{Gen: &scriptedGen{
		response: `{"paragraphs": ["First paragraph with no marker.", "Second paragraph. [2]"]}`,
	}}

	draft, err := s.Synthesize(context.Background(), "q", candidates, findings, nil, nil)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if !strings.Contains(draft.Paragraphs[0], "[1]") {
		t.Errorf("marker [1] should be appended, got %q", draft.Paragraphs[0])
	}
	if strings.Count(draft.Paragraphs[1], "[2]") != 1 {
		t.Errorf("existing marker should not be duplicated, got %q", draft.Paragraphs[1])
	}
}

func TestSynthesizeGenerationFailureProducesBestEffortDraft(t *testing.T) {
	candidates, findings := fixtures(3)
	s := &Synthesizer{Gen: &scriptedGen{err: fmt.Errorf("model offline")}}

	draft, err := s.Synthesize(context.Background(), "q", candidates, findings, nil, nil)
	if err != nil {
		t.Fatalf("Synthesize should degrade, not fail: %v", err)
	}
	if len(draft.Paragraphs) != 3 {
		t.Fatalf("len(Paragraphs) = %d, want 3", len(draft.Paragraphs))
	}
	for i, p := range draft.Paragraphs {
		if !strings.Contains(p, fmt.Sprintf("[%d]", i+1)) {
			t.Errorf("paragraph %d missing marker: %q", i, p)
		}
	}
	if draft.References == "" {
		t.Error("references section should still be built")
	}
}

func TestSynthesizeCitationMarkersMap(t *testing.T) {
	candidates, findings := fixtures(3)
	s := &Synthesizer{Gen: &scriptedGen{response: paragraphsJSON(3)}}

	draft, err := s.Synthesize(context.Background(), "q", candidates, findings, nil, nil)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	for i := 0; i < 3; i++ {
		if draft.CitationMarkers[i] != i+1 {
			t.Errorf("CitationMarkers[%d] = %d, want %d", i, draft.CitationMarkers[i], i+1)
		}
	}
}

func TestSynthesizeRevisionCarriesCritique(t *testing.T) {
	candidates, findings := fixtures(2)
	gen := &scriptedGen{response: paragraphsJSON(2)}
	s := &Synthesizer{Gen: gen}

	prior := &types.DraftReview{Paragraphs: []string{"Old paragraph one. [1]", "Old paragraph two. [2]"}}
	critique := &types.Critique{
		Score:  5,
		Issues: []string{"paragraph count 1 != expected 2", "citation marker [2] missing"},
	}

	if _, err := s.Synthesize(context.Background(), "q", candidates, findings, prior, critique); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	for _, want := range []string{"Old paragraph one", "paragraph count 1 != expected 2", "citation marker [2] missing"} {
		if !strings.Contains(gen.lastPrompt, want) {
			t.Errorf("revision prompt missing %q", want)
		}
	}
}

func TestBuildReferences(t *testing.T) {
	candidates, findings := fixtures(2)
	refs := buildReferences(candidates, findings)

	if !strings.Contains(refs, "[1] Paper 1, Author1 Surname1, 2021, https://example.com/1") {
		t.Errorf("refs missing first entry, got:\n%s", refs)
	}
	if !strings.Contains(refs, "\n\n[2]") {
		t.Error("entries should be separated by a blank line")
	}
}

func TestLeadAuthor(t *testing.T) {
	tests := []struct {
		name    string
		authors []string
		want    string
	}{
		{"multiple", []string{"Ashish Vaswani", "Noam Shazeer"}, "Vaswani et al."},
		{"single", []string{"Jacob Devlin"}, "Devlin"},
		{"none", nil, "The authors"},
		{"mononym", []string{"OpenAI"}, "OpenAI"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := types.RankedCandidate{SourceRecord: types.SourceRecord{Authors: tt.authors}}
			if got := leadAuthor(c); got != tt.want {
				t.Errorf("leadAuthor = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderMarkdown(t *testing.T) {
	draft := types.DraftReview{
		Paragraphs: []string{"Para one. [1]", "Para two. [2]"},
		References: "[1] A\n\n[2] B",
	}
	md := RenderMarkdown(draft)
	if !strings.Contains(md, "Para one. [1]\n\nPara two. [2]") {
		t.Error("paragraphs should be separated by blank lines")
	}
	if !strings.Contains(md, "### References") {
		t.Error("missing references heading")
	}
}
