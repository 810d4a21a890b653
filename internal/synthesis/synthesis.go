// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package synthesis turns structured findings into a formatted literature
// review draft. The structural contract (one paragraph per finding, inline
// citation markers, ordered references section) is enforced by construction
// after the generation call, not trusted to the prompt.
package synthesis

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/litreview-engine/internal/genai"
	"github.com/pdiddy/litreview-engine/pkg/types"
)

// Synthesizer writes review drafts from findings.
type Synthesizer struct {
	Gen genai.Generator
}

// Synthesize produces a draft with exactly one paragraph per finding. When
// critique is non-nil the prior draft and every critique issue are fed back
// into the prompt as revision context. A generation failure degrades to a
// deterministic best-effort draft built from the findings themselves, so the
// refinement loop always has something to evaluate.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, candidates []types.RankedCandidate, findings []types.ExtractedFinding, prior *types.DraftReview, critique *types.Critique) (types.DraftReview, error) {
	if len(findings) == 0 {
		return types.DraftReview{}, fmt.Errorf("no findings to synthesize")
	}

	prompt, err := renderSynthesisPrompt(query, candidates, findings, prior, critique)
	if err != nil {
		return types.DraftReview{}, fmt.Errorf("rendering synthesis prompt: %w", err)
	}

	var paragraphs []string
	resp, err := genai.CallJSON[synthesisResponse](ctx, s.Gen, prompt)
	if err == nil {
		paragraphs = resp.Paragraphs
	}

	return assembleDraft(paragraphs, candidates, findings), nil
}

// synthesisResponse is the structured output contract for one synthesis call.
type synthesisResponse struct {
	Paragraphs []string `json:"paragraphs"`
}

// assembleDraft coerces generated paragraphs into the structural contract:
// exactly len(findings) paragraphs, paragraph i carrying marker [i+1], and a
// references section listing the cited candidates in finding order. Missing
// paragraphs are filled from the finding text; extras are dropped.
func assembleDraft(generated []string, candidates []types.RankedCandidate, findings []types.ExtractedFinding) types.DraftReview {
	n := len(findings)
	paragraphs := make([]string, n)
	markers := make(map[int]int, n)

	for i := 0; i < n; i++ {
		var p string
		if i < len(generated) {
			p = strings.TrimSpace(generated[i])
		}
		if p == "" {
			p = fallbackParagraph(i+1, findings[i], candidateFor(candidates, findings[i]))
		}
		marker := fmt.Sprintf("[%d]", i+1)
		if !strings.Contains(p, marker) {
			p += " " + marker
		}
		paragraphs[i] = p
		markers[i] = i + 1
	}

	return types.DraftReview{
		Paragraphs:      paragraphs,
		CitationMarkers: markers,
		References:      buildReferences(candidates, findings),
	}
}

// fallbackParagraph writes a minimal but well-formed paragraph for one
// finding when generation produced nothing usable for it.
func fallbackParagraph(position int, f types.ExtractedFinding, c types.RankedCandidate) string {
	lead := leadAuthor(c)
	var b strings.Builder
	if f.Methodology != "" {
		fmt.Fprintf(&b, "%s take the following approach: %s. ", lead, strings.TrimSuffix(f.Methodology, "."))
	}
	fmt.Fprintf(&b, "%s report: %s.", lead, strings.TrimSuffix(f.KeyFindings, "."))
	if f.RelevanceNote != "" {
		fmt.Fprintf(&b, " %s", f.RelevanceNote)
	}
	fmt.Fprintf(&b, " [%d]", position)
	return b.String()
}

// leadAuthor returns "Surname et al." for the candidate's first author, or a
// generic subject for author-less web records.
func leadAuthor(c types.RankedCandidate) string {
	if len(c.Authors) == 0 {
		return "The authors"
	}
	name := c.Authors[0]
	if idx := strings.LastIndex(name, " "); idx >= 0 {
		name = name[idx+1:]
	}
	if len(c.Authors) == 1 {
		return name
	}
	return name + " et al."
}

// candidateFor resolves the candidate a finding was extracted from. Findings
// reference candidates by rank; a missing match returns a zero candidate so
// fallback text still renders.
func candidateFor(candidates []types.RankedCandidate, f types.ExtractedFinding) types.RankedCandidate {
	for _, c := range candidates {
		if c.Rank == f.CandidateIndex {
			return c
		}
	}
	return types.RankedCandidate{}
}

// buildReferences renders the references list, one entry per finding in
// finding order, blank line between entries.
func buildReferences(candidates []types.RankedCandidate, findings []types.ExtractedFinding) string {
	var entries []string
	for i, f := range findings {
		c := candidateFor(candidates, f)
		var parts []string
		parts = append(parts, c.Title)
		if len(c.Authors) > 0 {
			parts = append(parts, strings.Join(c.Authors, ", "))
		}
		if c.Year > 0 {
			parts = append(parts, fmt.Sprintf("%d", c.Year))
		}
		if c.URL != "" {
			parts = append(parts, c.URL)
		}
		entries = append(entries, fmt.Sprintf("[%d] %s", i+1, strings.Join(parts, ", ")))
	}
	return strings.Join(entries, "\n\n")
}
