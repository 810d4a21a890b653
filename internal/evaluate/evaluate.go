// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package evaluate scores review drafts. Mechanical format checks run first
// and are authoritative: a draft with a structural defect cannot pass no
// matter how well the qualitative judgment scores it. Qualitative scoring is
// delegated to a text-generation call; if that call fails the critique
// degrades to a conservative failing verdict instead of raising.
package evaluate

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/litreview-engine/internal/genai"
	"github.com/pdiddy/litreview-engine/pkg/types"
)

// Evaluator critiques drafts against format and citation rules.
type Evaluator struct {
	Gen genai.Generator

	// PassThreshold is the minimum score that approves a draft
	// (default 8).
	PassThreshold int
}

// Evaluate returns a critique for the draft. It never returns an error; an
// unavailable evaluator yields a failing critique so the refinement loop can
// still terminate.
func (e *Evaluator) Evaluate(ctx context.Context, draft types.DraftReview, findings []types.ExtractedFinding) types.Critique {
	threshold := e.PassThreshold
	if threshold <= 0 {
		threshold = 8
	}

	mechanical := checkFormat(draft, len(findings))

	score, qualIssues := e.qualitativeScore(ctx, draft)

	// A mechanical defect caps the score below the pass threshold.
	if len(mechanical) > 0 && score >= threshold {
		score = threshold - 1
	}

	return types.Critique{
		Score:  score,
		Issues: append(mechanical, qualIssues...),
		Pass:   len(mechanical) == 0 && score >= threshold,
	}
}

// checkFormat runs the mechanical validations. Each returned issue names the
// concrete defect.
func checkFormat(draft types.DraftReview, findingCount int) []string {
	var issues []string

	if len(draft.Paragraphs) != findingCount {
		issues = append(issues, fmt.Sprintf("paragraph count %d != expected %d", len(draft.Paragraphs), findingCount))
	}

	body := strings.Join(draft.Paragraphs, "\n")
	for i := 1; i <= findingCount; i++ {
		if !strings.Contains(body, fmt.Sprintf("[%d]", i)) {
			issues = append(issues, fmt.Sprintf("citation marker [%d] missing", i))
		}
	}

	if strings.TrimSpace(draft.References) == "" {
		issues = append(issues, "references section empty")
	}

	return issues
}

// evaluationPromptTmpl asks the model for a score and issue list with a
// required JSON contract.
var evaluationPromptTmpl = template.Must(template.New("evaluation").Parse(`You are a reviewer assessing a literature review draft.

Draft:
{{.Draft}}

References:
{{.References}}

Assess citation accuracy and narrative coherence. Score from 1 (unusable) to 10 (publication ready). If the score is below {{.Threshold}}, list specific issues the writer must fix.

Respond with a JSON object and nothing else:
{"score": <integer 1-10>, "issues": ["...", "..."]}
`))

// critiqueResponse is the structured output contract for one evaluation call.
type critiqueResponse struct {
	Score  int      `json:"score"`
	Issues []string `json:"issues"`
}

// qualitativeScore runs the generation-backed assessment. On any failure it
// returns the conservative floor: score 0 with a single explanatory issue.
func (e *Evaluator) qualitativeScore(ctx context.Context, draft types.DraftReview) (int, []string) {
	threshold := e.PassThreshold
	if threshold <= 0 {
		threshold = 8
	}

	var buf bytes.Buffer
	err := evaluationPromptTmpl.Execute(&buf, struct {
		Draft, References string
		Threshold         int
	}{
		Draft:      strings.Join(draft.Paragraphs, "\n\n"),
		References: draft.References,
		Threshold:  threshold,
	})
	if err != nil {
		return 0, []string{"evaluation unavailable"}
	}

	resp, err := genai.CallJSON[critiqueResponse](ctx, e.Gen, buf.String())
	if err != nil {
		return 0, []string{"evaluation unavailable"}
	}

	score := resp.Score
	if score < 0 {
		score = 0
	}
	if score > 10 {
		score = 10
	}
	return score, resp.Issues
}
