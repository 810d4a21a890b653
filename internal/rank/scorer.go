// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/pdiddy/litreview-engine/internal/genai"
	"github.com/pdiddy/litreview-engine/pkg/types"
)

// scoringPromptTmpl asks the model for a single relevance score. The
// response contract is a bare JSON object so it can be schema-validated
// immediately.
var scoringPromptTmpl = template.Must(template.New("scoring").Parse(`You are a research librarian judging relevance.

Research topic: {{.Query}}

Candidate document:
Title: {{.Title}}
Abstract: {{.Abstract}}

Rate how relevant this document is to the research topic on a scale from 0.0 (unrelated) to 1.0 (directly on topic). Favor primary research over commentary.

Respond with a JSON object and nothing else: {"score": <float>}
`))

// scoreResponse is the structured output contract for one scoring call.
type scoreResponse struct {
	Score float64 `json:"score"`
}

// GenScorer scores relevance with a text-generation call per record.
type GenScorer struct {
	Gen genai.Generator
}

// ScoreRelevance renders the scoring prompt and validates the response,
// clamping the score into [0, 1].
func (s *GenScorer) ScoreRelevance(ctx context.Context, record types.SourceRecord, query string) (float64, error) {
	var buf bytes.Buffer
	err := scoringPromptTmpl.Execute(&buf, struct {
		Query, Title, Abstract string
	}{Query: query, Title: record.Title, Abstract: record.Abstract})
	if err != nil {
		return 0, fmt.Errorf("rendering scoring prompt: %w", err)
	}

	resp, err := genai.CallJSON[scoreResponse](ctx, s.Gen, buf.String())
	if err != nil {
		return 0, err
	}

	score := resp.Score
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score, nil
}
