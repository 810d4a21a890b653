// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/pdiddy/litreview-engine/pkg/types"
)

// extractionPromptTmpl is the prompt sent for each candidate. The response
// contract is a bare JSON object so it can be schema-validated immediately
// after the call.
var extractionPromptTmpl = template.Must(template.New("extraction").Parse(`You are a research analyst. Analyze the following document in the context of a literature review.

Research topic: {{.Query}}

Document:
Title: {{.Title}}
{{- if .Authors}}
Authors: {{.Authors}}
{{- end}}
{{- if .Year}}
Year: {{.Year}}
{{- end}}
Abstract: {{.Abstract}}

Extract:
- methodology: the approach or techniques the work uses
- key_findings: the main results or conclusions
- relevance_note: why this work matters for the research topic

Respond with a JSON object and nothing else:
{"methodology": "...", "key_findings": "...", "relevance_note": "..."}
`))

// findingResponse is the structured output contract for one extraction call.
type findingResponse struct {
	Methodology   string `json:"methodology"`
	KeyFindings   string `json:"key_findings"`
	RelevanceNote string `json:"relevance_note"`
}

// renderExtractionPrompt executes the extraction template for one candidate.
func renderExtractionPrompt(query string, c types.RankedCandidate) (string, error) {
	var buf bytes.Buffer
	err := extractionPromptTmpl.Execute(&buf, struct {
		Query, Title, Authors, Abstract string
		Year                            int
	}{
		Query:    query,
		Title:    c.Title,
		Authors:  strings.Join(c.Authors, ", "),
		Abstract: c.Abstract,
		Year:     c.Year,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
