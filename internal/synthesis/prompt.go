// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesis

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/pdiddy/litreview-engine/pkg/types"
)

// synthesisPromptTmpl is the drafting prompt. On revision passes it carries
// the prior draft and the reviewer's issues so the model addresses every
// listed defect instead of starting over blind.
var synthesisPromptTmpl = template.Must(template.New("synthesis").Parse(`You are an academic writer producing a literature review.

Research topic: {{.Query}}

Analyzed papers, in order:
{{- range .Papers}}

[{{.Position}}] {{.Title}}{{if .Authors}} ({{.Authors}}{{if .Year}}, {{.Year}}{{end}}){{end}}
Methodology: {{.Methodology}}
Key findings: {{.KeyFindings}}
Relevance: {{.RelevanceNote}}
{{- end}}
{{- if .PriorDraft}}

Your previous draft:
{{.PriorDraft}}

Reviewer feedback to address (fix every issue):
{{- range .Issues}}
- {{.}}
{{- end}}
{{- end}}

Write exactly {{.Count}} paragraphs, one per paper, discussing the papers in the order given. Start each paragraph with the lead author's surname followed by "et al." where there are multiple authors. End paragraph N with the citation marker [N].

Respond with a JSON object and nothing else:
{"paragraphs": ["paragraph 1 text ... [1]", "paragraph 2 text ... [2]"]}
`))

type promptPaper struct {
	Position      int
	Title         string
	Authors       string
	Year          int
	Methodology   string
	KeyFindings   string
	RelevanceNote string
}

// renderSynthesisPrompt executes the drafting template.
func renderSynthesisPrompt(query string, candidates []types.RankedCandidate, findings []types.ExtractedFinding, prior *types.DraftReview, critique *types.Critique) (string, error) {
	papers := make([]promptPaper, 0, len(findings))
	for i, f := range findings {
		c := candidateFor(candidates, f)
		papers = append(papers, promptPaper{
			Position:      i + 1,
			Title:         c.Title,
			Authors:       strings.Join(c.Authors, ", "),
			Year:          c.Year,
			Methodology:   f.Methodology,
			KeyFindings:   f.KeyFindings,
			RelevanceNote: f.RelevanceNote,
		})
	}

	data := struct {
		Query      string
		Papers     []promptPaper
		Count      int
		PriorDraft string
		Issues     []string
	}{
		Query:  query,
		Papers: papers,
		Count:  len(findings),
	}
	if prior != nil && critique != nil {
		data.PriorDraft = strings.Join(prior.Paragraphs, "\n\n")
		data.Issues = critique.Issues
	}

	var buf bytes.Buffer
	if err := synthesisPromptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
