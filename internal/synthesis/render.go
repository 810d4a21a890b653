// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesis

import (
	"strings"

	"github.com/pdiddy/litreview-engine/pkg/types"
)

// RenderMarkdown formats a draft as a Markdown document: the narrative
// paragraphs followed by a references section with a blank line between
// entries.
func RenderMarkdown(draft types.DraftReview) string {
	var b strings.Builder
	for i, p := range draft.Paragraphs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(p)
	}
	if draft.References != "" {
		b.WriteString("\n\n### References\n\n")
		b.WriteString(draft.References)
		b.WriteString("\n")
	}
	return b.String()
}
