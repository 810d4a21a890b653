// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// DraftReview is one synthesized literature review draft. Each refinement
// iteration replaces the draft wholesale; there is no partial patching.
type DraftReview struct {
	// Paragraphs holds one narrative paragraph per finding, in candidate
	// order.
	Paragraphs []string `json:"paragraphs" yaml:"paragraphs"`

	// CitationMarkers maps a 0-based paragraph index to the 1-based
	// candidate index it cites.
	CitationMarkers map[int]int `json:"citation_markers" yaml:"citation_markers"`

	// References is the rendered references section listing the cited
	// candidates in finding order.
	References string `json:"references" yaml:"references"`
}

// Critique is the evaluator's verdict on one draft.
type Critique struct {
	// Score is the overall quality score from 1 to 10 (0 when the
	// evaluator itself was unavailable).
	Score int `json:"score" yaml:"score"`

	// Issues lists concrete defects the next synthesis pass must fix.
	Issues []string `json:"issues,omitempty" yaml:"issues,omitempty"`

	// Pass reports whether Score met the configured pass threshold.
	Pass bool `json:"pass" yaml:"pass"`
}
