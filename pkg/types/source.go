// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the litreview-engine
// pipeline: normalized search records, ranked candidates, extracted findings,
// review drafts, and critiques, plus the configuration structs the stages
// consume.
package types

// SourceKind identifies which class of provider produced a record.
type SourceKind string

const (
	// SourceAcademic marks records from an academic paper API.
	SourceAcademic SourceKind = "academic"

	// SourceWeb marks records from a general web search.
	SourceWeb SourceKind = "web"
)

// SourceRecord is a normalized search result from any provider. Records are
// immutable after creation; downstream stages copy rather than mutate.
type SourceRecord struct {
	// Title is the document title as returned by the provider.
	Title string `json:"title" yaml:"title"`

	// Authors lists the authors in provider order. Empty for web results
	// that carry no author metadata.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Abstract is the paper abstract or, for web results, the page snippet.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Year is the publication year, or 0 when unknown.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// URL locates the document.
	URL string `json:"url" yaml:"url"`

	// Kind records which provider class found this result.
	Kind SourceKind `json:"kind" yaml:"kind"`
}

// RankedCandidate is a SourceRecord that survived deduplication and was
// selected by the ranker.
type RankedCandidate struct {
	SourceRecord `yaml:",inline"`

	// Rank is the 1-based position in the selected set.
	Rank int `json:"rank" yaml:"rank"`

	// Score is the relevance score that produced the ordering.
	Score float64 `json:"score" yaml:"score"`
}

// ExtractedFinding holds the structured analysis of one candidate. Exactly
// one finding exists per surviving candidate; findings are never mutated
// after extraction.
type ExtractedFinding struct {
	// CandidateIndex is the 1-based rank of the candidate this finding
	// was derived from.
	CandidateIndex int `json:"candidate_index" yaml:"candidate_index"`

	// Methodology summarizes the approach the paper takes.
	Methodology string `json:"methodology" yaml:"methodology"`

	// KeyFindings summarizes the paper's main results.
	KeyFindings string `json:"key_findings" yaml:"key_findings"`

	// RelevanceNote explains why the paper matters for the query.
	RelevanceNote string `json:"relevance_note" yaml:"relevance_note"`
}
