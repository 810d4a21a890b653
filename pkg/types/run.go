// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ReviewRun is the durable record of one completed pipeline run. The pipeline
// itself holds everything in memory; the caller persists a ReviewRun after
// the run finishes.
type ReviewRun struct {
	// ID is a generated unique identifier for the run.
	ID string `json:"id" yaml:"id"`

	// Query is the research question the run answered.
	Query string `json:"query" yaml:"query"`

	// CreatedAt is when the run completed.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// Iterations is how many synthesis passes the refinement loop made.
	Iterations int `json:"iterations" yaml:"iterations"`

	// Candidates are the ranked sources the review covers.
	Candidates []RankedCandidate `json:"candidates" yaml:"candidates"`

	// Review is the final draft.
	Review DraftReview `json:"review" yaml:"review"`

	// Critique is the last evaluator verdict. Critique.Pass distinguishes
	// an approved draft from one that exhausted the iteration cap.
	Critique Critique `json:"critique" yaml:"critique"`
}
