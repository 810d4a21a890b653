// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package refine runs the synthesize/evaluate loop as an explicit state
// machine: DRAFTING, then EVALUATING, then either DONE or another DRAFTING
// pass carrying the critique. The loop terminates when a critique passes or
// the iteration cap is reached; the caller tells the two apart via
// Critique.Pass on the outcome.
package refine

import (
	"context"
	"fmt"

	"github.com/pdiddy/litreview-engine/pkg/types"
)

// State is a phase of the refinement loop.
type State string

const (
	StateDrafting   State = "drafting"
	StateEvaluating State = "evaluating"
	StateDone       State = "done"
)

// Synthesizer produces a draft, optionally revising a prior draft against a
// critique.
type Synthesizer interface {
	Synthesize(ctx context.Context, query string, candidates []types.RankedCandidate, findings []types.ExtractedFinding, prior *types.DraftReview, critique *types.Critique) (types.DraftReview, error)
}

// Evaluator critiques a draft.
type Evaluator interface {
	Evaluate(ctx context.Context, draft types.DraftReview, findings []types.ExtractedFinding) types.Critique
}

// Controller drives the bounded refinement loop.
type Controller struct {
	Synth Synthesizer
	Eval  Evaluator

	// MaxIterations caps total synthesis calls (default 2).
	MaxIterations int
}

// Outcome is the terminal result of the loop: the last draft and last
// critique, whether the loop passed or exhausted the cap.
type Outcome struct {
	Review     types.DraftReview
	Critique   types.Critique
	Iterations int
}

// Run executes the loop until a critique passes or MaxIterations synthesis
// calls have been made. Cancellation is honored at state boundaries; an
// in-flight synthesis or evaluation call runs to completion first.
func (c *Controller) Run(ctx context.Context, query string, candidates []types.RankedCandidate, findings []types.ExtractedFinding) (Outcome, error) {
	maxIterations := c.MaxIterations
	if maxIterations <= 0 {
		maxIterations = 2
	}

	var (
		draft     types.DraftReview
		critique  types.Critique
		prior     *types.DraftReview
		feedback  *types.Critique
		iteration int
	)

	state := StateDrafting
	for state != StateDone {
		if err := ctx.Err(); err != nil {
			return Outcome{}, err
		}

		switch state {
		case StateDrafting:
			iteration++
			d, err := c.Synth.Synthesize(ctx, query, candidates, findings, prior, feedback)
			if err != nil {
				return Outcome{}, fmt.Errorf("synthesis iteration %d: %w", iteration, err)
			}
			draft = d
			state = StateEvaluating

		case StateEvaluating:
			critique = c.Eval.Evaluate(ctx, draft, findings)
			if critique.Pass || iteration >= maxIterations {
				state = StateDone
				break
			}
			// Snapshot before the next drafting pass overwrites them.
			p, f := draft, critique
			prior, feedback = &p, &f
			state = StateDrafting
		}
	}

	return Outcome{Review: draft, Critique: critique, Iterations: iteration}, nil
}
