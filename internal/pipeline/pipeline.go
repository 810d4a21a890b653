// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline is the top-level controller for one literature review
// run: search, rank, extract, then the bounded refinement loop, in strict
// order with each stage consuming the previous stage's immutable output.
// Implements the surface the CLI calls; nothing here persists state.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/litreview-engine/internal/evaluate"
	"github.com/pdiddy/litreview-engine/internal/extract"
	"github.com/pdiddy/litreview-engine/internal/genai"
	"github.com/pdiddy/litreview-engine/internal/rank"
	"github.com/pdiddy/litreview-engine/internal/refine"
	"github.com/pdiddy/litreview-engine/internal/search"
	"github.com/pdiddy/litreview-engine/internal/synthesis"
	"github.com/pdiddy/litreview-engine/pkg/types"
)

// Orchestrator wires the pipeline stages for a run. Construct with New for
// the standard wiring, or assemble the fields directly in tests.
type Orchestrator struct {
	Providers  []search.Provider
	Scorer     rank.Scorer
	Extractor  *extract.Extractor
	Controller *refine.Controller
	Config     types.PipelineConfig
	Log        io.Writer
}

// Result is the terminal output of a successful run.
type Result struct {
	Review     types.DraftReview
	Critique   types.Critique
	Candidates []types.RankedCandidate
	Iterations int
}

// New builds an orchestrator with every generation-backed stage sharing the
// given backend. Generation calls are individually bounded by the configured
// timeout.
func New(gen genai.Generator, providers []search.Provider, cfg types.PipelineConfig, w io.Writer) *Orchestrator {
	if cfg.Generation.Timeout > 0 {
		gen = genai.WithTimeout(gen, cfg.Generation.Timeout)
	}
	return &Orchestrator{
		Providers: providers,
		Scorer:    &rank.GenScorer{Gen: gen},
		Extractor: &extract.Extractor{
			Gen:         gen,
			MaxRetries:  cfg.ExtractionRetries,
			Concurrency: cfg.ExtractionConcurrency,
		},
		Controller: &refine.Controller{
			Synth:         &synthesis.Synthesizer{Gen: gen},
			Eval:          &evaluate.Evaluator{Gen: gen, PassThreshold: cfg.PassThreshold},
			MaxIterations: cfg.MaxRefinementIterations,
		},
		Config: cfg,
		Log:    w,
	}
}

// Run executes the full pipeline for one query. It returns either a complete
// result or a single fatal StageError; partial results are never returned.
// Cancellation takes effect at stage boundaries.
func (o *Orchestrator) Run(ctx context.Context, query string) (Result, error) {
	w := o.Log
	if w == nil {
		w = io.Discard
	}

	fmt.Fprintf(w, "searching providers for %q\n", query)
	out, err := search.Search(ctx, query, o.Providers, o.Config.Search, w)
	if err != nil {
		return Result{}, stageErr("search", query, err)
	}
	if len(out.Records) == 0 {
		err := ErrNoCandidatesFound
		if len(out.ProviderErrors) > 0 {
			err = fmt.Errorf("%w: all providers failed: %s", ErrNoCandidatesFound, strings.Join(out.ProviderErrors, "; "))
		}
		return Result{}, stageErr("search", query, err)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, stageErr("search", query, err)
	}

	fmt.Fprintf(w, "ranking %d records\n", len(out.Records))
	candidates, err := rank.Select(ctx, query, out.Records, o.Scorer, o.Config.TopN, w)
	if err != nil {
		return Result{}, stageErr("rank", query, err)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, stageErr("rank", query, err)
	}

	fmt.Fprintf(w, "extracting findings from %d candidates\n", len(candidates))
	findings, err := o.Extractor.ExtractAll(ctx, query, candidates, w)
	if err != nil {
		return Result{}, stageErr("extract", query, err)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, stageErr("extract", query, err)
	}

	fmt.Fprintf(w, "refining review from %d findings\n", len(findings))
	outcome, err := o.Controller.Run(ctx, query, candidates, findings)
	if err != nil {
		return Result{}, stageErr("refine", query, err)
	}

	return Result{
		Review:     outcome.Review,
		Critique:   outcome.Critique,
		Candidates: candidates,
		Iterations: outcome.Iterations,
	}, nil
}
