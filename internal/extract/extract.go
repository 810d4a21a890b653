// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract derives structured findings from ranked candidates, one
// text-generation call per candidate. Calls share no state and run in
// parallel under a configurable limit; a single candidate's failure drops
// that candidate without aborting the rest.
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/litreview-engine/internal/genai"
	"github.com/pdiddy/litreview-engine/pkg/types"
)

// MinFindings is the review quality floor: a run with fewer surviving
// findings cannot produce a usable review.
const MinFindings = 2

var (
	// ErrExtractionFailed reports that one candidate's extraction failed
	// after all retries.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrInsufficientFindings reports that too few candidates produced
	// findings. Fatal for the run.
	ErrInsufficientFindings = errors.New("insufficient findings")
)

// backoffBase controls the base duration for exponential backoff between
// retries. Tests override this to avoid real sleeps.
var backoffBase = time.Second

// Extractor runs per-candidate finding extraction.
type Extractor struct {
	// Gen is the text-generation backend.
	Gen genai.Generator

	// MaxRetries is the number of retries per candidate after the first
	// attempt (default 2).
	MaxRetries int

	// Concurrency bounds parallel extraction calls; 0 means one worker
	// per candidate.
	Concurrency int
}

// ExtractAll extracts findings for every candidate in parallel and returns
// the survivors ordered by candidate rank. Per-candidate failures are logged
// to w and dropped; if fewer than MinFindings survive, ExtractAll returns
// the survivors together with ErrInsufficientFindings.
func (e *Extractor) ExtractAll(ctx context.Context, query string, candidates []types.RankedCandidate, w io.Writer) ([]types.ExtractedFinding, error) {
	results := make([]*types.ExtractedFinding, len(candidates))

	var mu sync.Mutex
	var failures []string

	g := &errgroup.Group{}
	if e.Concurrency > 0 {
		g.SetLimit(e.Concurrency)
	}

	for i, c := range candidates {
		i, c := i, c
		g.Go(func() error {
			finding, err := e.extractOne(ctx, query, c)
			if err != nil {
				mu.Lock()
				failures = append(failures, fmt.Sprintf("%s: %v", c.Title, err))
				mu.Unlock()
				return nil
			}
			results[i] = &finding
			return nil
		})
	}
	g.Wait()

	for _, f := range failures {
		fmt.Fprintf(w, "warning: dropping candidate, %s\n", f)
	}

	// Re-assemble in candidate order, not completion order.
	var findings []types.ExtractedFinding
	for _, r := range results {
		if r != nil {
			findings = append(findings, *r)
		}
	}

	if len(findings) < MinFindings {
		return findings, fmt.Errorf("%w: %d of %d candidates produced findings, need %d",
			ErrInsufficientFindings, len(findings), len(candidates), MinFindings)
	}
	return findings, nil
}

// extractOne runs the extraction call for a single candidate with retries.
func (e *Extractor) extractOne(ctx context.Context, query string, c types.RankedCandidate) (types.ExtractedFinding, error) {
	prompt, err := renderExtractionPrompt(query, c)
	if err != nil {
		return types.ExtractedFinding{}, fmt.Errorf("rendering prompt: %w", err)
	}

	maxRetries := e.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 2
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return types.ExtractedFinding{}, ctx.Err()
			case <-time.After(backoff):
			}
		}

		resp, err := genai.CallJSON[findingResponse](ctx, e.Gen, prompt)
		if err == nil {
			if resp.KeyFindings == "" {
				err = fmt.Errorf("%w: response missing key_findings", genai.ErrUnavailable)
			} else {
				return types.ExtractedFinding{
					CandidateIndex: c.Rank,
					Methodology:    resp.Methodology,
					KeyFindings:    resp.KeyFindings,
					RelevanceNote:  resp.RelevanceNote,
				}, nil
			}
		}
		lastErr = err
	}
	return types.ExtractedFinding{}, fmt.Errorf("%w after %d retries: %v", ErrExtractionFailed, maxRetries, lastErr)
}
