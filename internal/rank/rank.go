// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank deduplicates, scores, and selects the top candidates from
// merged search records. Relevance scoring is delegated to an injectable
// Scorer so the heuristic stays testable in isolation.
package rank

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode"

	"github.com/pdiddy/litreview-engine/pkg/types"
)

// ErrInsufficientCandidates reports that no usable record survived
// deduplication. Fatal for the run.
var ErrInsufficientCandidates = errors.New("insufficient candidates after deduplication")

// Scorer judges how relevant a record is to the query, returning a value in
// [0, 1].
type Scorer interface {
	ScoreRelevance(ctx context.Context, record types.SourceRecord, query string) (float64, error)
}

// Select deduplicates records by normalized title, scores the survivors,
// sorts by score (descending, tie-break publication year descending with
// missing years last), and returns at most topN ranked candidates. A scoring
// failure for one record degrades that record's score to zero with a logged
// warning rather than failing the selection.
func Select(ctx context.Context, query string, records []types.SourceRecord, scorer Scorer, topN int, w io.Writer) ([]types.RankedCandidate, error) {
	if topN <= 0 {
		topN = 5
	}

	deduped := deduplicate(records)
	if len(deduped) < 1 {
		return nil, fmt.Errorf("%w: %d records in, 0 usable", ErrInsufficientCandidates, len(records))
	}

	scored := make([]types.RankedCandidate, 0, len(deduped))
	for _, r := range deduped {
		score, err := scorer.ScoreRelevance(ctx, r, query)
		if err != nil {
			fmt.Fprintf(w, "warning: scoring %q failed: %v\n", r.Title, err)
			score = 0
		}
		scored = append(scored, types.RankedCandidate{SourceRecord: r, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return yearRank(scored[i].Year) > yearRank(scored[j].Year)
	})

	if len(scored) > topN {
		scored = scored[:topN]
	}
	for i := range scored {
		scored[i].Rank = i + 1
	}
	return scored, nil
}

// yearRank orders publication years so that a missing year (0) sorts after
// every known year.
func yearRank(year int) int {
	if year <= 0 {
		return -1
	}
	return year
}

// deduplicate drops records whose normalized title was already seen, keeping
// the first occurrence. Records with empty titles are dropped outright.
func deduplicate(records []types.SourceRecord) []types.SourceRecord {
	seen := make(map[string]bool)
	var deduped []types.SourceRecord

	for _, r := range records {
		key := normalizeTitle(r.Title)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, r)
	}
	return deduped
}

// normalizeTitle returns a lowercased, punctuation-stripped,
// whitespace-collapsed version of the title.
func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
