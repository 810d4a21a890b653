package runstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/litreview-engine/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRun(query string) types.ReviewRun {
	return types.ReviewRun{
		Query:      query,
		Iterations: 2,
		Candidates: []types.RankedCandidate{
			{SourceRecord: types.SourceRecord{Title: "Paper A", Year: 2023}, Rank: 1, Score: 0.9},
		},
		Review: types.DraftReview{
			Paragraphs:      []string{"Paragraph one. [1]"},
			CitationMarkers: map[int]int{0: 1},
			References:      "[1] Paper A, 2023",
		},
		Critique: types.Critique{Score: 9, Pass: true},
	}
}

func TestSaveFillsIDAndTimestamp(t *testing.T) {
	s := testStore(t)

	saved, err := s.Save(sampleRun("graph neural networks"))
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())
}

func TestSaveAndGetRoundTrip(t *testing.T) {
	s := testStore(t)

	saved, err := s.Save(sampleRun("graph neural networks"))
	require.NoError(t, err)

	got, err := s.Get(saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "graph neural networks", got.Query)
	assert.Equal(t, saved.ID, got.ID)
	assert.Len(t, got.Review.Paragraphs, 1)
	assert.Equal(t, 1, got.Review.CitationMarkers[0])
	assert.True(t, got.Critique.Pass)
}

func TestGetMissingRun(t *testing.T) {
	s := testStore(t)
	_, err := s.Get("no-such-id")
	assert.ErrorContains(t, err, "not found")
}

func TestListNewestFirst(t *testing.T) {
	s := testStore(t)

	for _, q := range []string{"first", "second", "third"} {
		run := sampleRun(q)
		_, err := s.Save(run)
		require.NoError(t, err)
	}

	got, err := s.List(2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	for _, sum := range got {
		assert.True(t, sum.Passed)
		assert.Equal(t, 9, sum.Score)
	}
}

func TestListEmptyStore(t *testing.T) {
	s := testStore(t)
	got, err := s.List(0)
	require.NoError(t, err)
	assert.Empty(t, got)
}
