// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"errors"
	"fmt"
)

// ErrNoCandidatesFound reports that no usable record came back from any
// provider. Fatal for the run.
var ErrNoCandidatesFound = errors.New("no candidates found")

// StageError wraps a fatal error with the stage and query that produced it,
// so callers can display a precise user-facing message. Non-fatal errors are
// absorbed inside their stage and never reach this type.
type StageError struct {
	Stage string
	Query string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed for query %q: %v", e.Stage, e.Query, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// stageErr builds a StageError.
func stageErr(stage, query string, err error) error {
	return &StageError{Stage: stage, Query: query, Err: err}
}
