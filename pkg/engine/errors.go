package engine

import "errors"

var (
	// ErrUnknownStrategy is returned for a locate strategy name other than
	// "common" or "random".
	ErrUnknownStrategy = errors.New("unknown locate strategy")

	// ErrNoCandidates is returned when a plan has nothing to try.
	ErrNoCandidates = errors.New("no candidates")
)
