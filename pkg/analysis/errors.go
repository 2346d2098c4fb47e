package analysis

import (
	"errors"
	"fmt"
)

var (
	ErrNoTopology       = errors.New("circuit topology has no components")
	ErrUnknownKind      = errors.New("unknown analysis kind")
	ErrInvalidParameter = errors.New("invalid analysis parameter")
	ErrCancelled        = errors.New("analysis cancelled")
)

// AnalysisError ties a failure to the analysis kind that produced it.
type AnalysisError struct {
	Kind Kind
	Err  error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("%s analysis failed: %v", e.Kind, e.Err)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(format, args...))
}
