package catalog

import (
	"errors"
	"fmt"
)

var (
	errMissing   = errors.New("is required")
	errDuplicate = errors.New("is duplicated")
)

// LoadError reports an invalid catalog entry.
type LoadError struct {
	QuestionID string
	Position   int
	Field      string
	Err        error
}

func (e *LoadError) Error() string {
	if e.QuestionID == "" {
		return fmt.Sprintf("catalog: question #%d: %s %v", e.Position+1, e.Field, e.Err)
	}
	return fmt.Sprintf("catalog: question %q: %s %v", e.QuestionID, e.Field, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
