package shelf

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a JAN or fixture is absent where an operation needs it.
var ErrNotFound = errors.New("not found")

// ValidationError reports malformed input to a mutator. No mutation is applied.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func notFound(fixtureID, jan, list string) error {
	return fmt.Errorf("%w: jan %s in %s list of fixture %s", ErrNotFound, jan, list, fixtureID)
}
