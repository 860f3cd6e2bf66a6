package billing

import (
	"errors"
	"fmt"
)

const (
	FieldUnitPrice  = "unit_price"
	FieldStartIndex = "start_index"
	FieldEndIndex   = "end_index"
	FieldCorrection = "correction"
)

// ErrOutOfRange is wrapped by InvalidInputError for numbers that cannot
// be stored as a finite REAL without collapsing to zero or infinity.
var ErrOutOfRange = errors.New("number out of range")

// InvalidInputError reports a numeric field that could not be parsed.
type InvalidInputError struct {
	Field string
	Value string
	Err   error
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s %q: please enter a valid number", e.Field, e.Value)
}

func (e *InvalidInputError) Unwrap() error {
	return e.Err
}
