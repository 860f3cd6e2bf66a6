package ledger

import (
	"errors"
	"fmt"
)

// ErrNoSelection is returned by callers that were asked to delete
// without any record selected. Ledger.Delete itself accepts an empty set.
var ErrNoSelection = errors.New("please select the customers you want to delete")

// PersistenceError wraps a failure reported by the backing store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("ledger %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func persistErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
