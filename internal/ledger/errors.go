package ledger

import (
	"errors"
	"fmt"
)

// ErrZeroDelta is returned when asked to apply an entry that moves no money.
var ErrZeroDelta = errors.New("ledger entry delta must be non-zero")

// ErrPersistence wraps any storage failure inside Apply. The unit of work must be rolled back.
type ErrPersistence struct {
	Op  string
	Err error
}

func (e *ErrPersistence) Error() string {
	return fmt.Sprintf("ledger %s: %v", e.Op, e.Err)
}

func (e *ErrPersistence) Unwrap() error {
	return e.Err
}

// Is matches any ErrPersistence
func (e *ErrPersistence) Is(target error) bool {
	_, ok := target.(*ErrPersistence)
	return ok
}
