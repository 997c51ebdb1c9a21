package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrExhausted is returned when a batch is requested after the cursor has
	// reached the total example count. Reset the cursor to start a new epoch.
	ErrExhausted = errors.New("no more examples")
	// ErrUsage marks invalid arguments: batch size below one, cursor out of
	// range, non-positive max length, missing collaborators.
	ErrUsage = errors.New("invalid usage")
	// ErrMalformedRecord is wrapped by record streams for records that should
	// be skipped rather than abort store construction.
	ErrMalformedRecord = errors.New("malformed record")
)

// ConstructionError reports a record stream that could not be opened or read.
// No partial store is returned alongside it.
type ConstructionError struct {
	Source string
	Err    error
}

func (e *ConstructionError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("build example store: %v", e.Err)
	}
	return fmt.Sprintf("build example store from %s: %v", e.Source, e.Err)
}

func (e *ConstructionError) Unwrap() error { return e.Err }

func usageErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrUsage, fmt.Sprintf(format, args...))
}
