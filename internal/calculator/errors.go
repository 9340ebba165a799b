package calculator

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidCount          = errors.New("participant count must be a positive whole number")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrEmptyName             = errors.New("name must not be empty")
	ErrInternalInconsistency = errors.New("balances do not settle to zero")
)

// RowError describes a problem with a single participant row.
type RowError struct {
	// Row is the zero-based position of the row as entered.
	Row int

	// Field is either "name" or "amount".
	Field string

	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d %s: %v", e.Row+1, e.Field, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// ValidationError aggregates every row problem found while reading the input.
// It unwraps to each row error, so errors.Is(err, ErrEmptyName) and
// errors.Is(err, ErrInvalidAmount) work on the aggregate.
type ValidationError struct {
	Problems []*RowError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.Error()
	}
	return "invalid participants: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() []error {
	errs := make([]error, len(e.Problems))
	for i, p := range e.Problems {
		errs[i] = p
	}
	return errs
}
