package accounts

import (
	"errors"
	"fmt"
)

var (
	ErrNoMatchingAccount     = errors.New("no account mapping matches the header")
	ErrAmbiguousAccount      = errors.New("more than one account mapping matches the header")
	ErrMissingRequiredColumn = errors.New("missing required column")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrRowLength             = errors.New("row length does not match header")
	ErrInvalidMapping        = errors.New("invalid account mapping")
)

// DateParseError reports a date cell that does not fit the mapping's date_fmt.
type DateParseError struct {
	Value  string
	Format string
	Err    error
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("date %q does not match format %q", e.Value, e.Format)
}

func (e *DateParseError) Unwrap() error { return e.Err }
