package core

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrInvalidRange     = errors.New("invalid date range")
	ErrInsufficientData = errors.New("insufficient data")
	ErrInvalidHorizon   = errors.New("invalid forecast horizon")
)

// ParseError records a single field of a single row that could not be parsed.
// It is absorbed by the normalizer and only surfaced as a count.
type ParseError struct {
	Row   int
	Field Field
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d: %s %q: %v", e.Row, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// InvalidRangeError is returned when a filter request has start after end.
type InvalidRangeError struct {
	Start time.Time
	End   time.Time
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid date range: start %s is after end %s",
		e.Start.Format(time.DateOnly), e.End.Format(time.DateOnly))
}

func (e *InvalidRangeError) Unwrap() error { return ErrInvalidRange }

// InsufficientDataError is returned when a trend cannot be fitted.
type InsufficientDataError struct {
	Months   int
	Required int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %d month(s) available, at least %d required", e.Months, e.Required)
}

func (e *InsufficientDataError) Unwrap() error { return ErrInsufficientData }
