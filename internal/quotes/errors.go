package quotes

import (
	"errors"
	"fmt"
)

// Failure classes for a single source attempt. The pipeline reacts to
// all three the same way (advance to the next source); they are kept
// distinct for logging and metrics.
var (
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrSourceParse       = errors.New("source response unparseable")
	ErrSourceRateLimited = errors.New("source rate limited")
)

// SourceError carries the identity and classification of one failed
// source attempt.
type SourceError struct {
	Source string
	Kind   error // one of the sentinel classes above
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %v: %v", e.Source, e.Kind, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Kind }

// KindLabel returns the metrics label for the failure class.
func (e *SourceError) KindLabel() string {
	switch {
	case errors.Is(e.Kind, ErrSourceRateLimited):
		return "rate_limited"
	case errors.Is(e.Kind, ErrSourceParse):
		return "parse"
	default:
		return "unavailable"
	}
}

func unavailable(source string, err error) error {
	return &SourceError{Source: source, Kind: ErrSourceUnavailable, Err: err}
}

func parseFailure(source string, err error) error {
	return &SourceError{Source: source, Kind: ErrSourceParse, Err: err}
}

func rateLimited(source string, err error) error {
	return &SourceError{Source: source, Kind: ErrSourceRateLimited, Err: err}
}
