// Package parser turns election result files into vote triples.
//
// Files are read from a local path or downloaded over HTTP(S). The csv
// parser reads a single CSV file; the zip parser reads every CSV entry of an
// archive, which is how poll-by-poll results are usually published.
package parser

import (
	"context"
	"fmt"

	"elections/internal/election"
)

// Parser defines the interface for different parsing strategies
type Parser interface {
	// Method returns the parser type (e.g., "csv", "zip")
	Method() string

	// Parse reads the results found at location, a file path or URL
	Parse(ctx context.Context, location string) ([]election.Result, error)

	// Cleanup performs any necessary cleanup
	Cleanup() error
}

// ParseError represents a parsing error with a specific stage
type ParseError struct {
	Stage string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s stage: %v", e.Stage, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(stage string, err error) *ParseError {
	return &ParseError{
		Stage: stage,
		Err:   err,
	}
}
