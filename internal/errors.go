package internal

import "fmt"

// ConnectionError represents a backing store that is unreachable or
// malformed at open time. The source stays unavailable until retried.
type ConnectionError struct {
	Path string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error: %s: %v", e.Path, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ParseError represents a single record that is present but undecodable.
// Callers skip the record and continue the batch.
type ParseError struct {
	Source string // "globalStorage" or "sessionLog"
	Key    string // storage key or file path
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error [%s] %s: %v", e.Source, e.Key, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// SourceUnavailableError represents a whole source that was never
// initialized. It is surfaced as a warning string alongside the other
// source's results, never as a failure of the overall query.
type SourceUnavailableError struct {
	Source string
	Err    error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("source unavailable [%s]: %v", e.Source, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error {
	return e.Err
}
