package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownVariable is returned when a requested field is not in the catalog.
	ErrUnknownVariable = errors.New("unknown mesonet variable")

	// ErrMalformedRecord matches any *MalformedRecordError via errors.Is.
	ErrMalformedRecord = errors.New("malformed mesonet record")

	// ErrTransport matches any *TransportError via errors.Is.
	ErrTransport = errors.New("mesonet transport failure")
)

// MalformedRecordError reports a data row that could not be parsed. Row is
// the zero-based index of the observation, counted after the header.
type MalformedRecordError struct {
	Row    int
	Line   int
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed mesonet record at row %d (line %d): %s", e.Row, e.Line, e.Reason)
}

func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

// TransportError wraps a failure to retrieve a resource from the provider.
type TransportError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}
