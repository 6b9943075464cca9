// Package parsererror defines the typed errors shared by the extraction
// pipeline and mapped to HTTP status codes at the API boundary.
package parsererror

import (
	"errors"
	"fmt"
)

// ErrNoTransactions is returned when an input contained no segment any
// matcher could understand.
var ErrNoTransactions = errors.New("no transactions could be understood")

// ParseError represents a field that could not be parsed
type ParseError struct {
	Parser string
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: failed to parse %s='%s': %v",
		e.Parser, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError represents an invalid configuration or request value.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// CategorizationError represents a categorization failure
type CategorizationError struct {
	Merchant string
	Strategy string
	Err      error
}

func (e *CategorizationError) Error() string {
	return fmt.Sprintf("categorization failed for %s using %s: %v",
		e.Merchant, e.Strategy, e.Err)
}

func (e *CategorizationError) Unwrap() error {
	return e.Err
}

// InvalidFormatError represents an input that does not conform to the
// expected format, such as an unreadable PDF.
type InvalidFormatError struct {
	Source               string
	ExpectedFormat       string
	ActualContentSnippet string
	Msg                  string
}

func (e *InvalidFormatError) Error() string {
	if e.ActualContentSnippet != "" {
		return fmt.Sprintf("invalid format in %s: %s. Expected: %s. Content snippet: '%s'",
			e.Source, e.Msg, e.ExpectedFormat, e.ActualContentSnippet)
	}
	return fmt.Sprintf("invalid format in %s: %s. Expected: %s",
		e.Source, e.Msg, e.ExpectedFormat)
}

// ExtractionError is a user-facing failure to recover any transaction from
// an otherwise readable input. Message is safe to show to the end user.
type ExtractionError struct {
	Source  string
	Total   int
	Message string
	Err     error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction from %s failed (%d segments): %s: %v",
		e.Source, e.Total, e.Message, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// NewNoTransactionsError builds the ExtractionError returned when none of
// total segments were recognized.
func NewNoTransactionsError(source string, total int) *ExtractionError {
	return &ExtractionError{
		Source:  source,
		Total:   total,
		Message: "No transactions could be understood. Check the bank name and message format.",
		Err:     ErrNoTransactions,
	}
}

// UserMessage returns the message to show an end user for err, and whether
// err is a user-facing failure at all.
func UserMessage(err error) (string, bool) {
	var extractionErr *ExtractionError
	if errors.As(err, &extractionErr) {
		return extractionErr.Message, true
	}
	var formatErr *InvalidFormatError
	if errors.As(err, &formatErr) {
		return fmt.Sprintf("Could not read %s: %s", formatErr.Source, formatErr.Msg), true
	}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Error(), true
	}
	return "", false
}
