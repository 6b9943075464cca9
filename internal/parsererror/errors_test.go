package parsererror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseError(t *testing.T) {
	inner := errors.New("bad digits")
	err := &ParseError{Parser: "debited-from", Field: "amount", Value: "Rs.x", Err: inner}
	assert.Equal(t, "debited-from: failed to parse amount='Rs.x': bad digits", err.Error())
	assert.ErrorIs(t, err, inner)
}

func TestNoTransactionsError(t *testing.T) {
	err := fmt.Errorf("import sms: %w", NewNoTransactionsError("sms", 3))
	assert.ErrorIs(t, err, ErrNoTransactions)

	var extractionErr *ExtractionError
	assert.ErrorAs(t, err, &extractionErr)
	assert.Equal(t, 3, extractionErr.Total)

	msg, ok := UserMessage(err)
	assert.True(t, ok)
	assert.Contains(t, msg, "No transactions could be understood")
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantOK   bool
		contains string
	}{
		{"invalid format", &InvalidFormatError{Source: "statement.pdf", Msg: "not a PDF"}, true, "Could not read statement.pdf"},
		{"validation", &ValidationError{Field: "bankName", Reason: "required"}, true, "invalid bankName"},
		{"system fault", errors.New("connection refused"), false, ""},
		{"categorization is internal", &CategorizationError{Merchant: "X", Strategy: "AI", Err: errors.New("quota")}, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, ok := UserMessage(tt.err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Contains(t, msg, tt.contains)
		})
	}
}

func TestInvalidFormatError_Snippet(t *testing.T) {
	err := &InvalidFormatError{Source: "upload", ExpectedFormat: "PDF", ActualContentSnippet: "GIF89a", Msg: "bad header"}
	assert.Equal(t, "invalid format in upload: bad header. Expected: PDF. Content snippet: 'GIF89a'", err.Error())
}
