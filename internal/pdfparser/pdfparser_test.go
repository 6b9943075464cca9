package pdfparser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/sms-ledger/internal/logging"
	"fjacquet/sms-ledger/internal/parsererror"
)

const statementText = `STATE BANK OF INDIA
Statement of Account for XXXXXXX1234
Txn Date   Value Date   Description                 Debit     Credit    Balance
Opening Balance 25,500.00
01/01/2024  01/01/2024  UPI/SWIGGY/12345            500.00 Dr            25,000.00 Cr
02/01/2024  02/01/2024  NEFT/SALARY ACME            50,000.00 Cr         75,000.00 Cr
            CORP LTD
Page 1 of 2
03-Jan-2024 ATM WDL MG ROAD   2,000.00 Dr   73,000.00 Cr
Closing Balance 73,000.00
`

func TestJoinStatementRows(t *testing.T) {
	rows := JoinStatementRows(statementText)
	assert.Equal(t, []string{
		"01/01/2024 01/01/2024 UPI/SWIGGY/12345 500.00 Dr 25,000.00 Cr",
		"02/01/2024 02/01/2024 NEFT/SALARY ACME 50,000.00 Cr 75,000.00 Cr CORP LTD",
		"03-Jan-2024 ATM WDL MG ROAD 2,000.00 Dr 73,000.00 Cr",
	}, rows)
}

func TestJoinStatementRows_NoDatedRows(t *testing.T) {
	text := "Rs.500 debited from A/c XX1234 at SWIGGY\r\n\r\n  Received Rs 800 from PRIYA  \n"
	assert.Equal(t, []string{
		"Rs.500 debited from A/c XX1234 at SWIGGY",
		"Received Rs 800 from PRIYA",
	}, JoinStatementRows(text))

	assert.Empty(t, JoinStatementRows("  \n\n"))
}

func TestParser_Segments(t *testing.T) {
	mock := NewMockPDFExtractor(statementText, nil)
	p := NewParser(mock, logging.NewMockLogger())

	segments, err := p.Segments(context.Background(), strings.NewReader("%PDF-1.7 fake body"))
	require.NoError(t, err)
	assert.Len(t, segments, 3)
	assert.Equal(t, 1, mock.Calls)
}

func TestParser_RejectsNonPDF(t *testing.T) {
	mock := NewMockPDFExtractor(statementText, nil)
	p := NewParser(mock, nil)

	for _, input := range []string{"", "%PD", "hello world, not a pdf"} {
		_, err := p.Segments(context.Background(), strings.NewReader(input))
		var formatErr *parsererror.InvalidFormatError
		require.ErrorAs(t, err, &formatErr, "input %q", input)
		assert.Equal(t, "PDF", formatErr.ExpectedFormat)
	}
	assert.Equal(t, 0, mock.Calls)
}

func TestParser_ExtractionFailures(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		err     error
		wantMsg string
	}{
		{name: "extractor error", err: errors.New("encrypted"), wantMsg: "no text could be extracted"},
		{name: "blank text", text: " \n ", wantMsg: "contains no text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParser(NewMockPDFExtractor(tt.text, tt.err), nil)
			_, err := p.Segments(context.Background(), strings.NewReader("%PDF-1.4"))
			var formatErr *parsererror.InvalidFormatError
			require.ErrorAs(t, err, &formatErr)
			assert.Contains(t, formatErr.Msg, tt.wantMsg)

			msg, ok := parsererror.UserMessage(err)
			assert.True(t, ok)
			assert.Contains(t, msg, "Could not read PDF statement")
		})
	}
}

func TestParser_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewParser(NewMockPDFExtractor("", context.Canceled), nil)
	_, err := p.Segments(ctx, strings.NewReader("%PDF-1.4"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRealPDFExtractor_UnreadableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\nnot really a pdf"), 0600))

	e := &RealPDFExtractor{PdftotextPath: filepath.Join(t.TempDir(), "missing-pdftotext")}
	_, err := e.ExtractText(context.Background(), path)
	assert.Error(t, err)
}
