package common_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fjacquet/sms-ledger/cmd/common"
	"fjacquet/sms-ledger/internal/ingest"
	"fjacquet/sms-ledger/internal/logging"
	"fjacquet/sms-ledger/internal/models"
)

// MockImporter implements common.Importer for testing
type MockImporter struct {
	mock.Mock
}

func (m *MockImporter) ImportSMS(ctx context.Context, userID string, bank models.Bank, text string) (*ingest.Summary, error) {
	args := m.Called(ctx, userID, bank, text)
	summary, _ := args.Get(0).(*ingest.Summary)
	return summary, args.Error(1)
}

func (m *MockImporter) ImportPDF(ctx context.Context, userID string, bank models.Bank, r io.Reader) (*ingest.Summary, error) {
	args := m.Called(ctx, userID, bank, r)
	summary, _ := args.Get(0).(*ingest.Summary)
	return summary, args.Error(1)
}

func oneTransaction() *ingest.Summary {
	return &ingest.Summary{
		Total:    1,
		Parsed:   1,
		Imported: 1,
		Message:  "Imported 1 of 1 transactions",
		Transactions: []models.Transaction{{
			AmountMinor: 50000,
			Currency:    models.CurrencyINR,
			Direction:   models.Debit,
			Date:        "2024-01-01",
			Merchant:    "SWIGGY",
			Bank:        models.BankHDFC,
		}},
	}
}

func TestProcessFile_SMSFromFileToStdout(t *testing.T) {
	ctx := context.Background()
	input := filepath.Join(t.TempDir(), "sms.txt")
	require.NoError(t, os.WriteFile(input, []byte("Rs.500.00 debited"), 0600))

	imp := &MockImporter{}
	imp.On("ImportSMS", ctx, "user-1", models.BankHDFC, "Rs.500.00 debited").Return(oneTransaction(), nil)

	var out bytes.Buffer
	logger := logging.NewMockLogger()
	summary, err := common.ProcessFile(ctx, imp, common.Request{
		Source: ingest.SourceSMS,
		UserID: "user-1",
		Bank:   models.BankHDFC,
		Input:  input,
		Stdout: &out,
	}, logger)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)
	assert.Contains(t, out.String(), "2024-01-01,debit,500.00,INR,SWIGGY")
	assert.True(t, logger.HasEntry("INFO", "Imported 1 of 1 transactions"))
	imp.AssertExpectations(t)
}

func TestProcessFile_PDFFromStdinToFile(t *testing.T) {
	ctx := context.Background()
	stdin := strings.NewReader("%PDF-1.4")
	output := filepath.Join(t.TempDir(), "out", "statement.csv")

	imp := &MockImporter{}
	imp.On("ImportPDF", ctx, "user-1", models.BankSBI, mock.Anything).Return(oneTransaction(), nil)

	_, err := common.ProcessFile(ctx, imp, common.Request{
		Source:    ingest.SourcePDF,
		UserID:    "user-1",
		Bank:      models.BankSBI,
		Input:     "-",
		Output:    output,
		Delimiter: ';',
		Stdin:     stdin,
	}, logging.NewMockLogger())

	require.NoError(t, err)
	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "2024-01-01;debit;500.00")
	imp.AssertExpectations(t)
}

func TestProcessFile_Errors(t *testing.T) {
	ctx := context.Background()
	importErr := errors.New("nothing recognized")

	tests := []struct {
		name    string
		req     common.Request
		setup   func(*MockImporter)
		wantErr string
	}{
		{
			name:    "missing input",
			req:     common.Request{Source: ingest.SourceSMS},
			wantErr: "an input file is required",
		},
		{
			name:    "unreadable input",
			req:     common.Request{Source: ingest.SourceSMS, Input: filepath.Join(t.TempDir(), "missing.txt")},
			wantErr: "error opening input file",
		},
		{
			name:    "unknown source",
			req:     common.Request{Source: "fax", Input: "-", Stdin: strings.NewReader("x")},
			wantErr: `unknown source "fax"`,
		},
		{
			name: "import failure is returned unchanged",
			req:  common.Request{Source: ingest.SourceSMS, Input: "-", Stdin: strings.NewReader("hello")},
			setup: func(m *MockImporter) {
				m.On("ImportSMS", ctx, "", models.Bank(""), "hello").Return(nil, importErr)
			},
			wantErr: "nothing recognized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			imp := &MockImporter{}
			if tt.setup != nil {
				tt.setup(imp)
			}
			_, err := common.ProcessFile(ctx, imp, tt.req, logging.NewMockLogger())
			assert.ErrorContains(t, err, tt.wantErr)
			imp.AssertExpectations(t)
		})
	}
}
