// Package pdfparser turns a PDF bank statement into text segments for the
// extractor, one per statement row.
package pdfparser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"fjacquet/sms-ledger/internal/logging"
	"fjacquet/sms-ledger/internal/parsererror"
)

const sourcePDF = "PDF statement"

var pdfMagic = []byte("%PDF-")

// Parser reads uploaded statements.
type Parser struct {
	extractor PDFExtractor
	logger    logging.Logger
}

// NewParser creates a Parser. A nil extractor selects RealPDFExtractor.
func NewParser(extractor PDFExtractor, logger logging.Logger) *Parser {
	if extractor == nil {
		extractor = NewRealPDFExtractor()
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Parser{extractor: extractor, logger: logger}
}

// Segments spools r to a temporary file, extracts its text and joins the
// statement rows. Input that is not a readable PDF yields an
// *parsererror.InvalidFormatError.
func (p *Parser) Segments(ctx context.Context, r io.Reader) ([]string, error) {
	text, err := p.Text(ctx, r)
	if err != nil {
		return nil, err
	}
	segments := JoinStatementRows(text)
	p.logger.Debug("Statement rows joined", logging.F(logging.FieldCount, len(segments)))
	return segments, nil
}

// Text spools r to a temporary file and returns the extracted text.
func (p *Parser) Text(ctx context.Context, r io.Reader) (string, error) {
	tempFile, err := os.CreateTemp("", "sms-ledger-*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary PDF file: %w", err)
	}
	defer func() {
		if err := os.Remove(tempFile.Name()); err != nil {
			p.logger.WithError(err).Warn("Failed to remove temporary file",
				logging.F(logging.FieldFile, tempFile.Name()))
		}
	}()

	head := make([]byte, len(pdfMagic))
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		tempFile.Close()
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if !bytes.Equal(head[:n], pdfMagic) {
		tempFile.Close()
		return "", &parsererror.InvalidFormatError{
			Source:               sourcePDF,
			ExpectedFormat:       "PDF",
			ActualContentSnippet: snippet(head[:n]),
			Msg:                  "file is not a PDF",
		}
	}

	_, err = tempFile.Write(head)
	if err == nil {
		_, err = io.Copy(tempFile, r)
	}
	if closeErr := tempFile.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("failed to write temporary PDF file: %w", err)
	}

	p.logger.Info("Parsing PDF file", logging.F(logging.FieldFile, tempFile.Name()))

	text, err := p.extractor.ExtractText(ctx, tempFile.Name())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		p.logger.WithError(err).Warn("PDF text extraction failed")
		return "", &parsererror.InvalidFormatError{
			Source:         sourcePDF,
			ExpectedFormat: "text-based PDF",
			Msg:            "no text could be extracted, the file may be scanned or encrypted",
		}
	}
	if strings.TrimSpace(text) == "" {
		return "", &parsererror.InvalidFormatError{
			Source:         sourcePDF,
			ExpectedFormat: "text-based PDF",
			Msg:            "the file contains no text",
		}
	}
	return text, nil
}

func snippet(b []byte) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e {
			return '.'
		}
		return r
	}, string(b))
}
