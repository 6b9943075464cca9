package pdfparser

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor defines the interface for extracting text from PDF files.
// This interface allows for dependency injection and makes the PDF parser testable
// by providing different implementations for production and testing.
type PDFExtractor interface {
	// ExtractText extracts text content from a PDF file at the given path,
	// one line per visual row.
	ExtractText(ctx context.Context, pdfPath string) (string, error)
}

// RealPDFExtractor reads rows with the ledongthuc/pdf library and falls back
// to the pdftotext command (poppler-utils) when the library yields nothing.
type RealPDFExtractor struct {
	// PdftotextPath overrides the pdftotext binary looked up on PATH.
	PdftotextPath string
}

// NewRealPDFExtractor creates a new RealPDFExtractor instance.
func NewRealPDFExtractor() *RealPDFExtractor {
	return &RealPDFExtractor{}
}

// ExtractText implements PDFExtractor.
func (e *RealPDFExtractor) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	text, libErr := extractWithLibrary(pdfPath)
	if libErr == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	text, cmdErr := e.extractWithPdftotext(ctx, pdfPath)
	if cmdErr == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}
	if libErr != nil {
		return "", fmt.Errorf("pdf library: %v; pdftotext: %w", libErr, cmdErr)
	}
	if cmdErr != nil {
		return "", fmt.Errorf("no text in PDF; pdftotext: %w", cmdErr)
	}
	return "", nil
}

// extractWithLibrary joins each page's rows, words separated by a space.
func extractWithLibrary(pdfPath string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	f, r, err := pdf.Open(pdfPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	numPages := r.NumPage()
	if numPages == 0 {
		return "", fmt.Errorf("PDF has no pages")
	}

	var lines []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range rows {
			parts := make([]string, 0, len(row.Content))
			for _, word := range row.Content {
				parts = append(parts, word.S)
			}
			if line := strings.TrimSpace(strings.Join(parts, " ")); line != "" {
				lines = append(lines, line)
			}
		}
	}
	return strings.Join(lines, "\n"), nil
}

func (e *RealPDFExtractor) extractWithPdftotext(ctx context.Context, pdfPath string) (string, error) {
	bin := e.PdftotextPath
	if bin == "" {
		var err error
		if bin, err = exec.LookPath("pdftotext"); err != nil {
			return "", fmt.Errorf("pdftotext not available: %w", err)
		}
	}
	out, err := exec.CommandContext(ctx, bin, "-layout", pdfPath, "-").Output() // #nosec G204 -- fixed binary, path is our temp file
	if err != nil {
		return "", fmt.Errorf("error running pdftotext: %w", err)
	}
	return string(out), nil
}

// MockPDFExtractor implements PDFExtractor for testing purposes.
// It returns predefined mock data instead of actually extracting from PDF files.
type MockPDFExtractor struct {
	MockText string
	MockErr  error
	Calls    int
}

// NewMockPDFExtractor creates a new MockPDFExtractor with the given mock data.
func NewMockPDFExtractor(mockText string, mockErr error) *MockPDFExtractor {
	return &MockPDFExtractor{
		MockText: mockText,
		MockErr:  mockErr,
	}
}

// ExtractText returns the predefined mock text or error.
func (e *MockPDFExtractor) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	e.Calls++
	if e.MockErr != nil {
		return "", e.MockErr
	}
	return e.MockText, nil
}
