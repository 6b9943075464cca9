package pdfparser

import (
	"regexp"
	"strings"

	"fjacquet/sms-ledger/internal/models"
)

// rowStart matches a statement row beginning with its transaction date.
var rowStart = regexp.MustCompile(`(?i)^(?:\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4}|\d{1,2}[- ](?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*[- ]\d{2,4})\b`)

// noiseLine matches page furniture repeated between rows.
var noiseLine = regexp.MustCompile(`(?i)^(?:page\s+\d+(?:\s+of\s+\d+)?|opening\s+balance\b.*|closing\s+balance\b.*|statement\s+of\s+account\b.*|(?:txn\s+|transaction\s+|value\s+)?date\s+(?:narration|description|particulars|details)\b.*|\*+\s*end\s+of\s+statement.*)$`)

// JoinStatementRows groups statement text into one segment per dated row.
// Lines before the first dated row are headers and are dropped; undated
// lines after it continue the current row. Text without any dated row is
// returned line by line so SMS exports saved as PDF still work.
func JoinStatementRows(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = models.NormalizeWhitespace(line); line != "" {
			lines = append(lines, line)
		}
	}

	var rows []string
	var current []string
	for _, line := range lines {
		switch {
		case rowStart.MatchString(line):
			if len(current) > 0 {
				rows = append(rows, strings.Join(current, " "))
			}
			current = []string{line}
		case len(current) == 0, noiseLine.MatchString(line):
			continue
		default:
			current = append(current, line)
		}
	}
	if len(current) > 0 {
		rows = append(rows, strings.Join(current, " "))
	}

	if len(rows) == 0 {
		return lines
	}
	return rows
}
