// Package dateutils resolves the date formats used by Indian bank alerts and
// statements.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DateLayoutISO is the layout of resolved transaction dates.
const DateLayoutISO = "2006-01-02"

// TransactionFormats are tried in order by ParseTransactionDate. Day comes
// before month in every numeric layout.
var TransactionFormats = []string{
	"02-01-2006",
	"02-01-06",
	"02/01/2006",
	"02/01/06",
	"02-Jan-06",
	"02-Jan-2006",
	"02Jan06",
	"02Jan2006",
	"02 Jan 2006",
	"02 Jan 06",
	"2006-01-02",
	"02.01.2006",
	"2-1-2006",
	"2/1/2006",
	"2-Jan-2006",
	"2 Jan 2006",
}

// DatePattern finds a date token inside free text in any of the forms
// accepted by ParseTransactionDate.
var DatePattern = regexp.MustCompile(`(?i)\b(?:` +
	`\d{4}-\d{2}-\d{2}` +
	`|\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4}` +
	`|\d{1,2}[- ]?(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*[- ]?\d{2,4}` +
	`)\b`)

var spaces = regexp.MustCompile(`\s+`)

// CleanDateString trims a date token and collapses inner whitespace. Long
// month names ("January") are shortened to their three-letter form.
func CleanDateString(dateStr string) string {
	dateStr = strings.TrimSpace(dateStr)
	dateStr = strings.TrimRight(dateStr, ".,;:")
	dateStr = spaces.ReplaceAllString(dateStr, " ")
	return shortenMonth(dateStr)
}

var longMonth = regexp.MustCompile(`(?i)(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]+`)

func shortenMonth(s string) string {
	return longMonth.ReplaceAllString(s, "$1")
}

// ParseTransactionDate parses a day-first date string into a UTC midnight
// time. It returns an error when no layout matches or the result falls
// outside the plausible range.
func ParseTransactionDate(dateStr string) (time.Time, error) {
	clean := CleanDateString(dateStr)
	if clean == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range TransactionFormats {
		if t, err := time.Parse(layout, clean); err == nil {
			if t.Year() < 1990 {
				continue
			}
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
}

// FindDate returns the first date token in text, or "" when none is present.
func FindDate(text string) string {
	return DatePattern.FindString(text)
}

// ToISODate formats a time.Time value as an ISO date (YYYY-MM-DD)
func ToISODate(date time.Time) string {
	return date.Format(DateLayoutISO)
}

// Today returns now truncated to its calendar day in loc. A nil loc means UTC.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	n := now.In(loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}
