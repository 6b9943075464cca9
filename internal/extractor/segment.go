package extractor

import (
	"regexp"
	"strings"

	"fjacquet/sms-ledger/internal/currencyutils"
)

// anchorPattern marks the verb that makes a sentence a transaction notice.
var anchorPattern = regexp.MustCompile(`(?i)\b(?:debited|credited|spent|sent|received|paid|withdrawn|deposited)\b`)

// sentenceBreak is a full stop or exclamation mark followed by whitespace.
var sentenceBreak = regexp.MustCompile(`[.!]\s+`)

// Split breaks raw text into notification-sized segments. Each non-blank
// line is a segment, except that a line holding several notifications back
// to back is cut before every sentence that both carries an anchor verb and
// an amount, once the segment being built already has an anchor.
func Split(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")

	var segments []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(anchorPattern.FindAllStringIndex(line, 2)) < 2 {
			segments = append(segments, line)
			continue
		}
		segments = append(segments, splitNotifications(line)...)
	}
	return segments
}

func splitNotifications(line string) []string {
	var out []string
	var current strings.Builder
	currentAnchored := false

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			out = append(out, s)
		}
		current.Reset()
		currentAnchored = false
	}

	for _, sentence := range sentences(line) {
		anchored := anchorPattern.MatchString(sentence)
		startsNew := anchored && currentAnchored && len(currencyutils.FindAmounts(sentence)) > 0
		if startsNew {
			flush()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(sentence)
		currentAnchored = currentAnchored || anchored
	}
	flush()
	return out
}

// sentences cuts s after each sentence break. The punctuation stays with the
// sentence it ends.
func sentences(s string) []string {
	var out []string
	start := 0
	for _, loc := range sentenceBreak.FindAllStringIndex(s, -1) {
		// "Rs. 500" and "A/c no. 1234" are not sentence ends.
		if isAbbreviation(s[start:loc[0]]) {
			continue
		}
		out = append(out, strings.TrimSpace(s[start:loc[0]+1]))
		start = loc[1]
	}
	if rest := strings.TrimSpace(s[start:]); rest != "" {
		out = append(out, rest)
	}
	return out
}

var abbreviation = regexp.MustCompile(`(?i)(?:\brs|\bno|\bref|\bavl|\bbal|\bacct|\binfo)$`)

func isAbbreviation(before string) bool {
	return abbreviation.MatchString(before)
}
