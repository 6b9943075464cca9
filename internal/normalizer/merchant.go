package normalizer

import (
	"regexp"
	"strings"

	"fjacquet/sms-ledger/internal/models"
)

var (
	upiHandle      = regexp.MustCompile(`@[A-Za-z0-9.\-_]+`)
	merchantPrefix = regexp.MustCompile(`(?i)^(?:vpa|upi|info)[\s:\-]+`)
	routePrefix    = regexp.MustCompile(`(?i)^(?:neft|imps|upi|rtgs)\s+(?:from|by)\s+`)
	upiNarration   = regexp.MustCompile(`(?i)^(?:upi|imps|neft)/`)
	digitsOnly     = regexp.MustCompile(`^[0-9]+$`)
	upiRoutes      = map[string]bool{"UPI": true, "IMPS": true, "NEFT": true, "P2M": true, "P2A": true, "DR": true, "CR": true}
)

// CanonicalMerchant normalizes a counterparty for categorization and display:
// UPI handles and narration prefixes are removed, whitespace is collapsed and
// the result is upper-cased. Invalid UTF-8 bytes are dropped. An empty input
// stays empty.
func CanonicalMerchant(counterparty string) string {
	s := models.NormalizeWhitespace(strings.ToValidUTF8(counterparty, ""))
	if s == "" {
		return ""
	}
	if upiNarration.MatchString(s) {
		s = narrationName(s)
	}
	s = routePrefix.ReplaceAllString(s, "")
	s = merchantPrefix.ReplaceAllString(s, "")
	s = upiHandle.ReplaceAllString(s, "")
	s = strings.Trim(s, " .,;:-!*/")
	return strings.ToUpper(models.NormalizeWhitespace(s))
}

// narrationName picks the payee out of a statement narration such as
// "UPI/P2M/406512345678/SWIGGY/Payment".
func narrationName(s string) string {
	for _, part := range strings.Split(s, "/") {
		part = strings.TrimSpace(part)
		if part == "" || digitsOnly.MatchString(part) || upiRoutes[strings.ToUpper(part)] {
			continue
		}
		return part
	}
	return s
}
