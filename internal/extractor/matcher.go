package extractor

import (
	"fmt"
	"regexp"
	"strings"

	"fjacquet/sms-ledger/internal/currencyutils"
	"fjacquet/sms-ledger/internal/dateutils"
	"fjacquet/sms-ledger/internal/models"
)

// Matcher recognizes one phrasing family of transaction notice.
type Matcher interface {
	// Name identifies the family in logs and on the resulting transaction.
	Name() string
	// TryMatch returns a candidate when segment is in this family's format.
	// It never panics on malformed input.
	TryMatch(segment string) (models.Candidate, bool)
}

// merchantEnd terminates a merchant capture: " on", a date, "Avl Bal",
// "Ref", a full stop or semicolon, or the end of the segment.
const merchantEnd = `(?:\s+on\b|\s+dated?\b|\s+ref(?:\s*no)?\b|\s+avl\b|\s+available\b|\s+bal\b|\s+upi\b|\s+via\b|\s+not\s+you\b|\s+(?:is\s+|was\s+)?successful\b|\s+\d{1,2}[-/]\d|\s*\(|[.;,](?:\s|$)|\s*$)`

// Shared fragments used by the built-in families.
const (
	amountExpr     = `(?:rs\.?|inr|₹)\s*(?P<amount>[0-9][0-9,]*(?:\.[0-9]{1,2})?)`
	bareAmountExpr = `(?:(?:rs\.?|inr|₹)\s*)?(?P<amount>[0-9][0-9,]*(?:\.[0-9]{1,2})?)`
	accountExpr    = `(?:\ba/c\b|\bacct\b|\baccount\b|\bac\b)\.?(?:\s*no\.?)?(?:[x*\s-]*(?P<account>\d{3,}))?`
	merchantExpr   = `(?P<merchant>.+?)` + merchantEnd
	routeExpr      = `(?:neft|imps|upi|rtgs)`
)

var (
	accountPattern  = regexp.MustCompile(`(?i)(?:\ba/c\b|\bacct\b|\baccount\b|\bac\b|\bcard\b)\.?\s*(?:no\.?\s*)?(?:ending\s+(?:with\s+)?)?[x*\s-]*(\d{3,})`)
	balancePattern  = regexp.MustCompile(`(?i)(?:\bavl\.?\s*bal(?:ance)?|\bavailable\s+bal(?:ance)?|\bbal(?:ance)?)\b\s*(?:is\s*)?[:\-]?\s*(?:(?:rs\.?|inr|₹)\s*)?([0-9][0-9,]*(?:\.[0-9]{1,2})?)`)
	markerPattern   = regexp.MustCompile(`(?i)\b(?:at|to|from|towards|by)\s+`)
	captureToEnd    = regexp.MustCompile(`(?i)^(.+?)` + merchantEnd)
	notCounterparty = regexp.MustCompile(`(?i)^(?:your\b|card\b|rs\.?\s*\d|inr\s*\d|₹|[\d,.]+$)|(?:^|\s)(?:a/c|ac|acct|account)\b`)
	debitWords      = regexp.MustCompile(`(?i)\b(?:debited|paid|spent|sent|withdrawn|purchase[ds]?)\b`)
	creditWords     = regexp.MustCompile(`(?i)\b(?:credited|received|deposited|refund(?:ed)?)\b`)
)

// PatternMatcher is a Matcher backed by one regular expression with named
// groups. The amount group is required; merchant, account, date, balance and
// dir are optional. Fields the regex does not capture are recovered from the
// whole segment where a generic rule exists.
type PatternMatcher struct {
	name      string
	re        *regexp.Regexp
	direction models.Direction
	amountIdx int
}

// NewPatternMatcher compiles expr into a PatternMatcher. When direction is
// empty the dir group or the segment's direction keywords decide it.
func NewPatternMatcher(name, expr string, direction models.Direction) (*PatternMatcher, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("pattern %s: %w", name, err)
	}
	idx := re.SubexpIndex("amount")
	if idx < 0 {
		return nil, fmt.Errorf("pattern %s: missing amount group", name)
	}
	if direction != "" && !direction.Valid() {
		return nil, fmt.Errorf("pattern %s: invalid direction %q", name, direction)
	}
	return &PatternMatcher{name: name, re: re, direction: direction, amountIdx: idx}, nil
}

func mustPattern(name, expr string, direction models.Direction) *PatternMatcher {
	m, err := NewPatternMatcher(name, expr, direction)
	if err != nil {
		panic(err)
	}
	return m
}

// Name returns the family name.
func (m *PatternMatcher) Name() string {
	return m.name
}

// TryMatch implements Matcher.
func (m *PatternMatcher) TryMatch(segment string) (models.Candidate, bool) {
	loc := m.re.FindStringSubmatchIndex(segment)
	if loc == nil {
		return models.Candidate{}, false
	}
	group := func(name string) string {
		i := m.re.SubexpIndex(name)
		if i < 0 || loc[2*i] < 0 {
			return ""
		}
		return segment[loc[2*i]:loc[2*i+1]]
	}

	amount, err := currencyutils.ParseMinorUnits(strings.TrimRight(group("amount"), ","))
	if err != nil || amount <= 0 {
		return models.Candidate{}, false
	}

	direction := m.direction
	if direction == "" {
		var ok bool
		if direction, ok = directionWord(group("dir")); !ok {
			if direction, _, ok = DetectDirection(segment); !ok {
				return models.Candidate{}, false
			}
		}
	}

	amountStart, amountEnd := loc[2*m.amountIdx], loc[2*m.amountIdx+1]

	cand := models.Candidate{
		AmountMinor:  amount,
		Direction:    direction,
		Counterparty: cleanCounterparty(group("merchant")),
		RawDate:      group("date"),
		Matcher:      m.name,
		Raw:          models.RawText{Text: segment},
	}
	if cand.Counterparty == "" {
		cand.Counterparty = findCounterparty(segment, amountEnd)
	}
	if acct := group("account"); acct != "" {
		cand.AccountSuffix = models.DigitSuffix(acct, 4)
	} else {
		cand.AccountSuffix = findAccountSuffix(segment)
	}
	if cand.RawDate == "" {
		cand.RawDate = dateutils.FindDate(segment)
	}
	if bal := group("balance"); bal != "" {
		if v, err := currencyutils.ParseMinorUnits(bal); err == nil {
			cand.BalanceMinor = &v
		}
	} else {
		cand.BalanceMinor = findBalance(segment, amountStart)
	}
	return cand, true
}

// DetectDirection reports the direction implied by the segment's keywords
// and the offset of the first keyword of that kind. A segment with both
// debit and credit keywords, or neither, is ambiguous.
func DetectDirection(segment string) (models.Direction, int, bool) {
	debit := debitWords.FindStringIndex(segment)
	credit := creditWords.FindStringIndex(segment)
	switch {
	case debit != nil && credit == nil:
		return models.Debit, debit[0], true
	case credit != nil && debit == nil:
		return models.Credit, credit[0], true
	default:
		return "", -1, false
	}
}

func directionWord(word string) (models.Direction, bool) {
	w := strings.ToLower(strings.TrimSpace(word))
	switch {
	case w == "":
		return "", false
	case w == "dr" || strings.HasPrefix(w, "debit") || w == "withdrawal" || w == "sent" || w == "paid":
		return models.Debit, true
	case w == "cr" || strings.HasPrefix(w, "credit") || w == "deposit" || w == "received":
		return models.Credit, true
	}
	return "", false
}

func findAccountSuffix(segment string) string {
	m := accountPattern.FindStringSubmatch(segment)
	if m == nil {
		return ""
	}
	return models.DigitSuffix(m[1], 4)
}

// findBalance returns the first balance amount in segment that is not the
// transaction amount starting at amountStart.
func findBalance(segment string, amountStart int) *int64 {
	for _, loc := range balancePattern.FindAllStringSubmatchIndex(segment, -1) {
		if loc[2] <= amountStart && amountStart < loc[3] {
			continue
		}
		v, err := currencyutils.ParseMinorUnits(strings.TrimRight(segment[loc[2]:loc[3]], ","))
		if err != nil {
			continue
		}
		return &v
	}
	return nil
}

// balanceSpans returns the byte ranges of all balance phrases in segment.
func balanceSpans(segment string) [][]int {
	return balancePattern.FindAllStringIndex(segment, -1)
}

// findCounterparty returns the text after the first counterparty marker
// at or after offset from, falling back to markers before it.
func findCounterparty(segment string, from int) string {
	markers := markerPattern.FindAllStringIndex(segment, -1)
	try := func(after bool) string {
		for _, mk := range markers {
			if (mk[0] >= from) != after {
				continue
			}
			m := captureToEnd.FindStringSubmatch(segment[mk[1]:])
			if m == nil {
				continue
			}
			text := strings.TrimSpace(m[1])
			if notCounterparty.MatchString(text) {
				continue
			}
			if c := cleanCounterparty(text); c != "" {
				return c
			}
		}
		return ""
	}
	if c := try(true); c != "" {
		return c
	}
	return try(false)
}

func cleanCounterparty(s string) string {
	s = strings.TrimSpace(strings.ToValidUTF8(s, ""))
	s = strings.Trim(s, ".,;:-!")
	return strings.TrimSpace(s)
}
