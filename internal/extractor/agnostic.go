package extractor

import (
	"fjacquet/sms-ledger/internal/currencyutils"
	"fjacquet/sms-ledger/internal/dateutils"
	"fjacquet/sms-ledger/internal/models"
)

// Names of the bank-agnostic families.
const (
	FamilyDebitedFrom     = "debited-from"
	FamilyUPIPayment      = "upi-payment"
	FamilyCreditedWith    = "credited-with"
	FamilySpentOnCard     = "spent-on-card"
	FamilyReceived        = "received"
	FamilyStatementRow    = "statement-row"
	FamilyKeywordFallback = "keyword-fallback"
)

// AgnosticMatchers returns the bank-agnostic families in priority order,
// without the keyword fallback.
func AgnosticMatchers() []Matcher {
	return []Matcher{
		// Rs.500.00 debited from A/C XXXX1234 at SWIGGY on 01-01-2024
		mustPattern(FamilyDebitedFrom,
			`(?i)`+amountExpr+`\s+(?:has\s+been\s+|is\s+|was\s+)?debited\s+from\s+(?:your\s+)?(?:[a-z]+\s+bank\s+)?`+accountExpr+
				`(?:\s+on\s+[0-9a-z/-]+)?(?:\s*(?:at|to|towards|for|by|info:?)\s+`+merchantExpr+`)?`,
			models.Debit),
		// UPI payment of Rs 250 to ZOMATO successful
		mustPattern(FamilyUPIPayment,
			`(?i)\bupi\s+(?:payment|txn|transaction|transfer)\s+of\s+`+amountExpr+`\s+(?:to|at)\s+`+merchantExpr,
			models.Debit),
		// Your A/c XXXX1234 credited with Rs 5,000 on 02-01-24 from RAHUL
		// Your a/c has been credited with Rs.1,000.00 by NEFT from ACME LTD
		mustPattern(FamilyCreditedWith,
			`(?i)(?:your\s+)?`+accountExpr+`\s+(?:is\s+|has\s+been\s+)?credited\s+(?:with|by|for)\s+`+amountExpr+
				`(?:.*?\b(?:by\s+`+routeExpr+`\s+)?(?:from|by)\s+`+merchantExpr+`)?`,
			models.Credit),
		// Rs 1,299 spent on card XX5678 at AMAZON on 03-01-24
		mustPattern(FamilySpentOnCard,
			`(?i)`+amountExpr+`\s+(?:was\s+|has\s+been\s+)?spent\s+(?:on|using|via|from)\s+[^.;]*?\bcard\s*(?:no\.?\s*)?(?:ending\s+(?:with\s+)?)?[x*\s]*(?P<account>\d{3,})?`+
				`[^.;]*?\bat\s+`+merchantExpr,
			models.Debit),
		// Received Rs 800 from PRIYA SHARMA
		mustPattern(FamilyReceived,
			`(?i)\breceived!?\s+`+amountExpr+`(?:\s+(?:in|into)\s+[^.;]*?)?\s+from\s+`+merchantExpr,
			models.Credit),
		statementRowMatcher(),
	}
}

// statementRowMatcher recognizes a joined statement row:
// DATE  NARRATION  AMOUNT Dr|Cr  [BALANCE [Dr|Cr]].
func statementRowMatcher() *PatternMatcher {
	return mustPattern(FamilyStatementRow,
		`(?i)^(?P<date>\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4}|\d{1,2}[- ][a-z]{3}[- ]\d{2,4})\s+`+
			`(?:\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4}\s+)?`+
			`(?P<merchant>.+?)\s+(?P<amount>[0-9][0-9,]*\.\d{2})\s*\(?(?P<dir>dr|cr)\b\)?\.?`+
			`(?:\s+(?P<balance>[0-9][0-9,]*\.\d{2})(?:\s*\(?(?:dr|cr)\)?)?)?`,
		"")
}

// keywordFallback accepts any segment with an amount and exactly one kind of
// direction keyword. The amount closest to the keyword wins; amounts inside
// a balance phrase are never the transaction amount.
type keywordFallback struct{}

// KeywordFallback returns the last-resort matcher.
func KeywordFallback() Matcher {
	return keywordFallback{}
}

func (keywordFallback) Name() string {
	return FamilyKeywordFallback
}

func (keywordFallback) TryMatch(segment string) (models.Candidate, bool) {
	direction, keywordAt, ok := DetectDirection(segment)
	if !ok {
		return models.Candidate{}, false
	}

	spans := balanceSpans(segment)
	var best *currencyutils.Amount
	bestDist := -1
	for _, a := range currencyutils.FindAmounts(segment) {
		if a.Minor <= 0 || insideAny(a.Start, spans) {
			continue
		}
		dist := keywordAt - a.End
		if a.Start >= keywordAt {
			dist = a.Start - keywordAt
		}
		if best == nil || dist < bestDist {
			a := a
			best, bestDist = &a, dist
		}
	}
	if best == nil {
		return models.Candidate{}, false
	}

	return models.Candidate{
		AmountMinor:   best.Minor,
		Direction:     direction,
		Counterparty:  findCounterparty(segment, best.End),
		RawDate:       dateutils.FindDate(segment),
		AccountSuffix: findAccountSuffix(segment),
		BalanceMinor:  findBalance(segment, best.Start),
		Matcher:       FamilyKeywordFallback,
		Raw:           models.RawText{Text: segment},
	}, true
}

func insideAny(pos int, spans [][]int) bool {
	for _, s := range spans {
		if pos >= s[0] && pos < s[1] {
			return true
		}
	}
	return false
}
