package extractor

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/sms-ledger/internal/config"
	"fjacquet/sms-ledger/internal/logging"
	"fjacquet/sms-ledger/internal/models"
)

func int64Ptr(v int64) *int64 { return &v }

func extractOne(t *testing.T, bank models.Bank, text string) models.Candidate {
	t.Helper()
	res, err := New(nil, 2, logging.NewMockLogger()).Extract(context.Background(), text, bank)
	require.NoError(t, err)
	require.Len(t, res.Candidates, 1, "unparsed: %v", res.Unparsed)
	return res.Candidates[0]
}

func TestExtract_ReferenceExample(t *testing.T) {
	text := "Rs.500.00 debited from A/C XXXX1234 at SWIGGY on 01-01-2024. Avl Bal Rs.25,000.00"
	cand := extractOne(t, models.BankOther, text)

	assert.Equal(t, int64(50000), cand.AmountMinor)
	assert.Equal(t, models.Debit, cand.Direction)
	assert.Equal(t, "SWIGGY", cand.Counterparty)
	assert.Equal(t, "1234", cand.AccountSuffix)
	assert.Equal(t, "01-01-2024", cand.RawDate)
	assert.Equal(t, int64Ptr(2500000), cand.BalanceMinor)
	assert.Equal(t, FamilyDebitedFrom, cand.Matcher)
	assert.Equal(t, text, cand.Raw.Text)
	assert.Equal(t, models.BankOther, cand.Raw.Bank)
}

func TestExtract_OneValidOneGarbled(t *testing.T) {
	raw := "Rs.500.00 debited from A/C XXXX1234 at SWIGGY on 01-01-2024\n##garbled %% text 12"
	res, err := New(nil, 0, nil).Extract(context.Background(), raw, models.BankHDFC)
	require.NoError(t, err)
	assert.Len(t, res.Candidates, 1)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, []string{"##garbled %% text 12"}, res.Unparsed)
}

func TestExtract_AgnosticFamilies(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		amount       int64
		direction    models.Direction
		counterparty string
		suffix       string
		date         string
		matcher      string
	}{
		{
			name: "debited from with amount varieties", text: "INR 1,23,456.50 debited from your A/c no. XX9876 towards LIC PREMIUM on 10/02/2024",
			amount: 12345650, direction: models.Debit, counterparty: "LIC PREMIUM", suffix: "9876", date: "10/02/2024", matcher: FamilyDebitedFrom,
		},
		{
			name: "upi payment", text: "UPI payment of Rs 250 to ZOMATO successful. Ref 12345",
			amount: 25000, direction: models.Debit, counterparty: "ZOMATO", matcher: FamilyUPIPayment,
		},
		{
			name: "credited with", text: "Your A/c XXXX1234 credited with Rs 5,000.00 on 02-01-2024 from RAHUL SHARMA",
			amount: 500000, direction: models.Credit, counterparty: "RAHUL SHARMA", suffix: "1234", date: "02-01-2024", matcher: FamilyCreditedWith,
		},
		{
			name: "credited by route from payer", text: "Your a/c has been credited with Rs.1,000.00 by NEFT from ACME LTD",
			amount: 100000, direction: models.Credit, counterparty: "ACME LTD", matcher: FamilyCreditedWith,
		},
		{
			name: "credited without account digits", text: "Your A/c credited with ₹750",
			amount: 75000, direction: models.Credit, matcher: FamilyCreditedWith,
		},
		{
			name: "spent on card", text: "Rs 1,299 spent on card XX5678 at AMAZON on 03-01-24",
			amount: 129900, direction: models.Debit, counterparty: "AMAZON", suffix: "5678", date: "03-01-24", matcher: FamilySpentOnCard,
		},
		{
			name: "received", text: "Received Rs 800 from PRIYA SHARMA",
			amount: 80000, direction: models.Credit, counterparty: "PRIYA SHARMA", matcher: FamilyReceived,
		},
		{
			name: "keyword fallback", text: "Paid Rs 150 to CHAI POINT on 05/01/2024",
			amount: 15000, direction: models.Debit, counterparty: "CHAI POINT", date: "05/01/2024", matcher: FamilyKeywordFallback,
		},
		{
			name: "statement row", text: "01/01/2024 UPI/SWIGGY/12345 500.00 Dr 25,000.00 Cr",
			amount: 50000, direction: models.Debit, counterparty: "UPI/SWIGGY/12345", date: "01/01/2024", matcher: FamilyStatementRow,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cand := extractOne(t, models.BankOther, tt.text)
			assert.Equal(t, tt.amount, cand.AmountMinor)
			assert.Equal(t, tt.direction, cand.Direction)
			assert.Equal(t, tt.counterparty, cand.Counterparty)
			assert.Equal(t, tt.suffix, cand.AccountSuffix)
			assert.Equal(t, tt.date, cand.RawDate)
			assert.Equal(t, tt.matcher, cand.Matcher)
		})
	}
}

func TestExtract_BankFamilies(t *testing.T) {
	tests := []struct {
		bank         models.Bank
		text         string
		direction    models.Direction
		amount       int64
		counterparty string
		suffix       string
		date         string
		matcher      string
	}{
		{
			bank: models.BankHDFC, text: "Sent Rs.500.00 From HDFC Bank A/C *1234 To SWIGGY On 01/01/24 Ref 400123456789",
			direction: models.Debit, amount: 50000, counterparty: "SWIGGY", suffix: "1234", date: "01/01/24", matcher: "hdfc-upi-sent",
		},
		{
			bank: models.BankHDFC, text: "Update! INR 1,500.00 debited from HDFC Bank XX1234 on 05-MAR-24. Info: UPI-SWIGGY. Avl bal:INR 10,000.00",
			direction: models.Debit, amount: 150000, counterparty: "UPI-SWIGGY", suffix: "1234", date: "05-MAR-24", matcher: "hdfc-update-debit",
		},
		{
			bank: models.BankSBI, text: "Dear UPI user A/C X1234 debited by 500.0 on date 12Feb24 trf to SWIGGY Refno 400012345678. If not u? call 1800111109. -SBI",
			direction: models.Debit, amount: 50000, counterparty: "SWIGGY", suffix: "1234", date: "12Feb24", matcher: "sbi-upi",
		},
		{
			bank: models.BankICICI, text: "ICICI Bank Acct XX123 debited for Rs 500.00 on 05-Mar-24; SWIGGY credited. UPI:406512345678. Call 18002662 for dispute.",
			direction: models.Debit, amount: 50000, counterparty: "SWIGGY", suffix: "123", date: "05-Mar-24", matcher: "icici-acct",
		},
		{
			bank: models.BankAxis, text: "INR 500.00 debited A/c no. XX1234 05-03-24, 10:15:22 UPI/P2M/406512345678/SWIGGY Not you? SMS BLOCK 919951860002 Axis Bank",
			direction: models.Debit, amount: 50000, counterparty: "SWIGGY", suffix: "1234", date: "05-03-24", matcher: "axis-upi",
		},
		{
			bank: models.BankKotak, text: "Sent Rs.500.00 from Kotak Bank AC X1234 to swiggy@icici on 05-03-24.UPI Ref 406512345678.",
			direction: models.Debit, amount: 50000, counterparty: "swiggy@icici", suffix: "1234", date: "05-03-24", matcher: "kotak-upi-sent",
		},
	}
	for _, tt := range tests {
		t.Run(tt.matcher, func(t *testing.T) {
			cand := extractOne(t, tt.bank, tt.text)
			assert.Equal(t, tt.direction, cand.Direction)
			assert.Equal(t, tt.amount, cand.AmountMinor)
			assert.Equal(t, tt.counterparty, cand.Counterparty)
			assert.Equal(t, tt.suffix, cand.AccountSuffix)
			assert.Equal(t, tt.date, cand.RawDate)
			assert.Equal(t, tt.matcher, cand.Matcher)
		})
	}
}

func TestExtract_WrongHintStillMatches(t *testing.T) {
	cand := extractOne(t, models.BankSBI, "Sent Rs.500.00 From HDFC Bank A/C *1234 To SWIGGY On 01/01/24 Ref 400123456789")
	assert.Equal(t, "hdfc-upi-sent", cand.Matcher)
	assert.Equal(t, "SWIGGY", cand.Counterparty)

	cand = extractOne(t, models.BankOther, "Sent Rs.500.00 From HDFC Bank A/C *1234 To SWIGGY On 01/01/24 Ref 400123456789")
	assert.Equal(t, FamilyKeywordFallback, cand.Matcher)
	assert.Equal(t, "SWIGGY", cand.Counterparty)
}

func TestExtract_BalanceNeverTheAmount(t *testing.T) {
	cand := extractOne(t, models.BankOther, "Avl Bal Rs 10,000.00 after Rs 250.00 spent at CAFE")
	assert.Equal(t, int64(25000), cand.AmountMinor)
	assert.Equal(t, int64Ptr(1000000), cand.BalanceMinor)
	assert.Equal(t, "CAFE", cand.Counterparty)
}

func TestExtract_CounterpartySkipsAccountPhrases(t *testing.T) {
	cand := extractOne(t, models.BankOther, "Rs. 2000.00 credited to a/c XXXXXX1234 on 05-03-24 by a/c linked to VPA abc@okaxis (UPI Ref No 406512345678)")
	assert.Equal(t, models.Credit, cand.Direction)
	assert.Equal(t, "VPA abc@okaxis", cand.Counterparty)
	assert.Equal(t, "1234", cand.AccountSuffix)
}

func TestExtract_CounterpartyDropsInvalidUTF8(t *testing.T) {
	for _, text := range []string{
		"\xff\xfe Rs 10 debited at \xff",
		"Rs 10 debited at SWI\xffGGY on 01-01-24",
	} {
		cand := extractOne(t, models.BankOther, text)
		assert.Equal(t, int64(1000), cand.AmountMinor)
		assert.True(t, utf8.ValidString(cand.Counterparty), "%q", cand.Counterparty)
	}
}

func TestExtract_Skips(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"no amount", "Your account was debited"},
		{"both directions", "Rs 500 debited and Rs 500 credited back"},
		{"no direction", "Rs 500 is your bill amount"},
		{"zero amount", "Rs 0.00 debited from A/C XX1234 at TEST"},
		{"amount beyond int64 paise", "Rs 99999999999999999999 debited at X"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := New(nil, 1, nil).Extract(context.Background(), tt.text, models.BankOther)
			require.NoError(t, err)
			assert.Empty(t, res.Candidates)
			assert.Equal(t, 1, res.Skipped)
		})
	}
}

func TestExtract_MultipleNoticesOnOneLine(t *testing.T) {
	raw := "Rs.500 debited from A/c XX1234 at SWIGGY on 01-01-24. Rs.200 credited to A/c XX1234 on 02-01-24 from RAHUL."
	res, err := New(nil, 4, nil).Extract(context.Background(), raw, models.BankOther)
	require.NoError(t, err)
	require.Len(t, res.Candidates, 2)
	assert.Equal(t, models.Debit, res.Candidates[0].Direction)
	assert.Equal(t, "SWIGGY", res.Candidates[0].Counterparty)
	assert.Equal(t, models.Credit, res.Candidates[1].Direction)
	assert.Equal(t, "RAHUL", res.Candidates[1].Counterparty)
}

func TestExtract_PreservesOrder(t *testing.T) {
	var lines []string
	for i := 1; i <= 40; i++ {
		lines = append(lines, fmt.Sprintf("Paid Rs %d to SHOP%d", i, i))
		if i%10 == 0 {
			lines = append(lines, "garbage line")
		}
	}
	res, err := New(nil, 3, nil).Extract(context.Background(), strings.Join(lines, "\n"), models.BankOther)
	require.NoError(t, err)
	require.Len(t, res.Candidates, 40)
	for i, c := range res.Candidates {
		assert.Equal(t, int64((i+1)*100), c.AmountMinor)
		assert.Equal(t, fmt.Sprintf("SHOP%d", i+1), c.Counterparty)
	}
	assert.Equal(t, 4, res.Skipped)
	assert.Equal(t, 44, res.Total)
}

func TestExtract_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(nil, 1, nil).Extract(ctx, "Paid Rs 1 to A\nPaid Rs 2 to B", models.BankOther)
	assert.ErrorIs(t, err, context.Canceled)
}

type panickyMatcher struct{}

func (panickyMatcher) Name() string { return "panicky" }
func (panickyMatcher) TryMatch(string) (models.Candidate, bool) {
	panic("boom")
}

func TestExtract_PanickingMatcherIsContained(t *testing.T) {
	registry := DefaultRegistry()
	registry.Register(models.BankPNB, panickyMatcher{})
	res, err := New(registry, 1, nil).Extract(context.Background(), "Paid Rs 10 to X", models.BankPNB)
	require.NoError(t, err)
	assert.Empty(t, res.Candidates)
	assert.Equal(t, 1, res.Skipped)
}

func TestRegistry_Chain(t *testing.T) {
	r := DefaultRegistry()

	names := func(ms []Matcher) []string {
		out := make([]string, len(ms))
		for i, m := range ms {
			out[i] = m.Name()
		}
		return out
	}

	other := names(r.Chain(models.BankOther))
	assert.Equal(t, FamilyDebitedFrom, other[0])
	assert.Equal(t, FamilyKeywordFallback, other[len(other)-1])
	assert.NotContains(t, other, "hdfc-upi-sent")

	sbi := names(r.Chain(models.BankSBI))
	assert.Equal(t, "sbi-upi", sbi[0])
	assert.Contains(t, sbi, "hdfc-upi-sent")
	assert.Equal(t, FamilyKeywordFallback, sbi[len(sbi)-1])
	assert.Less(t, indexOf(sbi, "hdfc-upi-sent"), indexOf(sbi, FamilyDebitedFrom))
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

func TestRegisterPatterns(t *testing.T) {
	r := DefaultRegistry()
	err := r.RegisterPatterns([]config.PatternConfig{{
		Name:      "yes-bank-spent",
		Bank:      "Other",
		Direction: "debit",
		Regex:     `(?i)INR (?P<amount>[0-9,.]+) spent at (?P<merchant>[A-Z ]+?) on`,
	}})
	require.NoError(t, err)

	res, err := New(r, 1, nil).Extract(context.Background(), "INR 1,200.00 spent at DMART on 10-01-24", models.BankOther)
	require.NoError(t, err)
	require.Len(t, res.Candidates, 1)
	assert.Equal(t, "yes-bank-spent", res.Candidates[0].Matcher)
	assert.Equal(t, "DMART", res.Candidates[0].Counterparty)
	assert.Equal(t, "10-01-24", res.Candidates[0].RawDate)

	assert.Error(t, r.RegisterPatterns([]config.PatternConfig{{Name: "bad", Regex: `(?P<merchant>x)`}}))
	assert.Error(t, r.RegisterPatterns([]config.PatternConfig{{Name: "bad", Regex: `(`}}))
}

func TestDetectDirection(t *testing.T) {
	dir, pos, ok := DetectDirection("Rs 10 was Debited")
	assert.True(t, ok)
	assert.Equal(t, models.Debit, dir)
	assert.Equal(t, 10, pos)

	dir, _, ok = DetectDirection("refund of Rs 10")
	assert.True(t, ok)
	assert.Equal(t, models.Credit, dir)

	_, _, ok = DetectDirection("paid and received")
	assert.False(t, ok)
}
