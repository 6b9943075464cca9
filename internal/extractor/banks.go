package extractor

import "fjacquet/sms-ledger/internal/models"

// BankMatchers returns the built-in bank-specific families. Banks without an
// entry (PNB, BOB, Other) rely on the agnostic set.
func BankMatchers() map[models.Bank][]Matcher {
	return map[models.Bank][]Matcher{
		models.BankHDFC: {
			// Sent Rs.500.00 From HDFC Bank A/C *1234 To SWIGGY On 01/01/24 Ref 400123456789
			mustPattern("hdfc-upi-sent",
				`(?i)\bsent\s+`+amountExpr+`\s+from\s+hdfc\s+bank\s+a/?c\s*[x*]*(?P<account>\d{3,})\s+to\s+(?P<merchant>.+?)\s+on\s+(?P<date>\d{1,2}/\d{1,2}/\d{2,4})`,
				models.Debit),
			// Update! INR 1,500.00 debited from HDFC Bank XX1234 on 05-MAR-24. Info: UPI-SWIGGY. Avl bal:INR 10,000.00
			mustPattern("hdfc-update-debit",
				`(?i)\bupdate!?\s+`+amountExpr+`\s+debited\s+from\s+hdfc\s+bank\s+(?:a/c\s*)?[x*]*(?P<account>\d{3,})\s+on\s+(?P<date>\d{1,2}-[a-z]{3}-\d{2,4})`+
					`(?:.*?\b(?:info:?|to)\s*`+merchantExpr+`)?`,
				models.Debit),
			// Rs. 2000.00 credited to a/c XXXXXX1234 on 05-03-24 by a/c linked to VPA abc@okaxis (UPI Ref No 406512345678)
			mustPattern("hdfc-upi-credit",
				`(?i)`+amountExpr+`\s+credited\s+to\s+a/c\s*[x*]*(?P<account>\d{3,})\s+on\s+(?P<date>\d{1,2}-\d{1,2}-\d{2,4})\s+by\s+(?:a/c\s+linked\s+to\s+)?`+merchantExpr,
				models.Credit),
		},
		models.BankSBI: {
			// Dear UPI user A/C X1234 debited by 500.0 on date 12Feb24 trf to SWIGGY Refno 400012345678
			// Your A/C XXXXX1234 Debited INR 500.00 on 12Feb24 -Trf to SWIGGY. Avl Balance INR 25,000.00
			mustPattern("sbi-upi",
				`(?i)\ba/c\s+[x*]*(?P<account>\d{3,})\s+(?:has\s+been\s+)?(?P<dir>debited|credited)\s+(?:by\s+|with\s+|for\s+)?`+bareAmountExpr+
					`\s+on\s+(?:date\s+)?(?P<date>\d{1,2}[a-z]{3}\d{2,4})(?:.*?\btrf\s+(?:to|from)\s+`+merchantExpr+`)?`,
				""),
		},
		models.BankICICI: {
			// ICICI Bank Acct XX123 debited for Rs 500.00 on 05-Mar-24; SWIGGY credited. UPI:406512345678
			mustPattern("icici-acct",
				`(?i)\bicici\s+bank\s+acc?t\s+[x*]*(?P<account>\d{3,})\s+(?P<dir>debited|credited)\s+(?:for|with)\s+`+amountExpr+
					`\s+on\s+(?P<date>\d{1,2}-[a-z]{3}-\d{2,4})(?:\s*(?:;|and)\s*(?P<merchant>.+?)\s+(?:credited|debited)\b)?`,
				""),
		},
		models.BankAxis: {
			// INR 500.00 debited A/c no. XX1234 05-03-24, 10:15:22 UPI/P2M/406512345678/SWIGGY Not you? SMS BLOCK ...
			mustPattern("axis-upi",
				`(?i)`+amountExpr+`\s+(?P<dir>debited|credited)\s+a/c\s+no\.?\s*[x*]*(?P<account>\d{3,})\s+(?P<date>\d{1,2}-\d{1,2}-\d{2,4})`+
					`(?:.*?\bupi/p2[am]/\d+/(?P<merchant>[^/]+?)(?:/|\s+not\s+you\b|\s*$))?`,
				""),
		},
		models.BankKotak: {
			// Sent Rs.500.00 from Kotak Bank AC X1234 to swiggy@icici on 05-03-24.UPI Ref 406512345678
			mustPattern("kotak-upi-sent",
				`(?i)\bsent\s+`+amountExpr+`\s+from\s+kotak\s+bank\s+a/?c\s*[x*]*(?P<account>\d{3,})\s+to\s+(?P<merchant>\S+?)\s+on\s+(?P<date>\d{1,2}-\d{1,2}-\d{2,4})`,
				models.Debit),
		},
	}
}
