package models

import "strings"

// Bank identifies the issuing bank of an SMS or statement.
type Bank string

const (
	BankHDFC  Bank = "HDFC"
	BankSBI   Bank = "SBI"
	BankICICI Bank = "ICICI"
	BankAxis  Bank = "Axis"
	BankKotak Bank = "Kotak"
	BankPNB   Bank = "PNB"
	BankBOB   Bank = "BOB"
	BankOther Bank = "Other"
)

// Banks lists every known bank in display order.
var Banks = []Bank{BankHDFC, BankSBI, BankICICI, BankAxis, BankKotak, BankPNB, BankBOB, BankOther}

// ParseBank maps a user-supplied bank name to a Bank. Matching is
// case-insensitive and tolerates a trailing " Bank"; anything unknown is Other.
func ParseBank(name string) Bank {
	key := strings.ToUpper(strings.TrimSpace(name))
	key = strings.TrimSuffix(key, " BANK")
	key = strings.TrimSpace(key)
	switch key {
	case "BANK OF BARODA":
		return BankBOB
	case "STATE BANK OF INDIA":
		return BankSBI
	case "PUNJAB NATIONAL":
		return BankPNB
	case "KOTAK MAHINDRA":
		return BankKotak
	}
	for _, b := range Banks {
		if strings.ToUpper(string(b)) == key {
			return b
		}
	}
	return BankOther
}

func (b Bank) String() string {
	return string(b)
}
