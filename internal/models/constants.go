package models

// Currency of every amount handled by the ledger.
const CurrencyINR = "INR"

// Minor units per rupee.
const PaisePerRupee = 100

// DateLayout is the ISO layout used for resolved transaction dates.
const DateLayout = "2006-01-02"

// DemoUserID is the user id assumed when a request carries no identity.
const DemoUserID = "507f1f77bcf86cd799439011"

// File permissions
const (
	PermissionConfigFile = 0600
	PermissionDirectory  = 0750
)
