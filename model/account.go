package model

import "fmt"

// AccountType is the normalized account-type enum derived from vendor-specific
// subtypes.
type AccountType string

const (
	AccountTypeDepository     AccountType = "depository"
	AccountTypeCredit         AccountType = "credit"
	AccountTypeLoan           AccountType = "loan"
	AccountTypeOtherAsset     AccountType = "other_asset"
	AccountTypeOtherLiability AccountType = "other_liability"
)

// Balance is the canonical balance shape. Available is the spendable portion;
// vendors that report several per-currency pots collapse to the pot matching
// the account currency.
type Balance struct {
	Amount    float64 `json:"amount"`
	Available float64 `json:"available"`
	Currency  string  `json:"currency"`
}

// Institution is the canonical financial-institution shape.
type Institution struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Logo     string   `json:"logo"`
	Provider Provider `json:"provider"`
}

// Account is the canonical bank-account shape.
type Account struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Currency     string      `json:"currency"`
	Type         AccountType `json:"type"`
	EnrollmentID *string     `json:"enrollment_id"` // only meaningful for Teller
	Balance      Balance     `json:"balance"`
	Institution  Institution `json:"institution"`
}

const logoBaseURL = "https://cdn.moni-bridge.dev/logos"

// LogoURL derives an institution logo location from its id. Purely
// deterministic, no network call involved.
func LogoURL(institutionID string) string {
	if institutionID == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s.jpg", logoBaseURL, institutionID)
}
