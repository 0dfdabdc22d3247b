package teller

// Vendor payload shapes for the Teller API.

// Transaction is a Teller transaction as returned by the API. Amount is a
// signed decimal string; for depository accounts negative means money out,
// which is the opposite of how credit accounts report.
type Transaction struct {
	ID             string             `json:"id"`
	AccountID      string             `json:"account_id"`
	Date           string             `json:"date"`
	Amount         string             `json:"amount"`
	Description    string             `json:"description"`
	Status         string             `json:"status"`
	Type           string             `json:"type"`
	RunningBalance *string            `json:"running_balance"`
	Details        TransactionDetails `json:"details"`
}

type TransactionDetails struct {
	Category     string        `json:"category"`
	Counterparty *Counterparty `json:"counterparty"`
}

type Counterparty struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Account is a Teller account.
type Account struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Currency     string      `json:"currency"`
	EnrollmentID string      `json:"enrollment_id"`
	Type         string      `json:"type"`
	Subtype      string      `json:"subtype"`
	Status       string      `json:"status"`
	Institution  Institution `json:"institution"`
}

type Institution struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Balance is the Teller balance payload. Ledger and available arrive as
// decimal strings.
type Balance struct {
	AccountID string  `json:"account_id"`
	Ledger    string  `json:"ledger"`
	Available *string `json:"available"`
}

type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
