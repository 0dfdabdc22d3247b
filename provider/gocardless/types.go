package gocardless

// Vendor payload shapes for the GoCardless bank account data API.

type tokenRequest struct {
	SecretID  string `json:"secret_id"`
	SecretKey string `json:"secret_key"`
}

type tokenResponse struct {
	Access        string `json:"access"`
	AccessExpires int    `json:"access_expires"`
}

// TransactionAmount is GoCardless's amount pair. Amount is a signed decimal
// string; negative already means money out.
type TransactionAmount struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// Transaction is one booked or pending GoCardless transaction.
type Transaction struct {
	TransactionID                     string             `json:"transactionId"`
	InternalTransactionID             string             `json:"internalTransactionId"`
	BookingDate                       string             `json:"bookingDate"`
	ValueDate                         string             `json:"valueDate"`
	TransactionAmount                 TransactionAmount  `json:"transactionAmount"`
	RemittanceInformationUnstructured string             `json:"remittanceInformationUnstructured"`
	CreditorName                      string             `json:"creditorName"`
	DebtorName                        string             `json:"debtorName"`
	ProprietaryBankTransactionCode    string             `json:"proprietaryBankTransactionCode"`
	BalanceAfterTransaction           *transactionChange `json:"balanceAfterTransaction"`
}

type transactionChange struct {
	BalanceAmount TransactionAmount `json:"balanceAmount"`
}

type transactionsResponse struct {
	Transactions struct {
		Booked  []Transaction `json:"booked"`
		Pending []Transaction `json:"pending"`
	} `json:"transactions"`
}

// AccountDetails is the /details/ payload.
type AccountDetails struct {
	Account struct {
		ResourceID string `json:"resourceId"`
		IBAN       string `json:"iban"`
		Currency   string `json:"currency"`
		Name       string `json:"name"`
		OwnerName  string `json:"ownerName"`
	} `json:"account"`
}

type accountMetadata struct {
	ID            string `json:"id"`
	InstitutionID string `json:"institution_id"`
}

// BalanceEntry is one entry of the /balances/ payload.
type BalanceEntry struct {
	BalanceAmount TransactionAmount `json:"balanceAmount"`
	BalanceType   string            `json:"balanceType"`
}

type balancesResponse struct {
	Balances []BalanceEntry `json:"balances"`
}

// Institution is a GoCardless institution.
type Institution struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	BIC  string `json:"bic"`
	Logo string `json:"logo"`
}

type requisitionResponse struct {
	ID       string   `json:"id"`
	Accounts []string `json:"accounts"`
}

type apiError struct {
	Summary    string `json:"summary"`
	Detail     string `json:"detail"`
	StatusCode int    `json:"status_code"`
}
