package stripe

// Vendor payload shapes for the Stripe API. Monetary fields arrive in minor
// units (cents).

// BalanceTransaction is one entry of the connected account's balance history.
type BalanceTransaction struct {
	ID                string `json:"id"`
	Amount            int64  `json:"amount"`
	Currency          string `json:"currency"`
	Created           int64  `json:"created"`
	Description       string `json:"description"`
	Fee               int64  `json:"fee"`
	Net               int64  `json:"net"`
	ReportingCategory string `json:"reporting_category"`
	Status            string `json:"status"`
	Type              string `json:"type"`
}

type balanceTransactionList struct {
	Data    []BalanceTransaction `json:"data"`
	HasMore bool                 `json:"has_more"`
}

type balanceAmount struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type balanceResponse struct {
	Available []balanceAmount `json:"available"`
	Pending   []balanceAmount `json:"pending"`
}

type accountResponse struct {
	ID              string `json:"id"`
	DefaultCurrency string `json:"default_currency"`
	BusinessProfile struct {
		Name string `json:"name"`
	} `json:"business_profile"`
	Email string `json:"email"`
}

type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
