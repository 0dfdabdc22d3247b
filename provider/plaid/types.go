package plaid

// Vendor payload shapes for the Plaid API. Requests are JSON POSTs carrying
// the client id and secret in the body.

type requestBase struct {
	ClientID string `json:"client_id"`
	Secret   string `json:"secret"`
}

type accountsGetRequest struct {
	requestBase
	AccessToken string `json:"access_token"`
}

type transactionsGetRequest struct {
	requestBase
	AccessToken string                 `json:"access_token"`
	StartDate   string                 `json:"start_date"`
	EndDate     string                 `json:"end_date"`
	Options     transactionsGetOptions `json:"options"`
}

type transactionsGetOptions struct {
	Count      int      `json:"count"`
	Offset     int      `json:"offset"`
	AccountIDs []string `json:"account_ids,omitempty"`
}

type institutionsGetRequest struct {
	requestBase
	Count        int                    `json:"count"`
	Offset       int                    `json:"offset"`
	CountryCodes []string               `json:"country_codes"`
	Options      institutionsGetOptions `json:"options"`
}

type institutionsGetOptions struct {
	IncludeOptionalMetadata bool `json:"include_optional_metadata"`
}

type itemRemoveRequest struct {
	requestBase
	AccessToken string `json:"access_token"`
}

type statementsListRequest struct {
	requestBase
	AccessToken string `json:"access_token"`
}

type statementsDownloadRequest struct {
	requestBase
	AccessToken string `json:"access_token"`
	StatementID string `json:"statement_id"`
}

type recurringGetRequest struct {
	requestBase
	AccessToken string           `json:"access_token"`
	Options     recurringOptions `json:"options"`
}

type recurringOptions struct {
	AccountIDs []string `json:"account_ids,omitempty"`
}

// PersonalFinanceCategory is Plaid's structured category pair.
type PersonalFinanceCategory struct {
	Primary  string `json:"primary"`
	Detailed string `json:"detailed"`
}

// Transaction is a Plaid transaction. Amount is vendor-positive when money
// leaves the account.
type Transaction struct {
	TransactionID           string                   `json:"transaction_id"`
	AccountID               string                   `json:"account_id"`
	Amount                  float64                  `json:"amount"`
	ISOCurrencyCode         *string                  `json:"iso_currency_code"`
	UnofficialCurrencyCode  *string                  `json:"unofficial_currency_code"`
	Date                    string                   `json:"date"`
	Name                    string                   `json:"name"`
	MerchantName            *string                  `json:"merchant_name"`
	OriginalDescription     *string                  `json:"original_description"`
	Pending                 bool                     `json:"pending"`
	TransactionCode         *string                  `json:"transaction_code"`
	PersonalFinanceCategory *PersonalFinanceCategory `json:"personal_finance_category"`
	Location                Location                 `json:"location"`
}

type Location struct {
	City   *string `json:"city"`
	Region *string `json:"region"`
}

type Balances struct {
	Available       *float64 `json:"available"`
	Current         *float64 `json:"current"`
	ISOCurrencyCode *string  `json:"iso_currency_code"`
}

type Account struct {
	AccountID    string   `json:"account_id"`
	Name         string   `json:"name"`
	OfficialName *string  `json:"official_name"`
	Type         string   `json:"type"`
	Subtype      *string  `json:"subtype"`
	Balances     Balances `json:"balances"`
}

type Item struct {
	ItemID        string  `json:"item_id"`
	InstitutionID *string `json:"institution_id"`
}

type accountsGetResponse struct {
	Accounts []Account `json:"accounts"`
	Item     Item      `json:"item"`
}

type transactionsGetResponse struct {
	Accounts          []Account     `json:"accounts"`
	Transactions      []Transaction `json:"transactions"`
	TotalTransactions int           `json:"total_transactions"`
}

type Institution struct {
	InstitutionID string `json:"institution_id"`
	Name          string `json:"name"`
}

type institutionsGetResponse struct {
	Institutions []Institution `json:"institutions"`
	Total        int           `json:"total"`
}

type statementAccount struct {
	AccountID  string          `json:"account_id"`
	Statements []statementItem `json:"statements"`
}

type statementItem struct {
	StatementID string `json:"statement_id"`
	Month       string `json:"month"`
	Year        string `json:"year"`
}

type statementsListResponse struct {
	Accounts        []statementAccount `json:"accounts"`
	InstitutionName string             `json:"institution_name"`
	InstitutionID   string             `json:"institution_id"`
	ItemID          string             `json:"item_id"`
}

// RecurringStream is one recurring inflow or outflow stream.
type RecurringStream struct {
	AccountID               string                   `json:"account_id"`
	StreamID                string                   `json:"stream_id"`
	Frequency               string                   `json:"frequency"`
	AverageAmount           StreamAmount             `json:"average_amount"`
	LastAmount              StreamAmount             `json:"last_amount"`
	Status                  string                   `json:"status"`
	PersonalFinanceCategory *PersonalFinanceCategory `json:"personal_finance_category"`
	IsActive                bool                     `json:"is_active"`
	FirstDate               string                   `json:"first_date"`
	LastDate                string                   `json:"last_date"`
	TransactionIDs          []string                 `json:"transaction_ids"`
}

type StreamAmount struct {
	Amount          float64 `json:"amount"`
	ISOCurrencyCode *string `json:"iso_currency_code"`
}

type recurringGetResponse struct {
	InflowStreams  []RecurringStream `json:"inflow_streams"`
	OutflowStreams []RecurringStream `json:"outflow_streams"`
}

type apiError struct {
	ErrorType    string `json:"error_type"`
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}
