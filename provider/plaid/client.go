// Package plaid adapts the Plaid North-American aggregation API to the
// uniform provider contract. It is the only vendor with statement and
// recurring-transaction support.
package plaid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/criswit/moni-bridge/category"
	"github.com/criswit/moni-bridge/model"
	"github.com/criswit/moni-bridge/provider"
)

const transactionsPageSize = 500

const transactionsLookbackDays = 90

// Config carries the Plaid credentials and environment.
type Config struct {
	ClientID    string
	Secret      string
	Environment string // production, development or sandbox
}

// Client is the Plaid vendor adapter.
type Client struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client
	categories *category.Engine
}

// NewClient creates a Plaid adapter.
func NewClient(cfg Config) (*Client, error) {
	engine, err := category.NewEngine()
	if err != nil {
		return nil, fmt.Errorf("failed to load category rules: %w", err)
	}
	env := cfg.Environment
	if env == "" {
		env = "production"
	}
	return &Client{
		cfg:        cfg,
		baseURL:    fmt.Sprintf("https://%s.plaid.com", env),
		httpClient: &http.Client{},
		categories: engine,
	}, nil
}

func (c *Client) base() requestBase {
	return requestBase{ClientID: c.cfg.ClientID, Secret: c.cfg.Secret}
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return provider.NewTransientError(model.ProviderPlaid, "NETWORK_ERROR", err.Error())
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return provider.NewTransientError(model.ProviderPlaid, "READ_ERROR", err.Error())
	}
	if resp.StatusCode >= 400 {
		return vendorError(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode plaid response: %w", err)
	}
	return nil
}

func vendorError(status int, body []byte) error {
	var ae apiError
	_ = json.Unmarshal(body, &ae)
	code := ae.ErrorCode
	if code == "" {
		code = http.StatusText(status)
	}
	message := ae.ErrorMessage
	if message == "" {
		message = string(body)
	}
	if status >= 500 || status == http.StatusTooManyRequests {
		return provider.NewTransientError(model.ProviderPlaid, code, message)
	}
	return provider.NewBusinessError(model.ProviderPlaid, code, message)
}

// GetTransactions lists transactions for one account with bounded offset
// pagination. Latest requests only the first page.
func (c *Client) GetTransactions(ctx context.Context, params provider.TransactionsParams) ([]model.Transaction, error) {
	if params.AccessToken == "" {
		return nil, &provider.MissingParamError{Param: "accessToken"}
	}
	if params.AccountID == "" {
		return nil, &provider.MissingParamError{Param: "accountId"}
	}

	endDate := time.Now().UTC()
	startDate := endDate.AddDate(0, 0, -transactionsLookbackDays)

	var all []Transaction
	offset := 0
	for call := 0; call < provider.MaxPageCalls; call++ {
		req := transactionsGetRequest{
			requestBase: c.base(),
			AccessToken: params.AccessToken,
			StartDate:   startDate.Format("2006-01-02"),
			EndDate:     endDate.Format("2006-01-02"),
			Options: transactionsGetOptions{
				Count:      transactionsPageSize,
				Offset:     offset,
				AccountIDs: []string{params.AccountID},
			},
		}
		var resp transactionsGetResponse
		if err := c.post(ctx, "/transactions/get", req, &resp); err != nil {
			return nil, err
		}
		all = append(all, resp.Transactions...)
		offset += len(resp.Transactions)
		if params.Latest || offset >= resp.TotalTransactions || len(resp.Transactions) == 0 {
			break
		}
	}

	transactions := make([]model.Transaction, 0, len(all))
	for _, t := range all {
		if t.AccountID != params.AccountID {
			continue
		}
		if !params.Latest && t.Pending {
			continue
		}
		transactions = append(transactions, transformTransaction(t, c.categories))
	}
	return transactions, nil
}

// GetAccounts lists the accounts behind the access token.
func (c *Client) GetAccounts(ctx context.Context, params provider.AccountsParams) ([]model.Account, error) {
	if params.AccessToken == "" {
		return nil, &provider.MissingParamError{Param: "accessToken"}
	}
	var resp accountsGetResponse
	req := accountsGetRequest{requestBase: c.base(), AccessToken: params.AccessToken}
	if err := c.post(ctx, "/accounts/get", req, &resp); err != nil {
		return nil, err
	}
	institutionID := params.InstitutionID
	if institutionID == "" && resp.Item.InstitutionID != nil {
		institutionID = *resp.Item.InstitutionID
	}
	accounts := make([]model.Account, 0, len(resp.Accounts))
	for _, a := range resp.Accounts {
		accounts = append(accounts, transformAccount(a, institutionID))
	}
	return accounts, nil
}

// GetAccountBalance fetches the balance of one account.
func (c *Client) GetAccountBalance(ctx context.Context, params provider.BalanceParams) (*model.Balance, error) {
	if params.AccessToken == "" {
		return nil, &provider.MissingParamError{Param: "accessToken"}
	}
	if params.AccountID == "" {
		return nil, &provider.MissingParamError{Param: "accountId"}
	}
	var resp accountsGetResponse
	req := accountsGetRequest{requestBase: c.base(), AccessToken: params.AccessToken}
	if err := c.post(ctx, "/accounts/balance/get", req, &resp); err != nil {
		return nil, err
	}
	for _, a := range resp.Accounts {
		if a.AccountID == params.AccountID {
			b := transformBalance(a.Balances)
			return &b, nil
		}
	}
	return nil, provider.NewBusinessError(model.ProviderPlaid, "ACCOUNT_NOT_FOUND", fmt.Sprintf("account %s not found", params.AccountID))
}

// GetInstitutions lists institutions for a country, first page only.
func (c *Client) GetInstitutions(ctx context.Context, params provider.InstitutionsParams) ([]model.Institution, error) {
	country := params.CountryCode
	if country == "" {
		country = "US"
	}
	req := institutionsGetRequest{
		requestBase:  c.base(),
		Count:        500,
		Offset:       0,
		CountryCodes: []string{country},
		Options:      institutionsGetOptions{IncludeOptionalMetadata: true},
	}
	var resp institutionsGetResponse
	if err := c.post(ctx, "/institutions/get", req, &resp); err != nil {
		return nil, err
	}
	institutions := make([]model.Institution, 0, len(resp.Institutions))
	for _, inst := range resp.Institutions {
		institutions = append(institutions, transformInstitution(inst))
	}
	return institutions, nil
}

// DeleteAccounts removes the item behind the access token.
func (c *Client) DeleteAccounts(ctx context.Context, params provider.DeleteParams) error {
	if params.AccessToken == "" {
		return &provider.MissingParamError{Param: "accessToken"}
	}
	req := itemRemoveRequest{requestBase: c.base(), AccessToken: params.AccessToken}
	return c.post(ctx, "/item/remove", req, nil)
}

// GetStatements lists the downloadable statements for one account.
func (c *Client) GetStatements(ctx context.Context, params provider.StatementsParams) (*model.StatementsResult, error) {
	if params.AccessToken == "" {
		return nil, &provider.MissingParamError{Param: "accessToken"}
	}
	if params.AccountID == "" {
		return nil, &provider.MissingParamError{Param: "accountId"}
	}
	req := statementsListRequest{requestBase: c.base(), AccessToken: params.AccessToken}
	var resp statementsListResponse
	if err := c.post(ctx, "/statements/list", req, &resp); err != nil {
		return nil, err
	}
	return transformStatements(resp, params.AccountID), nil
}

// GetStatementPdf downloads one statement document.
func (c *Client) GetStatementPdf(ctx context.Context, params provider.StatementPdfParams) (*model.StatementPdf, error) {
	if params.AccessToken == "" {
		return nil, &provider.MissingParamError{Param: "accessToken"}
	}
	if params.StatementID == "" {
		return nil, &provider.MissingParamError{Param: "statementId"}
	}
	body := statementsDownloadRequest{
		requestBase: c.base(),
		AccessToken: params.AccessToken,
		StatementID: params.StatementID,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/statements/download", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, provider.NewTransientError(model.ProviderPlaid, "NETWORK_ERROR", err.Error())
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, provider.NewTransientError(model.ProviderPlaid, "READ_ERROR", err.Error())
	}
	if resp.StatusCode >= 400 {
		return nil, vendorError(resp.StatusCode, raw)
	}
	filename := params.StatementID + ".pdf"
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, mediaParams, err := mime.ParseMediaType(cd); err == nil {
			if fn := mediaParams["filename"]; fn != "" {
				filename = fn
			}
		}
	}
	return &model.StatementPdf{Data: raw, Filename: filename}, nil
}

// GetRecurringTransactions fetches normalized recurring streams.
func (c *Client) GetRecurringTransactions(ctx context.Context, params provider.RecurringParams) (*model.RecurringResult, error) {
	if params.AccessToken == "" {
		return nil, &provider.MissingParamError{Param: "accessToken"}
	}
	if params.AccountID == "" {
		return nil, &provider.MissingParamError{Param: "accountId"}
	}
	req := recurringGetRequest{
		requestBase: c.base(),
		AccessToken: params.AccessToken,
		Options:     recurringOptions{AccountIDs: []string{params.AccountID}},
	}
	var resp recurringGetResponse
	if err := c.post(ctx, "/transactions/recurring/get", req, &resp); err != nil {
		return nil, err
	}
	return transformRecurring(resp), nil
}

// HealthCheck probes the institutions endpoint with a minimal request.
func (c *Client) HealthCheck(ctx context.Context) bool {
	req := institutionsGetRequest{
		requestBase:  c.base(),
		Count:        1,
		CountryCodes: []string{"US"},
	}
	var resp institutionsGetResponse
	return c.post(ctx, "/institutions/get", req, &resp) == nil
}
