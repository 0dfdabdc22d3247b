// Package teller adapts the Teller direct-bank API to the uniform provider
// contract. Auth is HTTP basic with the per-enrollment access token as
// username; transactions paginate with a from_id cursor.
package teller

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/criswit/moni-bridge/category"
	"github.com/criswit/moni-bridge/model"
	"github.com/criswit/moni-bridge/provider"
)

const defaultBaseURL = "https://api.teller.io"

const transactionsPageSize = 100

// Client is the Teller vendor adapter.
type Client struct {
	baseURL    string
	httpClient *http.Client
	categories *category.Engine
}

// NewClient creates a Teller adapter.
func NewClient() (*Client, error) {
	engine, err := category.NewEngine()
	if err != nil {
		return nil, fmt.Errorf("failed to load category rules: %w", err)
	}
	return &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{},
		categories: engine,
	}, nil
}

// authClient returns an http.Client whose transport places the access token
// as basic auth on every request.
func (c *Client) authClient(accessToken string) *http.Client {
	return &http.Client{
		Transport: &TellerRoundTripper{accessToken: accessToken, Base: c.httpClient.Transport},
		Timeout:   c.httpClient.Timeout,
	}
}

func (c *Client) get(ctx context.Context, accessToken, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := c.authClient(accessToken).Do(req)
	if err != nil {
		return provider.NewTransientError(model.ProviderTeller, "NETWORK_ERROR", err.Error())
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return provider.NewTransientError(model.ProviderTeller, "READ_ERROR", err.Error())
	}
	if resp.StatusCode >= 400 {
		return vendorError(resp.StatusCode, body)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode teller response: %w", err)
	}
	return nil
}

func vendorError(status int, body []byte) error {
	var ae apiError
	_ = json.Unmarshal(body, &ae)
	code := ae.Error.Code
	if code == "" {
		code = http.StatusText(status)
	}
	message := ae.Error.Message
	if message == "" {
		message = string(body)
	}
	if status >= 500 || status == http.StatusTooManyRequests {
		return provider.NewTransientError(model.ProviderTeller, code, message)
	}
	return provider.NewBusinessError(model.ProviderTeller, code, message)
}

// GetTransactions lists transactions for one account. Latest fetches a single
// page; otherwise pages follow the from_id cursor up to the call cap.
func (c *Client) GetTransactions(ctx context.Context, params provider.TransactionsParams) ([]model.Transaction, error) {
	if params.AccessToken == "" {
		return nil, &provider.MissingParamError{Param: "accessToken"}
	}
	if params.AccountID == "" {
		return nil, &provider.MissingParamError{Param: "accountId"}
	}

	accountType := params.AccountType
	if accountType == "" {
		accountType = model.AccountTypeDepository
	}

	var all []Transaction
	fromID := ""
	for call := 0; call < provider.MaxPageCalls; call++ {
		query := url.Values{}
		query.Set("count", fmt.Sprint(transactionsPageSize))
		if fromID != "" {
			query.Set("from_id", fromID)
		}
		var page []Transaction
		path := fmt.Sprintf("/accounts/%s/transactions", params.AccountID)
		if err := c.get(ctx, params.AccessToken, path, query, &page); err != nil {
			return nil, err
		}
		all = append(all, page...)
		if params.Latest || len(page) < transactionsPageSize {
			break
		}
		fromID = page[len(page)-1].ID
	}

	transactions := make([]model.Transaction, 0, len(all))
	for _, t := range all {
		if t.AccountID != "" && t.AccountID != params.AccountID {
			continue
		}
		if !params.Latest && t.Status == "pending" {
			continue
		}
		transactions = append(transactions, transformTransaction(t, accountType, c.categories))
	}
	return transactions, nil
}

// GetAccounts lists the accounts visible to the access token, each with its
// current balance embedded.
func (c *Client) GetAccounts(ctx context.Context, params provider.AccountsParams) ([]model.Account, error) {
	if params.AccessToken == "" {
		return nil, &provider.MissingParamError{Param: "accessToken"}
	}
	var accounts []Account
	if err := c.get(ctx, params.AccessToken, "/accounts", nil, &accounts); err != nil {
		return nil, err
	}
	out := make([]model.Account, 0, len(accounts))
	for _, a := range accounts {
		var balance Balance
		if err := c.get(ctx, params.AccessToken, fmt.Sprintf("/accounts/%s/balances", a.ID), nil, &balance); err != nil {
			return nil, err
		}
		out = append(out, transformAccount(a, balance))
	}
	return out, nil
}

// GetAccountBalance fetches the balance of a single account.
func (c *Client) GetAccountBalance(ctx context.Context, params provider.BalanceParams) (*model.Balance, error) {
	if params.AccessToken == "" {
		return nil, &provider.MissingParamError{Param: "accessToken"}
	}
	if params.AccountID == "" {
		return nil, &provider.MissingParamError{Param: "accountId"}
	}
	var balance Balance
	if err := c.get(ctx, params.AccessToken, fmt.Sprintf("/accounts/%s/balances", params.AccountID), nil, &balance); err != nil {
		return nil, err
	}
	b := transformBalance(balance)
	return &b, nil
}

// GetInstitutions lists the banks Teller connects to. Teller has no country
// filter; the parameter is ignored.
func (c *Client) GetInstitutions(ctx context.Context, params provider.InstitutionsParams) ([]model.Institution, error) {
	var institutions []Institution
	if err := c.get(ctx, "", "/institutions", nil, &institutions); err != nil {
		return nil, err
	}
	out := make([]model.Institution, 0, len(institutions))
	for _, inst := range institutions {
		out = append(out, transformInstitution(inst))
	}
	return out, nil
}

// DeleteAccounts removes the enrollment behind the account.
func (c *Client) DeleteAccounts(ctx context.Context, params provider.DeleteParams) error {
	if params.AccessToken == "" {
		return &provider.MissingParamError{Param: "accessToken"}
	}
	if params.AccountID == "" {
		return &provider.MissingParamError{Param: "accountId"}
	}
	u := fmt.Sprintf("%s/accounts/%s", c.baseURL, params.AccountID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return err
	}
	resp, err := c.authClient(params.AccessToken).Do(req)
	if err != nil {
		return provider.NewTransientError(model.ProviderTeller, "NETWORK_ERROR", err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return vendorError(resp.StatusCode, body)
	}
	return nil
}

// GetStatements is not offered by Teller; the empty listing keeps the facade
// contract uniform.
func (c *Client) GetStatements(ctx context.Context, params provider.StatementsParams) (*model.StatementsResult, error) {
	return model.EmptyStatementsResult(), nil
}

// GetStatementPdf is not offered by Teller.
func (c *Client) GetStatementPdf(ctx context.Context, params provider.StatementPdfParams) (*model.StatementPdf, error) {
	return nil, &provider.OperationNotSupportedError{Provider: model.ProviderTeller, Operation: "getStatementPdf"}
}

// GetRecurringTransactions is not offered by Teller.
func (c *Client) GetRecurringTransactions(ctx context.Context, params provider.RecurringParams) (*model.RecurringResult, error) {
	return model.EmptyRecurringResult(), nil
}

// HealthCheck probes the Teller status endpoint.
func (c *Client) HealthCheck(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < 400
}
