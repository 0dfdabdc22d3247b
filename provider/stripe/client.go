// Package stripe adapts the Stripe payments processor to the uniform provider
// contract. The connected account's balance history plays the role of bank
// transactions; Stripe never takes part in the composite health probe unless
// it is the selected provider, and account deletion is not supported.
package stripe

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

const defaultBaseURL = "https://api.stripe.com"

const transactionsPageSize = 100

// Config carries the platform API key.
type Config struct {
	SecretKey string
}

// Client is the Stripe vendor adapter.
type Client struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client
	categories *category.Engine
}

// NewClient creates a Stripe adapter.
func NewClient(cfg Config) (*Client, error) {
	engine, err := category.NewEngine()
	if err != nil {
		return nil, fmt.Errorf("failed to load category rules: %w", err)
	}
	return &Client{
		cfg:        cfg,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{},
		categories: engine,
	}, nil
}

func (c *Client) get(ctx context.Context, stripeAccount, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.SecretKey)
	if stripeAccount != "" {
		req.Header.Set("Stripe-Account", stripeAccount)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return provider.NewTransientError(model.ProviderStripe, "NETWORK_ERROR", err.Error())
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return provider.NewTransientError(model.ProviderStripe, "READ_ERROR", err.Error())
	}
	if resp.StatusCode >= 400 {
		return vendorError(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode stripe response: %w", err)
	}
	return nil
}

func vendorError(status int, body []byte) error {
	var ae apiError
	_ = json.Unmarshal(body, &ae)
	code := ae.Error.Code
	if code == "" {
		code = ae.Error.Type
	}
	if code == "" {
		code = http.StatusText(status)
	}
	message := ae.Error.Message
	if message == "" {
		message = string(body)
	}
	if status >= 500 || status == http.StatusTooManyRequests {
		return provider.NewTransientError(model.ProviderStripe, code, message)
	}
	return provider.NewBusinessError(model.ProviderStripe, code, message)
}

// GetTransactions lists the connected account's balance history with bounded
// cursor pagination. The AccountID parameter carries the connected account.
func (c *Client) GetTransactions(ctx context.Context, params provider.TransactionsParams) ([]model.Transaction, error) {
	if params.AccountID == "" {
		return nil, &provider.MissingParamError{Param: "accountId"}
	}

	var all []BalanceTransaction
	startingAfter := ""
	for call := 0; call < provider.MaxPageCalls; call++ {
		query := url.Values{}
		query.Set("limit", fmt.Sprint(transactionsPageSize))
		if startingAfter != "" {
			query.Set("starting_after", startingAfter)
		}
		var page balanceTransactionList
		if err := c.get(ctx, params.AccountID, "/v1/balance_transactions", query, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Data...)
		if params.Latest || !page.HasMore || len(page.Data) == 0 {
			break
		}
		startingAfter = page.Data[len(page.Data)-1].ID
	}

	transactions := make([]model.Transaction, 0, len(all))
	for _, t := range all {
		if !params.Latest && t.Status == "pending" {
			continue
		}
		transactions = append(transactions, transformTransaction(t, params.AccountID, c.categories))
	}
	return transactions, nil
}

// GetAccounts returns the single connected account with its balance.
func (c *Client) GetAccounts(ctx context.Context, params provider.AccountsParams) ([]model.Account, error) {
	if params.StripeAccountID == "" {
		return nil, &provider.MissingParamError{Param: "stripeAccountId"}
	}
	var account accountResponse
	if err := c.get(ctx, "", "/v1/accounts/"+params.StripeAccountID, nil, &account); err != nil {
		return nil, err
	}
	var balance balanceResponse
	if err := c.get(ctx, params.StripeAccountID, "/v1/balance", nil, &balance); err != nil {
		return nil, err
	}
	return []model.Account{transformAccount(account, balance)}, nil
}

// GetAccountBalance fetches the connected account's current balance.
func (c *Client) GetAccountBalance(ctx context.Context, params provider.BalanceParams) (*model.Balance, error) {
	if params.AccountID == "" {
		return nil, &provider.MissingParamError{Param: "accountId"}
	}
	var balance balanceResponse
	if err := c.get(ctx, params.AccountID, "/v1/balance", nil, &balance); err != nil {
		return nil, err
	}
	b := transformBalance(balance, "")
	return &b, nil
}

// GetInstitutions returns the static Stripe institution; there is no catalog
// of banks behind a payments processor.
func (c *Client) GetInstitutions(ctx context.Context, params provider.InstitutionsParams) ([]model.Institution, error) {
	return []model.Institution{stripeInstitution()}, nil
}

// DeleteAccounts is forbidden for connected accounts.
func (c *Client) DeleteAccounts(ctx context.Context, params provider.DeleteParams) error {
	return &provider.OperationNotSupportedError{Provider: model.ProviderStripe, Operation: "deleteAccounts"}
}

// GetStatements is not offered by Stripe.
func (c *Client) GetStatements(ctx context.Context, params provider.StatementsParams) (*model.StatementsResult, error) {
	return model.EmptyStatementsResult(), nil
}

// GetStatementPdf is not offered by Stripe.
func (c *Client) GetStatementPdf(ctx context.Context, params provider.StatementPdfParams) (*model.StatementPdf, error) {
	return nil, &provider.OperationNotSupportedError{Provider: model.ProviderStripe, Operation: "getStatementPdf"}
}

// GetRecurringTransactions is not offered by Stripe.
func (c *Client) GetRecurringTransactions(ctx context.Context, params provider.RecurringParams) (*model.RecurringResult, error) {
	return model.EmptyRecurringResult(), nil
}

// HealthCheck probes the platform balance endpoint.
func (c *Client) HealthCheck(ctx context.Context) bool {
	var balance balanceResponse
	return c.get(ctx, "", "/v1/balance", nil, &balance) == nil
}
