// Package gocardless adapts the GoCardless pan-European bank account data API
// to the uniform provider contract. Auth is a short-lived bearer token minted
// from the secret id/key pair and cached in-process; the optional KV store
// keeps it across processes.
package gocardless

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/criswit/moni-bridge/category"
	"github.com/criswit/moni-bridge/model"
	"github.com/criswit/moni-bridge/provider"
	"github.com/criswit/moni-bridge/store"
)

const defaultBaseURL = "https://bankaccountdata.gocardless.com"

const (
	tokenCacheKey = "gocardless:access-token"
	tokenSlack    = 30 * time.Second
)

// Config carries the GoCardless secret pair and optional KV handle.
type Config struct {
	SecretID  string
	SecretKey string
	KV        store.KV
}

// Client is the GoCardless vendor adapter.
type Client struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client
	tokens     *gocache.Cache
	categories *category.Engine
}

// NewClient creates a GoCardless adapter.
func NewClient(cfg Config) (*Client, error) {
	engine, err := category.NewEngine()
	if err != nil {
		return nil, fmt.Errorf("failed to load category rules: %w", err)
	}
	return &Client{
		cfg:        cfg,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{},
		tokens:     gocache.New(gocache.NoExpiration, 10*time.Minute),
		categories: engine,
	}, nil
}

// token returns a valid bearer token, minting a fresh one when the cached
// token is gone.
func (c *Client) token(ctx context.Context) (string, error) {
	if v, ok := c.tokens.Get(tokenCacheKey); ok {
		return v.(string), nil
	}

	payload, err := json.Marshal(tokenRequest{SecretID: c.cfg.SecretID, SecretKey: c.cfg.SecretKey})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v2/token/new/", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", provider.NewTransientError(model.ProviderGoCardless, "NETWORK_ERROR", err.Error())
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", provider.NewTransientError(model.ProviderGoCardless, "READ_ERROR", err.Error())
	}
	if resp.StatusCode >= 400 {
		return "", vendorError(resp.StatusCode, raw)
	}
	var tr tokenResponse
	if err := json.Unmarshal(raw, &tr); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}

	ttl := time.Duration(tr.AccessExpires)*time.Second - tokenSlack
	if ttl <= 0 {
		ttl = time.Minute
	}
	c.tokens.Set(tokenCacheKey, tr.Access, ttl)
	if c.cfg.KV != nil {
		// Best effort; a stale mirror only costs one extra mint.
		_ = c.cfg.KV.Put(ctx, tokenCacheKey, tr.Access)
	}
	return tr.Access, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, out any) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return provider.NewTransientError(model.ProviderGoCardless, "NETWORK_ERROR", err.Error())
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return provider.NewTransientError(model.ProviderGoCardless, "READ_ERROR", err.Error())
	}
	if resp.StatusCode >= 400 {
		return vendorError(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode gocardless response: %w", err)
	}
	return nil
}

func vendorError(status int, body []byte) error {
	var ae apiError
	_ = json.Unmarshal(body, &ae)
	message := ae.Detail
	if message == "" {
		message = ae.Summary
	}
	if message == "" {
		message = string(body)
	}
	code := http.StatusText(status)
	if status >= 500 || status == http.StatusTooManyRequests {
		return provider.NewTransientError(model.ProviderGoCardless, code, message)
	}
	return provider.NewBusinessError(model.ProviderGoCardless, code, message)
}

// GetTransactions lists booked (and, when latest, pending) transactions for
// one account. GoCardless returns the full ranged window in a single call.
func (c *Client) GetTransactions(ctx context.Context, params provider.TransactionsParams) ([]model.Transaction, error) {
	if params.AccountID == "" {
		return nil, &provider.MissingParamError{Param: "accountId"}
	}
	query := url.Values{}
	if params.Latest {
		from := time.Now().UTC().AddDate(0, 0, -5)
		query.Set("date_from", from.Format("2006-01-02"))
	}
	var resp transactionsResponse
	path := fmt.Sprintf("/api/v2/accounts/%s/transactions/", params.AccountID)
	if err := c.do(ctx, http.MethodGet, path, query, &resp); err != nil {
		return nil, err
	}

	transactions := make([]model.Transaction, 0, len(resp.Transactions.Booked))
	for _, t := range resp.Transactions.Booked {
		transactions = append(transactions, transformTransaction(t, params.AccountID, model.StatusPosted, c.categories))
	}
	if params.Latest {
		for _, t := range resp.Transactions.Pending {
			transactions = append(transactions, transformTransaction(t, params.AccountID, model.StatusPending, c.categories))
		}
	}
	return transactions, nil
}

// GetAccounts resolves a requisition to its accounts, embedding details,
// balance and institution for each.
func (c *Client) GetAccounts(ctx context.Context, params provider.AccountsParams) ([]model.Account, error) {
	if params.ID == "" {
		return nil, &provider.MissingParamError{Param: "id"}
	}
	var requisition requisitionResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v2/requisitions/%s/", params.ID), nil, &requisition); err != nil {
		return nil, err
	}

	accounts := make([]model.Account, 0, len(requisition.Accounts))
	for _, accountID := range requisition.Accounts {
		var meta accountMetadata
		if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v2/accounts/%s/", accountID), nil, &meta); err != nil {
			return nil, err
		}
		var details AccountDetails
		if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v2/accounts/%s/details/", accountID), nil, &details); err != nil {
			return nil, err
		}
		var balances balancesResponse
		if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v2/accounts/%s/balances/", accountID), nil, &balances); err != nil {
			return nil, err
		}
		var institution Institution
		if meta.InstitutionID != "" {
			if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v2/institutions/%s/", meta.InstitutionID), nil, &institution); err != nil {
				return nil, err
			}
		}
		accounts = append(accounts, transformAccount(accountID, details, balances.Balances, institution))
		if c.cfg.KV != nil {
			_ = c.cfg.KV.Put(ctx, "gocardless:requisition:"+accountID, params.ID)
		}
	}
	return accounts, nil
}

// GetAccountBalance fetches the balance of one account.
func (c *Client) GetAccountBalance(ctx context.Context, params provider.BalanceParams) (*model.Balance, error) {
	if params.AccountID == "" {
		return nil, &provider.MissingParamError{Param: "accountId"}
	}
	var resp balancesResponse
	path := fmt.Sprintf("/api/v2/accounts/%s/balances/", params.AccountID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	b := transformBalances(resp.Balances)
	return &b, nil
}

// GetInstitutions lists the institutions available for a country.
func (c *Client) GetInstitutions(ctx context.Context, params provider.InstitutionsParams) ([]model.Institution, error) {
	query := url.Values{}
	country := params.CountryCode
	if country == "" {
		country = "GB"
	}
	query.Set("country", country)
	var institutions []Institution
	if err := c.do(ctx, http.MethodGet, "/api/v2/institutions/", query, &institutions); err != nil {
		return nil, err
	}
	out := make([]model.Institution, 0, len(institutions))
	for _, inst := range institutions {
		out = append(out, transformInstitution(inst))
	}
	return out, nil
}

// DeleteAccounts removes the requisition behind the account, revoking the
// bank consent. The requisition id is looked up from the KV bookkeeping
// written by GetAccounts, falling back to treating AccountID as the
// requisition reference itself.
func (c *Client) DeleteAccounts(ctx context.Context, params provider.DeleteParams) error {
	if params.AccountID == "" {
		return &provider.MissingParamError{Param: "accountId"}
	}
	requisitionID := params.AccountID
	if c.cfg.KV != nil {
		if v, ok, err := c.cfg.KV.Get(ctx, "gocardless:requisition:"+params.AccountID); err == nil && ok {
			requisitionID = v
		}
	}
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/v2/requisitions/%s/", requisitionID), nil, nil)
}

// GetStatements is not offered by GoCardless.
func (c *Client) GetStatements(ctx context.Context, params provider.StatementsParams) (*model.StatementsResult, error) {
	return model.EmptyStatementsResult(), nil
}

// GetStatementPdf is not offered by GoCardless.
func (c *Client) GetStatementPdf(ctx context.Context, params provider.StatementPdfParams) (*model.StatementPdf, error) {
	return nil, &provider.OperationNotSupportedError{Provider: model.ProviderGoCardless, Operation: "getStatementPdf"}
}

// GetRecurringTransactions is not offered by GoCardless.
func (c *Client) GetRecurringTransactions(ctx context.Context, params provider.RecurringParams) (*model.RecurringResult, error) {
	return model.EmptyRecurringResult(), nil
}

// HealthCheck probes the institutions endpoint.
func (c *Client) HealthCheck(ctx context.Context) bool {
	query := url.Values{}
	query.Set("country", "GB")
	var institutions []Institution
	return c.do(ctx, http.MethodGet, "/api/v2/institutions/", query, &institutions) == nil
}
