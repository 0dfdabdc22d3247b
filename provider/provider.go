// Package provider exposes one uniform facade over the supported financial
// data vendors. Callers pick a provider by identifier and get the same call
// contract regardless of which vendor backs the account.
package provider

import (
	"context"

	"github.com/criswit/moni-bridge/model"
)

// TransactionsParams shapes a transaction listing request. Latest bounds the
// fetch to the most recent page only.
type TransactionsParams struct {
	AccountID   string
	AccessToken string
	AccountType model.AccountType
	Latest      bool
}

// AccountsParams shapes an account listing request. Vendors differ in which
// fields they require; adapters validate presence and fail fast.
type AccountsParams struct {
	ID              string
	AccessToken     string
	InstitutionID   string
	StripeAccountID string
}

// BalanceParams shapes a balance request.
type BalanceParams struct {
	AccountID   string
	AccessToken string
}

// InstitutionsParams shapes an institution listing request.
type InstitutionsParams struct {
	CountryCode string
}

// DeleteParams shapes a disconnect/unlink request.
type DeleteParams struct {
	AccountID   string
	AccessToken string
}

// StatementsParams shapes a statement listing request.
type StatementsParams struct {
	AccessToken string
	AccountID   string
	UserID      string
	TeamID      string
}

// StatementPdfParams shapes a statement download request.
type StatementPdfParams struct {
	AccessToken string
	StatementID string
	AccountID   string
	UserID      string
	TeamID      string
}

// RecurringParams shapes a recurring-transactions request.
type RecurringParams struct {
	AccountID   string
	AccessToken string
}

// Provider is the capability surface every vendor adapter implements.
// Adapters raise typed errors on hard failures; graceful degradation to
// empty/nil results is the facade's job, not theirs.
type Provider interface {
	GetTransactions(ctx context.Context, params TransactionsParams) ([]model.Transaction, error)
	GetAccounts(ctx context.Context, params AccountsParams) ([]model.Account, error)
	GetAccountBalance(ctx context.Context, params BalanceParams) (*model.Balance, error)
	GetInstitutions(ctx context.Context, params InstitutionsParams) ([]model.Institution, error)
	DeleteAccounts(ctx context.Context, params DeleteParams) error
	GetStatements(ctx context.Context, params StatementsParams) (*model.StatementsResult, error)
	GetStatementPdf(ctx context.Context, params StatementPdfParams) (*model.StatementPdf, error)
	GetRecurringTransactions(ctx context.Context, params RecurringParams) (*model.RecurringResult, error)
	// HealthCheck resolves to false rather than erroring so that one vendor's
	// outage never fails a composite probe.
	HealthCheck(ctx context.Context) bool
}

// MaxPageCalls is the hard cap on paginated vendor calls within a single
// transaction fetch.
const MaxPageCalls = 10
