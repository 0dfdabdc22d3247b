package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/criswit/moni-bridge/model"
	"github.com/criswit/moni-bridge/provider"
)

func fastRetry() provider.RetryPolicy {
	return provider.RetryPolicy{
		MaxRetries:      2,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		CallTimeout:     time.Second,
	}
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

// stubProvider lets each test pin the behavior of individual operations.
type stubProvider struct {
	transactions func() ([]model.Transaction, error)
	accounts     func() ([]model.Account, error)
	balance      func() (*model.Balance, error)
	institutions func() ([]model.Institution, error)
	deleteErr    error
	statements   func() (*model.StatementsResult, error)
	statementPdf func() (*model.StatementPdf, error)
	recurring    func() (*model.RecurringResult, error)
	healthy      bool
	healthDelay  time.Duration
}

func (s *stubProvider) GetTransactions(ctx context.Context, params provider.TransactionsParams) ([]model.Transaction, error) {
	return s.transactions()
}

func (s *stubProvider) GetAccounts(ctx context.Context, params provider.AccountsParams) ([]model.Account, error) {
	return s.accounts()
}

func (s *stubProvider) GetAccountBalance(ctx context.Context, params provider.BalanceParams) (*model.Balance, error) {
	return s.balance()
}

func (s *stubProvider) GetInstitutions(ctx context.Context, params provider.InstitutionsParams) ([]model.Institution, error) {
	return s.institutions()
}

func (s *stubProvider) DeleteAccounts(ctx context.Context, params provider.DeleteParams) error {
	return s.deleteErr
}

func (s *stubProvider) GetStatements(ctx context.Context, params provider.StatementsParams) (*model.StatementsResult, error) {
	return s.statements()
}

func (s *stubProvider) GetStatementPdf(ctx context.Context, params provider.StatementPdfParams) (*model.StatementPdf, error) {
	return s.statementPdf()
}

func (s *stubProvider) GetRecurringTransactions(ctx context.Context, params provider.RecurringParams) (*model.RecurringResult, error) {
	return s.recurring()
}

func (s *stubProvider) HealthCheck(ctx context.Context) bool {
	if s.healthDelay > 0 {
		select {
		case <-time.After(s.healthDelay):
		case <-ctx.Done():
			return false
		}
	}
	return s.healthy
}

var _ provider.Provider = (*stubProvider)(nil)

func stubGateway(name model.Provider, adapter provider.Provider) *Gateway {
	return &Gateway{
		cfg:     Config{Retry: fastRetry()},
		name:    name,
		adapter: adapter,
		log:     quietLogger(),
	}
}

func TestNewWithUnknownProviderFailsFast(t *testing.T) {
	g, err := New(Config{Provider: "monzo", Logger: quietLogger(), Retry: fastRetry()})
	require.NoError(t, err, "construction succeeds so health checks stay available")

	_, err = g.GetAccounts(context.Background(), provider.AccountsParams{})
	assert.ErrorIs(t, err, provider.ErrInvalidProvider)
	_, err = g.GetTransactions(context.Background(), provider.TransactionsParams{})
	assert.ErrorIs(t, err, provider.ErrInvalidProvider)
	err = g.DeleteAccounts(context.Background(), provider.DeleteParams{})
	assert.ErrorIs(t, err, provider.ErrInvalidProvider)
}

func TestNewSelectsAdapter(t *testing.T) {
	for _, name := range []string{"gocardless", "plaid", "teller", "stripe"} {
		g, err := New(Config{Provider: name, Logger: quietLogger()})
		require.NoError(t, err)
		assert.Equal(t, model.Provider(name), g.Provider())
	}
}

func TestReadPathsDegradeOnTransientExhaustion(t *testing.T) {
	stub := &stubProvider{
		transactions: func() ([]model.Transaction, error) {
			return nil, provider.NewTransientError(model.ProviderTeller, "502", "bad gateway")
		},
		accounts: func() ([]model.Account, error) {
			return nil, provider.NewTransientError(model.ProviderTeller, "502", "bad gateway")
		},
		balance: func() (*model.Balance, error) {
			return nil, provider.NewTransientError(model.ProviderTeller, "502", "bad gateway")
		},
		institutions: func() ([]model.Institution, error) {
			return nil, errors.New("connection reset")
		},
		statements: func() (*model.StatementsResult, error) {
			return nil, provider.NewTransientError(model.ProviderTeller, "503", "maintenance")
		},
		recurring: func() (*model.RecurringResult, error) {
			return nil, provider.NewTransientError(model.ProviderTeller, "503", "maintenance")
		},
	}
	g := stubGateway(model.ProviderTeller, stub)
	ctx := context.Background()

	transactions, err := g.GetTransactions(ctx, provider.TransactionsParams{})
	require.NoError(t, err)
	assert.NotNil(t, transactions)
	assert.Empty(t, transactions)

	accounts, err := g.GetAccounts(ctx, provider.AccountsParams{})
	require.NoError(t, err)
	assert.NotNil(t, accounts)
	assert.Empty(t, accounts)

	balance, err := g.GetAccountBalance(ctx, provider.BalanceParams{})
	require.NoError(t, err)
	assert.Nil(t, balance)

	institutions, err := g.GetInstitutions(ctx, provider.InstitutionsParams{})
	require.NoError(t, err)
	assert.Empty(t, institutions)

	statements, err := g.GetStatements(ctx, provider.StatementsParams{})
	require.NoError(t, err)
	assert.Empty(t, statements.Statements)

	recurring, err := g.GetRecurringTransactions(ctx, provider.RecurringParams{})
	require.NoError(t, err)
	assert.Empty(t, recurring.Inflow)
	assert.False(t, recurring.LastUpdatedAt.IsZero())
}

func TestBusinessErrorsPropagate(t *testing.T) {
	stub := &stubProvider{
		transactions: func() ([]model.Transaction, error) {
			return nil, provider.NewBusinessError(model.ProviderPlaid, "ITEM_LOGIN_REQUIRED", "user must re-link")
		},
		balance: func() (*model.Balance, error) {
			return nil, &provider.MissingParamError{Param: "accountId"}
		},
	}
	g := stubGateway(model.ProviderPlaid, stub)

	_, err := g.GetTransactions(context.Background(), provider.TransactionsParams{})
	var pe *provider.Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "ITEM_LOGIN_REQUIRED", pe.Code)

	_, err = g.GetAccountBalance(context.Background(), provider.BalanceParams{})
	var mpe *provider.MissingParamError
	require.ErrorAs(t, err, &mpe)
}

func TestRetriesRecoverBeforeDegrading(t *testing.T) {
	calls := 0
	stub := &stubProvider{
		transactions: func() ([]model.Transaction, error) {
			calls++
			if calls < 2 {
				return nil, provider.NewTransientError(model.ProviderTeller, "500", "hiccup")
			}
			return []model.Transaction{{ID: "tx_1"}}, nil
		},
	}
	g := stubGateway(model.ProviderTeller, stub)

	got, err := g.GetTransactions(context.Background(), provider.TransactionsParams{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2, calls)
}

func TestDeleteAccountsPropagatesAllErrors(t *testing.T) {
	unsupported := &stubProvider{deleteErr: &provider.OperationNotSupportedError{Provider: model.ProviderStripe, Operation: "deleteAccounts"}}
	g := stubGateway(model.ProviderStripe, unsupported)
	err := g.DeleteAccounts(context.Background(), provider.DeleteParams{AccountID: "acct_1"})
	var onse *provider.OperationNotSupportedError
	require.ErrorAs(t, err, &onse)

	flaky := &stubProvider{deleteErr: provider.NewTransientError(model.ProviderTeller, "502", "bad gateway")}
	g = stubGateway(model.ProviderTeller, flaky)
	err = g.DeleteAccounts(context.Background(), provider.DeleteParams{AccountID: "acc_1"})
	require.Error(t, err, "write paths never degrade to success")
}

func TestGetStatementPdfWithoutCacheFetchesDirectly(t *testing.T) {
	pdf := &model.StatementPdf{Data: []byte("%PDF"), Filename: "st_1.pdf"}
	stub := &stubProvider{statementPdf: func() (*model.StatementPdf, error) { return pdf, nil }}
	g := stubGateway(model.ProviderPlaid, stub)

	got, err := g.GetStatementPdf(context.Background(), provider.StatementPdfParams{StatementID: "st_1"})
	require.NoError(t, err)
	assert.Equal(t, pdf, got)
}

func TestGetHealthCheckFansOut(t *testing.T) {
	g := stubGateway(model.ProviderTeller, nil)
	delay := 50 * time.Millisecond
	g.healthTargets = map[model.Provider]func() (provider.Provider, error){
		model.ProviderGoCardless: func() (provider.Provider, error) {
			return &stubProvider{healthy: true, healthDelay: delay}, nil
		},
		model.ProviderPlaid: func() (provider.Provider, error) {
			return &stubProvider{healthy: false, healthDelay: delay}, nil
		},
		model.ProviderTeller: func() (provider.Provider, error) {
			return &stubProvider{healthy: true, healthDelay: delay}, nil
		},
	}

	start := time.Now()
	report := g.GetHealthCheck(context.Background())
	elapsed := time.Since(start)

	require.NotNil(t, report.GoCardless)
	require.NotNil(t, report.Plaid)
	require.NotNil(t, report.Teller)
	assert.Nil(t, report.Stripe, "stripe joins only when selected")
	assert.True(t, report.GoCardless.Healthy)
	assert.False(t, report.Plaid.Healthy)
	assert.True(t, report.Teller.Healthy)
	assert.False(t, report.AllHealthy())

	assert.Less(t, elapsed, 3*delay, "probes run concurrently, not sequentially")
}

func TestGetHealthCheckProbeBuildFailureMarksUnhealthy(t *testing.T) {
	g := stubGateway(model.ProviderTeller, nil)
	g.healthTargets = map[model.Provider]func() (provider.Provider, error){
		model.ProviderPlaid: func() (provider.Provider, error) {
			return nil, errors.New("bad credentials")
		},
		model.ProviderTeller: func() (provider.Provider, error) {
			return &stubProvider{healthy: true}, nil
		},
	}

	report := g.GetHealthCheck(context.Background())
	require.NotNil(t, report.Plaid)
	assert.False(t, report.Plaid.Healthy)
	require.NotNil(t, report.Teller)
	assert.True(t, report.Teller.Healthy)
	assert.Nil(t, report.GoCardless, "unprobed vendors stay absent from the report")
}
