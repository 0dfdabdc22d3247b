// Package gateway is the single entry point over the vendor adapters. It
// hides which vendor backs an external account, wraps every outward call in
// the resilience wrapper, and degrades read failures to safe defaults so
// callers can treat "no data yet" and "transient vendor outage" identically.
package gateway

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/criswit/moni-bridge/model"
	"github.com/criswit/moni-bridge/provider"
	"github.com/criswit/moni-bridge/provider/gocardless"
	"github.com/criswit/moni-bridge/provider/plaid"
	"github.com/criswit/moni-bridge/provider/stripe"
	"github.com/criswit/moni-bridge/provider/teller"
	"github.com/criswit/moni-bridge/store"
)

// Config is the flat secret set plus shared handles passed in at
// construction. No config file format is part of this contract.
type Config struct {
	Provider string

	GoCardlessSecretID  string
	GoCardlessSecretKey string

	PlaidClientID    string
	PlaidSecret      string
	PlaidEnvironment string

	StripeSecretKey string

	ObjectStore store.ObjectStore
	KV          store.KV

	Logger *logrus.Logger
	Retry  provider.RetryPolicy
}

// Gateway dispatches the uniform API to the one adapter matching the
// configured provider identifier. An unrecognized identifier leaves the
// adapter unset and every dispatched call fails fast, unretried.
type Gateway struct {
	cfg     Config
	name    model.Provider
	adapter provider.Provider
	cache   *StatementCache
	log     *logrus.Logger

	// healthTargets overrides the default probe construction in tests.
	healthTargets map[model.Provider]func() (provider.Provider, error)
}

// New builds a gateway for the given provider identifier.
func New(cfg Config) (*Gateway, error) {
	log := cfg.Logger
	if log == nil {
		log = logrus.New()
	}
	g := &Gateway{cfg: cfg, log: log}
	if cfg.ObjectStore != nil {
		g.cache = NewStatementCache(cfg.ObjectStore, log)
	}

	name, err := model.ParseProvider(cfg.Provider)
	if err != nil {
		// Adapter stays unset; dispatched calls fail fast with
		// ErrInvalidProvider. Health checks still work.
		return g, nil
	}
	g.name = name

	switch name {
	case model.ProviderGoCardless:
		g.adapter, err = gocardless.NewClient(gocardless.Config{
			SecretID:  cfg.GoCardlessSecretID,
			SecretKey: cfg.GoCardlessSecretKey,
			KV:        cfg.KV,
		})
	case model.ProviderPlaid:
		g.adapter, err = plaid.NewClient(plaid.Config{
			ClientID:    cfg.PlaidClientID,
			Secret:      cfg.PlaidSecret,
			Environment: cfg.PlaidEnvironment,
		})
	case model.ProviderTeller:
		g.adapter, err = teller.NewClient()
	case model.ProviderStripe:
		g.adapter, err = stripe.NewClient(stripe.Config{SecretKey: cfg.StripeSecretKey})
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Provider reports the selected provider identifier.
func (g *Gateway) Provider() model.Provider {
	return g.name
}

func (g *Gateway) ready() error {
	if g.adapter == nil {
		return provider.ErrInvalidProvider
	}
	return nil
}

// swallow decides whether a read-path error degrades to the safe default.
// Only exhausted transient failures are absorbed; invalid input, unsupported
// operations and permanent vendor rejections propagate unmodified.
func (g *Gateway) swallow(err error, op string) bool {
	if !provider.IsRetryable(err) {
		return false
	}
	g.log.WithFields(logrus.Fields{
		"provider":  g.name,
		"operation": op,
	}).WithError(err).Warn("vendor call exhausted retries, returning safe default")
	return true
}

// GetTransactions lists normalized transactions for one account. Transient
// exhaustion degrades to an empty list.
func (g *Gateway) GetTransactions(ctx context.Context, params provider.TransactionsParams) ([]model.Transaction, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}
	transactions, err := provider.WithRetry(ctx, g.cfg.Retry, func(ctx context.Context) ([]model.Transaction, error) {
		return g.adapter.GetTransactions(ctx, params)
	})
	if err != nil {
		if g.swallow(err, "getTransactions") {
			return []model.Transaction{}, nil
		}
		return nil, err
	}
	return transactions, nil
}

// GetAccounts lists normalized accounts. Transient exhaustion degrades to an
// empty list.
func (g *Gateway) GetAccounts(ctx context.Context, params provider.AccountsParams) ([]model.Account, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}
	accounts, err := provider.WithRetry(ctx, g.cfg.Retry, func(ctx context.Context) ([]model.Account, error) {
		return g.adapter.GetAccounts(ctx, params)
	})
	if err != nil {
		if g.swallow(err, "getAccounts") {
			return []model.Account{}, nil
		}
		return nil, err
	}
	return accounts, nil
}

// GetAccountBalance fetches one balance. Transient exhaustion degrades to nil.
func (g *Gateway) GetAccountBalance(ctx context.Context, params provider.BalanceParams) (*model.Balance, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}
	balance, err := provider.WithRetry(ctx, g.cfg.Retry, func(ctx context.Context) (*model.Balance, error) {
		return g.adapter.GetAccountBalance(ctx, params)
	})
	if err != nil {
		if g.swallow(err, "getAccountBalance") {
			return nil, nil
		}
		return nil, err
	}
	return balance, nil
}

// GetInstitutions lists institutions. Transient exhaustion degrades to an
// empty list.
func (g *Gateway) GetInstitutions(ctx context.Context, params provider.InstitutionsParams) ([]model.Institution, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}
	institutions, err := provider.WithRetry(ctx, g.cfg.Retry, func(ctx context.Context) ([]model.Institution, error) {
		return g.adapter.GetInstitutions(ctx, params)
	})
	if err != nil {
		if g.swallow(err, "getInstitutions") {
			return []model.Institution{}, nil
		}
		return nil, err
	}
	return institutions, nil
}

// DeleteAccounts disconnects an account. A write path: errors surface after
// retry exhaustion instead of degrading.
func (g *Gateway) DeleteAccounts(ctx context.Context, params provider.DeleteParams) error {
	if err := g.ready(); err != nil {
		return err
	}
	_, err := provider.WithRetry(ctx, g.cfg.Retry, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, g.adapter.DeleteAccounts(ctx, params)
	})
	return err
}

// GetStatements lists statement metadata; vendors without support return the
// empty listing.
func (g *Gateway) GetStatements(ctx context.Context, params provider.StatementsParams) (*model.StatementsResult, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}
	statements, err := provider.WithRetry(ctx, g.cfg.Retry, func(ctx context.Context) (*model.StatementsResult, error) {
		return g.adapter.GetStatements(ctx, params)
	})
	if err != nil {
		if g.swallow(err, "getStatements") {
			return model.EmptyStatementsResult(), nil
		}
		return nil, err
	}
	return statements, nil
}

// GetStatementPdf fetches one statement document through the cache-aside
// wrapper when an object store is configured.
func (g *Gateway) GetStatementPdf(ctx context.Context, params provider.StatementPdfParams) (*model.StatementPdf, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}
	fetch := func(ctx context.Context) (*model.StatementPdf, error) {
		return provider.WithRetry(ctx, g.cfg.Retry, func(ctx context.Context) (*model.StatementPdf, error) {
			return g.adapter.GetStatementPdf(ctx, params)
		})
	}
	if g.cache == nil {
		return fetch(ctx)
	}
	return g.cache.GetPdf(ctx, params, fetch)
}

// GetRecurringTransactions fetches recurring streams; vendors without support
// return empty collections stamped with the current time.
func (g *Gateway) GetRecurringTransactions(ctx context.Context, params provider.RecurringParams) (*model.RecurringResult, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}
	recurring, err := provider.WithRetry(ctx, g.cfg.Retry, func(ctx context.Context) (*model.RecurringResult, error) {
		return g.adapter.GetRecurringTransactions(ctx, params)
	})
	if err != nil {
		if g.swallow(err, "getRecurringTransactions") {
			return model.EmptyRecurringResult(), nil
		}
		return nil, err
	}
	return recurring, nil
}

// GetHealthCheck probes GoCardless, Plaid and Teller concurrently and
// composes the per-vendor status; the total latency is bounded by the slowest
// probe. Stripe joins only when it is the selected provider. A failing probe
// marks its vendor unhealthy without affecting the others.
func (g *Gateway) GetHealthCheck(ctx context.Context) *model.HealthReport {
	targets := g.healthTargets
	if targets == nil {
		targets = map[model.Provider]func() (provider.Provider, error){
			model.ProviderGoCardless: func() (provider.Provider, error) {
				return gocardless.NewClient(gocardless.Config{
					SecretID:  g.cfg.GoCardlessSecretID,
					SecretKey: g.cfg.GoCardlessSecretKey,
				})
			},
			model.ProviderPlaid: func() (provider.Provider, error) {
				return plaid.NewClient(plaid.Config{
					ClientID:    g.cfg.PlaidClientID,
					Secret:      g.cfg.PlaidSecret,
					Environment: g.cfg.PlaidEnvironment,
				})
			},
			model.ProviderTeller: func() (provider.Provider, error) {
				return teller.NewClient()
			},
		}
		if g.name == model.ProviderStripe {
			targets[model.ProviderStripe] = func() (provider.Provider, error) {
				return stripe.NewClient(stripe.Config{SecretKey: g.cfg.StripeSecretKey})
			}
		}
	}

	report := &model.HealthReport{}
	slots := map[model.Provider]**model.ProviderHealth{
		model.ProviderGoCardless: &report.GoCardless,
		model.ProviderPlaid:      &report.Plaid,
		model.ProviderTeller:     &report.Teller,
		model.ProviderStripe:     &report.Stripe,
	}

	var wg sync.WaitGroup
	for name, build := range targets {
		slot, ok := slots[name]
		if !ok {
			continue
		}
		wg.Add(1)
		go func(build func() (provider.Provider, error), slot **model.ProviderHealth) {
			defer wg.Done()
			healthy := false
			if p, err := build(); err == nil {
				healthy = p.HealthCheck(ctx)
			}
			*slot = &model.ProviderHealth{Healthy: healthy}
		}(build, slot)
	}
	wg.Wait()
	return report
}
