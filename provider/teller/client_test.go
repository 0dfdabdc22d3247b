package teller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/criswit/moni-bridge/model"
	"github.com/criswit/moni-bridge/provider"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewClient()
	require.NoError(t, err)
	client.baseURL = server.URL
	return client, server
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestGetTransactionsSendsBasicAuth(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "token_abc", user)
		assert.Empty(t, pass)
		writeJSON(t, w, []Transaction{})
	}))

	_, err := client.GetTransactions(context.Background(), provider.TransactionsParams{
		AccessToken: "token_abc",
		AccountID:   "acc_1",
	})
	require.NoError(t, err)
}

func TestGetTransactionsPaginatesWithFromID(t *testing.T) {
	var cursors []string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cursors = append(cursors, r.URL.Query().Get("from_id"))
		page := make([]Transaction, 0, transactionsPageSize)
		if len(cursors) == 1 {
			for i := 0; i < transactionsPageSize; i++ {
				page = append(page, Transaction{
					ID:        fmt.Sprintf("txn_%03d", i),
					AccountID: "acc_1",
					Amount:    "-1.00",
					Status:    "posted",
				})
			}
		} else {
			page = append(page, Transaction{ID: "txn_last", AccountID: "acc_1", Amount: "-2.00", Status: "posted"})
		}
		writeJSON(t, w, page)
	}))

	got, err := client.GetTransactions(context.Background(), provider.TransactionsParams{
		AccessToken: "token_abc",
		AccountID:   "acc_1",
	})
	require.NoError(t, err)
	assert.Len(t, got, transactionsPageSize+1)
	require.Len(t, cursors, 2)
	assert.Empty(t, cursors[0])
	assert.Equal(t, fmt.Sprintf("txn_%03d", transactionsPageSize-1), cursors[1], "second page resumes after last id of the first")
}

func TestGetTransactionsLatestFetchesSinglePage(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		page := make([]Transaction, 0, transactionsPageSize)
		for i := 0; i < transactionsPageSize; i++ {
			page = append(page, Transaction{ID: fmt.Sprintf("t%d", i), AccountID: "acc_1", Amount: "-1.00", Status: "posted"})
		}
		writeJSON(t, w, page)
	}))

	got, err := client.GetTransactions(context.Background(), provider.TransactionsParams{
		AccessToken: "token_abc",
		AccountID:   "acc_1",
		Latest:      true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Len(t, got, transactionsPageSize)
}

func TestGetTransactionsFiltersPendingUnlessLatest(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []Transaction{
			{ID: "t1", AccountID: "acc_1", Amount: "-5.00", Status: "posted"},
			{ID: "t2", AccountID: "acc_1", Amount: "-7.00", Status: "pending"},
		})
	}))

	got, err := client.GetTransactions(context.Background(), provider.TransactionsParams{
		AccessToken: "token_abc",
		AccountID:   "acc_1",
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "t1", got[0].ID)

	got, err = client.GetTransactions(context.Background(), provider.TransactionsParams{
		AccessToken: "token_abc",
		AccountID:   "acc_1",
		Latest:      true,
	})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestGetTransactionsMissingParams(t *testing.T) {
	client, err := NewClient()
	require.NoError(t, err)

	_, err = client.GetTransactions(context.Background(), provider.TransactionsParams{AccountID: "acc_1"})
	var mpe *provider.MissingParamError
	require.ErrorAs(t, err, &mpe)
	assert.Equal(t, "accessToken", mpe.Param)

	_, err = client.GetTransactions(context.Background(), provider.TransactionsParams{AccessToken: "tok"})
	require.ErrorAs(t, err, &mpe)
	assert.Equal(t, "accountId", mpe.Param)
}

func TestGetTransactionsVendorErrorClassification(t *testing.T) {
	t.Run("server error is transient", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		_, err := client.GetTransactions(context.Background(), provider.TransactionsParams{AccessToken: "tok", AccountID: "acc_1"})
		require.Error(t, err)
		assert.True(t, provider.IsRetryable(err))
	})
	t.Run("auth rejection is permanent", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":{"code":"unauthorized","message":"invalid token"}}`)
		}))
		_, err := client.GetTransactions(context.Background(), provider.TransactionsParams{AccessToken: "tok", AccountID: "acc_1"})
		require.Error(t, err)
		assert.False(t, provider.IsRetryable(err))
		var pe *provider.Error
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, "unauthorized", pe.Code)
	})
	t.Run("rate limit is transient", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		_, err := client.GetTransactions(context.Background(), provider.TransactionsParams{AccessToken: "tok", AccountID: "acc_1"})
		require.Error(t, err)
		assert.True(t, provider.IsRetryable(err))
	})
}

func TestGetAccountsEmbedsBalances(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/accounts":
			writeJSON(t, w, []Account{
				{ID: "acc_1", Name: "checking", Currency: "usd", EnrollmentID: "enr_1", Type: "depository", Institution: Institution{ID: "chase", Name: "Chase"}},
				{ID: "acc_2", Name: "platinum card", Currency: "usd", EnrollmentID: "enr_1", Type: "credit", Institution: Institution{ID: "amex", Name: "American Express"}},
			})
		case "/accounts/acc_1/balances":
			writeJSON(t, w, Balance{AccountID: "acc_1", Ledger: "1500.00"})
		case "/accounts/acc_2/balances":
			writeJSON(t, w, Balance{AccountID: "acc_2", Ledger: "-430.00"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	got, err := client.GetAccounts(context.Background(), provider.AccountsParams{AccessToken: "tok"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Checking", got[0].Name)
	assert.InDelta(t, 1500.00, got[0].Balance.Amount, 1e-9)
	assert.Equal(t, model.AccountTypeCredit, got[1].Type)
	assert.InDelta(t, -430.00, got[1].Balance.Amount, 1e-9)
}

func TestGetAccountBalance(t *testing.T) {
	available := "90.00"
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts/acc_1/balances", r.URL.Path)
		writeJSON(t, w, Balance{AccountID: "acc_1", Ledger: "100.00", Available: &available})
	}))

	got, err := client.GetAccountBalance(context.Background(), provider.BalanceParams{AccessToken: "tok", AccountID: "acc_1"})
	require.NoError(t, err)
	assert.InDelta(t, 100.00, got.Amount, 1e-9)
	assert.InDelta(t, 90.00, got.Available, 1e-9)
}

func TestGetInstitutions(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/institutions", r.URL.Path)
		writeJSON(t, w, []Institution{{ID: "chase", Name: "Chase"}, {ID: "wells_fargo", Name: "Wells Fargo"}})
	}))

	got, err := client.GetInstitutions(context.Background(), provider.InstitutionsParams{CountryCode: "GB"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, model.ProviderTeller, got[0].Provider)
	assert.Equal(t, "https://cdn.moni-bridge.dev/logos/wells_fargo.jpg", got[1].Logo)
}

func TestDeleteAccounts(t *testing.T) {
	var method, path string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))

	err := client.DeleteAccounts(context.Background(), provider.DeleteParams{AccessToken: "tok", AccountID: "acc_1"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/accounts/acc_1", path)
}

func TestUnsupportedOperations(t *testing.T) {
	client, err := NewClient()
	require.NoError(t, err)

	statements, err := client.GetStatements(context.Background(), provider.StatementsParams{})
	require.NoError(t, err)
	assert.Empty(t, statements.Statements)

	_, err = client.GetStatementPdf(context.Background(), provider.StatementPdfParams{})
	var onse *provider.OperationNotSupportedError
	require.ErrorAs(t, err, &onse)

	recurring, err := client.GetRecurringTransactions(context.Background(), provider.RecurringParams{})
	require.NoError(t, err)
	assert.Empty(t, recurring.Inflow)
	assert.Empty(t, recurring.Outflow)
}

func TestHealthCheck(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	assert.True(t, client.HealthCheck(context.Background()))

	down, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	assert.False(t, down.HealthCheck(context.Background()))
}
