package gocardless

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/criswit/moni-bridge/model"
	"github.com/criswit/moni-bridge/provider"
	"github.com/criswit/moni-bridge/store"
)

type memKV struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemKV() *memKV { return &memKV{data: map[string]string{}} }

func (m *memKV) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Put(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memKV) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

var _ store.KV = (*memKV)(nil)

func newTestClient(t *testing.T, kv store.KV, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewClient(Config{SecretID: "sid", SecretKey: "skey", KV: kv})
	require.NoError(t, err)
	client.baseURL = server.URL
	return client
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

// tokenHandler serves the token mint endpoint and counts how often it is hit,
// delegating everything else to next.
func tokenHandler(t *testing.T, mints *int, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v2/token/new/" {
			*mints++
			var req tokenRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "sid", req.SecretID)
			assert.Equal(t, "skey", req.SecretKey)
			writeJSON(t, w, tokenResponse{Access: "bearer-token-1", AccessExpires: 3600})
			return
		}
		assert.Equal(t, "Bearer bearer-token-1", r.Header.Get("Authorization"))
		next(w, r)
	})
}

func TestTokenMintedOnceAcrossCalls(t *testing.T) {
	mints := 0
	kv := newMemKV()
	client := newTestClient(t, kv, tokenHandler(t, &mints, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, balancesResponse{Balances: []BalanceEntry{
			{BalanceType: "closingBooked", BalanceAmount: TransactionAmount{Amount: "100.00", Currency: "EUR"}},
		}})
	}))

	for i := 0; i < 3; i++ {
		_, err := client.GetAccountBalance(context.Background(), provider.BalanceParams{AccountID: "acc_1"})
		require.NoError(t, err)
	}
	assert.Equal(t, 1, mints, "token is cached between calls")

	mirrored, ok, err := kv.Get(context.Background(), "gocardless:access-token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "bearer-token-1", mirrored)
}

func TestTokenMintFailurePropagates(t *testing.T) {
	client := newTestClient(t, nil, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"summary":"Authentication failed","detail":"No active account found","status_code":401}`))
	}))

	_, err := client.GetAccountBalance(context.Background(), provider.BalanceParams{AccountID: "acc_1"})
	require.Error(t, err)
	var pe *provider.Error
	require.ErrorAs(t, err, &pe)
	assert.False(t, pe.Retryable)
	assert.Contains(t, pe.Message, "No active account found")
}

func TestGetTransactionsBookedOnly(t *testing.T) {
	mints := 0
	client := newTestClient(t, nil, tokenHandler(t, &mints, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/accounts/acc_1/transactions/", r.URL.Path)
		assert.Empty(t, r.URL.Query().Get("date_from"))
		var resp transactionsResponse
		resp.Transactions.Booked = []Transaction{
			{TransactionID: "tx_1", TransactionAmount: TransactionAmount{Amount: "-10.00", Currency: "EUR"}},
		}
		resp.Transactions.Pending = []Transaction{
			{TransactionID: "tx_2", TransactionAmount: TransactionAmount{Amount: "-20.00", Currency: "EUR"}},
		}
		writeJSON(t, w, resp)
	}))

	got, err := client.GetTransactions(context.Background(), provider.TransactionsParams{AccountID: "acc_1"})
	require.NoError(t, err)
	require.Len(t, got, 1, "pending excluded outside latest mode")
	assert.Equal(t, "tx_1", got[0].ID)
	assert.Equal(t, model.StatusPosted, got[0].Status)
}

func TestGetTransactionsLatestIncludesPending(t *testing.T) {
	mints := 0
	client := newTestClient(t, nil, tokenHandler(t, &mints, func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.URL.Query().Get("date_from"), "latest narrows the window")
		var resp transactionsResponse
		resp.Transactions.Booked = []Transaction{
			{TransactionID: "tx_1", TransactionAmount: TransactionAmount{Amount: "-10.00", Currency: "EUR"}},
		}
		resp.Transactions.Pending = []Transaction{
			{TransactionID: "tx_2", TransactionAmount: TransactionAmount{Amount: "-20.00", Currency: "EUR"}},
		}
		writeJSON(t, w, resp)
	}))

	got, err := client.GetTransactions(context.Background(), provider.TransactionsParams{AccountID: "acc_1", Latest: true})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, model.StatusPending, got[1].Status)
}

func TestGetAccountsResolvesRequisition(t *testing.T) {
	mints := 0
	kv := newMemKV()
	client := newTestClient(t, kv, tokenHandler(t, &mints, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v2/requisitions/req_1/":
			writeJSON(t, w, requisitionResponse{ID: "req_1", Accounts: []string{"acc_1"}})
		case "/api/v2/accounts/acc_1/":
			writeJSON(t, w, accountMetadata{ID: "acc_1", InstitutionID: "NORDEA_NDEASESS"})
		case "/api/v2/accounts/acc_1/details/":
			var details AccountDetails
			details.Account.Name = "main account"
			details.Account.Currency = "SEK"
			writeJSON(t, w, details)
		case "/api/v2/accounts/acc_1/balances/":
			writeJSON(t, w, balancesResponse{Balances: []BalanceEntry{
				{BalanceType: "interimAvailable", BalanceAmount: TransactionAmount{Amount: "900.00", Currency: "SEK"}},
				{BalanceType: "closingBooked", BalanceAmount: TransactionAmount{Amount: "1000.00", Currency: "SEK"}},
			}})
		case "/api/v2/institutions/NORDEA_NDEASESS/":
			writeJSON(t, w, Institution{ID: "NORDEA_NDEASESS", Name: "Nordea"})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))

	got, err := client.GetAccounts(context.Background(), provider.AccountsParams{ID: "req_1"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "acc_1", got[0].ID)
	assert.Equal(t, "Main Account", got[0].Name)
	assert.InDelta(t, 1000.00, got[0].Balance.Amount, 1e-9)
	assert.InDelta(t, 900.00, got[0].Balance.Available, 1e-9)
	assert.Equal(t, "Nordea", got[0].Institution.Name)

	req, ok, err := kv.Get(context.Background(), "gocardless:requisition:acc_1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "req_1", req, "requisition bookkeeping written for later deletes")
}

func TestGetAccountsRequiresID(t *testing.T) {
	client, err := NewClient(Config{SecretID: "sid", SecretKey: "skey"})
	require.NoError(t, err)

	var mpe *provider.MissingParamError
	_, err = client.GetAccounts(context.Background(), provider.AccountsParams{})
	require.ErrorAs(t, err, &mpe)
	assert.Equal(t, "id", mpe.Param)
}

func TestDeleteAccountsResolvesRequisitionFromKV(t *testing.T) {
	mints := 0
	kv := newMemKV()
	require.NoError(t, kv.Put(context.Background(), "gocardless:requisition:acc_1", "req_1"))

	var deleted string
	client := newTestClient(t, kv, tokenHandler(t, &mints, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		deleted = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))

	err := client.DeleteAccounts(context.Background(), provider.DeleteParams{AccountID: "acc_1"})
	require.NoError(t, err)
	assert.Equal(t, "/api/v2/requisitions/req_1/", deleted)
}

func TestDeleteAccountsFallsBackToAccountID(t *testing.T) {
	mints := 0
	var deleted string
	client := newTestClient(t, nil, tokenHandler(t, &mints, func(w http.ResponseWriter, r *http.Request) {
		deleted = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))

	err := client.DeleteAccounts(context.Background(), provider.DeleteParams{AccountID: "req_direct"})
	require.NoError(t, err)
	assert.Equal(t, "/api/v2/requisitions/req_direct/", deleted, "without bookkeeping the id is used as requisition")
}

func TestGetInstitutionsDefaultsCountry(t *testing.T) {
	mints := 0
	var country string
	client := newTestClient(t, nil, tokenHandler(t, &mints, func(w http.ResponseWriter, r *http.Request) {
		country = r.URL.Query().Get("country")
		writeJSON(t, w, []Institution{{ID: "REVOLUT_REVOGB21", Name: "Revolut"}})
	}))

	got, err := client.GetInstitutions(context.Background(), provider.InstitutionsParams{})
	require.NoError(t, err)
	assert.Equal(t, "GB", country)
	require.Len(t, got, 1)
	assert.Equal(t, model.ProviderGoCardless, got[0].Provider)
}

func TestUnsupportedOperations(t *testing.T) {
	client, err := NewClient(Config{SecretID: "sid", SecretKey: "skey"})
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
}

func TestHealthCheck(t *testing.T) {
	mints := 0
	client := newTestClient(t, nil, tokenHandler(t, &mints, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []Institution{})
	}))
	assert.True(t, client.HealthCheck(context.Background()))

	down := newTestClient(t, nil, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	assert.False(t, down.HealthCheck(context.Background()))
}
