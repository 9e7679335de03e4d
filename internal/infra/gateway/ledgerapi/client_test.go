package ledgerapi_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerly-app/ledgerly/internal/infra/gateway/ledgerapi"
	"github.com/ledgerly-app/ledgerly/internal/ledgerview"
	"github.com/ledgerly-app/ledgerly/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New("development", io.Discard)
}

func newClient(serverURL string) *ledgerapi.Client {
	return ledgerapi.NewClient(serverURL, testLogger())
}

// csrfHandler wraps a mutation handler with the cookie/header echo the real
// server enforces: GETs are issued the cookie, POSTs must echo it.
func csrfHandler(t *testing.T, post http.HandlerFunc) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: "tok-123", Path: "/"})
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
			return
		}
		cookie, err := r.Cookie("csrftoken")
		require.NoError(t, err)
		require.Equal(t, cookie.Value, r.Header.Get("X-CSRF-Token"))
		post(w, r)
	}
}

func TestListTransactions_QueryParams(t *testing.T) {
	var gotURL string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.String()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"transactions": [], "has_next": false, "total_balance": 0}`))
	}))
	defer server.Close()

	client := newClient(server.URL)

	_, err := client.ListTransactions(context.Background(), "", ledgerview.FilterAll)
	require.NoError(t, err)
	assert.Equal(t, "/api/transactions?page=1", gotURL)

	_, err = client.ListTransactions(context.Background(), "3", ledgerview.FilterExpense)
	require.NoError(t, err)
	assert.Equal(t, "/api/transactions?page=3&type=expense", gotURL)
}

func TestListTransactions_DecodesPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"transactions": [
				{"code": "abc", "created_at": "15/06/2026 12:00", "type": "deposit", "type_display": "Deposit", "amount": 100.5, "amount_display": "+100.50", "running_balance": 100.5},
				{"code": "", "created_at": "14/06/2026 09:30", "type": "expense", "amount": "-20.00", "running_balance": "80.50"}
			],
			"total_balance": 80.5,
			"has_next": true,
			"next_page_number": 2
		}`))
	}))
	defer server.Close()

	page, err := newClient(server.URL).ListTransactions(context.Background(), "", ledgerview.FilterAll)
	require.NoError(t, err)

	require.Len(t, page.Transactions, 2)
	assert.Equal(t, "abc", page.Transactions[0].Code)
	assert.Equal(t, "+100.50", page.Transactions[0].AmountDisplay)

	// Missing fields are defaulted from what the row carries.
	assert.Equal(t, "N/A", page.Transactions[1].Code)
	assert.Equal(t, "Expense", page.Transactions[1].TypeDisplay)
	assert.Equal(t, "-20.00", page.Transactions[1].AmountDisplay)
	assert.Equal(t, "80.5", page.Transactions[1].RunningBalance.String())

	require.NotNil(t, page.TotalBalance)
	assert.Equal(t, "80.5", page.TotalBalance.String())
	assert.True(t, page.HasNext)
	assert.Equal(t, "2", page.NextCursor)
}

func TestListTransactions_IgnoresUnusableBalance(t *testing.T) {
	for _, body := range []string{
		`{"transactions": [], "has_next": false, "total_balance": null}`,
		`{"transactions": [], "has_next": false}`,
		`{"transactions": [], "has_next": false, "total_balance": "oops"}`,
	} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(body))
		}))

		page, err := newClient(server.URL).ListTransactions(context.Background(), "", ledgerview.FilterAll)
		server.Close()

		require.NoError(t, err, body)
		assert.Nil(t, page.TotalBalance, body)
	}
}

func TestListTransactions_NonOKIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newClient(server.URL).ListTransactions(context.Background(), "", ledgerview.FilterAll)
	require.Error(t, err)
	assert.True(t, ledgerapi.IsTransportError(err))
}

func TestCreateTransaction_EchoesCSRFAndDecodes(t *testing.T) {
	var gotBody map[string]string
	server := httptest.NewServer(csrfHandler(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"message": "Transaction successfully executed.",
			"success": true,
			"total_balance": 150,
			"new_transaction": {"code": "", "created_at": "15/06/2026 12:01", "type": "deposit", "type_display": "Deposit", "amount": 50, "amount_display": "+50.00", "running_balance": 150}
		}`))
	}))
	defer server.Close()

	res, err := newClient(server.URL).CreateTransaction(context.Background(), ledgerview.TypeDeposit, "50")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"type": "deposit", "amount": "50"}, gotBody)
	assert.Equal(t, "Transaction successfully executed.", res.Message)
	require.NotNil(t, res.TotalBalance)
	assert.Equal(t, "150", res.TotalBalance.String())
	assert.Equal(t, "N/A", res.Transaction.Code)
	assert.Equal(t, "+50.00", res.Transaction.AmountDisplay)
}

func TestCreateTransaction_FieldRejection(t *testing.T) {
	server := httptest.NewServer(csrfHandler(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{
			"error": {"amount": ["Not enough balance"]},
			"error_codes": {"amount": "INSUFFICIENT_BALANCE"},
			"success": false
		}`))
	}))
	defer server.Close()

	_, err := newClient(server.URL).CreateTransaction(context.Background(), ledgerview.TypeExpense, "50.00")
	require.Error(t, err)

	rej, ok := ledgerview.AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, map[string][]string{"amount": {"Not enough balance"}}, rej.Fields)
	assert.Equal(t, ledgerview.CodeInsufficientBalance, rej.Codes["amount"])
	assert.Equal(t, "Not enough balance", rej.UserMessage())
}

func TestCreateTransaction_TopLevelStringRejection(t *testing.T) {
	server := httptest.NewServer(csrfHandler(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "Incorrect JSON request.", "success": false}`))
	}))
	defer server.Close()

	_, err := newClient(server.URL).CreateTransaction(context.Background(), "bogus", "x")
	require.Error(t, err)

	rej, ok := ledgerview.AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, "Incorrect JSON request.", rej.UserMessage())
}

func TestCreateTransaction_UnparseableRejectionIsTransportError(t *testing.T) {
	server := httptest.NewServer(csrfHandler(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`<html>bad gateway</html>`))
	}))
	defer server.Close()

	_, err := newClient(server.URL).CreateTransaction(context.Background(), ledgerview.TypeDeposit, "5")
	require.Error(t, err)
	assert.True(t, ledgerapi.IsTransportError(err))
	_, ok := ledgerview.AsRejection(err)
	assert.False(t, ok)
}

func TestCreateTransaction_NetworkFailureIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	_, err := newClient(server.URL).CreateTransaction(context.Background(), ledgerview.TypeDeposit, "5")
	require.Error(t, err)
	assert.True(t, ledgerapi.IsTransportError(err))
}

func TestImport_Success(t *testing.T) {
	var method, path string
	server := httptest.NewServer(csrfHandler(t, func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		w.Write([]byte(`{"message": "Imported 3 transactions. Skipped 1.", "success": true}`))
	}))
	defer server.Close()

	res, err := newClient(server.URL).Import(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "/api/transactions/import", path)
	assert.Equal(t, "Imported 3 transactions. Skipped 1.", res.Message)
}

func TestImport_ServerErrorMessage(t *testing.T) {
	server := httptest.NewServer(csrfHandler(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error": "Error connecting to external API: timeout", "success": false}`))
	}))
	defer server.Close()

	_, err := newClient(server.URL).Import(context.Background())
	require.Error(t, err)

	rej, ok := ledgerview.AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, "Error connecting to external API: timeout", rej.UserMessage())
}
