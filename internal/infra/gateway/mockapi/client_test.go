package mockapi_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerly-app/ledgerly/internal/infra/gateway/mockapi"
	"github.com/ledgerly-app/ledgerly/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New("development", io.Discard)
}

func TestFetchTransactions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": "tx-1", "type": "deposit", "amount": 120.5, "createdAt": "2026-06-01T10:00:00Z"},
			{"id": "tx-2", "type": "expense", "amount": "33.10", "createdAt": "2026-06-02T09:30:00Z"}
		]`))
	}))
	defer server.Close()

	items, err := mockapi.NewClient(server.URL, testLogger()).FetchTransactions(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	amount, err := items[0].ParseAmount()
	require.NoError(t, err)
	assert.Equal(t, "120.5", amount.String())

	// Quoted amounts decode the same way.
	amount, err = items[1].ParseAmount()
	require.NoError(t, err)
	assert.Equal(t, "33.1", amount.String())

	created, err := items[1].ParseCreatedAt()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 6, 2, 9, 30, 0, 0, time.UTC), created)
}

func TestFetchTransactionsFeedError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := mockapi.NewClient(server.URL, testLogger()).FetchTransactions(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}

func TestFetchTransactionsBadPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not": "a list"}`))
	}))
	defer server.Close()

	_, err := mockapi.NewClient(server.URL, testLogger()).FetchTransactions(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestParseAmountMissing(t *testing.T) {
	_, err := mockapi.FeedTransaction{}.ParseAmount()
	require.Error(t, err)

	_, err = mockapi.FeedTransaction{Amount: []byte(`"abc"`)}.ParseAmount()
	require.Error(t, err)
}
