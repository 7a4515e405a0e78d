package driver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/datazip-inc/olake-clubspeed/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	retryWaitTime = time.Millisecond
	retryMaxWaitTime = 5 * time.Millisecond
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	config := &Config{Subdomain: "track", PrivateKey: "secret", RetryCount: 2}
	require.NoError(t, config.Validate())
	return NewClient(config)
}

func TestClient_Endpoint(t *testing.T) {
	client := newTestClient(t)
	assert.Equal(t, "https://track.clubspeedtiming.com/api/index.php/customers.json?key=secret", client.Endpoint("customers"))
}

func TestClient_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("decodes body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`[{"customerId":1}]`))
		}))
		defer server.Close()

		payload, err := newTestClient(t).Get(ctx, server.URL+"/customers.json?key=secret")
		require.NoError(t, err)
		assert.Equal(t, []any{map[string]any{"customerId": float64(1)}}, payload)
	})

	t.Run("500 is an empty result", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		_, err := newTestClient(t).Get(ctx, server.URL+"/customers.json")
		assert.ErrorIs(t, err, constants.ErrEmptyResult)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("403 is not retried", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte("invalid key"))
		}))
		defer server.Close()

		_, err := newTestClient(t).Get(ctx, server.URL+"/customers.json?key=secret")
		require.ErrorIs(t, err, constants.ErrNonRetryable)
		assert.NotContains(t, err.Error(), "secret")
		assert.Contains(t, err.Error(), "invalid key")
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("503 is retried", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte(`{"checks":[]}`))
		}))
		defer server.Close()

		payload, err := newTestClient(t).Get(ctx, server.URL+"/checks.json")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"checks": []any{}}, payload)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("query values are escaped on the wire", func(t *testing.T) {
		var query string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			query = r.URL.Query().Get("where")
			_, _ = w.Write([]byte(`[]`))
		}))
		defer server.Close()

		rawURL := AddFilter(server.URL+"/customers.json?key=secret", StructuredFilter, "accountCreated", "2024-01-01 10:00:00")
		_, err := newTestClient(t).Get(ctx, AddPagination(rawURL))
		require.NoError(t, err)
		assert.Equal(t, `{"accountCreated":{"$gt":"2024-01-01 10:00:00"}}`, query)
	})
}

func TestEscapeQuery(t *testing.T) {
	assert.Equal(t, "https://x/a.json", escapeQuery("https://x/a.json"))
	assert.Equal(t, "https://x/a.json?key=k&filter=checkId%3E5&page=0", escapeQuery("https://x/a.json?key=k&filter=checkId>5&page=0"))
	assert.Equal(t,
		"https://x/a.json?where=%7B%22id%22%3A%7B%22%24gt%22%3A%221%22%7D%7D",
		escapeQuery(`https://x/a.json?where={"id":{"$gt":"1"}}`))
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "https://x/a.json?key=****&page=1", redact("https://x/a.json?key=secret&page=1"))
	assert.Equal(t, "https://x/a.json?page=1&key=****", redact("https://x/a.json?page=1&key=secret"))
}
