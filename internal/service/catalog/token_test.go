package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	svcErr "github.com/oggyb/mappool-community/internal/errors"
)

// tokenServer returns an httptest token endpoint plus an atomic request
// counter. Each issued token is distinct so tests can tell refreshes apart.
func tokenServer(t *testing.T, expiresIn int64, delay time.Duration) (*httptest.Server, *int64) {
	t.Helper()
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt64(&calls, 1)
		if delay > 0 {
			time.Sleep(delay)
		}
		require.Equal(t, http.MethodPost, r.Method)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "client_credentials", body["grant_type"])
		assert.Equal(t, "public", body["scope"])

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"tok-%d","expires_in":%d}`, n, expiresIn)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestToken_CachedWithinLifetime(t *testing.T) {
	srv, calls := tokenServer(t, 3600, 0)
	ts := NewTokenSource("id", "secret", srv.URL, srv.Client())

	tok1, err := ts.Token(context.Background())
	require.NoError(t, err)
	tok2, err := ts.Token(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "tok-1", tok1)
	assert.Equal(t, tok1, tok2)
	assert.Equal(t, int64(1), atomic.LoadInt64(calls))
}

func TestToken_RefreshesPastExpiryMargin(t *testing.T) {
	// expires_in 60 with the 10s margin gives a 50s effective lifetime
	srv, calls := tokenServer(t, 60, 0)
	ts := NewTokenSource("id", "secret", srv.URL, srv.Client())

	clock := time.Now()
	ts.now = func() time.Time { return clock }

	tok1, err := ts.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok1)

	// still inside the effective lifetime: served from cache
	clock = clock.Add(49 * time.Second)
	tok2, err := ts.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok2)
	assert.Equal(t, int64(1), atomic.LoadInt64(calls))

	// past the margin: forced refresh
	clock = clock.Add(2 * time.Second)
	tok3, err := ts.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-2", tok3)
	assert.Equal(t, int64(2), atomic.LoadInt64(calls))
}

func TestToken_ConcurrentCallersShareOneRefresh(t *testing.T) {
	srv, calls := tokenServer(t, 3600, 30*time.Millisecond)
	ts := NewTokenSource("id", "secret", srv.URL, srv.Client())

	const workers = 16
	tokens := make([]string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tok, err := ts.Token(context.Background())
			assert.NoError(t, err)
			tokens[i] = tok
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), atomic.LoadInt64(calls))
	for _, tok := range tokens {
		assert.Equal(t, "tok-1", tok)
	}
}

func TestToken_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	ts := NewTokenSource("id", "secret", srv.URL, srv.Client())
	_, err := ts.Token(context.Background())

	var appErr *svcErr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadGateway, appErr.Status)
}

func TestToken_EmptyAccessTokenRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"access_token":"","expires_in":3600}`)
	}))
	t.Cleanup(srv.Close)

	ts := NewTokenSource("id", "secret", srv.URL, srv.Client())
	_, err := ts.Token(context.Background())

	var appErr *svcErr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadGateway, appErr.Status)
}
