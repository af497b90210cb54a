package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	svcErr "github.com/oggyb/mappool-community/internal/errors"
)

// expiryMargin is subtracted from the provider's stated lifetime so a token
// is refreshed shortly before it actually lapses.
const expiryMargin = 10 * time.Second

// TokenSource caches one client-credentials bearer token for the external
// catalog. Refreshes go through a singleflight group, so concurrent callers
// hitting an expired token share a single upstream request.
type TokenSource struct {
	clientID     string
	clientSecret string
	tokenURL     string
	httpClient   *http.Client

	now func() time.Time

	mu     sync.Mutex
	token  string
	expiry time.Time

	group singleflight.Group
}

// NewTokenSource builds a token source for the given credentials.
func NewTokenSource(clientID, clientSecret, tokenURL string, httpClient *http.Client) *TokenSource {
	return &TokenSource{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     tokenURL,
		httpClient:   httpClient,
		now:          time.Now,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Token returns the cached bearer token, refreshing it when expired.
func (ts *TokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.Lock()
	if ts.token != "" && ts.now().Before(ts.expiry) {
		tok := ts.token
		ts.mu.Unlock()
		return tok, nil
	}
	ts.mu.Unlock()

	v, err, _ := ts.group.Do("token", func() (interface{}, error) {
		// A caller that queued behind the winning refresh sees the fresh
		// token here and skips its own upstream request.
		ts.mu.Lock()
		if ts.token != "" && ts.now().Before(ts.expiry) {
			tok := ts.token
			ts.mu.Unlock()
			return tok, nil
		}
		ts.mu.Unlock()

		return ts.refresh(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (ts *TokenSource) refresh(ctx context.Context) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"client_id":     ts.clientID,
		"client_secret": ts.clientSecret,
		"grant_type":    "client_credentials",
		"scope":         "public",
	})
	if err != nil {
		return "", svcErr.Internal(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ts.tokenURL, bytes.NewReader(payload))
	if err != nil {
		return "", svcErr.Internal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := ts.httpClient.Do(req)
	if err != nil {
		return "", svcErr.Upstream("failed to obtain catalog token", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", svcErr.Upstream("failed to obtain catalog token",
			fmt.Errorf("token endpoint returned %d", resp.StatusCode))
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", svcErr.Upstream("failed to obtain catalog token", err)
	}
	if tok.AccessToken == "" {
		return "", svcErr.Upstream("failed to obtain catalog token",
			fmt.Errorf("token endpoint returned empty access_token"))
	}

	ts.mu.Lock()
	ts.token = tok.AccessToken
	ts.expiry = ts.now().Add(time.Duration(tok.ExpiresIn)*time.Second - expiryMargin)
	ts.mu.Unlock()

	return tok.AccessToken, nil
}
