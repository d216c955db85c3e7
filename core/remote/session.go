package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultExpiryMargin is subtracted from a token's lifetime so a request
// never starts with a token that expires in flight.
const DefaultExpiryMargin = 3 * time.Second

// Session is an authorized identity for the remote store.
type Session struct {
	AccessToken string
	Account     string
	Company     string
	ExpiresAt   time.Time
}

// TokenSource obtains a fresh session.
type TokenSource interface {
	Token(ctx context.Context) (*Session, error)
}

// SessionCache holds the current session until it goes stale.
// Concurrent callers hitting a stale session share a single refresh.
type SessionCache struct {
	source TokenSource
	margin time.Duration
	now    func() time.Time

	mu      sync.RWMutex
	current *Session
	sf      singleflight.Group
}

// NewSessionCache creates a cache refreshing from source.
func NewSessionCache(source TokenSource, margin time.Duration) *SessionCache {
	return &SessionCache{
		source: source,
		margin: margin,
		now:    time.Now,
	}
}

// IsExpired reports whether s can no longer be used at t, given margin.
func (s *Session) IsExpired(t time.Time, margin time.Duration) bool {
	if s == nil {
		return true
	}
	return !t.Before(s.ExpiresAt.Add(-margin))
}

// Get returns a valid session, refreshing it when stale.
func (c *SessionCache) Get(ctx context.Context) (*Session, error) {
	c.mu.RLock()
	s := c.current
	c.mu.RUnlock()

	if !s.IsExpired(c.now(), c.margin) {
		return s, nil
	}

	result, err, _ := c.sf.Do("session", func() (interface{}, error) {
		// Another caller may have refreshed while we waited
		c.mu.RLock()
		s := c.current
		c.mu.RUnlock()
		if !s.IsExpired(c.now(), c.margin) {
			return s, nil
		}

		fresh, err := c.source.Token(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.current = fresh
		c.mu.Unlock()
		return fresh, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to obtain session: %w", err)
	}

	return result.(*Session), nil
}

// Invalidate drops the cached session so the next Get refreshes it.
func (c *SessionCache) Invalidate() {
	c.mu.Lock()
	c.current = nil
	c.mu.Unlock()
}

// ClientCredentials obtains sessions with the OAuth client credentials grant.
type ClientCredentials struct {
	URL          string
	ClientID     string
	ClientSecret string
	Account      string
	Company      string

	http *http.Client
	now  func() time.Time
}

// NewClientCredentials creates a token source from the remote configuration.
func NewClientCredentials(cfg Config, httpClient *http.Client) *ClientCredentials {
	return &ClientCredentials{
		URL:          cfg.TokenURL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Account:      cfg.Account,
		Company:      cfg.Company,
		http:         httpClient,
		now:          time.Now,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Account     string `json:"account"`
	CompanyID   string `json:"company_id"`
}

// Token requests a new access token.
func (cc *ClientCredentials) Token(ctx context.Context) (*Session, error) {
	form := url.Values{"grant_type": {"client_credentials"}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cc.URL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.SetBasicAuth(cc.ClientID, cc.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := cc.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{
			Method:     http.MethodPost,
			Path:       req.URL.Path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("token response carries no access_token")
	}

	s := &Session{
		AccessToken: tr.AccessToken,
		Account:     cc.Account,
		Company:     cc.Company,
		ExpiresAt:   cc.now().Add(time.Duration(tr.ExpiresIn) * time.Second),
	}
	// Configured scope wins; the token response fills the gaps
	if s.Account == "" {
		s.Account = tr.Account
	}
	if s.Company == "" {
		s.Company = tr.CompanyID
	}

	return s, nil
}
