package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"record-sync/core/utils"

	"go.uber.org/zap"
)

const (
	queryPath = "/api/query/v1"
	dataPath  = "/api/data/v4"

	maxErrorBody = 4096
)

// Client talks to the remote record store: paginated queries and bulk mutations.
type Client struct {
	baseURL       string
	clientID      string
	clientVersion string
	http          *http.Client
	sessions      *SessionCache
	logger        *zap.Logger
}

// NewClient creates a store client from the configuration, authenticating
// with client credentials against cfg.TokenURL.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	httpClient := newHTTPClient(cfg.TimeoutSeconds)
	sessions := NewSessionCache(NewClientCredentials(cfg, httpClient), DefaultExpiryMargin)
	return NewClientWithSessions(cfg, httpClient, sessions, logger)
}

// NewClientWithSessions creates a store client with an injected session cache.
func NewClientWithSessions(cfg Config, httpClient *http.Client, sessions *SessionCache, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = newHTTPClient(cfg.TimeoutSeconds)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:       strings.TrimSuffix(cfg.BaseURL, "/"),
		clientID:      cfg.ClientID,
		clientVersion: cfg.ClientVersion,
		http:          httpClient,
		sessions:      sessions,
		logger:        logger,
	}
}

func newHTTPClient(timeoutSeconds int) *http.Client {
	if timeoutSeconds <= 0 {
		timeoutSeconds = 60
	}
	timeout := time.Duration(timeoutSeconds) * time.Second

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeout,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{Transport: transport, Timeout: timeout}
}

// Query fetches one page of results. page starts at 1, pageSize is in [1, MaxPageSize].
func (c *Client) Query(ctx context.Context, q Query, page, pageSize int) (*Page, error) {
	if page < 1 {
		return nil, fmt.Errorf("invalid page %d: must be >= 1", page)
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		return nil, fmt.Errorf("invalid page size %d: must be in [1, %d]", pageSize, MaxPageSize)
	}

	params := url.Values{}
	if q.DTOs != "" {
		params.Set("dtos", q.DTOs)
	}
	params.Set("page", strconv.Itoa(page))
	params.Set("pageSize", strconv.Itoa(pageSize))

	var body pageResponse
	if err := c.do(ctx, http.MethodPost, queryPath, params, queryRequest{Query: q.Statement}, &body); err != nil {
		return nil, err
	}

	return &Page{
		Rows:        body.Data,
		CurrentPage: utils.ToInt(body.CurrentPage),
		LastPage:    utils.ToInt(body.LastPage),
		TotalCount:  utils.ToInt(body.TotalObjectCount),
	}, nil
}

// BulkUpdate patches existing records of a collection in one request.
func (c *Client) BulkUpdate(ctx context.Context, col Collection, items []UpdateItem) error {
	params := url.Values{"forceUpdate": {"true"}}
	if col.DTOs != "" {
		params.Set("dtos", col.DTOs)
	}
	return c.do(ctx, http.MethodPatch, bulkPath(col), params, items, nil)
}

// BulkCreate inserts new records owned by schemaID in one request.
func (c *Client) BulkCreate(ctx context.Context, col Collection, schemaID string, values [][]UdfValue) error {
	items := make([]createItem, 0, len(values))
	for _, v := range values {
		items = append(items, createItem{Meta: schemaID, UdfValues: v})
	}

	params := url.Values{"forceUpdate": {"true"}}
	if col.DTOs != "" {
		params.Set("dtos", col.DTOs)
	}
	return c.do(ctx, http.MethodPut, bulkPath(col), params, items, nil)
}

// BulkDelete removes records by id in one request.
func (c *Client) BulkDelete(ctx context.Context, col Collection, ids []string) error {
	items := make([]deleteItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, deleteItem{ID: id})
	}
	return c.do(ctx, http.MethodDelete, bulkPath(col), url.Values{"forceDelete": {"true"}}, items, nil)
}

func bulkPath(col Collection) string {
	return dataPath + "/" + url.PathEscape(col.Name) + "/bulk"
}

// do performs an authorized JSON request. A 401 drops the cached session and
// the request is retried once with a fresh one.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode %s %s body: %w", method, path, err)
	}

	for attempt := 0; ; attempt++ {
		session, err := c.sessions.Get(ctx)
		if err != nil {
			return err
		}

		req, err := c.newRequest(ctx, method, path, params, session, payload)
		if err != nil {
			return err
		}

		start := time.Now()
		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("%s %s failed: %w", method, path, err)
		}

		c.logger.Debug("Remote call",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.Duration("elapsed", time.Since(start)),
		)

		if resp.StatusCode == http.StatusUnauthorized && attempt == 0 {
			resp.Body.Close()
			c.sessions.Invalidate()
			continue
		}

		return decodeResponse(resp, method, path, out)
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, params url.Values, session *Session, payload []byte) (*http.Request, error) {
	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	if session.Account != "" {
		query.Set("account", session.Account)
	}
	if session.Company != "" {
		query.Set("company", session.Company)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path+"?"+query.Encode(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s %s request: %w", method, path, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+session.AccessToken)
	req.Header.Set("X-Client-ID", c.clientID)
	req.Header.Set("X-Client-Version", c.clientVersion)

	return req, nil
}

func decodeResponse(resp *http.Response, method, path string, out any) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}
