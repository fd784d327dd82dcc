// Package api talks to the site REST API.
package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"tableflip.dev/sitelog/pkg/collection"
)

// ErrStatus is wrapped by every non-2xx response error.
var ErrStatus = errors.New("api: unexpected status")

// Client fetches and mutates resources under {BaseURL}/api/.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        zerolog.Logger
	retryDelay time.Duration
}

// NewClient creates a client for baseURL. timeout bounds every request.
func NewClient(baseURL, token string, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		log:        log.With().Str("adapter", "api").Logger(),
		retryDelay: 500 * time.Millisecond,
	}
}

// FetchRaw returns the JSON array served at /api/{resource}?scope=.
//
// 4xx responses are fatal: the scope is wrong or access is denied and a retry
// will not help. 5xx responses and network errors are recoverable.
func (c *Client) FetchRaw(ctx context.Context, resource, scope string) ([]byte, error) {
	q := url.Values{}
	if scope != "" {
		q.Set("scope", scope)
	}
	return c.do(ctx, http.MethodGet, c.resourceURL(resource, "", q), nil)
}

// Create posts body to /api/{resource} and returns the stored entity.
func (c *Client) Create(ctx context.Context, resource, scope string, body []byte) ([]byte, error) {
	q := url.Values{}
	if scope != "" {
		q.Set("scope", scope)
	}
	return c.do(ctx, http.MethodPost, c.resourceURL(resource, "", q), body)
}

// Update puts body to /api/{resource}/{id}.
func (c *Client) Update(ctx context.Context, resource, id string, body []byte) ([]byte, error) {
	return c.do(ctx, http.MethodPut, c.resourceURL(resource, id, nil), body)
}

// Delete removes /api/{resource}/{id}.
func (c *Client) Delete(ctx context.Context, resource, id string) error {
	_, err := c.do(ctx, http.MethodDelete, c.resourceURL(resource, id, nil), nil)
	return err
}

func (c *Client) resourceURL(resource, id string, q url.Values) string {
	u := c.baseURL + "/api/" + url.PathEscape(resource)
	if id != "" {
		u += "/" + url.PathEscape(id)
	}
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (c *Client) do(ctx context.Context, method, reqURL string, body []byte) ([]byte, error) {
	c.log.Debug().Str("method", method).Str("url", reqURL).Msg("api request")

	resp, err := c.doWithRetry(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("api: %s %s: %w", method, reqURL, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("api: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("%w %d from %s: %s", ErrStatus, resp.StatusCode, reqURL, strings.TrimSpace(string(payload)))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, collection.Fatal(err)
		}
		return nil, err
	}
	return payload, nil
}

// doWithRetry executes the request with a single retry on 5xx or network
// errors. Only idempotent methods are retried.
func (c *Client) doWithRetry(ctx context.Context, method, reqURL string, body []byte) (*http.Response, error) {
	send := func() (*http.Response, error) {
		var r io.Reader
		if body != nil {
			r = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, r)
		if err != nil {
			return nil, collection.Fatal(fmt.Errorf("create request: %w", err))
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
		return c.httpClient.Do(req)
	}

	resp, err := send()
	if collection.IsFatal(err) {
		return nil, err
	}
	shouldRetry := err != nil || (resp != nil && resp.StatusCode >= 500)
	if !shouldRetry || method == http.MethodPost || ctx.Err() != nil {
		return resp, err
	}

	reason := "network error"
	if err == nil && resp != nil {
		reason = fmt.Sprintf("status %d", resp.StatusCode)
	}
	c.log.Warn().Str("url", reqURL).Str("reason", reason).Msg("api retry")

	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(c.retryDelay):
	}
	return send()
}
