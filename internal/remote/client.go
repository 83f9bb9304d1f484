// Package remote talks to the CertifAI backend: database RPCs, table inserts
// and the authenticated user record.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/example/certifai/internal/logger"
)

// ErrUnauthenticated is returned by user operations when no access token is configured
var ErrUnauthenticated = errors.New("no authenticated user")

// APIError is a non-2xx answer from the backend
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// Options configures a Client
type Options struct {
	BaseURL     string
	APIKey      string
	AccessToken string
	Timeout     time.Duration
	HTTPClient  *http.Client
}

// Client is an HTTP client for the backend
type Client struct {
	baseURL     string
	apiKey      string
	accessToken string
	http        *http.Client
	log         *logger.Logger
}

// New creates a new backend client
func New(opts Options, log *logger.Logger) (*Client, error) {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		return nil, fmt.Errorf("backend URL is not set")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:     baseURL,
		apiKey:      opts.APIKey,
		accessToken: opts.AccessToken,
		http:        httpClient,
		log:         log.With("component", "remote.Client"),
	}, nil
}

// Authenticated reports whether the client carries a user access token
func (c *Client) Authenticated() bool {
	return c.accessToken != ""
}

// RPC calls a database function with named parameters and decodes its result into out.
func (c *Client) RPC(ctx context.Context, fn string, params interface{}, out interface{}) error {
	if params == nil {
		params = struct{}{}
	}
	return c.do(ctx, http.MethodPost, "/rest/v1/rpc/"+fn, params, out, nil)
}

// Insert adds a row to a table and decodes the inserted representation into out
func (c *Client) Insert(ctx context.Context, table string, row interface{}, out interface{}) error {
	headers := map[string]string{"Prefer": "return=representation"}
	return c.do(ctx, http.MethodPost, "/rest/v1/"+table, row, out, headers)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}, headers map[string]string) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "failed to marshal request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}
	bearer := c.accessToken
	if bearer == "" {
		bearer = c.apiKey
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "failed to send request to %s", path)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response")
	}
	c.log.Debug("backend call", "method", method, "path", path, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(raw)}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrapf(err, "failed to decode response from %s", path)
	}
	return nil
}

func errorMessage(raw []byte) string {
	var body struct {
		Message          string `json:"message"`
		Msg              string `json:"msg"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		for _, m := range []string{body.Message, body.Msg, body.ErrorDescription, body.Error} {
			if m != "" {
				return m
			}
		}
	}
	msg := strings.TrimSpace(string(raw))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
