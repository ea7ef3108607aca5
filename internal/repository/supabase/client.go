// Package supabase talks to a Supabase project: PostgREST for the task
// table and GoTrue for authentication.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"todo-sync/internal/errors"
	"todo-sync/internal/logging"
	"todo-sync/internal/repository"
)

// Options configure the client.
type Options struct {
	URL     string
	AnonKey string
	// Table defaults to repository.DefaultTable.
	Table string
	// Timeout bounds each request. Zero means only the caller's context.
	Timeout time.Duration
	// HTTPClient defaults to a client with no timeout of its own.
	HTTPClient *http.Client
}

// Client implements repository.Backend against a Supabase project.
type Client struct {
	baseURL *url.URL
	anonKey string
	table   string
	timeout time.Duration
	http    *http.Client
}

var _ repository.Backend = (*Client)(nil)

// New validates the options and creates a client. No request is made.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.URL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, errors.NewInvalidInputError("supabase_url", opts.URL, "must be an absolute URL")
	}
	if opts.AnonKey == "" {
		return nil, errors.NewInvalidInputError("supabase_anon_key", "", "is required")
	}
	table := opts.Table
	if table == "" {
		table = repository.DefaultTable
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL: base,
		anonKey: opts.AnonKey,
		table:   table,
		timeout: opts.Timeout,
		http:    httpClient,
	}, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// apiError is the union of the PostgREST and GoTrue error bodies.
type apiError struct {
	Code             json.RawMessage `json:"code"`
	Message          string          `json:"message"`
	Details          string          `json:"details"`
	Hint             string          `json:"hint"`
	Error            string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
	ErrorCode        string          `json:"error_code"`
	Msg              string          `json:"msg"`
}

// StatusError is the cause carried by errors built from a non-2xx response.
type StatusError struct {
	Status  int
	Code    string
	Message string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("status %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("status %d: %s", e.Status, e.Message)
}

func parseStatusError(status int, body []byte) *StatusError {
	se := &StatusError{Status: status, Message: http.StatusText(status)}
	var ae apiError
	if json.Unmarshal(body, &ae) != nil {
		if text := strings.TrimSpace(string(body)); text != "" {
			se.Message = text
		}
		return se
	}

	var code string
	if len(ae.Code) > 0 && json.Unmarshal(ae.Code, &code) == nil {
		se.Code = code
	}
	if se.Code == "" {
		se.Code = firstNonEmpty(ae.ErrorCode, ae.Error)
	}
	if msg := firstNonEmpty(ae.Message, ae.Msg, ae.ErrorDescription, ae.Error); msg != "" {
		se.Message = msg
	}
	return se
}

// mapStatus turns a PostgREST failure into the app taxonomy.
func mapStatus(operation, id string, se *StatusError) error {
	switch {
	case se.Status == http.StatusUnauthorized:
		appErr := errors.NewAuthRequiredError(operation)
		appErr.Cause = se
		return appErr
	case se.Status == http.StatusNotFound || se.Code == "PGRST116":
		appErr := errors.NewNotFoundError("task", id)
		appErr.Cause = se
		return appErr
	default:
		return errors.NewBackendError(operation, se)
	}
}

type request struct {
	method string
	path   string
	query  url.Values
	body   interface{}
	token  string
	prefer string
}

// do sends the request and decodes a 2xx body into out. A non-2xx response
// comes back as *StatusError.
func (c *Client) do(ctx context.Context, r request, out interface{}) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	u := *c.baseURL
	u.Path = u.Path + r.path
	if r.query != nil {
		u.RawQuery = r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), body)
	if err != nil {
		return err
	}
	token := r.token
	if token == "" {
		token = c.anonKey
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.prefer != "" {
		req.Header.Set("Prefer", r.prefer)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	logging.Logger().Debug("supabase request",
		"method", r.method, "path", r.path, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseStatusError(resp.StatusCode, payload)
	}
	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
