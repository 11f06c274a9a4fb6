package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/manvel7/Antd-small-test/internal/api"
	"github.com/manvel7/Antd-small-test/internal/user"
)

// DefaultTimeout bounds each request unless WithTimeout says otherwise.
const DefaultTimeout = 10 * time.Second

// Client talks to the users API. Safe for concurrent use.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	headers    http.Header
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Set(key, value)
	}
}

// WithLogger enables request logging. Without it the client logs nothing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a client for the API rooted at baseURL,
// e.g. "http://localhost:3001/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    DefaultTimeout,
		httpClient: &http.Client{},
		headers: http.Header{
			"Content-Type": []string{"application/json"},
			"Accept":       []string{"application/json"},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type headersKey struct{}

// ContextWithHeader returns a ctx that makes requests carry key: value,
// overriding the client's header of the same name.
func ContextWithHeader(ctx context.Context, key, value string) context.Context {
	h := http.Header{}
	if prev, ok := ctx.Value(headersKey{}).(http.Header); ok {
		h = prev.Clone()
	}
	h.Set(key, value)
	return context.WithValue(ctx, headersKey{}, h)
}

// List returns every user.
func (c *Client) List(ctx context.Context) ([]user.Record, error) {
	var out api.Response[[]user.Record]
	if err := c.do(ctx, http.MethodGet, api.PathUsers, nil, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		return []user.Record{}, nil
	}
	return out.Data, nil
}

// ListPage returns one page of users along with the pagination block.
func (c *Client) ListPage(ctx context.Context, page, limit int) ([]user.Record, api.Pagination, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	var out api.PageResponse
	if err := c.do(ctx, http.MethodGet, api.PathUsers+"?"+q.Encode(), nil, &out); err != nil {
		return nil, api.Pagination{}, err
	}
	if out.Data == nil {
		out.Data = []user.Record{}
	}
	return out.Data, out.Pagination, nil
}

// Search returns users matching q.
func (c *Client) Search(ctx context.Context, q string) ([]user.Record, error) {
	var out api.Response[[]user.Record]
	path := api.PathUserSearch + "?" + url.Values{"q": []string{q}}.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		return []user.Record{}, nil
	}
	return out.Data, nil
}

// Get returns one user.
func (c *Client) Get(ctx context.Context, id string) (user.Record, error) {
	var out api.Response[user.Record]
	if err := c.do(ctx, http.MethodGet, userPath(id), nil, &out); err != nil {
		return user.Record{}, err
	}
	return out.Data, nil
}

// Create stores a new user and returns it with its server-assigned ID.
func (c *Client) Create(ctx context.Context, in user.Input) (user.Record, error) {
	var out api.Response[user.Record]
	if err := c.do(ctx, http.MethodPost, api.PathUsers, in, &out); err != nil {
		return user.Record{}, err
	}
	return out.Data, nil
}

// Update replaces the fields of user id.
func (c *Client) Update(ctx context.Context, id string, in user.Input) (user.Record, error) {
	var out api.Response[user.Record]
	if err := c.do(ctx, http.MethodPut, userPath(id), in, &out); err != nil {
		return user.Record{}, err
	}
	return out.Data, nil
}

// Patch changes the non-nil fields of p on user id.
func (c *Client) Patch(ctx context.Context, id string, p user.Patch) (user.Record, error) {
	var out api.Response[user.Record]
	if err := c.do(ctx, http.MethodPatch, userPath(id), p, &out); err != nil {
		return user.Record{}, err
	}
	return out.Data, nil
}

// Delete removes user id.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, userPath(id), nil, nil)
}

func userPath(id string) string {
	return api.PathUser(url.PathEscape(id))
}

// do performs one request and decodes a 2xx body into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	target := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	reqCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, method, target, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header = c.headers.Clone()
	if extra, ok := ctx.Value(headersKey{}).(http.Header); ok {
		for k, v := range extra {
			req.Header[k] = v
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = c.transportError(ctx, reqCtx, method, target, err)
		c.log(slog.LevelWarn, "api request failed", "method", method, "url", target, "status", Status(err), "error", err)
		return err
	}
	defer resp.Body.Close()

	c.log(slog.LevelDebug, "api request", "method", method, "url", target, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if reqCtx.Err() != nil {
			return c.transportError(ctx, reqCtx, method, target, err)
		}
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// transportError classifies a failed round trip. The request context's
// own deadline is a timeout; anything else, including cancellation of
// the caller's ctx, is a network error.
func (c *Client) transportError(parent, reqCtx context.Context, method, target string, err error) error {
	var ne net.Error
	ownDeadline := errors.Is(reqCtx.Err(), context.DeadlineExceeded) && parent.Err() == nil
	if ownDeadline || (errors.As(err, &ne) && ne.Timeout()) {
		return &TimeoutError{Method: method, URL: target, Timeout: c.timeout, Err: err}
	}
	return &NetworkError{Method: method, URL: target, Err: err}
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	var env api.ErrorResponse
	if err := json.Unmarshal(raw, &env); err == nil {
		apiErr.Code = env.Code
		apiErr.Message = env.Message
		apiErr.Fields = env.Fields
	}
	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return apiErr
}

func (c *Client) log(level slog.Level, msg string, args ...any) {
	if c.logger == nil {
		return
	}
	c.logger.Log(context.Background(), level, msg, args...)
}
