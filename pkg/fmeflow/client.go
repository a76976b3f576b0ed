package fmeflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-jobform/pkg/params"
	"github.com/goliatone/go-jobform/pkg/workspace"
)

const (
	apiPrefix      = "/fmerest/v3"
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 16 << 20
)

var _ workspace.Client = (*Client)(nil)

// Client talks to the REST v3 API of a processing server.
type Client struct {
	baseURL *url.URL
	token   string
	http    *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithTimeout bounds every request. Zero disables the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New returns a Client for the server at baseURL authenticating with token.
func New(baseURL, token string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errors.New("fmeflow: server url is required")
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("fmeflow: parse server url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("fmeflow: unsupported url scheme %q", parsed.Scheme)
	}

	c := &Client{
		baseURL: parsed,
		token:   strings.TrimSpace(token),
		http:    http.DefaultClient,
		timeout: defaultTimeout,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

type itemList struct {
	Items []params.WorkspaceSummary `json:"items"`
}

// FetchWorkspaceList lists the workspaces published in repository.
func (c *Client) FetchWorkspaceList(ctx context.Context, repository string) ([]params.WorkspaceSummary, error) {
	var list itemList
	endpoint := c.endpoint([]string{"repositories", repository, "items"}, url.Values{"type": {"WORKSPACE"}})
	if err := c.getJSON(ctx, "list workspaces", endpoint, &list); err != nil {
		return nil, err
	}
	return list.Items, nil
}

// FetchParameters loads the workspace item and its published parameters
// concurrently.
func (c *Client) FetchParameters(ctx context.Context, repository, name string) (params.Detail, error) {
	var detail params.Detail

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.getJSON(gctx, "fetch workspace", c.endpoint([]string{"repositories", repository, "items", name}, nil), &detail.Item)
	})
	g.Go(func() error {
		return c.getJSON(gctx, "fetch parameters", c.endpoint([]string{"repositories", repository, "items", name, "parameters"}, nil), &detail.Parameters)
	})
	if err := g.Wait(); err != nil {
		return params.Detail{}, err
	}
	if detail.Item.Repository == "" {
		detail.Item.Repository = repository
	}
	return detail, nil
}

func (c *Client) endpoint(segments []string, query url.Values) string {
	u := *c.baseURL
	escaped := make([]string, len(segments))
	for i, segment := range segments {
		escaped[i] = url.PathEscape(segment)
	}
	base := strings.TrimRight(u.EscapedPath(), "/") + apiPrefix
	u.RawPath = base + "/" + strings.Join(escaped, "/")
	if unescaped, err := url.PathUnescape(u.RawPath); err == nil {
		u.Path = unescaped
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) getJSON(ctx context.Context, op, endpoint string, out any) error {
	return c.do(ctx, op, http.MethodGet, endpoint, nil, "", out)
}

func (c *Client) postJSON(ctx context.Context, op, endpoint string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("fmeflow: encode %s: %w", op, err)
	}
	return c.do(ctx, op, http.MethodPost, endpoint, bytes.NewReader(body), "application/json", out)
}

func (c *Client) do(ctx context.Context, op, method, endpoint string, body io.Reader, contentType string, out any) error {
	return c.doWithHeaders(ctx, op, method, endpoint, body, http.Header{"Content-Type": nonEmpty(contentType)}, out)
}

func (c *Client) doWithHeaders(ctx context.Context, op, method, endpoint string, body io.Reader, headers http.Header, out any) error {
	reqCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("fmeflow: build %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "fmetoken token="+c.token)
	}
	for key, values := range headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return transportError(op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return transportError(op, err)
	}
	c.logger.Debug("fmeflow request", "op", op, "method", method, "status", resp.StatusCode, "duration", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(op, resp.StatusCode, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return decodeError(op, err)
	}
	return nil
}

func nonEmpty(value string) []string {
	if value == "" {
		return nil
	}
	return []string{value}
}
