package hostapi

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

	"github.com/phrazzld/launchpad/internal/config"
	"github.com/phrazzld/launchpad/internal/domain"
	"github.com/phrazzld/launchpad/internal/service"
	"github.com/phrazzld/launchpad/internal/task"
)

// maxErrorBody bounds how much of a failed response is read.
const maxErrorBody = 64 << 10

// Client talks to the host's task API.
type Client struct {
	baseURL      *url.URL
	http         *http.Client
	queryTimeout time.Duration
	logger       *slog.Logger
}

var (
	_ task.Executor   = (*Client)(nil)
	_ service.Queries = (*Client)(nil)
)

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New creates a Client for the host API at cfg.APIURL.
func New(cfg config.HostConfig, logger *slog.Logger, opts ...Option) (*Client, error) {
	base, err := url.Parse(cfg.APIURL)
	if err != nil {
		return nil, fmt.Errorf("parse host api url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("host api url must be http or https, got %q", cfg.APIURL)
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		baseURL:      base,
		http:         &http.Client{},
		queryTimeout: cfg.RequestTimeout,
		logger:       logger.With("component", "host_api"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// StartDownload implements task.Executor.
func (c *Client) StartDownload(ctx context.Context, req task.DownloadRequest) error {
	return c.do(ctx, "download", http.MethodPost, "/tasks/download", nil, req, nil)
}

// StartUpdate implements task.Executor.
func (c *Client) StartUpdate(ctx context.Context, req task.DownloadRequest) error {
	return c.do(ctx, "update", http.MethodPost, "/tasks/update", nil, req, nil)
}

// Verify implements task.Executor.
func (c *Client) Verify(ctx context.Context, req task.VerifyRequest) (domain.VerifyResult, error) {
	var result domain.VerifyResult
	err := c.do(ctx, "verify", http.MethodPost, "/tasks/verify", nil, req, &result)
	return result, err
}

// Repair implements task.Executor.
func (c *Client) Repair(ctx context.Context, req task.RepairRequest) (domain.RepairResult, error) {
	var result domain.RepairResult
	err := c.do(ctx, "repair", http.MethodPost, "/tasks/repair", nil, req, &result)
	return result, err
}

// FetchInstaller implements task.Executor.
func (c *Client) FetchInstaller(ctx context.Context, req task.InstallerRequest) (domain.InstallerResult, error) {
	var result domain.InstallerResult
	err := c.do(ctx, "installer", http.MethodPost, "/tasks/installer", nil, req, &result)
	return result, err
}

// Cancel implements task.Executor.
func (c *Client) Cancel(ctx context.Context, folder string) error {
	body := struct {
		Folder string `json:"folder"`
	}{Folder: folder}
	return c.do(ctx, "cancel", http.MethodPost, "/tasks/cancel", nil, body, nil)
}

// ResolveDefaultExecutable implements service.Queries.
func (c *Client) ResolveDefaultExecutable(ctx context.Context, gameID, folder, endpoint string) (string, error) {
	ctx, cancel := c.queryContext(ctx)
	defer cancel()

	var out struct {
		Path string `json:"path"`
	}
	q := url.Values{"folder": {folder}, "endpoint": {endpoint}}
	err := c.do(ctx, "resolve_executable", http.MethodGet, "/games/"+url.PathEscape(gameID)+"/executable", q, nil, &out)
	return out.Path, err
}

// ListGames implements service.Queries.
func (c *Client) ListGames(ctx context.Context) ([]domain.GameSummary, error) {
	ctx, cancel := c.queryContext(ctx)
	defer cancel()

	var games []domain.GameSummary
	if err := c.do(ctx, "list_games", http.MethodGet, "/games", nil, nil, &games); err != nil {
		return nil, err
	}
	return games, nil
}

// ListPresets implements service.Queries.
func (c *Client) ListPresets(ctx context.Context, gameID string) ([]domain.Preset, error) {
	ctx, cancel := c.queryContext(ctx)
	defer cancel()

	var presets []domain.Preset
	if err := c.do(ctx, "list_presets", http.MethodGet, "/games/"+url.PathEscape(gameID)+"/presets", nil, nil, &presets); err != nil {
		return nil, err
	}
	return presets, nil
}

func (c *Client) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.queryTimeout)
}

// endpoint joins the already-escaped path onto the base URL.
func (c *Client) endpoint(escapedPath string, query url.Values) string {
	u := *c.baseURL
	u.RawPath = strings.TrimSuffix(c.baseURL.EscapedPath(), "/") + escapedPath
	if p, err := url.PathUnescape(u.RawPath); err == nil {
		u.Path = p
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends body as JSON and decodes a 2xx response into out when out is
// non-nil. Non-2xx responses become *Error.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &Error{Operation: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return &Error{Operation: op, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Operation: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("host call finished",
		"operation", op,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(op, resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return &Error{Operation: op, Status: resp.StatusCode, Message: "malformed response", Err: err}
	}
	return nil
}

func decodeError(op string, resp *http.Response) error {
	e := &Error{Operation: op, Status: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		e.Message = http.StatusText(resp.StatusCode)
		e.Err = err
		return e
	}

	var body hostErrorBody
	if json.Unmarshal(raw, &body) == nil && (body.Code != "" || body.Message != "") {
		e.Code = body.Code
		e.Message = body.Message
	} else {
		e.Message = strings.TrimSpace(string(raw))
	}
	if e.Message == "" {
		e.Message = http.StatusText(resp.StatusCode)
	}
	return e
}
