package playground

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Endpoints locates the remote playground.
type Endpoints struct {
	ExecuteURL string
	MiriURL    string
	GistURL    string
	ShareURL   string
	// Referer is sent with gist uploads.
	Referer string
}

// DefaultEndpoints points at play.rust-lang.org.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		ExecuteURL: "https://play.rust-lang.org/execute",
		MiriURL:    "https://play.rust-lang.org/miri",
		GistURL:    "https://play.rust-lang.org/meta/gist/",
		ShareURL:   "https://play.rust-lang.org/",
		Referer:    "https://discord.gg/rust-lang",
	}
}

// Client talks to the playground over HTTP. It holds no per-call state and
// is safe for concurrent use.
type Client struct {
	http      *http.Client
	endpoints Endpoints
	logger    *zap.Logger
}

// NewClient creates a client with the given request timeout.
func NewClient(endpoints Endpoints, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		endpoints: endpoints,
		logger:    logger,
	}
}

// Endpoints returns the endpoints the client was built with.
func (c *Client) Endpoints() Endpoints {
	return c.endpoints
}

// Execute compiles and runs code.
func (c *Client) Execute(ctx context.Context, req ExecuteRequest) (*Result, error) {
	res, err := c.postResult(ctx, "execute", c.endpoints.ExecuteURL, req)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("execute finished",
		zap.String("channel", string(req.Channel)),
		zap.String("crate_type", string(req.CrateType)),
		zap.Bool("success", res.Success))
	return res, nil
}

// Miri runs code under the undefined-behavior checker.
func (c *Client) Miri(ctx context.Context, req MiriRequest) (*Result, error) {
	res, err := c.postResult(ctx, "miri", c.endpoints.MiriURL, req)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("miri finished", zap.Bool("success", res.Success))
	return res, nil
}

// CreateGist uploads code and returns the gist id.
func (c *Client) CreateGist(ctx context.Context, code string) (string, error) {
	headers := map[string]string{"Referer": c.endpoints.Referer}

	var resp map[string]any
	if err := c.postJSON(ctx, "gist", c.endpoints.GistURL, gistRequest{Code: code}, headers, &resp); err != nil {
		return "", err
	}
	c.logger.Info("gist response", zap.Any("response", resp))

	id, _ := resp["id"].(string)
	if id == "" {
		return "", &RemoteShapeError{Op: "gist", Err: ErrNoGistID}
	}
	return id, nil
}

// wireResult mirrors Result with pointer fields so absent keys are detectable.
type wireResult struct {
	Success *bool   `json:"success"`
	Stdout  *string `json:"stdout"`
	Stderr  *string `json:"stderr"`
}

func (c *Client) postResult(ctx context.Context, op, url string, body any) (*Result, error) {
	var raw *wireResult
	if err := c.postJSON(ctx, op, url, body, nil, &raw); err != nil {
		return nil, err
	}
	if raw == nil || raw.Success == nil || raw.Stdout == nil || raw.Stderr == nil {
		return nil, &RemoteShapeError{Op: op, Err: ErrIncompleteResult}
	}
	return &Result{Success: *raw.Success, Stdout: *raw.Stdout, Stderr: *raw.Stderr}, nil
}

func (c *Client) postJSON(ctx context.Context, op, url string, body any, headers map[string]string, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: encoding request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TransportError{Op: op, Err: fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(respBody), 200))}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return &RemoteShapeError{Op: op, Err: err}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
