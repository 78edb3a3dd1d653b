package webdriver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

// DefaultTimeout bounds a single protocol request. Session creation on an
// autoscaling grid waits for a node to come up, so it is generous.
const DefaultTimeout = 3600 * time.Second

// Client talks to a WebDriver endpoint
type Client struct {
	baseURL  string
	http     *http.Client
	username string
	password string
	limiter  *rate.Limiter
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithBasicAuth authenticates every request against the grid
func WithBasicAuth(username, password string) ClientOption {
	return func(c *Client) {
		c.username = username
		c.password = password
	}
}

// WithSessionRate limits new session requests to perSecond. Zero disables the limit.
func WithSessionRate(perSecond float64) ClientOption {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// NewClient creates a client for the endpoint at baseURL
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConnsPerHost: 32,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the endpoint the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Status reports whether the endpoint is ready to create sessions
func (c *Client) Status(ctx context.Context) (bool, string, error) {
	value, err := c.do(ctx, http.MethodGet, "/status", nil)
	if err != nil {
		return false, "", err
	}
	return value.Get("ready").Bool(), value.Get("message").String(), nil
}

// NewSession requests a browser session matching caps
func (c *Client) NewSession(ctx context.Context, caps map[string]any) (*Session, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for session slot: %w", err)
		}
	}

	payload := map[string]any{
		"capabilities": map[string]any{
			"alwaysMatch": caps,
		},
	}
	value, err := c.do(ctx, http.MethodPost, "/session", payload)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	id := value.Get("sessionId").String()
	if id == "" {
		return nil, fmt.Errorf("creating session: response has no session id")
	}
	returned, _ := value.Get("capabilities").Value().(map[string]any)
	return &Session{client: c, ID: id, Capabilities: returned}, nil
}

// do sends one command and returns the "value" member of the response
func (c *Client) do(ctx context.Context, method, path string, body any) (gjson.Result, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return gjson.Result{}, fmt.Errorf("encoding %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return gjson.Result{}, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("reading %s %s response: %w", method, path, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return gjson.Result{}, errorFromResponse(resp.StatusCode, data)
	}
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, fmt.Errorf("%s %s: invalid JSON response", method, path)
	}
	return gjson.GetBytes(data, "value"), nil
}
