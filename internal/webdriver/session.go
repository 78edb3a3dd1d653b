package webdriver

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/tidwall/gjson"
)

// Session is a live browser session on the grid
type Session struct {
	client *Client
	ID     string
	// Capabilities are the capabilities the grid returned for the session
	Capabilities map[string]any
}

func (s *Session) path(suffix string) string {
	return "/session/" + url.PathEscape(s.ID) + suffix
}

func (s *Session) do(ctx context.Context, method, suffix string, body any) (gjson.Result, error) {
	return s.client.do(ctx, method, s.path(suffix), body)
}

// Capability returns a returned capability by name
func (s *Session) Capability(name string) (any, bool) {
	v, ok := s.Capabilities[name]
	return v, ok
}

// Quit ends the session and releases the grid slot
func (s *Session) Quit(ctx context.Context) error {
	_, err := s.client.do(ctx, http.MethodDelete, s.path(""), nil)
	return err
}

// Navigate loads rawURL in the current browsing context
func (s *Session) Navigate(ctx context.Context, rawURL string) error {
	_, err := s.do(ctx, http.MethodPost, "/url", map[string]string{"url": rawURL})
	return err
}

// Title returns the document title
func (s *Session) Title(ctx context.Context) (string, error) {
	v, err := s.do(ctx, http.MethodGet, "/title", nil)
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

// FindElement returns the first element matching by
func (s *Session) FindElement(ctx context.Context, by By) (*Element, error) {
	v, err := s.do(ctx, http.MethodPost, "/element", by)
	if err != nil {
		return nil, err
	}
	return s.element(v)
}

// FindElements returns every element matching by
func (s *Session) FindElements(ctx context.Context, by By) ([]*Element, error) {
	v, err := s.do(ctx, http.MethodPost, "/elements", by)
	if err != nil {
		return nil, err
	}
	return s.elements(v)
}

// ExecuteScript runs script synchronously. Elements in args are passed as element references.
func (s *Session) ExecuteScript(ctx context.Context, script string, args ...any) (gjson.Result, error) {
	if args == nil {
		args = []any{}
	}
	return s.do(ctx, http.MethodPost, "/execute/sync", map[string]any{
		"script": script,
		"args":   args,
	})
}

// SwitchToFrame switches into frame. A nil frame selects the top-level context.
func (s *Session) SwitchToFrame(ctx context.Context, frame *Element) error {
	var id any
	if frame != nil {
		id = frame
	}
	_, err := s.do(ctx, http.MethodPost, "/frame", map[string]any{"id": id})
	return err
}

// SwitchToFrameByName switches into the frame whose id or name attribute equals name
func (s *Session) SwitchToFrameByName(ctx context.Context, name string) error {
	for _, by := range []By{ByID(name), ByName(name)} {
		frames, err := s.FindElements(ctx, by)
		if err != nil {
			return err
		}
		if len(frames) > 0 {
			return s.SwitchToFrame(ctx, frames[0])
		}
	}
	return &Error{Code: ErrNoSuchFrame.Code, Message: fmt.Sprintf("no frame named %q", name)}
}

// MaximizeWindow maximizes the current window
func (s *Session) MaximizeWindow(ctx context.Context) error {
	_, err := s.do(ctx, http.MethodPost, "/window/maximize", map[string]any{})
	return err
}

// DownloadableFiles lists the files the grid captured for this session.
// It requires managed downloads to be enabled for the session.
func (s *Session) DownloadableFiles(ctx context.Context) ([]string, error) {
	v, err := s.do(ctx, http.MethodGet, "/se/files", nil)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, n := range v.Get("names").Array() {
		names = append(names, n.String())
	}
	return names, nil
}

// InstallAddon installs the Firefox add-on at path and returns its id
func (s *Session) InstallAddon(ctx context.Context, path string, temporary bool) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading add-on: %w", err)
	}
	v, err := s.do(ctx, http.MethodPost, "/moz/addon/install", map[string]any{
		"addon":     base64.StdEncoding.EncodeToString(data),
		"temporary": temporary,
	})
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

func (s *Session) element(v gjson.Result) (*Element, error) {
	id := v.Get(elementKey).String()
	if id == "" {
		return nil, fmt.Errorf("response is not an element reference: %s", v.Raw)
	}
	return &Element{session: s, ID: id}, nil
}

func (s *Session) elements(v gjson.Result) ([]*Element, error) {
	var out []*Element
	for _, item := range v.Array() {
		el, err := s.element(item)
		if err != nil {
			return nil, err
		}
		out = append(out, el)
	}
	return out, nil
}
