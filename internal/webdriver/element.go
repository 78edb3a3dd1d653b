package webdriver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"
)

// elementKey identifies a web element reference in the W3C protocol
const elementKey = "element-6066-11e4-a52e-4f735466cecf"

// Element is a reference to a DOM element in a session
type Element struct {
	session *Session
	ID      string
}

// MarshalJSON encodes the element as a W3C element reference, so elements
// can be passed to ExecuteScript and SwitchToFrame.
func (e *Element) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{elementKey: e.ID})
}

func (e *Element) do(ctx context.Context, method, suffix string, body any) (gjson.Result, error) {
	return e.session.do(ctx, method, "/element/"+url.PathEscape(e.ID)+suffix, body)
}

// Text returns the rendered text of the element
func (e *Element) Text(ctx context.Context) (string, error) {
	v, err := e.do(ctx, http.MethodGet, "/text", nil)
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

// Click clicks the element
func (e *Element) Click(ctx context.Context) error {
	_, err := e.do(ctx, http.MethodPost, "/click", map[string]any{})
	return err
}

// IsSelected reports whether an option, checkbox or radio is selected
func (e *Element) IsSelected(ctx context.Context) (bool, error) {
	v, err := e.do(ctx, http.MethodGet, "/selected", nil)
	if err != nil {
		return false, err
	}
	return v.Bool(), nil
}

// IsDisplayed reports whether the element is visible
func (e *Element) IsDisplayed(ctx context.Context) (bool, error) {
	v, err := e.do(ctx, http.MethodGet, "/displayed", nil)
	if err != nil {
		return false, err
	}
	return v.Bool(), nil
}

// IsEnabled reports whether the element is enabled
func (e *Element) IsEnabled(ctx context.Context) (bool, error) {
	v, err := e.do(ctx, http.MethodGet, "/enabled", nil)
	if err != nil {
		return false, err
	}
	return v.Bool(), nil
}

// Property returns a DOM property of the element
func (e *Element) Property(ctx context.Context, name string) (gjson.Result, error) {
	return e.do(ctx, http.MethodGet, "/property/"+url.PathEscape(name), nil)
}

// FindElements returns the descendants of e matching by
func (e *Element) FindElements(ctx context.Context, by By) ([]*Element, error) {
	v, err := e.do(ctx, http.MethodPost, "/elements", by)
	if err != nil {
		return nil, err
	}
	return e.session.elements(v)
}
