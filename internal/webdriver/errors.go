package webdriver

import (
	"fmt"
	"time"

	"github.com/tidwall/gjson"
)

// Error is a W3C WebDriver error response
type Error struct {
	Status     int
	Code       string
	Message    string
	Stacktrace string
}

// Sentinel errors for errors.Is, matched by error code
var (
	ErrNoSuchElement     = &Error{Code: "no such element"}
	ErrStaleElement      = &Error{Code: "stale element reference"}
	ErrNoSuchFrame       = &Error{Code: "no such frame"}
	ErrSessionNotCreated = &Error{Code: "session not created"}
	ErrInvalidSession    = &Error{Code: "invalid session id"}
)

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("webdriver: %s (status %d)", e.Code, e.Status)
	}
	return fmt.Sprintf("webdriver: %s: %s", e.Code, e.Message)
}

// Is matches on the error code so sentinels work for any status
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func errorFromResponse(status int, body []byte) *Error {
	value := gjson.GetBytes(body, "value")
	if !gjson.ValidBytes(body) || !value.Get("error").Exists() {
		return &Error{Status: status, Code: "unknown error", Message: string(body)}
	}
	return &Error{
		Status:     status,
		Code:       value.Get("error").String(),
		Message:    value.Get("message").String(),
		Stacktrace: value.Get("stacktrace").String(),
	}
}

// TimeoutError is returned by Wait.Until when the condition never held
type TimeoutError struct {
	Timeout time.Duration
	Last    error
}

func (e *TimeoutError) Error() string {
	if e.Last != nil {
		return fmt.Sprintf("condition not met after %s: %v", e.Timeout, e.Last)
	}
	return fmt.Sprintf("condition not met after %s", e.Timeout)
}

func (e *TimeoutError) Unwrap() error {
	return e.Last
}
