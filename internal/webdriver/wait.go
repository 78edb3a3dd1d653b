package webdriver

import (
	"context"
	"errors"
	"time"
)

// DefaultPollInterval is how often Wait re-evaluates its condition
const DefaultPollInterval = 500 * time.Millisecond

// Condition reports whether the awaited state has been reached
type Condition func(ctx context.Context) (bool, error)

// Wait polls a condition until it holds or the timeout elapses
type Wait struct {
	Timeout  time.Duration
	Interval time.Duration
}

// NewWait creates a Wait with the default poll interval
func NewWait(timeout time.Duration) *Wait {
	return &Wait{Timeout: timeout, Interval: DefaultPollInterval}
}

// Until evaluates cond until it returns true. Lookup errors for elements and
// frames that are not there yet are retried; any other error stops the wait.
func (w *Wait) Until(ctx context.Context, cond Condition) error {
	interval := w.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	deadline := time.Now().Add(w.Timeout)

	var last error
	for {
		ok, err := cond(ctx)
		switch {
		case err != nil && !retryable(err):
			return err
		case err == nil && ok:
			return nil
		}
		last = err

		if time.Now().After(deadline) {
			return &TimeoutError{Timeout: w.Timeout, Last: last}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

func retryable(err error) bool {
	return errors.Is(err, ErrNoSuchElement) ||
		errors.Is(err, ErrStaleElement) ||
		errors.Is(err, ErrNoSuchFrame)
}

// FrameAvailable switches into the named frame as soon as it exists
func FrameAvailable(s *Session, name string) Condition {
	return func(ctx context.Context) (bool, error) {
		if err := s.SwitchToFrameByName(ctx, name); err != nil {
			return false, err
		}
		return true, nil
	}
}

// ElementPresent stores the first element matching by in *out once it exists
func ElementPresent(s *Session, by By, out **Element) Condition {
	return func(ctx context.Context) (bool, error) {
		el, err := s.FindElement(ctx, by)
		if err != nil {
			return false, err
		}
		*out = el
		return true, nil
	}
}

// ElementClickable stores the first element matching by in *out once it is
// displayed and enabled
func ElementClickable(s *Session, by By, out **Element) Condition {
	return func(ctx context.Context) (bool, error) {
		el, err := s.FindElement(ctx, by)
		if err != nil {
			return false, err
		}
		displayed, err := el.IsDisplayed(ctx)
		if err != nil || !displayed {
			return false, err
		}
		enabled, err := el.IsEnabled(ctx)
		if err != nil || !enabled {
			return false, err
		}
		*out = el
		return true, nil
	}
}
