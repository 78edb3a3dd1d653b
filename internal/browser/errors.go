package browser

import "fmt"

// AssertionError is a check a scenario made that did not hold. Cases report
// it as a failure rather than an error.
type AssertionError struct {
	Message string
	Want    any
	Got     any
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s: want %v, got %v", e.Message, e.Want, e.Got)
}

// expectEqual returns an AssertionError unless got equals want
func expectEqual[T comparable](message string, want, got T) error {
	if got == want {
		return nil
	}
	return &AssertionError{Message: message, Want: want, Got: got}
}
