package peers

import (
	"errors"
	"fmt"
)

// InjectionError is returned when a handshake fails. Completed counts the
// handshakes that succeeded before the failing one.
type InjectionError struct {
	Completed int
	Err       error
}

func (e *InjectionError) Error() string {
	return fmt.Sprintf("peer injection stopped after %d peers: %v", e.Completed, e.Err)
}

func (e *InjectionError) Unwrap() error {
	return e.Err
}

// IsInjectionError returns true if err is or wraps an InjectionError.
func IsInjectionError(err error) bool {
	var ie *InjectionError
	return errors.As(err, &ie)
}
