package client

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"syscall"
)

// StatusError is returned when the node answers with a status other than 200.
type StatusError struct {
	Status int
	URL    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Received bad response code %d %s", e.Status, e.URL)
}

// IsStatusError returns true if err is or wraps a StatusError.
func IsStatusError(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}

// ConnectionRefusedError is returned when nothing listens at the target URL.
type ConnectionRefusedError struct {
	URL string
	Err error
}

func (e *ConnectionRefusedError) Error() string {
	return fmt.Sprintf("connect ECONNREFUSED %s: %v", e.URL, e.Err)
}

func (e *ConnectionRefusedError) Unwrap() error {
	return e.Err
}

// IsConnectionRefused returns true if err is or wraps a ConnectionRefusedError.
func IsConnectionRefused(err error) bool {
	var ce *ConnectionRefusedError
	return errors.As(err, &ce)
}

// ContentTypeError is returned when a 200 response is not JSON.
type ContentTypeError struct {
	ContentType string
	URL         string
}

func (e *ContentTypeError) Error() string {
	return fmt.Sprintf("expected JSON response from %s, got content type %q", e.URL, e.ContentType)
}

// IsTransportFailure reports whether err came from the HTTP exchange itself:
// a bad status, a refused connection or any other request failure.
func IsTransportFailure(err error) bool {
	if err == nil {
		return false
	}
	var ue *url.Error
	return IsStatusError(err) || IsConnectionRefused(err) || errors.As(err, &ue)
}

// classify turns a request error into a ConnectionRefusedError when the
// target refused the connection.
func classify(rawURL string, err error) error {
	if errors.Is(err, syscall.ECONNREFUSED) || strings.Contains(err.Error(), "connection refused") {
		return &ConnectionRefusedError{URL: rawURL, Err: err}
	}
	return err
}
