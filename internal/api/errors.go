package api

import (
	"errors"
	"fmt"
)

// NetworkError indicates a transport failure: the request never
// produced an HTTP response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error on %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// DecodeError indicates a response was received but its body does not
// match the expected schema.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding response from %s: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// AuthError indicates the gateway rejected the current credential
// (401 or 403). The client surfaces it to the caller; it never mutates
// the session itself.
type AuthError struct {
	Op     string
	Status int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication rejected (%d) on %s", e.Status, e.Op)
}

// ActionError indicates the gateway rejected the request for domain
// reasons (e.g. an unknown quarantine id) with a non-auth error status.
type ActionError struct {
	Op      string
	Status  int
	Message string
}

func (e *ActionError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error (%d) on %s: %s", e.Status, e.Op, e.Message)
	}
	return fmt.Sprintf("server error (%d) on %s", e.Status, e.Op)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// IsNetworkError reports whether err is a transport failure.
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// IsDecodeError reports whether err is a schema mismatch.
func IsDecodeError(err error) bool {
	var decErr *DecodeError
	return errors.As(err, &decErr)
}
