package http

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedAddress means a URL could not be used at all. No network
	// activity happens before this error is returned.
	ErrMalformedAddress = errors.New("malformed resource address")

	// ErrResourceUnavailable covers connection failures, non-200 responses
	// and broken response bodies.
	ErrResourceUnavailable = errors.New("resource unavailable")
)

// AddressError describes a rejected URL.
type AddressError struct {
	URL    string
	Reason string
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("%s: %q: %s", ErrMalformedAddress, e.URL, e.Reason)
}

func (e *AddressError) Unwrap() error {
	return ErrMalformedAddress
}

// UnavailableError wraps the transport or status failure for a URL.
type UnavailableError struct {
	URL string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrResourceUnavailable, e.URL, e.Err)
}

// Unwrap exposes both the kind and the underlying cause.
func (e *UnavailableError) Unwrap() []error {
	return []error{ErrResourceUnavailable, e.Err}
}

// StatusError reports a response whose status code is not 200 OK.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Status)
}
