package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for the request taxonomy. The typed errors below unwrap
// to these so callers can branch with errors.Is.
var (
	ErrRequest = errors.New("request failed")
	ErrNetwork = errors.New("network error")
	ErrParse   = errors.New("response is not valid JSON")
)

// Lookup and registry errors.
var (
	ErrNotFound          = errors.New("entity not found")
	ErrInvalidID         = errors.New("invalid entity ID")
	ErrUnknownEntityType = errors.New("unknown entity type")
)

// Cache lifecycle errors.
var (
	ErrCacheDetached   = errors.New("cache is detached")
	ErrAlreadyAttached = errors.New("cache is already attached")
)

// RequestError reports a non-2xx HTTP response. Message is the best
// available human-readable text: server detail, configured fallback, or
// the status text, in that order.
type RequestError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *RequestError) Error() string {
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return ErrRequest
}

// NotFound reports whether the server answered 404.
func (e *RequestError) NotFound() bool {
	return e.StatusCode == 404
}

// NetworkError reports a transport failure before any response arrived.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() []error {
	return []error{ErrNetwork, e.Err}
}

// ParseError reports a response body that was present but not valid JSON.
type ParseError struct {
	Body string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse response: %v", e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}
