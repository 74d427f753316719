package core

import (
	"errors"
	"fmt"
)

// ErrUpstreamUnavailable is returned when the text-generation service cannot be reached
var ErrUpstreamUnavailable = errors.New("text generation service unavailable")

// UpstreamUnavailableError wraps a transport failure talking to a provider
type UpstreamUnavailableError struct {
	Provider string
	Err      error
}

func (e *UpstreamUnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Provider, ErrUpstreamUnavailable)
	}
	return fmt.Sprintf("%s: %v: %v", e.Provider, ErrUpstreamUnavailable, e.Err)
}

// Unwrap exposes both the sentinel and the transport cause
func (e *UpstreamUnavailableError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUpstreamUnavailable}
	}
	return []error{ErrUpstreamUnavailable, e.Err}
}

// UpstreamError is returned when the provider answers with a non-success status
type UpstreamError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned status %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// ParseError is returned when a provider reply cannot be decoded.
// Raw keeps the reply text for diagnostics.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse model response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
