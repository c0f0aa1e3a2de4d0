package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var errNoProviders = errors.New("no ai providers configured")

// ErrKind classifies backend failures. The API layer maps kinds to HTTP
// statuses; an external policy layer may retry transient kinds. Neither
// decision lives in this package.
type ErrKind int

const (
	// ErrKindUnknown is an unclassified failure.
	ErrKindUnknown ErrKind = iota
	// ErrKindAuth is an authentication or configuration failure. Fatal,
	// never retried.
	ErrKindAuth
	// ErrKindRateLimited means the backend rejected the request for quota
	// reasons. Transient.
	ErrKindRateLimited
	// ErrKindTimeout means the bounded call exceeded its deadline or was
	// cancelled. Transient.
	ErrKindTimeout
	// ErrKindMalformed means the backend answered but the payload could
	// not be used.
	ErrKindMalformed
	// ErrKindUnavailable means the backend could not be reached or
	// reported a server-side failure. Transient.
	ErrKindUnavailable
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindAuth:
		return "auth"
	case ErrKindRateLimited:
		return "rate_limited"
	case ErrKindTimeout:
		return "timeout"
	case ErrKindMalformed:
		return "malformed"
	case ErrKindUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// ProviderError is a classified backend failure.
type ProviderError struct {
	Provider string
	Kind     ErrKind
	Status   int // HTTP status when the backend answered, 0 otherwise
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d): %v", e.Provider, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// classifyStatus maps an HTTP response status to an error kind.
func classifyStatus(status int) ErrKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrKindAuth
	case status == http.StatusTooManyRequests:
		return ErrKindRateLimited
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return ErrKindTimeout
	case status >= 500:
		return ErrKindUnavailable
	default:
		return ErrKindUnknown
	}
}

// transportError classifies a failed HTTP round trip. Context expiry maps
// to the timeout kind so a bounded call that runs out surfaces distinctly.
func transportError(provider string, err error) *ProviderError {
	kind := ErrKindUnavailable
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		kind = ErrKindTimeout
	}
	return &ProviderError{Provider: provider, Kind: kind, Err: err}
}

// statusError builds a classified error from a non-OK backend response.
func statusError(provider string, status int, body string) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Kind:     classifyStatus(status),
		Status:   status,
		Err:      fmt.Errorf("api error: %s", body),
	}
}

// malformedError marks an OK response whose payload could not be used.
func malformedError(provider string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: ErrKindMalformed, Err: err}
}

// KindOf extracts the classification of err, or ErrKindUnknown when err is
// not a provider error.
func KindOf(err error) ErrKind {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ErrKindUnknown
}
