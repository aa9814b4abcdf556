package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so the transport layer can map it to a status
// code without inspecting internal error chains.
type Kind int

const (
	// KindUnknown is the zero value; treated as an internal error.
	KindUnknown Kind = iota
	// KindIdentityProvider indicates the IdP rejected an account
	// creation/deletion request. Not retried automatically.
	KindIdentityProvider
	// KindAuthenticationFailed indicates the IdP rejected the supplied
	// credentials. Never retried.
	KindAuthenticationFailed
	// KindIdentityNotFound indicates the IdP accepted the credentials but no
	// local record exists. Surfaced distinctly so operators can detect sync
	// drift; this is not an invalid-credentials condition.
	KindIdentityNotFound
	// KindTokenRefreshFailed indicates an expired or revoked refresh token.
	KindTokenRefreshFailed
	// KindIdentityProviderUnavailable indicates a timeout or 5xx from the IdP.
	// Safe to retry once with backoff at the caller's discretion.
	KindIdentityProviderUnavailable
	// KindValidation indicates malformed input or a third-party token missing
	// required fields.
	KindValidation
	// KindDuplicate indicates a uniqueness violation (username/email taken).
	KindDuplicate
	// KindNotFound indicates a requested local resource does not exist.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindIdentityProvider:
		return "identity_provider_error"
	case KindAuthenticationFailed:
		return "authentication_failed"
	case KindIdentityNotFound:
		return "identity_not_found"
	case KindTokenRefreshFailed:
		return "token_refresh_failed"
	case KindIdentityProviderUnavailable:
		return "identity_provider_unavailable"
	case KindValidation:
		return "validation_error"
	case KindDuplicate:
		return "duplicate"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// AppError carries a taxonomy kind and a message safe to show to callers.
// The wrapped cause stays internal and is only ever logged.
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, &AppError{Kind: k}) match on kind alone.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// New creates an AppError with the given kind and safe message, wrapping cause
// (which may be nil).
func New(kind Kind, message string, cause error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: cause}
}

// KindOf extracts the taxonomy kind from an error chain, or KindUnknown.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// Sentinel errors for the common repository-level conditions. Services wrap
// these into kinded AppErrors before they reach a handler.

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")
