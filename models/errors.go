package models

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorKind string

const (
	KindInvalidName            ErrorKind = "invalid_name"
	KindNameConflict           ErrorKind = "name_conflict"
	KindQuotaExceeded          ErrorKind = "quota_exceeded"
	KindAuthExpired            ErrorKind = "auth_expired"
	KindPermissionDenied       ErrorKind = "permission_denied"
	KindNotFound               ErrorKind = "not_found"
	KindRateLimited            ErrorKind = "rate_limited"
	KindTemplatePartialFailure ErrorKind = "template_partial_failure"
	KindMissingParameter       ErrorKind = "missing_parameter"
	KindDuplicateMapping       ErrorKind = "duplicate_mapping"
	KindUnknown                ErrorKind = "unknown"
)

// DomainError is the single error currency of the sync engine. Remote
// provider errors are translated into one at the transport boundary and
// never travel further in raw form.
type DomainError struct {
	Kind       ErrorKind `json:"kind"`
	Message    string    `json:"message"`
	VendorCode string    `json:"vendor_code,omitempty"` // provider code, set when the error crossed the remote boundary
	Err        error     `json:"-"`
}

func (e *DomainError) Error() string {
	if e.VendorCode != "" {
		return fmt.Sprintf("%s (%s): %s", e.Kind, e.VendorCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error kind onto the HTTP status served to callers.
func (e *DomainError) StatusCode() int {
	switch e.Kind {
	case KindInvalidName, KindMissingParameter:
		return http.StatusBadRequest
	case KindAuthExpired:
		return http.StatusUnauthorized
	case KindPermissionDenied:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindNameConflict, KindDuplicateMapping:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindQuotaExceeded:
		return http.StatusInsufficientStorage
	case KindTemplatePartialFailure:
		return http.StatusMultiStatus
	default:
		return http.StatusInternalServerError
	}
}

// Retryable reports whether the operation may be retried later without
// changing the request.
func (e *DomainError) Retryable() bool {
	return e.Kind == KindRateLimited || e.Kind == KindQuotaExceeded
}

func NewDomainError(kind ErrorKind, message string) *DomainError {
	return &DomainError{Kind: kind, Message: message}
}

func NewRemoteError(kind ErrorKind, vendorCode, message string) *DomainError {
	return &DomainError{Kind: kind, VendorCode: vendorCode, Message: message}
}

func WrapDomainError(kind ErrorKind, message string, err error) *DomainError {
	return &DomainError{Kind: kind, Message: message, Err: err}
}

// AsDomainError unwraps err down to a *DomainError if one is in the chain.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	de, ok := AsDomainError(err)
	return ok && de.Kind == kind
}

// KindOf returns the kind carried by err, or KindUnknown for errors that
// never passed through a classifier.
func KindOf(err error) ErrorKind {
	if de, ok := AsDomainError(err); ok {
		return de.Kind
	}
	return KindUnknown
}
