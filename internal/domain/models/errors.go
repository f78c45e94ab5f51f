package models

import (
	"errors"
	"fmt"
)

var (
	ErrAuthFailure           = errors.New("authentication failed")
	ErrPasswordResetRequired = errors.New("password reset required")
	ErrRefreshFailure        = errors.New("token refresh failed")
	ErrFetchFailure          = errors.New("fetch failed")
	ErrDispatchItem          = errors.New("dispatch item failed")
)

// AuthError is returned by a full credential exchange.
type AuthError struct {
	Username string
	Reset    bool
	Err      error
}

func (e *AuthError) Error() string {
	if e.Reset {
		return fmt.Sprintf("auth %s: password reset required: %v", e.Username, e.Err)
	}
	return fmt.Sprintf("auth %s: %v", e.Username, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

func (e *AuthError) Is(target error) bool {
	if e.Reset {
		return target == ErrPasswordResetRequired
	}
	return target == ErrAuthFailure
}

// RefreshError is returned when a refresh token is rejected.
type RefreshError struct {
	Username string
	Err      error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("refresh %s: %v", e.Username, e.Err)
}

func (e *RefreshError) Unwrap() error { return e.Err }

func (e *RefreshError) Is(target error) bool { return target == ErrRefreshFailure }

// FetchError wraps a failed stats or batch request.
type FetchError struct {
	Op     string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetchFailure }

// DispatchItemError is the failure of one validate+report unit.
type DispatchItemError struct {
	MsgHash string
	Egress  string
	Err     error
}

func (e *DispatchItemError) Error() string {
	return fmt.Sprintf("dispatch %s via %s: %v", shortHash(e.MsgHash), egressLabel(e.Egress), e.Err)
}

func (e *DispatchItemError) Unwrap() error { return e.Err }

func (e *DispatchItemError) Is(target error) bool { return target == ErrDispatchItem }

func shortHash(h string) string {
	if len(h) > 10 {
		return h[:10] + "..."
	}
	return h
}

func egressLabel(e string) string {
	if e == "" {
		return "no-proxy"
	}
	return e
}

// EgressLabel is the human form of an egress used in logs.
func EgressLabel(e string) string { return egressLabel(e) }

// ShortHash trims a message hash for logs.
func ShortHash(h string) string { return shortHash(h) }
