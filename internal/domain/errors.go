package domain

import "errors"

// Sentinel errors shared across layers. Services wrap these with context via
// fmt.Errorf("...: %w", err); callers dispatch with errors.Is.
var (
	ErrNotFound       = errors.New("not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrSessionExpired = errors.New("session expired")
	ErrUnsupported    = errors.New("unsupported on this host")
)
