package services

import "errors"

// Sentinel errors returned by the store services. Handlers map these to the
// corresponding HTTP failures.
var (
	ErrNotFound       = errors.New("not found")
	ErrForbidden      = errors.New("access denied")
	ErrOwnSubtree     = errors.New("node cannot be moved under its own subtree")
	ErrNotImplemented = errors.New("not implemented")
	ErrInvalidToken   = errors.New("invalid authentication credentials")
)
