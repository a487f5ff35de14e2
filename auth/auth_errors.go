package auth

import "errors"

var (
	// ErrInvalidRequestURL reports a malformed service or PDS URL. This is
	// a local precondition failure and is never retried.
	ErrInvalidRequestURL = errors.New("invalid request URL")

	// ErrMissingActiveSession reports an operation that requires an
	// established session when none is present.
	ErrMissingActiveSession = errors.New("no active session")

	// ErrNoCredentials reports an authentication attempt on a
	// service-only configuration constructed without a handle and
	// password. The restriction is a property of the configuration, not a
	// transient condition.
	ErrNoCredentials = errors.New("configuration has no credentials")
)
