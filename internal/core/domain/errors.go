package domain

import "errors"

// Authorization pipeline errors. All four are terminal for the current
// request: no retry, no fallback role, no downgrade by handlers.
var (
	// ErrUnauthenticated: no credential, or one the transport could not parse.
	ErrUnauthenticated = errors.New("missing or malformed credential")
	// ErrInvalidCredential: a credential was presented but the identity
	// provider rejected it (bad signature, expired, wrong audience).
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrForbidden: verified principal with an insufficient or missing role
	// record. A missing record is never treated as the default role.
	ErrForbidden = errors.New("access forbidden")
	// ErrStoreUnavailable: the user store could not be consulted. Distinct
	// from ErrForbidden so an outage is not reported as a policy decision.
	ErrStoreUnavailable = errors.New("user store unavailable")
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
	ErrInvalidRole  = errors.New("invalid role")
	ErrInvalidEmail = errors.New("invalid email")
)

var (
	ErrBookNotFound = errors.New("book not found")
)

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrOrderAlreadyPaid = errors.New("order already paid")
)

var (
	ErrPaymentNotFound = errors.New("payment not found")
)
