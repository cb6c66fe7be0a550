package accountant

import "errors"

var (
	// ErrUserNotFound is returned by Login when no account exists for the
	// supplied username.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned by Login when the header cannot be
	// decoded or the password does not match the stored hash.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountNotActivated is returned by Login for accounts that exist
	// but have not been activated.
	ErrAccountNotActivated = errors.New("account not activated")
	// ErrSessionNotFound is returned by Logout when the token has no active
	// session (never existed, already expired, or already logged out).
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionConflict is returned by Login when the derived token is
	// already bound to an active session owned by a different user.
	ErrSessionConflict = errors.New("session token conflict")
	// ErrStoreUnavailable wraps session store persistence failures.
	ErrStoreUnavailable = errors.New("session store unavailable")
	// ErrServiceNotReady is returned by New when a required collaborator is
	// missing.
	ErrServiceNotReady = errors.New("service not initialized")
)
