package domain

import "errors"

// Recoverable domain errors. The HTTP layer translates these into status
// codes; none of them should ever crash the process.
var (
	ErrDuplicateUsername   = errors.New("username already exists")
	ErrDuplicateEmail      = errors.New("email already exists")
	ErrDuplicateRole       = errors.New("role already exists")
	ErrDuplicatePermission = errors.New("permission already exists")

	ErrUserNotFound       = errors.New("user not found")
	ErrRoleNotFound       = errors.New("role not found")
	ErrPermissionNotFound = errors.New("permission not found")

	// ErrInvalidCredentials covers both unknown username and wrong password.
	// The two cases are deliberately indistinguishable to block username
	// enumeration.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken covers bad signature, malformed structure, expiry and
	// wrong token class. A single opaque outcome keeps validation from acting
	// as a signature-vs-expiry oracle.
	ErrInvalidToken = errors.New("invalid token")

	ErrAccountDisabled = errors.New("account disabled")
	ErrAccountLocked   = errors.New("account locked")

	ErrTooManyAttempts = errors.New("too many login attempts")
)
