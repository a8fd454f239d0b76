package accountservice

import "errors"

var (
	// ErrUnknownUsername means no principal with that username exists in
	// this namespace.
	ErrUnknownUsername = errors.New("unknown username")
	// ErrInvalidCredentials means the username exists but the password did
	// not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

const (
	// Error messages for account service operations
	ErrFailedToHashPassword = "failed to hash password" // #nosec G101
	ErrFailedToRegister     = "failed to register principal"
	ErrRetrievingPrincipal  = "error retrieving principal"
)
