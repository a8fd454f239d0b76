package interfaces

import "context"

// AccountService handles registration and credential verification for one
// principal namespace.
type AccountService interface {
	Register(ctx context.Context, username, password string) (string, error)
	// Authenticate verifies the credentials and returns the principal's id.
	Authenticate(ctx context.Context, username, password string) (string, error)
}
