package interfaces

import (
	"context"

	"github.com/haguru/kakashi/internal/models"
)

// PrincipalRepository stores and retrieves one namespace of principals
// (users or admins). An implementation is bound to a single collection, so
// the same username may be registered once per namespace.
type PrincipalRepository interface {
	// AddPrincipal inserts a new principal and returns its assigned id.
	// Inserting a username that already exists in the collection fails
	// without mutating the store.
	AddPrincipal(ctx context.Context, principal models.Principal) (string, error)
	GetPrincipalByUsername(ctx context.Context, username string) (*models.Principal, error)
	GetPrincipalByID(ctx context.Context, id string) (*models.Principal, error)
	EnsureIndices(ctx context.Context) error
	Close(ctx context.Context) error
}
