package interfaces

import (
	"context"

	"github.com/haguru/kakashi/internal/models"
)

// AssignmentRepository stores assignment records and their review status.
type AssignmentRepository interface {
	// AddAssignment inserts a new assignment and returns its assigned id.
	AddAssignment(ctx context.Context, assignment models.Assignment) (string, error)
	GetAssignmentByID(ctx context.Context, id string) (*models.Assignment, error)
	// ListByAdmin returns every assignment addressed to the given admin id,
	// in store-native order.
	ListByAdmin(ctx context.Context, adminID string) ([]models.Assignment, error)
	// UpdateStatus sets the status of the assignment with the given id.
	UpdateStatus(ctx context.Context, id string, status models.Status) error
	EnsureIndices(ctx context.Context) error
	Close(ctx context.Context) error
}
