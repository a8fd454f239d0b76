package assignmentservice

import (
	"context"
	"fmt"

	"github.com/haguru/kakashi/internal/interfaces"
	"github.com/haguru/kakashi/internal/models"
	"github.com/haguru/kakashi/pkg/helper"
)

// Options select the strict variants of checks the service historically
// skipped. The zero value preserves the original permissive behavior:
// accept/reject overwrite terminal states and any authenticated admin may
// act on any assignment.
type Options struct {
	StrictTransitions bool
	StrictAdminScope  bool
}

// AssignmentService implements the assignment workflow state machine:
// Pending -> Accepted, Pending -> Rejected, both terminal.
type AssignmentService struct {
	Repo    interfaces.AssignmentRepository
	Logger  interfaces.Logger
	Options Options
}

// NewAssignmentService creates a new AssignmentService instance.
func NewAssignmentService(repo interfaces.AssignmentRepository, logger interfaces.Logger, opts Options) *AssignmentService {
	return &AssignmentService{
		Repo:    repo,
		Logger:  logger,
		Options: opts,
	}
}

// Create stores a new Pending assignment owned by the authenticated user.
// The owner id always comes from the caller's token, never from the body.
func (s *AssignmentService) Create(ctx context.Context, ownerUserID, task, adminID string) (*models.Assignment, error) {
	funcName := helper.GetFuncName()

	assignment := models.NewAssignment(ownerUserID, task, adminID)

	id, err := s.Repo.AddAssignment(ctx, *assignment)
	if err != nil {
		s.Logger.Error(ErrFailedToCreate, "func", funcName, "user", ownerUserID, "error", err)
		return nil, fmt.Errorf("%s: %w", ErrFailedToCreate, err)
	}
	assignment.ID = id

	s.Logger.Info("Assignment created", "func", funcName, "id", id, "user", ownerUserID, "admin", adminID)
	return assignment, nil
}

// ListForAdmin returns all assignments addressed to the given admin,
// whatever their status, as a point-in-time snapshot in store order.
func (s *AssignmentService) ListForAdmin(ctx context.Context, adminID string) ([]models.Assignment, error) {
	assignments, err := s.Repo.ListByAdmin(ctx, adminID)
	if err != nil {
		s.Logger.Error(ErrFailedToList, "admin", adminID, "error", err)
		return nil, fmt.Errorf("%s: %w", ErrFailedToList, err)
	}
	return assignments, nil
}

// Accept moves the assignment to Accepted. callerAdminID is the
// authenticated admin performing the review.
func (s *AssignmentService) Accept(ctx context.Context, id, callerAdminID string) (*models.Assignment, error) {
	return s.transition(ctx, id, callerAdminID, models.StatusAccepted)
}

// Reject moves the assignment to Rejected.
func (s *AssignmentService) Reject(ctx context.Context, id, callerAdminID string) (*models.Assignment, error) {
	return s.transition(ctx, id, callerAdminID, models.StatusRejected)
}

// transition is a read-then-write; two concurrent calls on the same id can
// race with last-write-wins and no detection.
func (s *AssignmentService) transition(ctx context.Context, id, callerAdminID string, status models.Status) (*models.Assignment, error) {
	funcName := helper.GetFuncName()

	assignment, err := s.Repo.GetAssignmentByID(ctx, id)
	if err != nil {
		s.Logger.Error(ErrRetrievingRecord, "func", funcName, "id", id, "error", err)
		return nil, fmt.Errorf("%s: %w", ErrRetrievingRecord, err)
	}
	if assignment == nil {
		return nil, ErrNotFound
	}

	if s.Options.StrictAdminScope && assignment.Admin != callerAdminID {
		s.Logger.Warn("Admin acted on assignment outside their scope",
			"func", funcName, "id", id, "admin", callerAdminID, "assigned", assignment.Admin)
		return nil, ErrNotAssignedAdmin
	}

	if s.Options.StrictTransitions && assignment.Status.Terminal() {
		return nil, ErrInvalidTransition
	}

	if err := s.Repo.UpdateStatus(ctx, id, status); err != nil {
		s.Logger.Error(ErrFailedToUpdate, "func", funcName, "id", id, "status", status, "error", err)
		return nil, fmt.Errorf("%s: %w", ErrFailedToUpdate, err)
	}

	assignment.Status = status
	s.Logger.Info("Assignment status updated", "func", funcName, "id", id, "status", status)
	return assignment, nil
}
