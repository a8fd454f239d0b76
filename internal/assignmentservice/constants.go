package assignmentservice

import "errors"

var (
	// ErrNotFound means no assignment with the given id exists.
	ErrNotFound = errors.New("assignment not found")
	// ErrInvalidTransition is returned in strict-transitions mode when
	// accept/reject is called on an assignment that already left Pending.
	ErrInvalidTransition = errors.New("assignment is no longer pending")
	// ErrNotAssignedAdmin is returned in strict-admin-scope mode when an
	// admin acts on an assignment addressed to a different admin.
	ErrNotAssignedAdmin = errors.New("assignment belongs to a different admin")
)

const (
	ErrFailedToCreate   = "failed to create assignment"
	ErrFailedToList     = "failed to list assignments"
	ErrFailedToUpdate   = "failed to update assignment status"
	ErrRetrievingRecord = "error retrieving assignment"
)
