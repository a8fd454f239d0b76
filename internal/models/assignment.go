package models

import "time"

// Status is the review state of an assignment.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusAccepted Status = "Accepted"
	StatusRejected Status = "Rejected"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether s is an end state. Accepted and Rejected have no
// outgoing transitions.
func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// Assignment is a unit of work submitted by a user and routed to a specific
// admin for review. UserID is always taken from the authenticated caller,
// never from the request body. Assignments are never deleted.
type Assignment struct {
	ID       string    `json:"id" bson:"-" mapstructure:"id" db:"id"`
	UserID   string    `json:"userId" bson:"user_id" mapstructure:"user_id" db:"user_id"`
	Task     string    `json:"task" bson:"task" mapstructure:"task" db:"task"`
	Admin    string    `json:"admin" bson:"admin" mapstructure:"admin" db:"admin"`
	Status   Status    `json:"status" bson:"status" mapstructure:"status" db:"status"`
	DateTime time.Time `json:"dateTime" bson:"date_time" mapstructure:"date_time" db:"date_time"`
}

// NewAssignment creates a Pending assignment stamped with the current time.
func NewAssignment(userID, task, admin string) *Assignment {
	return &Assignment{
		UserID:   userID,
		Task:     task,
		Admin:    admin,
		Status:   StatusPending,
		DateTime: time.Now().UTC(),
	}
}
