package models

import (
	"testing"
	"time"
)

func TestStatusValid(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		want   bool
	}{
		{
			name:   "Pending is valid",
			status: StatusPending,
			want:   true,
		},
		{
			name:   "Accepted is valid",
			status: StatusAccepted,
			want:   true,
		},
		{
			name:   "Rejected is valid",
			status: StatusRejected,
			want:   true,
		},
		{
			name:   "Unknown status is invalid",
			status: Status("Cancelled"),
			want:   false,
		},
		{
			name:   "Empty status is invalid",
			status: Status(""),
			want:   false,
		},
		{
			name:   "Lowercase pending is invalid",
			status: Status("pending"),
			want:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.Valid(); got != tt.want {
				t.Errorf("Status.Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatusTerminal(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		want   bool
	}{
		{
			name:   "Pending is not terminal",
			status: StatusPending,
			want:   false,
		},
		{
			name:   "Accepted is terminal",
			status: StatusAccepted,
			want:   true,
		},
		{
			name:   "Rejected is terminal",
			status: StatusRejected,
			want:   true,
		},
		{
			name:   "Unknown status is not terminal",
			status: Status("Cancelled"),
			want:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.Terminal(); got != tt.want {
				t.Errorf("Status.Terminal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewAssignment(t *testing.T) {
	before := time.Now().UTC()
	got := NewAssignment("user-1", "write the report", "admin-1")
	after := time.Now().UTC()

	if got.ID != "" {
		t.Errorf("NewAssignment() ID = %q, want empty for the store to populate", got.ID)
	}
	if got.UserID != "user-1" {
		t.Errorf("NewAssignment() UserID = %q, want %q", got.UserID, "user-1")
	}
	if got.Task != "write the report" {
		t.Errorf("NewAssignment() Task = %q, want %q", got.Task, "write the report")
	}
	if got.Admin != "admin-1" {
		t.Errorf("NewAssignment() Admin = %q, want %q", got.Admin, "admin-1")
	}
	if got.Status != StatusPending {
		t.Errorf("NewAssignment() Status = %q, want %q", got.Status, StatusPending)
	}
	if got.DateTime.Before(before) || got.DateTime.After(after) {
		t.Errorf("NewAssignment() DateTime = %v, want between %v and %v", got.DateTime, before, after)
	}
}
