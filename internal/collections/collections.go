// Package collections names the backing collections/tables shared by the
// repository implementations.
package collections

const (
	Users       = "users"
	Admins      = "admins"
	Assignments = "assignments"
)
