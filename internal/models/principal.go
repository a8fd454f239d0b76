package models

// Role identifies which principal namespace an actor belongs to.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Principal represents an authenticated actor, either a User or an Admin.
// Users and admins live in separate collections but share this shape; the
// same username may exist once in each namespace.
type Principal struct {
	ID             string `bson:"-" mapstructure:"id" db:"id"`
	Username       string `bson:"username" mapstructure:"username" db:"username"`
	HashedPassword string `bson:"password" mapstructure:"password" db:"password"`
}

// NewPrincipal creates a new Principal instance with the given username and
// hashed password. Note: no validation is performed here.
func NewPrincipal(username string, hashedPassword string) *Principal {
	return &Principal{
		Username:       username,
		HashedPassword: hashedPassword,
	}
}
