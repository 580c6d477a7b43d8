package model

// Role is the actor's privilege level.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Actor is the authenticated caller as resolved by the transport layer.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// Privileged reports whether the actor has the admin role.
func (a Actor) Privileged() bool {
	return a.Role == RoleAdmin
}
