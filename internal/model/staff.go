package model

import "github.com/google/uuid"

const (
	RoleHRManager = "HR Manager"
	RoleHR        = "HR"
)

type Staff struct {
	ID       uuid.UUID
	FullName string
	Email    string
	Role     string
}

// HasRole matches the role exactly, without trimming or case folding.
func (s Staff) HasRole(roles []string) bool {
	for _, role := range roles {
		if s.Role == role {
			return true
		}
	}
	return false
}
