package model

import "github.com/google/uuid"

const (
	RoleAdmin          = "Admin"
	RoleAcademyManager = "Academy Manager"
)

type Principal struct {
	UserID uuid.UUID
	Role   string
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin || p.Role == RoleAcademyManager
}
