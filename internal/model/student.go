package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type StudentStatus string

const (
	StudentStatusActive    StudentStatus = "Active"
	StudentStatusCompleted StudentStatus = "Completed"
	StudentStatusAlumni    StudentStatus = "Alumni"
)

// ParseStudentStatus is case-sensitive: "alumni" is not a valid status.
func ParseStudentStatus(raw string) (StudentStatus, error) {
	switch StudentStatus(raw) {
	case StudentStatusActive, StudentStatusCompleted, StudentStatusAlumni:
		return StudentStatus(raw), nil
	default:
		return "", fmt.Errorf("unknown student status %q", raw)
	}
}

type Student struct {
	ID             uuid.UUID
	FullName       string
	Email          string
	Status         StudentStatus
	PlacementStart *time.Time
	PlacementEnd   *time.Time
	Supervisor     *string
	Department     *string
	SkillsRaw      *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsGraduationDue reports whether an active student's placement ended before now.
func (s Student) IsGraduationDue(now time.Time) bool {
	if s.Status != StudentStatusActive || s.PlacementEnd == nil {
		return false
	}
	return s.PlacementEnd.Before(now)
}

// Skills parses the stored skills list. Malformed or empty data yields an empty list.
func (s Student) Skills() []string {
	if s.SkillsRaw == nil {
		return []string{}
	}
	raw := strings.TrimSpace(*s.SkillsRaw)
	if raw == "" {
		return []string{}
	}
	var skills []string
	if err := json.Unmarshal([]byte(raw), &skills); err != nil {
		return []string{}
	}
	result := make([]string, 0, len(skills))
	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		if skill != "" {
			result = append(result, skill)
		}
	}
	return result
}

func (s Student) SupervisorName() string {
	if s.Supervisor == nil {
		return ""
	}
	return strings.TrimSpace(*s.Supervisor)
}

func (s Student) DepartmentName() string {
	if s.Department == nil {
		return ""
	}
	return strings.TrimSpace(*s.Department)
}

// Graduation is the unit persisted atomically when a student becomes alumni.
type Graduation struct {
	StudentID   uuid.UUID
	Document    Document
	Certificate Certificate
}
