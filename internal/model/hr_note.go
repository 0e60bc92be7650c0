package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultNotePriority       = "Normal"
	DefaultNoteCategory       = "Announcement"
	DefaultNoteTargetAudience = "All"
)

type HRNote struct {
	ID             uuid.UUID
	AuthorID       uuid.UUID
	AuthorName     string
	Content        string
	Priority       string
	Category       string
	TargetAudience string
	IsPinned       bool
	PinnedUntil    *time.Time
	CreatedAt      time.Time
}

// IsCurrentlyPinned is the only source of truth for pin state: the stored flag
// is never cleared once the expiry passes.
func (n HRNote) IsCurrentlyPinned(now time.Time) bool {
	return n.IsPinned && n.PinnedUntil != nil && n.PinnedUntil.After(now)
}
