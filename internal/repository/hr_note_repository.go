package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/academy-automation/internal/model"
)

type HRNoteRepository struct {
	db *gorm.DB
}

func NewHRNoteRepository(db *gorm.DB) *HRNoteRepository {
	return &HRNoteRepository{db: db}
}

func (r *HRNoteRepository) CreateHRNote(ctx context.Context, note model.HRNote) (*model.HRNote, error) {
	var row struct {
		ID        uuid.UUID
		CreatedAt time.Time
	}
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO hr_notes (
			author_id,
			content,
			priority,
			category,
			target_audience,
			is_pinned,
			pinned_until
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id, created_at
	`,
		note.AuthorID,
		note.Content,
		note.Priority,
		note.Category,
		note.TargetAudience,
		note.IsPinned,
		note.PinnedUntil,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	note.ID = row.ID
	note.CreatedAt = row.CreatedAt
	return &note, nil
}

// ListPinnedHRNotes returns pinned notes whose pin has not expired at now,
// soonest expiry first.
func (r *HRNoteRepository) ListPinnedHRNotes(ctx context.Context, now time.Time) ([]model.HRNote, error) {
	var notes []model.HRNote
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			n.id,
			n.author_id,
			COALESCE(s.full_name, '') AS author_name,
			n.content,
			n.priority,
			n.category,
			n.target_audience,
			n.is_pinned,
			n.pinned_until,
			n.created_at
		FROM hr_notes n
		LEFT JOIN staff s ON s.id = n.author_id
		WHERE n.is_pinned AND n.pinned_until > ?
		ORDER BY n.pinned_until ASC
	`, now).Scan(&notes).Error
	if err != nil {
		return nil, err
	}
	return notes, nil
}
