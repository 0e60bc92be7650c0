package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/academy-automation/internal/config"
	"github.com/nurpe/academy-automation/internal/model"
)

// maxExpiryWindowHours bounds caller-supplied windows to one year.
const maxExpiryWindowHours = 24 * 366

type StaffStore interface {
	GetStaffMember(ctx context.Context, id uuid.UUID) (*model.Staff, error)
}

type HRNoteStore interface {
	CreateHRNote(ctx context.Context, note model.HRNote) (*model.HRNote, error)
	ListPinnedHRNotes(ctx context.Context, now time.Time) ([]model.HRNote, error)
}

type HRNoteService struct {
	staff        StaffStore
	notes        HRNoteStore
	pinRoles     []string
	pinDuration  time.Duration
	expiryWindow time.Duration
	log          zerolog.Logger
	now          func() time.Time
}

type SubmitNoteInput struct {
	AuthorID       uuid.UUID
	Content        string
	Priority       string
	Category       string
	TargetAudience string
}

type SubmitNoteResult struct {
	Note                *model.HRNote
	IsPinned            bool
	PinnedDurationHours int
}

type ExpiringNote struct {
	ID          uuid.UUID
	Content     string
	AuthorName  string
	PinnedUntil time.Time
	ExpiresIn   string
}

func NewHRNoteService(staff StaffStore, notes HRNoteStore, cfg config.HRNotesConfig, log zerolog.Logger) *HRNoteService {
	return &HRNoteService{
		staff:        staff,
		notes:        notes,
		pinRoles:     cfg.PinRoles,
		pinDuration:  cfg.PinDuration,
		expiryWindow: cfg.ExpiryWindow,
		log:          log.With().Str("component", "hr_notes").Logger(),
		now:          time.Now,
	}
}

// Submit stores a note and pins it when the author holds an HR role at
// submission time. The role is not re-checked later.
func (s *HRNoteService) Submit(ctx context.Context, input SubmitNoteInput) (*SubmitNoteResult, error) {
	if input.AuthorID == uuid.Nil {
		return nil, fmt.Errorf("%w: author_id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}

	note := model.HRNote{
		AuthorID:       input.AuthorID,
		Content:        input.Content,
		Priority:       strings.TrimSpace(input.Priority),
		Category:       strings.TrimSpace(input.Category),
		TargetAudience: strings.TrimSpace(input.TargetAudience),
	}

	pin := s.isHRAuthor(ctx, input.AuthorID)
	if pin {
		until := s.now().Add(s.pinDuration)
		note.IsPinned = true
		note.PinnedUntil = &until
		note.Priority = valueOrDefault(note.Priority, model.DefaultNotePriority)
		note.Category = valueOrDefault(note.Category, model.DefaultNoteCategory)
		note.TargetAudience = valueOrDefault(note.TargetAudience, model.DefaultNoteTargetAudience)
	}

	saved, err := s.notes.CreateHRNote(ctx, note)
	if err != nil {
		s.log.Error().Err(err).Str("author_id", input.AuthorID.String()).Msg("create hr note failed")
		return nil, fmt.Errorf("create hr note: %w", err)
	}

	result := &SubmitNoteResult{Note: saved, IsPinned: pin}
	if pin {
		result.PinnedDurationHours = int(s.pinDuration / time.Hour)
		s.log.Info().
			Str("note_id", saved.ID.String()).
			Time("pinned_until", *saved.PinnedUntil).
			Msg("hr note auto-pinned")
	}
	return result, nil
}

// isHRAuthor treats any lookup failure as a non-HR author.
func (s *HRNoteService) isHRAuthor(ctx context.Context, authorID uuid.UUID) bool {
	staff, err := s.staff.GetStaffMember(ctx, authorID)
	if err != nil {
		s.log.Warn().Err(err).Str("author_id", authorID.String()).Msg("staff lookup failed, note will not be pinned")
		return false
	}
	if staff == nil {
		return false
	}
	return staff.HasRole(s.pinRoles)
}

// ListExpiringSoon returns pinned notes whose pin ends within (now, now+window].
// A non-positive window falls back to the configured default.
func (s *HRNoteService) ListExpiringSoon(ctx context.Context, windowHours int) ([]ExpiringNote, error) {
	window := s.expiryWindow
	if windowHours > 0 {
		window = time.Duration(min(windowHours, maxExpiryWindowHours)) * time.Hour
	}

	now := s.now()
	notes, err := s.notes.ListPinnedHRNotes(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("list pinned hr notes: %w", err)
	}

	deadline := now.Add(window)
	result := make([]ExpiringNote, 0, len(notes))
	for _, note := range notes {
		if !note.IsCurrentlyPinned(now) || note.PinnedUntil.After(deadline) {
			continue
		}
		result = append(result, ExpiringNote{
			ID:          note.ID,
			Content:     note.Content,
			AuthorName:  note.AuthorName,
			PinnedUntil: *note.PinnedUntil,
			ExpiresIn:   formatRemaining(note.PinnedUntil.Sub(now)),
		})
	}
	return result, nil
}

func formatRemaining(d time.Duration) string {
	minutes := int(math.Ceil(d.Minutes()))
	if minutes == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}

func valueOrDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
