package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/academy-automation/internal/config"
	"github.com/nurpe/academy-automation/internal/model"
)

func newHRNoteService(staff StaffStore, notes HRNoteStore) *HRNoteService {
	svc := NewHRNoteService(staff, notes, config.HRNotesConfig{
		PinRoles:     []string{model.RoleHRManager, model.RoleHR},
		PinDuration:  24 * time.Hour,
		ExpiryWindow: 2 * time.Hour,
	}, zerolog.Nop())
	svc.now = fixedClock(testNow)
	return svc
}

func TestSubmitPinsOnlyExactHRRoles(t *testing.T) {
	cases := map[string]bool{
		"HR Manager":   true,
		"HR":           true,
		"hr":           false,
		"HR manager":   false,
		" HR":          false,
		"Instructor":   false,
		"":             false,
		"HR Assistant": false,
	}
	for role, wantPinned := range cases {
		t.Run(role, func(t *testing.T) {
			author := uuid.New()
			notes := &noteStoreFake{}
			svc := newHRNoteService(&staffStoreFake{staff: map[uuid.UUID]model.Staff{
				author: {ID: author, FullName: "Dana Reyes", Role: role},
			}}, notes)

			result, err := svc.Submit(context.Background(), SubmitNoteInput{AuthorID: author, Content: "Payroll closes Friday"})
			if err != nil {
				t.Fatalf("Submit() error = %v", err)
			}
			if result.IsPinned != wantPinned {
				t.Fatalf("role %q: pinned = %v, want %v", role, result.IsPinned, wantPinned)
			}
			stored := notes.created[0]
			if stored.IsPinned != wantPinned {
				t.Fatalf("stored note pinned = %v, want %v", stored.IsPinned, wantPinned)
			}
			if !wantPinned && (result.PinnedDurationHours != 0 || stored.PinnedUntil != nil) {
				t.Fatalf("unpinned note must have no expiry, got %+v", stored)
			}
		})
	}
}

func TestSubmitHRNoteSetsExpiryAndDefaults(t *testing.T) {
	author := uuid.New()
	notes := &noteStoreFake{}
	svc := newHRNoteService(&staffStoreFake{staff: map[uuid.UUID]model.Staff{
		author: {ID: author, Role: model.RoleHRManager},
	}}, notes)

	result, err := svc.Submit(context.Background(), SubmitNoteInput{AuthorID: author, Content: "Office closed Monday"})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if !result.IsPinned || result.PinnedDurationHours != 24 {
		t.Fatalf("unexpected result %+v", result)
	}
	note := notes.created[0]
	if note.PinnedUntil == nil || !note.PinnedUntil.Equal(testNow.Add(24*time.Hour)) {
		t.Fatalf("unexpected pinned until %v", note.PinnedUntil)
	}
	if note.Priority != "Normal" || note.Category != "Announcement" || note.TargetAudience != "All" {
		t.Fatalf("expected defaults, got %+v", note)
	}
}

func TestSubmitKeepsExplicitFields(t *testing.T) {
	author := uuid.New()
	notes := &noteStoreFake{}
	svc := newHRNoteService(&staffStoreFake{staff: map[uuid.UUID]model.Staff{
		author: {ID: author, Role: model.RoleHR},
	}}, notes)

	_, err := svc.Submit(context.Background(), SubmitNoteInput{
		AuthorID: author, Content: "Fire drill", Priority: "High", Category: "Safety", TargetAudience: "Workshop",
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	note := notes.created[0]
	if note.Priority != "High" || note.Category != "Safety" || note.TargetAudience != "Workshop" {
		t.Fatalf("explicit fields overwritten: %+v", note)
	}
}

func TestSubmitMissingStaffIsUnpinned(t *testing.T) {
	notes := &noteStoreFake{}
	svc := newHRNoteService(&staffStoreFake{err: errors.New("timeout")}, notes)

	result, err := svc.Submit(context.Background(), SubmitNoteInput{AuthorID: uuid.New(), Content: "hello"})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if result.IsPinned || len(notes.created) != 1 {
		t.Fatalf("expected one unpinned note, got %+v", result)
	}
}

func TestSubmitRejectsContractViolations(t *testing.T) {
	svc := newHRNoteService(&staffStoreFake{}, &noteStoreFake{})

	if _, err := svc.Submit(context.Background(), SubmitNoteInput{Content: "x"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing author, got %v", err)
	}
	if _, err := svc.Submit(context.Background(), SubmitNoteInput{AuthorID: uuid.New(), Content: "  "}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty content, got %v", err)
	}
}

func TestSubmitPropagatesCreateFailure(t *testing.T) {
	errCreate := errors.New("insert failed")
	svc := newHRNoteService(&staffStoreFake{}, &noteStoreFake{createErr: errCreate})

	if _, err := svc.Submit(context.Background(), SubmitNoteInput{AuthorID: uuid.New(), Content: "x"}); !errors.Is(err, errCreate) {
		t.Fatalf("expected create error, got %v", err)
	}
}

func TestListExpiringSoonWindow(t *testing.T) {
	soon := model.HRNote{ID: uuid.New(), Content: "soon", AuthorName: "Dana", IsPinned: true, PinnedUntil: ptr(testNow.Add(90 * time.Minute))}
	later := model.HRNote{ID: uuid.New(), Content: "later", IsPinned: true, PinnedUntil: ptr(testNow.Add(3 * time.Hour))}
	expired := model.HRNote{ID: uuid.New(), Content: "expired", IsPinned: true, PinnedUntil: ptr(testNow.Add(-time.Minute))}
	edge := model.HRNote{ID: uuid.New(), Content: "edge", IsPinned: true, PinnedUntil: ptr(testNow.Add(2 * time.Hour))}

	svc := newHRNoteService(&staffStoreFake{}, &noteStoreFake{pinned: []model.HRNote{soon, later, expired, edge}})

	got, err := svc.ListExpiringSoon(context.Background(), 2)
	if err != nil {
		t.Fatalf("ListExpiringSoon() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 notes, got %+v", got)
	}
	if got[0].ID != soon.ID || got[0].ExpiresIn != "90 minutes" || got[0].AuthorName != "Dana" {
		t.Fatalf("unexpected first note %+v", got[0])
	}
	if got[1].ID != edge.ID || got[1].ExpiresIn != "120 minutes" {
		t.Fatalf("unexpected second note %+v", got[1])
	}
}

func TestListExpiringSoonDefaultWindow(t *testing.T) {
	later := model.HRNote{ID: uuid.New(), IsPinned: true, PinnedUntil: ptr(testNow.Add(3 * time.Hour))}
	svc := newHRNoteService(&staffStoreFake{}, &noteStoreFake{pinned: []model.HRNote{later}})

	got, err := svc.ListExpiringSoon(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListExpiringSoon() error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("default 2h window must exclude 3h note, got %+v", got)
	}

	got, err = svc.ListExpiringSoon(context.Background(), 4)
	if err != nil {
		t.Fatalf("ListExpiringSoon() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("4h window must include 3h note, got %+v", got)
	}
}

func TestListExpiringSoonClampsHugeWindow(t *testing.T) {
	later := model.HRNote{ID: uuid.New(), IsPinned: true, PinnedUntil: ptr(testNow.Add(3 * time.Hour))}
	svc := newHRNoteService(&staffStoreFake{}, &noteStoreFake{pinned: []model.HRNote{later}})

	got, err := svc.ListExpiringSoon(context.Background(), math.MaxInt)
	if err != nil {
		t.Fatalf("ListExpiringSoon() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("huge window must still include the 3h note, got %+v", got)
	}
}

func TestFormatRemaining(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{30 * time.Second, "1 minute"},
		{90 * time.Minute, "90 minutes"},
		{89*time.Minute + time.Second, "90 minutes"},
	}
	for _, tc := range cases {
		if got := formatRemaining(tc.in); got != tc.want {
			t.Fatalf("formatRemaining(%s) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
