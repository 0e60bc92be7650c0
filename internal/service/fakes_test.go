package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/academy-automation/internal/model"
	"github.com/nurpe/academy-automation/internal/repository"
)

// studentStoreFake mimics the conditional graduation update of the real store.
type studentStoreFake struct {
	mu           sync.Mutex
	students     []model.Student
	certificates []model.Certificate
	documents    []model.Document
	listErr      error
	graduateErr  map[uuid.UUID]error
}

func (f *studentStoreFake) ListStudents(context.Context) ([]model.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.Student, len(f.students))
	copy(out, f.students)
	return out, nil
}

func (f *studentStoreFake) GetStudent(_ context.Context, id uuid.UUID) (*model.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.students {
		if s.ID == id {
			copyStudent := s
			return &copyStudent, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *studentStoreFake) Graduate(_ context.Context, g model.Graduation) (*model.Certificate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.graduateErr[g.StudentID]; err != nil {
		return nil, err
	}
	for i := range f.students {
		if f.students[i].ID != g.StudentID {
			continue
		}
		if f.students[i].Status != model.StudentStatusActive {
			return nil, repository.ErrStaleWrite
		}
		f.students[i].Status = model.StudentStatusAlumni

		doc := g.Document
		doc.ID = uuid.New()
		f.documents = append(f.documents, doc)

		cert := g.Certificate
		cert.ID = uuid.New()
		cert.StudentID = g.StudentID
		cert.DocumentID = doc.ID
		f.certificates = append(f.certificates, cert)
		return &cert, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *studentStoreFake) status(id uuid.UUID) model.StudentStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.students {
		if s.ID == id {
			return s.Status
		}
	}
	return ""
}

func (f *studentStoreFake) certificatesFor(id uuid.UUID) []model.Certificate {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Certificate
	for _, c := range f.certificates {
		if c.StudentID == id {
			out = append(out, c)
		}
	}
	return out
}

type producerFake struct {
	mu       sync.Mutex
	requests []model.CertificateRequest
	failFor  map[uuid.UUID]error
}

func (f *producerFake) GenerateCertificate(_ context.Context, req model.CertificateRequest) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if err := f.failFor[req.Student.ID]; err != nil {
		return nil, err
	}
	return []byte("%PDF-fake"), nil
}

type clientStoreFake struct {
	clients map[uuid.UUID]model.Client
	err     error
}

func (f *clientStoreFake) GetClient(_ context.Context, id uuid.UUID) (*model.Client, error) {
	if f.err != nil {
		return nil, f.err
	}
	client, ok := f.clients[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &client, nil
}

type staffStoreFake struct {
	staff map[uuid.UUID]model.Staff
	err   error
}

func (f *staffStoreFake) GetStaffMember(_ context.Context, id uuid.UUID) (*model.Staff, error) {
	if f.err != nil {
		return nil, f.err
	}
	member, ok := f.staff[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &member, nil
}

type noteStoreFake struct {
	created   []model.HRNote
	pinned    []model.HRNote
	createErr error
	listErr   error
}

func (f *noteStoreFake) CreateHRNote(_ context.Context, note model.HRNote) (*model.HRNote, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	note.ID = uuid.New()
	note.CreatedAt = time.Now()
	f.created = append(f.created, note)
	return &note, nil
}

func (f *noteStoreFake) ListPinnedHRNotes(_ context.Context, now time.Time) ([]model.HRNote, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.HRNote
	for _, n := range f.pinned {
		if n.IsCurrentlyPinned(now) {
			out = append(out, n)
		}
	}
	return out, nil
}

type metricsFake struct {
	mu        sync.Mutex
	started   int
	finished  int
	failed    int
	skipped   int
	graduated int
	expiring  int
}

func (m *metricsFake) StartTick() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started++
}

func (m *metricsFake) FinishTick(_ time.Duration, failed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finished++
	if failed {
		m.failed++
	}
}

func (m *metricsFake) SkipTick() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.skipped++
}

func (m *metricsFake) ObserveGraduation(graduated, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.graduated += graduated
}

func (m *metricsFake) SetExpiringNotes(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expiring = count
}

func ptr[T any](v T) *T {
	return &v
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
