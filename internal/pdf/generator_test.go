package pdf

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/academy-automation/internal/model"
)

func TestGenerateCertificateProducesPDF(t *testing.T) {
	g := NewGenerator("")
	skills := `["panel beating", "spray painting"]`
	dept := "Bodywork"
	end := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)

	content, err := g.GenerateCertificate(context.Background(), model.CertificateRequest{
		Student: model.Student{
			ID:           uuid.New(),
			FullName:     "Amina Okafor",
			PlacementEnd: &end,
			Department:   &dept,
			SkillsRaw:    &skills,
		},
		CertificateType: model.CertificateTypeCompletion,
		IssueDate:       time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC),
		IssuerName:      "Academy Director",
		IssuerRole:      "Director",
	})
	if err != nil {
		t.Fatalf("GenerateCertificate() error = %v", err)
	}
	if !bytes.HasPrefix(content, []byte("%PDF-")) {
		t.Fatalf("expected pdf header, got %q", content[:8])
	}
}

func TestGenerateCertificateWithoutNameStillRenders(t *testing.T) {
	content, err := NewGenerator("Test Academy").GenerateCertificate(context.Background(), model.CertificateRequest{
		Student:         model.Student{ID: uuid.New()},
		CertificateType: model.CertificateTypeCompletion,
		IssueDate:       time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("GenerateCertificate() error = %v", err)
	}
	if !bytes.HasPrefix(content, []byte("%PDF-")) {
		t.Fatalf("expected pdf header")
	}
}

func TestStudentNameFallbacks(t *testing.T) {
	id := uuid.MustParse("0f8fad5b-d9cb-469f-a165-70867728950e")
	cases := []struct {
		student model.Student
		want    string
	}{
		{model.Student{ID: id, FullName: " Amina Okafor ", Email: "amina@example.com"}, "Amina Okafor"},
		{model.Student{ID: id, FullName: "  ", Email: "amina@example.com"}, "amina@example.com"},
		{model.Student{ID: id}, "Student 0F8FAD5B"},
	}
	for _, tc := range cases {
		if got := studentName(model.CertificateRequest{Student: tc.student}); got != tc.want {
			t.Fatalf("studentName(%+v) = %q, want %q", tc.student, got, tc.want)
		}
	}
}

func TestGenerateCertificateRejectsUnknownType(t *testing.T) {
	_, err := NewGenerator("").GenerateCertificate(context.Background(), model.CertificateRequest{
		Student:         model.Student{FullName: "Amina Okafor"},
		CertificateType: "Diploma",
	})
	if !errors.Is(err, model.ErrInvalidCertificateRequest) {
		t.Fatalf("expected ErrInvalidCertificateRequest, got %v", err)
	}
}

func TestGenerateCertificateHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGenerator("").GenerateCertificate(ctx, model.CertificateRequest{
		Student: model.Student{FullName: "Amina Okafor"},
	})
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCertificateRefUsesStudentAndDate(t *testing.T) {
	id := uuid.MustParse("0f8fad5b-d9cb-469f-a165-70867728950e")
	ref := certificateRef(model.CertificateRequest{
		Student:   model.Student{ID: id},
		IssueDate: time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC),
	})
	if ref != "0F8FAD5B-20261017" {
		t.Fatalf("unexpected ref %q", ref)
	}
}
