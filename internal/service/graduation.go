package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nurpe/academy-automation/internal/config"
	"github.com/nurpe/academy-automation/internal/model"
	"github.com/nurpe/academy-automation/internal/resilience"
)

type StudentStore interface {
	ListStudents(ctx context.Context) ([]model.Student, error)
	Graduate(ctx context.Context, graduation model.Graduation) (*model.Certificate, error)
}

// CertificateProducer renders a certificate into an opaque document blob.
type CertificateProducer interface {
	GenerateCertificate(ctx context.Context, req model.CertificateRequest) ([]byte, error)
}

type GraduationService struct {
	students      StudentStore
	producer      CertificateProducer
	timeout       time.Duration
	defaultIssuer string
	log           zerolog.Logger
	now           func() time.Time
}

type GraduationResult struct {
	Scanned   int
	Eligible  int
	Graduated int
	Failed    int
}

func NewGraduationService(students StudentStore, producer CertificateProducer, cfg config.GraduationConfig, log zerolog.Logger) *GraduationService {
	return &GraduationService{
		students:      students,
		producer:      producer,
		timeout:       cfg.StudentTimeout,
		defaultIssuer: cfg.DefaultIssuer,
		log:           log.With().Str("component", "graduation").Logger(),
		now:           time.Now,
	}
}

// Run graduates every Active student whose placement has ended. A failure for
// one student is logged and does not stop the batch; the student stays Active
// and is picked up again on the next run.
func (s *GraduationService) Run(ctx context.Context) (GraduationResult, error) {
	var result GraduationResult

	students, err := s.students.ListStudents(ctx)
	if err != nil {
		return result, fmt.Errorf("list students: %w", err)
	}
	result.Scanned = len(students)

	now := s.now()
	for _, student := range students {
		if !student.IsGraduationDue(now) {
			continue
		}
		result.Eligible++

		if err := ctx.Err(); err != nil {
			return result, err
		}

		cert, err := s.graduate(ctx, student, now)
		if err != nil {
			result.Failed++
			s.log.Error().
				Err(err).
				Str("student_id", student.ID.String()).
				Bool("circuit_open", resilience.IsCircuitOpen(err)).
				Msg("graduation failed")
			continue
		}
		result.Graduated++
		s.log.Info().
			Str("student_id", student.ID.String()).
			Str("certificate_id", cert.ID.String()).
			Msg("student graduated to alumni")
	}

	return result, nil
}

func (s *GraduationService) graduate(ctx context.Context, student model.Student, now time.Time) (*model.Certificate, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	issueDate := dateOnly(now)
	issuerName, issuerRole := issuerFor(student, s.defaultIssuer)
	certType := model.CertificateTypeCompletion

	content, err := s.producer.GenerateCertificate(ctx, model.CertificateRequest{
		Student:         student,
		CertificateType: certType,
		IssueDate:       issueDate,
		IssuerName:      issuerName,
		IssuerRole:      issuerRole,
	})
	if err != nil {
		return nil, fmt.Errorf("generate certificate: %w", err)
	}

	cert, err := s.students.Graduate(ctx, model.Graduation{
		StudentID: student.ID,
		Document:  certificateDocument(student, certType, issueDate, content),
		Certificate: model.Certificate{
			Type:       certType,
			Title:      certType.Title(),
			IssuerName: issuerName,
			IssuerRole: issuerRole,
			IssuedDate: issueDate,
			Verified:   true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("persist graduation: %w", translateStoreError(err))
	}
	return cert, nil
}

func issuerFor(student model.Student, defaultIssuer string) (string, string) {
	if supervisor := student.SupervisorName(); supervisor != "" {
		return supervisor, "Placement Supervisor"
	}
	return defaultIssuer, "Director"
}

func certificateDocument(student model.Student, certType model.CertificateType, issueDate time.Time, content []byte) model.Document {
	studentID := student.ID
	name := sanitizeFileName(student.FullName)
	if name == "" {
		name = student.ID.String()
	}
	return model.Document{
		StudentID: &studentID,
		Title:     fmt.Sprintf("%s - %s", certType.Title(), student.FullName),
		FileName:  fmt.Sprintf("%s-certificate-%s-%s.pdf", strings.ToLower(string(certType)), name, issueDate.Format("20060102")),
		MimeType:  "application/pdf",
		Category:  "Certificate",
		Content:   content,
	}
}

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r+('a'-'A'))
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}
