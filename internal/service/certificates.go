package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/academy-automation/internal/config"
	"github.com/nurpe/academy-automation/internal/model"
)

type StudentLookup interface {
	GetStudent(ctx context.Context, id uuid.UUID) (*model.Student, error)
}

type CertificateStore interface {
	Issue(ctx context.Context, doc model.Document, cert model.Certificate) (*model.Certificate, error)
	ListCertificates(ctx context.Context, from, to time.Time) ([]model.CertificateRow, error)
}

type RegisterGenerator interface {
	GenerateRegister(from, to time.Time, rows []model.CertificateRow) ([]byte, error)
}

// CertificateService is the on-demand issuance path. It shares the producer
// with the graduation run but never changes a student's status.
type CertificateService struct {
	students      StudentLookup
	certificates  CertificateStore
	producer      CertificateProducer
	register      RegisterGenerator
	defaultIssuer string
	log           zerolog.Logger
	now           func() time.Time
}

type IssueCertificateInput struct {
	StudentID       uuid.UUID
	CertificateType string
	IssueDate       time.Time
	IssuerName      string
	IssuerRole      string
}

type ExportResult struct {
	FileName string
	Content  []byte
}

func NewCertificateService(
	students StudentLookup,
	certificates CertificateStore,
	producer CertificateProducer,
	register RegisterGenerator,
	cfg config.GraduationConfig,
	log zerolog.Logger,
) *CertificateService {
	return &CertificateService{
		students:      students,
		certificates:  certificates,
		producer:      producer,
		register:      register,
		defaultIssuer: cfg.DefaultIssuer,
		log:           log.With().Str("component", "certificates").Logger(),
		now:           time.Now,
	}
}

func (s *CertificateService) Issue(ctx context.Context, input IssueCertificateInput) (*model.Certificate, error) {
	if input.StudentID == uuid.Nil {
		return nil, fmt.Errorf("%w: student_id is required", ErrInvalidInput)
	}

	certType := model.CertificateTypeCompletion
	if raw := strings.TrimSpace(input.CertificateType); raw != "" {
		parsed, err := model.ParseCertificateType(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		certType = parsed
	}

	issueDate := dateOnly(input.IssueDate)
	if issueDate.IsZero() {
		issueDate = dateOnly(s.now())
	}

	student, err := s.students.GetStudent(ctx, input.StudentID)
	if err != nil {
		return nil, translateStoreError(err)
	}

	issuerName, issuerRole := issuerFor(*student, s.defaultIssuer)
	if name := strings.TrimSpace(input.IssuerName); name != "" {
		issuerName = name
		issuerRole = strings.TrimSpace(input.IssuerRole)
	}

	content, err := s.producer.GenerateCertificate(ctx, model.CertificateRequest{
		Student:         *student,
		CertificateType: certType,
		IssueDate:       issueDate,
		IssuerName:      issuerName,
		IssuerRole:      issuerRole,
	})
	if err != nil {
		return nil, fmt.Errorf("generate certificate: %w", err)
	}

	cert, err := s.certificates.Issue(ctx,
		certificateDocument(*student, certType, issueDate, content),
		model.Certificate{
			StudentID:  student.ID,
			Type:       certType,
			Title:      certType.Title(),
			IssuerName: issuerName,
			IssuerRole: issuerRole,
			IssuedDate: issueDate,
			Verified:   true,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("persist certificate: %w", translateStoreError(err))
	}

	s.log.Info().
		Str("student_id", student.ID.String()).
		Str("certificate_id", cert.ID.String()).
		Str("type", string(certType)).
		Msg("certificate issued")
	return cert, nil
}

// ExportRegister renders the certificates issued between from and to, inclusive.
func (s *CertificateService) ExportRegister(ctx context.Context, from, to time.Time) (*ExportResult, error) {
	if from.IsZero() || to.IsZero() {
		return nil, fmt.Errorf("%w: period dates are required", ErrInvalidInput)
	}
	from = dateOnly(from)
	to = dateOnly(to)
	if from.After(to) {
		return nil, fmt.Errorf("%w: from must be before or equal to to", ErrInvalidInput)
	}

	rows, err := s.certificates.ListCertificates(ctx, from, to)
	if err != nil {
		return nil, err
	}

	content, err := s.register.GenerateRegister(from, to, rows)
	if err != nil {
		return nil, err
	}

	return &ExportResult{
		FileName: fmt.Sprintf("certificates-%s-%s.xlsx", from.Format("20060102"), to.Format("20060102")),
		Content:  content,
	}, nil
}
