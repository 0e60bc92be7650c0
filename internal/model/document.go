package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Document struct {
	ID        uuid.UUID
	StudentID *uuid.UUID
	Title     string
	FileName  string
	MimeType  string
	Category  string
	Content   []byte
	CreatedAt time.Time
}

// ErrInvalidCertificateRequest marks render failures caused by the request
// itself. Retrying the same request cannot succeed.
var ErrInvalidCertificateRequest = errors.New("invalid certificate request")

type CertificateType string

const (
	CertificateTypeCompletion  CertificateType = "Completion"
	CertificateTypeAttendance  CertificateType = "Attendance"
	CertificateTypeAchievement CertificateType = "Achievement"
)

func ParseCertificateType(raw string) (CertificateType, error) {
	switch CertificateType(raw) {
	case CertificateTypeCompletion, CertificateTypeAttendance, CertificateTypeAchievement:
		return CertificateType(raw), nil
	default:
		return "", fmt.Errorf("unknown certificate type %q", raw)
	}
}

func (t CertificateType) Title() string {
	return string(t) + " Certificate"
}

type Certificate struct {
	ID         uuid.UUID
	StudentID  uuid.UUID
	DocumentID uuid.UUID
	Type       CertificateType
	Title      string
	IssuerName string
	IssuerRole string
	IssuedDate time.Time
	Verified   bool
	CreatedAt  time.Time
}

// CertificateRow is a register line: a certificate joined with its student.
type CertificateRow struct {
	Certificate
	StudentName string
	Department  string
}

// CertificateRequest is what the document producer renders.
type CertificateRequest struct {
	Student         Student
	CertificateType CertificateType
	IssueDate       time.Time
	IssuerName      string
	IssuerRole      string
}
