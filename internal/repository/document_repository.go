package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/academy-automation/internal/model"
)

type CertificateRepository struct {
	db *gorm.DB
}

func NewCertificateRepository(db *gorm.DB) *CertificateRepository {
	return &CertificateRepository{db: db}
}

// Issue stores a rendered certificate document and its certificate record together.
func (r *CertificateRepository) Issue(ctx context.Context, doc model.Document, cert model.Certificate) (*model.Certificate, error) {
	var saved *model.Certificate
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		createdDoc, err := createDocument(tx, doc)
		if err != nil {
			return err
		}
		cert.DocumentID = createdDoc.ID
		saved, err = createCertificate(tx, cert)
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// ListCertificates returns certificates issued in [from, to], oldest first.
func (r *CertificateRepository) ListCertificates(ctx context.Context, from, to time.Time) ([]model.CertificateRow, error) {
	var rows []model.CertificateRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			c.id,
			c.student_id,
			c.document_id,
			c.type,
			c.title,
			c.issuer_name,
			c.issuer_role,
			c.issued_date,
			c.verified,
			c.created_at,
			s.full_name AS student_name,
			COALESCE(s.department, '') AS department
		FROM certificates c
		JOIN students s ON s.id = c.student_id
		WHERE c.issued_date >= ? AND c.issued_date <= ?
		ORDER BY c.issued_date ASC, s.full_name ASC
	`, from, to).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func createDocument(tx *gorm.DB, doc model.Document) (*model.Document, error) {
	var row struct {
		ID        uuid.UUID
		CreatedAt time.Time
	}
	err := tx.Raw(`
		INSERT INTO documents (
			student_id,
			title,
			file_name,
			mime_type,
			category,
			content
		) VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id, created_at
	`,
		doc.StudentID,
		doc.Title,
		doc.FileName,
		doc.MimeType,
		doc.Category,
		doc.Content,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	doc.ID = row.ID
	doc.CreatedAt = row.CreatedAt
	return &doc, nil
}

func createCertificate(tx *gorm.DB, cert model.Certificate) (*model.Certificate, error) {
	var row struct {
		ID        uuid.UUID
		CreatedAt time.Time
	}
	err := tx.Raw(`
		INSERT INTO certificates (
			student_id,
			document_id,
			type,
			title,
			issuer_name,
			issuer_role,
			issued_date,
			verified
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id, created_at
	`,
		cert.StudentID,
		cert.DocumentID,
		cert.Type,
		cert.Title,
		cert.IssuerName,
		cert.IssuerRole,
		cert.IssuedDate,
		cert.Verified,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	cert.ID = row.ID
	cert.CreatedAt = row.CreatedAt
	return &cert, nil
}
