package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/academy-automation/internal/model"
)

const studentColumns = `
	id,
	full_name,
	email,
	status,
	placement_start,
	placement_end,
	supervisor,
	department,
	skills AS skills_raw,
	created_at,
	updated_at
`

type StudentRepository struct {
	db *gorm.DB
}

func NewStudentRepository(db *gorm.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

func (r *StudentRepository) ListStudents(ctx context.Context) ([]model.Student, error) {
	var students []model.Student
	err := r.db.WithContext(ctx).Raw(`
		SELECT` + studentColumns + `
		FROM students
		ORDER BY created_at ASC, id ASC
	`).Scan(&students).Error
	if err != nil {
		return nil, err
	}
	return students, nil
}

func (r *StudentRepository) GetStudent(ctx context.Context, id uuid.UUID) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).Raw(`
		SELECT`+studentColumns+`
		FROM students
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&student).Error
	if err != nil {
		return nil, err
	}
	if student.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &student, nil
}

// Graduate moves an Active student to Alumni and stores the completion
// document and certificate in one transaction. If the student is no longer
// Active nothing is written and ErrStaleWrite is returned.
func (r *StudentRepository) Graduate(ctx context.Context, graduation model.Graduation) (*model.Certificate, error) {
	var saved *model.Certificate
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := updateStudentStatus(tx, graduation.StudentID, model.StudentStatusActive, model.StudentStatusAlumni); err != nil {
			return err
		}

		doc := graduation.Document
		doc.StudentID = &graduation.StudentID
		createdDoc, err := createDocument(tx, doc)
		if err != nil {
			return err
		}

		cert := graduation.Certificate
		cert.StudentID = graduation.StudentID
		cert.DocumentID = createdDoc.ID
		saved, err = createCertificate(tx, cert)
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func updateStudentStatus(tx *gorm.DB, id uuid.UUID, from, to model.StudentStatus) error {
	result := tx.Exec(`
		UPDATE students
		SET status = ?, updated_at = NOW()
		WHERE id = ? AND status = ?
	`, to, id, from)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: student %s is not %s", ErrStaleWrite, id, from)
	}
	return nil
}
