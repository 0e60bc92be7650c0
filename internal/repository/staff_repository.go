package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/academy-automation/internal/model"
)

type StaffRepository struct {
	db *gorm.DB
}

func NewStaffRepository(db *gorm.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

func (r *StaffRepository) GetStaffMember(ctx context.Context, id uuid.UUID) (*model.Staff, error) {
	var staff model.Staff
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, full_name, email, role
		FROM staff
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&staff).Error; err != nil {
		return nil, err
	}
	if staff.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &staff, nil
}
