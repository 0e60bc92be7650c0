package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/academy-automation/internal/model"
)

type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) GetClient(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	var client model.Client
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, source, account_type, insurer_name
		FROM clients
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&client).Error; err != nil {
		return nil, err
	}
	if client.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &client, nil
}
