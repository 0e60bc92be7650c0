package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/nurpe/academy-automation/internal/repository"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidInput     = errors.New("invalid input")
	ErrConflict         = errors.New("conflict")
	ErrTaskInProgress   = errors.New("scheduled tasks already running")
)

// translateStoreError maps record store failures onto service errors.
func translateStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrStaleWrite), errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	default:
		return err
	}
}
