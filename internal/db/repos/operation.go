// Package repos provides access to the local operation history tables
package repos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/appian-deploy/appian-deploy/internal/db/models"
)

// ErrOperationNotFound is returned when no history row matches
var ErrOperationNotFound = errors.New("operation not found in history")

// OperationRepository provides access to operation history rows
type OperationRepository struct {
	db *gorm.DB
}

// NewOperationRepository creates a new operation repository instance
func NewOperationRepository(db *gorm.DB) *OperationRepository {
	return &OperationRepository{db: db}
}

// Record inserts the operation or, if its UUID is already known, refreshes it
func (r *OperationRepository) Record(ctx context.Context, op *models.Operation) error {
	if op.UUID == "" {
		return fmt.Errorf("operation uuid cannot be empty")
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "uuid"}},
		DoUpdates: clause.AssignmentColumns([]string{"kind", "name", "base_url", "url", "status", "terminal", "success", "updated_at"}),
	}).Create(op).Error
}

// UpdateStatus stores the latest observed status of an operation
func (r *OperationRepository) UpdateStatus(ctx context.Context, uuid, status string, terminal, success bool, observedAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.Operation{}).
		Where("uuid = ?", uuid).
		Updates(map[string]interface{}{
			"status":          status,
			"terminal":        terminal,
			"success":         success,
			"last_checked_at": observedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update operation status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrOperationNotFound, uuid)
	}
	return nil
}

// GetByUUID retrieves an operation by its server-assigned UUID
func (r *OperationRepository) GetByUUID(ctx context.Context, uuid string) (*models.Operation, error) {
	var op models.Operation
	err := r.db.WithContext(ctx).Where(&models.Operation{UUID: uuid}).First(&op).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrOperationNotFound, uuid)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get operation: %w", err)
	}
	return &op, nil
}

// List returns the most recent operations first
func (r *OperationRepository) List(ctx context.Context, opts *models.ListOptions) ([]models.Operation, error) {
	if opts == nil {
		opts = &models.ListOptions{}
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = models.DefaultLimit
	}

	db := r.db.WithContext(ctx).Model(&models.Operation{})
	if opts.Kind != "" {
		db = db.Where(&models.Operation{Kind: opts.Kind})
	}

	var ops []models.Operation
	err := db.Order(models.OperationCreatedAtField + " DESC").
		Order("id DESC").
		Limit(limit).
		Offset(opts.Offset).
		Find(&ops).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list operations: %w", err)
	}
	return ops, nil
}
