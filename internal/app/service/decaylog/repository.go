package decaylog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/rotbot/rotbot-api/internal/models"
)

type Repository interface {
	Create(ctx context.Context, e *models.DecayLogEntry) error
	// List returns a user's entries newest first; limit <= 0 means all.
	List(ctx context.Context, userID string, limit int) ([]*models.DecayLogEntry, error)
	Get(ctx context.Context, userID string, id int64) (*models.DecayLogEntry, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, e *models.DecayLogEntry) error {
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("failed to save decay log entry: %w", err)
	}
	return nil
}

func (r *gormRepository) List(ctx context.Context, userID string, limit int) ([]*models.DecayLogEntry, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc").Order("id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []*models.DecayLogEntry
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list decay log: %w", err)
	}
	return rows, nil
}

func (r *gormRepository) Get(ctx context.Context, userID string, id int64) (*models.DecayLogEntry, error) {
	var row models.DecayLogEntry
	err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load decay log entry: %w", err)
	}
	return &row, nil
}
