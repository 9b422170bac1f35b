package chat

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/rotbot/rotbot-api/internal/models"
	"github.com/rotbot/rotbot-api/pkg/tool"
)

type Repository interface {
	// History returns messages with the given roles, oldest first.
	History(ctx context.Context, userID string, roles []models.MessageRole) ([]*models.Message, error)
	SaveMessage(ctx context.Context, m *models.Message) error
	// DeleteAndSeed removes messages with roles and stores seed in one transaction.
	DeleteAndSeed(ctx context.Context, userID string, roles []models.MessageRole, seed *models.Message) error
	CountRole(ctx context.Context, userID string, role models.MessageRole) (int64, error)
	SaveDiary(ctx context.Context, d *models.DiaryEntry) error
	Diary(ctx context.Context, userID string, limit int) ([]*models.DiaryEntry, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) History(ctx context.Context, userID string, roles []models.MessageRole) ([]*models.Message, error) {
	var rows []*models.Message
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND role IN ?", userID, roles).
		Order("created_at asc").Order("id asc").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}
	return rows, nil
}

func (r *gormRepository) SaveMessage(ctx context.Context, m *models.Message) error {
	if m.ID == "" {
		m.ID = tool.GenerateUUIDV7()
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}
	return nil
}

func (r *gormRepository) DeleteAndSeed(ctx context.Context, userID string, roles []models.MessageRole, seed *models.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND role IN ?", userID, roles).Delete(&models.Message{}).Error; err != nil {
			return fmt.Errorf("failed to delete chat history: %w", err)
		}
		if seed.ID == "" {
			seed.ID = tool.GenerateUUIDV7()
		}
		if err := tx.Create(seed).Error; err != nil {
			return fmt.Errorf("failed to seed chat history: %w", err)
		}
		return nil
	})
}

func (r *gormRepository) CountRole(ctx context.Context, userID string, role models.MessageRole) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("user_id = ? AND role = ?", userID, role).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return n, nil
}

func (r *gormRepository) SaveDiary(ctx context.Context, d *models.DiaryEntry) error {
	if d.ID == "" {
		d.ID = tool.GenerateUUIDV7()
	}
	if err := r.db.WithContext(ctx).Create(d).Error; err != nil {
		return fmt.Errorf("failed to save diary entry: %w", err)
	}
	return nil
}

func (r *gormRepository) Diary(ctx context.Context, userID string, limit int) ([]*models.DiaryEntry, error) {
	var rows []*models.DiaryEntry
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at desc").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load diary: %w", err)
	}
	return rows, nil
}
