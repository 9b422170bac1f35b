package personality

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rotbot/rotbot-api/internal/models"
	"github.com/rotbot/rotbot-api/pkg/tool"
)

// Repository is the storage the personality service needs. Lookups return nil, nil when absent.
type Repository interface {
	List(ctx context.Context) ([]*models.Personality, error)
	Get(ctx context.Context, id string) (*models.Personality, error)
	GetByName(ctx context.Context, name string) (*models.Personality, error)
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	SaveSelection(ctx context.Context, userID, personalityID string) error
	IsUnlocked(ctx context.Context, userID, personalityID string) (bool, error)
	Unlock(ctx context.Context, userID, personalityID string) error
	CreateMissing(ctx context.Context, items []*models.Personality) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) List(ctx context.Context) ([]*models.Personality, error) {
	var rows []*models.Personality
	if err := r.db.WithContext(ctx).Order("is_premium asc").Order("name asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list personalities: %w", err)
	}
	return rows, nil
}

func (r *gormRepository) Get(ctx context.Context, id string) (*models.Personality, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *gormRepository) GetByName(ctx context.Context, name string) (*models.Personality, error) {
	return r.first(ctx, "name = ?", name)
}

func (r *gormRepository) first(ctx context.Context, query string, arg any) (*models.Personality, error) {
	var m models.Personality
	err := r.db.WithContext(ctx).Where(query, arg).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load personality: %w", err)
	}
	return &m, nil
}

func (r *gormRepository) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var m models.Profile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return &m, nil
}

func (r *gormRepository) SaveSelection(ctx context.Context, userID, personalityID string) error {
	profile := &models.Profile{UserID: userID, SelectedPersonalityID: &personalityID, UpdatedAt: time.Now()}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"selected_personality_id", "updated_at"}),
	}).Create(profile).Error
	if err != nil {
		return fmt.Errorf("failed to save personality selection: %w", err)
	}
	return nil
}

func (r *gormRepository) IsUnlocked(ctx context.Context, userID, personalityID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.UserPersonality{}).
		Where("user_id = ? AND personality_id = ?", userID, personalityID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check unlocked personality: %w", err)
	}
	return count > 0, nil
}

func (r *gormRepository) Unlock(ctx context.Context, userID, personalityID string) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.UserPersonality{UserID: userID, PersonalityID: personalityID}).Error
	if err != nil {
		return fmt.Errorf("failed to unlock personality: %w", err)
	}
	return nil
}

// CreateMissing inserts personalities whose name is not taken yet.
func (r *gormRepository) CreateMissing(ctx context.Context, items []*models.Personality) (int64, error) {
	for _, it := range items {
		if it.ID == "" {
			it.ID = tool.GenerateUUIDV7()
		}
	}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(items)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to seed personalities: %w", res.Error)
	}
	return res.RowsAffected, nil
}
