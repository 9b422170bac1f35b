package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rotbot/rotbot-api/internal/models"
	"github.com/rotbot/rotbot-api/pkg/logctx"
	"github.com/rotbot/rotbot-api/pkg/tool"
	"github.com/rotbot/rotbot-api/pkg/types"
)

// Change describes why a record is written; it is kept in subscription_log.
type Change struct {
	Reason  types.SubscriptionChangeReason
	EventID string
}

// Store persists the local mirror of provider subscriptions.
type Store interface {
	// Upsert writes rec keyed by its provider subscription id. It reports
	// false when the stored row carries a newer event than rec.
	Upsert(ctx context.Context, rec *models.Subscription, change Change) (bool, error)
	// MarkStatus sets the status of an existing row. ErrRecordNotFound when
	// no row exists; false when the stored row is newer than eventAt.
	MarkStatus(ctx context.Context, providerSubscriptionID string, status types.SubscriptionStatus, eventAt time.Time, change Change) (bool, error)
	// FindByProviderSubscriptionID returns nil, nil when no row exists.
	FindByProviderSubscriptionID(ctx context.Context, providerSubscriptionID string) (*models.Subscription, error)
	GetEntitledByUser(ctx context.Context, userID string) (*types.UserSubscriptionInfo, error)
	Scan(ctx context.Context, req *ScanRequest) ([]*models.Subscription, int64, error)
	CountByStatus(ctx context.Context) (map[types.SubscriptionStatus]int64, error)
}

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

var _ Store = (*Service)(nil)

var upsertColumns = []string{
	"user_id",
	"stripe_customer_id",
	"status",
	"current_period_start",
	"current_period_end",
	"last_event_at",
	"updated_at",
}

// upsertClause updates on conflict only when the incoming event is not older
// than the stored one. Equal markers re-apply so replays stay idempotent.
func upsertClause() clause.OnConflict {
	return clause.OnConflict{
		Columns:   []clause.Column{{Name: "stripe_subscription_id"}},
		DoUpdates: clause.AssignmentColumns(upsertColumns),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "user_subscriptions.last_event_at <= excluded.last_event_at"},
		}},
	}
}

func (s *Service) Upsert(ctx context.Context, rec *models.Subscription, change Change) (bool, error) {
	if rec.StripeSubscriptionID == "" {
		return false, ErrMissingProviderRef
	}
	if rec.UserID == "" {
		return false, ErrMissingIdentity
	}

	before, err := s.FindByProviderSubscriptionID(ctx, rec.StripeSubscriptionID)
	if err != nil {
		return false, err
	}
	if before != nil {
		rec.ID = before.ID
		rec.CreatedAt = before.CreatedAt
	} else if rec.ID == "" {
		rec.ID = tool.GenerateUUIDV7()
	}

	res := s.db.WithContext(ctx).Clauses(upsertClause()).Create(rec)
	if res.Error != nil {
		return false, fmt.Errorf("failed to upsert subscription: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		logctx.FromCtx(ctx, s.log).Infow("subscription_upsert_stale",
			"stripe_subscription_id", rec.StripeSubscriptionID,
			"event_at", rec.LastEventAt,
			"stored_event_at", lastEventAt(before),
		)
		return false, nil
	}

	go s.saveLog(ctx, before, rec, change)
	return true, nil
}

func (s *Service) MarkStatus(ctx context.Context, providerSubscriptionID string, status types.SubscriptionStatus, eventAt time.Time, change Change) (bool, error) {
	before, err := s.FindByProviderSubscriptionID(ctx, providerSubscriptionID)
	if err != nil {
		return false, err
	}
	if before == nil {
		return false, ErrRecordNotFound
	}

	res := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("stripe_subscription_id = ? AND last_event_at <= ?", providerSubscriptionID, eventAt).
		Updates(map[string]any{
			"status":        status,
			"last_event_at": eventAt,
			"updated_at":    time.Now(),
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to update subscription status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	after := *before
	after.Status = status
	after.LastEventAt = eventAt
	go s.saveLog(ctx, before, &after, change)
	return true, nil
}

func (s *Service) FindByProviderSubscriptionID(ctx context.Context, providerSubscriptionID string) (*models.Subscription, error) {
	var m models.Subscription
	err := s.db.WithContext(ctx).Where("stripe_subscription_id = ?", providerSubscriptionID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription %s: %w", providerSubscriptionID, err)
	}
	return &m, nil
}

// GetEntitledByUser reports the best subscription of a user: an entitled one
// if any, otherwise the most recently updated.
func (s *Service) GetEntitledByUser(ctx context.Context, userID string) (*types.UserSubscriptionInfo, error) {
	var rows []*models.Subscription
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("updated_at desc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list user subscriptions: %w", err)
	}
	return summarize(rows), nil
}

func summarize(rows []*models.Subscription) *types.UserSubscriptionInfo {
	if len(rows) == 0 {
		return &types.UserSubscriptionInfo{}
	}
	best := rows[0]
	for _, r := range rows {
		if r.Entitled() {
			best = r
			break
		}
	}
	return &types.UserSubscriptionInfo{
		Entitled:         best.Entitled(),
		Status:           best.Status,
		CurrentPeriodEnd: best.CurrentPeriodEnd,
	}
}

func (s *Service) saveLog(ctx context.Context, before, after *models.Subscription, change Change) {
	entry := &models.SubscriptionLog{
		ID:                   tool.GenerateUUIDV7(),
		UserID:               after.UserID,
		StripeSubscriptionID: after.StripeSubscriptionID,
		Reason:               change.Reason,
		Before:               datatypes.NewJSONType(before),
		After:                datatypes.NewJSONType(after),
		EventID:              change.EventID,
	}
	if err := s.db.WithContext(context.WithoutCancel(ctx)).Create(entry).Error; err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("subscription_log_save_failed", "err", err)
	}
}

func lastEventAt(m *models.Subscription) any {
	if m == nil {
		return nil
	}
	return m.LastEventAt
}
