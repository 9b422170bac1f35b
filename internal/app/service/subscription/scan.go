package subscription

import (
	"context"
	"fmt"

	"github.com/rotbot/rotbot-api/internal/models"
	"github.com/rotbot/rotbot-api/pkg/types"
)

const maxScanLimit = 500

var scanFields = []string{
	"user_id",
	"stripe_customer_id",
	"stripe_subscription_id",
	"status",
	"current_period_end",
	"created_at",
	"updated_at",
}

type ScanRequest struct {
	Filters []*types.CommonFilter `json:"filters"`
	Offset  int                   `json:"offset"`
	Limit   int                   `json:"limit"`
}

func (r *ScanRequest) Validate() error {
	for _, f := range r.Filters {
		if err := f.Validate(scanFields); err != nil {
			return err
		}
	}
	if r.Offset < 0 {
		return fmt.Errorf("offset must not be negative")
	}
	if r.Limit <= 0 || r.Limit > maxScanLimit {
		r.Limit = maxScanLimit
	}
	return nil
}

// Scan lists subscriptions matching all filters, newest first, with the total count.
func (s *Service) Scan(ctx context.Context, req *ScanRequest) ([]*models.Subscription, int64, error) {
	if err := req.Validate(); err != nil {
		return nil, 0, err
	}
	where := types.FiltersAnd(req.Filters)

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Subscription{}).Where(where).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}
	var rows []*models.Subscription
	if err := s.db.WithContext(ctx).Where(where).Order("updated_at desc").Offset(req.Offset).Limit(req.Limit).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to scan subscriptions: %w", err)
	}
	return rows, total, nil
}

func (s *Service) CountByStatus(ctx context.Context) (map[types.SubscriptionStatus]int64, error) {
	var rows []struct {
		Status types.SubscriptionStatus
		Count  int64
	}
	if err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Select("status, count(*) as count").Group("status").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count subscriptions by status: %w", err)
	}
	out := make(map[types.SubscriptionStatus]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.Count
	}
	return out, nil
}
