package models

import (
	"time"

	"github.com/rotbot/rotbot-api/pkg/types"
)

// Subscription is the local mirror of a Stripe subscription.
// Exactly one row exists per StripeSubscriptionID; rows are never deleted.
type Subscription struct {
	ID                   string                   `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID               string                   `gorm:"column:user_id;type:varchar(64);not null;index:idx_user_subscriptions_user_status,priority:1" json:"user_id"`
	StripeCustomerID     string                   `gorm:"column:stripe_customer_id;type:varchar(128)" json:"stripe_customer_id"`
	StripeSubscriptionID string                   `gorm:"column:stripe_subscription_id;type:varchar(128);not null;uniqueIndex" json:"stripe_subscription_id"`
	Status               types.SubscriptionStatus `gorm:"column:status;type:varchar(64);not null;index:idx_user_subscriptions_user_status,priority:2" json:"status"`
	CurrentPeriodStart   *time.Time               `gorm:"column:current_period_start;default:null" json:"current_period_start"`
	CurrentPeriodEnd     *time.Time               `gorm:"column:current_period_end;default:null" json:"current_period_end"`
	// LastEventAt is the creation time of the newest provider event applied to this row.
	LastEventAt time.Time `gorm:"column:last_event_at;not null" json:"last_event_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Subscription) TableName() string {
	return "user_subscriptions"
}

func (s *Subscription) Entitled() bool {
	return s != nil && s.Status.Entitled()
}
