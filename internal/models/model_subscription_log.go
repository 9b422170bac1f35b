package models

import (
	"time"

	"github.com/rotbot/rotbot-api/pkg/types"
	"gorm.io/datatypes"
)

// SubscriptionLog records changes to user subscriptions.
// Use case: troubleshooting webhook reconciliation.
type SubscriptionLog struct {
	ID                   string                         `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID               string                         `gorm:"column:user_id;type:varchar(64);not null;index" json:"user_id"`
	StripeSubscriptionID string                         `gorm:"column:stripe_subscription_id;type:varchar(128);not null;index" json:"stripe_subscription_id"`
	Reason               types.SubscriptionChangeReason `gorm:"column:reason;type:varchar(64);not null" json:"reason"`
	// Before is nil when the change created the row.
	Before    datatypes.JSONType[*Subscription] `gorm:"column:before;type:jsonb;default:'null'" json:"before"`
	After     datatypes.JSONType[*Subscription] `gorm:"column:after;type:jsonb;default:'null'" json:"after"`
	EventID   string                            `gorm:"column:event_id;type:varchar(128)" json:"event_id"`
	CreatedAt time.Time                         `json:"created_at"`
}

func (SubscriptionLog) TableName() string {
	return "subscription_log"
}
