package models

import (
	"time"

	"gorm.io/datatypes"
)

type WebhookEventLogStatus string

const (
	WebhookEventLogStatusReceived     WebhookEventLogStatus = "received"
	WebhookEventLogStatusHandled      WebhookEventLogStatus = "handled"
	WebhookEventLogStatusIgnored      WebhookEventLogStatus = "ignored"
	WebhookEventLogStatusHandleFailed WebhookEventLogStatus = "handle_failed"
)

// WebhookEventLog is an append-only trail of verified Stripe deliveries.
type WebhookEventLog struct {
	ID             string                `gorm:"column:id;type:uuid;primary_key" json:"id"`
	EventID        string                `gorm:"column:event_id;type:varchar(128);not null;index" json:"event_id"`
	EventType      string                `gorm:"column:event_type;type:varchar(128);not null" json:"event_type"`
	SubscriptionID string                `gorm:"column:stripe_subscription_id;type:varchar(128)" json:"stripe_subscription_id"`
	UserID         *string               `gorm:"column:user_id;type:varchar(64)" json:"user_id"`
	TraceID        string                `gorm:"column:trace_id;type:varchar(128)" json:"trace_id"`
	EventCreatedAt time.Time             `gorm:"column:event_created_at" json:"event_created_at"`
	Data           datatypes.JSON        `gorm:"column:data;type:jsonb" json:"data"`
	Result         *datatypes.JSON       `gorm:"column:result;type:jsonb" json:"result"`
	Status         WebhookEventLogStatus `gorm:"column:status;type:varchar(64);not null" json:"status"`
	CreatedAt      time.Time             `json:"created_at"`
}

func (WebhookEventLog) TableName() string { return "webhook_event_log" }
