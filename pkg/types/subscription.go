package types

import "time"

type SubscriptionStatus string

// Values mirror the Stripe subscription status vocabulary verbatim.
const (
	SubscriptionStatusActive            SubscriptionStatus = "active"
	SubscriptionStatusTrialing          SubscriptionStatus = "trialing"
	SubscriptionStatusPastDue           SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled          SubscriptionStatus = "canceled"
	SubscriptionStatusIncomplete        SubscriptionStatus = "incomplete"
	SubscriptionStatusIncompleteExpired SubscriptionStatus = "incomplete_expired"
	SubscriptionStatusUnpaid            SubscriptionStatus = "unpaid"
	SubscriptionStatusPaused            SubscriptionStatus = "paused"
)

// Entitled reports whether the status grants premium access.
func (s SubscriptionStatus) Entitled() bool {
	return s == SubscriptionStatusActive || s == SubscriptionStatusTrialing
}

type SubscriptionChangeReason string

const (
	SubscriptionChangeReasonCheckout      SubscriptionChangeReason = "checkout_completed"
	SubscriptionChangeReasonUpdated       SubscriptionChangeReason = "subscription_updated"
	SubscriptionChangeReasonDeleted       SubscriptionChangeReason = "subscription_deleted"
	SubscriptionChangeReasonRenewal       SubscriptionChangeReason = "invoice_payment_succeeded"
	SubscriptionChangeReasonPaymentFailed SubscriptionChangeReason = "invoice_payment_failed"
)

type UserSubscriptionInfo struct {
	Entitled         bool               `json:"entitled"`
	Status           SubscriptionStatus `json:"status,omitempty"`
	CurrentPeriodEnd *time.Time         `json:"current_period_end,omitempty"`
}
