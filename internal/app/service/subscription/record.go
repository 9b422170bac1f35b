package subscription

import (
	"time"

	"github.com/rotbot/rotbot-api/internal/models"
	"github.com/rotbot/rotbot-api/pkg/types"
)

// Snapshot is a provider subscription as reported by Stripe, timestamps in epoch seconds.
type Snapshot struct {
	ID                 string
	CustomerID         string
	Status             string
	CurrentPeriodStart int64
	CurrentPeriodEnd   int64
}

// NewRecord builds the row for snapshot owned by userID. eventAt is the
// provider event creation time in epoch seconds. This is the only place
// provider epoch seconds become time.Time.
func NewRecord(userID string, snapshot Snapshot, eventAt int64) *models.Subscription {
	return &models.Subscription{
		UserID:               userID,
		StripeCustomerID:     snapshot.CustomerID,
		StripeSubscriptionID: snapshot.ID,
		Status:               types.SubscriptionStatus(snapshot.Status),
		CurrentPeriodStart:   epochToTime(snapshot.CurrentPeriodStart),
		CurrentPeriodEnd:     epochToTime(snapshot.CurrentPeriodEnd),
		LastEventAt:          EventTime(eventAt),
	}
}

// EventTime converts a provider event creation time.
func EventTime(sec int64) time.Time {
	if sec <= 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

func epochToTime(sec int64) *time.Time {
	if sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}
