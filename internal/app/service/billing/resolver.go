package billing

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rotbot/rotbot-api/internal/models"
	"github.com/rotbot/rotbot-api/pkg/logctx"
)

// MetadataUserIDKey is the metadata key checkout sessions carry the local user id under.
const MetadataUserIDKey = "user_id"

type IdentitySource string

const (
	IdentitySourceSessionMetadata      IdentitySource = "session_metadata"
	IdentitySourceSessionReference     IdentitySource = "session_client_reference"
	IdentitySourceSubscriptionMetadata IdentitySource = "subscription_metadata"
	IdentitySourceCustomerMetadata     IdentitySource = "customer_metadata"
	IdentitySourceLocalRecord          IdentitySource = "local_record"
)

// MetadataSource is metadata attached directly to an event object.
type MetadataSource struct {
	Source   IdentitySource
	Metadata map[string]string
}

// Subject is what the resolver knows about the owner of a subscription.
type Subject struct {
	// Metadata is tried in order before any network or store lookup.
	Metadata       []MetadataSource
	CustomerID     string
	SubscriptionID string
}

type Identity struct {
	UserID string
	Source IdentitySource
}

type CustomerLookup interface {
	GetCustomerMetadata(ctx context.Context, customerID string) (map[string]string, error)
}

type RecordLookup interface {
	FindByProviderSubscriptionID(ctx context.Context, providerSubscriptionID string) (*models.Subscription, error)
}

// IdentityResolver maps a provider subscription to a local user:
// object metadata, then customer metadata, then the existing local record.
type IdentityResolver struct {
	customers CustomerLookup
	records   RecordLookup
	log       *zap.SugaredLogger
}

func NewIdentityResolver(customers CustomerLookup, records RecordLookup, log *zap.SugaredLogger) *IdentityResolver {
	return &IdentityResolver{customers: customers, records: records, log: log}
}

// Resolve returns ErrIdentityUnresolved when every tier comes up empty. A
// failed customer lookup does not stop the fallback, but if nothing else
// resolves its error is returned instead so the delivery is retried.
func (r *IdentityResolver) Resolve(ctx context.Context, subject Subject) (*Identity, error) {
	for _, src := range subject.Metadata {
		if uid := userIDFrom(src.Metadata); uid != "" {
			return &Identity{UserID: uid, Source: src.Source}, nil
		}
	}

	var lookupErr error
	if subject.CustomerID != "" {
		md, err := r.customers.GetCustomerMetadata(ctx, subject.CustomerID)
		if err != nil {
			lookupErr = err
			logctx.FromCtx(ctx, r.log).Warnw("identity_customer_lookup_failed",
				"stripe_customer_id", subject.CustomerID, "err", err)
		} else if uid := userIDFrom(md); uid != "" {
			return &Identity{UserID: uid, Source: IdentitySourceCustomerMetadata}, nil
		}
	}

	if subject.SubscriptionID != "" {
		rec, err := r.records.FindByProviderSubscriptionID(ctx, subject.SubscriptionID)
		if err != nil {
			return nil, err
		}
		if rec != nil && rec.UserID != "" {
			return &Identity{UserID: rec.UserID, Source: IdentitySourceLocalRecord}, nil
		}
	}

	if lookupErr != nil {
		return nil, fmt.Errorf("%w: customer lookup: %w", ErrProviderFetch, lookupErr)
	}
	return nil, ErrIdentityUnresolved
}

func userIDFrom(md map[string]string) string {
	return strings.TrimSpace(md[MetadataUserIDKey])
}
