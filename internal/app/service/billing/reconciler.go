package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rotbot/rotbot-api/internal/app/service/personality"
	"github.com/rotbot/rotbot-api/internal/app/service/subscription"
	"github.com/rotbot/rotbot-api/internal/models"
	stripeplatform "github.com/rotbot/rotbot-api/internal/platform/stripe"
	"github.com/rotbot/rotbot-api/pkg/logctx"
	"github.com/rotbot/rotbot-api/pkg/types"
)

// MetadataPersonalityKey carries the personality name of a one-time purchase.
const MetadataPersonalityKey = "personality"

// Billing reasons of invoices that start or renew a subscription.
const (
	BillingReasonSubscriptionCycle  = "subscription_cycle"
	BillingReasonSubscriptionCreate = "subscription_create"
)

type OutcomeResult string

const (
	OutcomeUpserted      OutcomeResult = "upserted"
	OutcomeStatusUpdated OutcomeResult = "status_updated"
	OutcomeUnlocked      OutcomeResult = "unlocked"
	OutcomeIgnored       OutcomeResult = "ignored"
	OutcomeUnresolved    OutcomeResult = "unresolved"
	OutcomeStale         OutcomeResult = "stale"
	OutcomeNotFound      OutcomeResult = "not_found"
)

// Outcome describes what a delivery did. Every outcome is acknowledged to the provider.
type Outcome struct {
	Result         OutcomeResult  `json:"result"`
	SubscriptionID string         `json:"stripe_subscription_id,omitempty"`
	UserID         string         `json:"user_id,omitempty"`
	IdentitySource IdentitySource `json:"identity_source,omitempty"`
	Status         string         `json:"status,omitempty"`
	Detail         string         `json:"detail,omitempty"`
}

type SubscriptionFetcher interface {
	GetSubscription(ctx context.Context, id string) (*stripeplatform.Subscription, error)
}

// ProviderGateway is the part of the payments provider the reconciler reads from.
type ProviderGateway interface {
	SubscriptionFetcher
	CustomerLookup
}

type SubscriptionStore interface {
	RecordLookup
	Upsert(ctx context.Context, rec *models.Subscription, change subscription.Change) (bool, error)
	MarkStatus(ctx context.Context, providerSubscriptionID string, status types.SubscriptionStatus, eventAt time.Time, change subscription.Change) (bool, error)
}

type PersonalityUnlocker interface {
	UnlockByName(ctx context.Context, userID, name string) error
}

// Reconciler applies verified webhook events to the local subscription mirror.
type Reconciler struct {
	provider SubscriptionFetcher
	store    SubscriptionStore
	resolver *IdentityResolver
	unlocker PersonalityUnlocker
	log      *zap.SugaredLogger
}

func NewReconciler(provider ProviderGateway, store SubscriptionStore, unlocker PersonalityUnlocker, log *zap.SugaredLogger) *Reconciler {
	return &Reconciler{
		provider: provider,
		store:    store,
		resolver: NewIdentityResolver(provider, store, log),
		unlocker: unlocker,
		log:      log,
	}
}

// Handle dispatches on the event kind. A returned error means the delivery
// should be retried; everything else is acknowledged.
func (r *Reconciler) Handle(ctx context.Context, evt *Event) (*Outcome, error) {
	switch evt.Kind {
	case EventCheckoutSessionCompleted:
		return r.handleCheckoutCompleted(ctx, evt)
	case EventSubscriptionUpdated:
		return r.handleSubscriptionUpdated(ctx, evt)
	case EventSubscriptionDeleted:
		return r.handleSubscriptionStatus(ctx, evt, types.SubscriptionStatusCanceled, types.SubscriptionChangeReasonDeleted)
	case EventInvoicePaymentSucceeded:
		return r.handleInvoicePaid(ctx, evt)
	case EventInvoicePaymentFailed:
		return r.handleSubscriptionStatus(ctx, evt, types.SubscriptionStatusPastDue, types.SubscriptionChangeReasonPaymentFailed)
	default:
		logctx.FromCtx(ctx, r.log).Infow("webhook_stripe_unhandled", "event_id", evt.ID, "event_type", evt.Type)
		return &Outcome{Result: OutcomeIgnored, Detail: "unhandled event type"}, nil
	}
}

func (r *Reconciler) handleCheckoutCompleted(ctx context.Context, evt *Event) (*Outcome, error) {
	var session checkoutSessionObject
	if err := json.Unmarshal(evt.Object, &session); err != nil {
		return r.malformed(ctx, evt, err), nil
	}

	switch session.Mode {
	case string(stripeplatform.CheckoutModeSubscription):
	case string(stripeplatform.CheckoutModePayment):
		return r.unlockPersonality(ctx, evt, &session)
	default:
		return &Outcome{Result: OutcomeIgnored, Detail: "checkout mode " + session.Mode}, nil
	}

	subID := string(session.Subscription)
	if subID == "" {
		logctx.FromCtx(ctx, r.log).Warnw("webhook_checkout_missing_subscription", "event_id", evt.ID, "session_id", session.ID)
		return &Outcome{Result: OutcomeIgnored, Detail: "session has no subscription"}, nil
	}
	sub, err := r.provider.GetSubscription(ctx, subID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProviderFetch, err)
	}

	customerID := sub.CustomerID
	if customerID == "" {
		customerID = string(session.Customer)
	}
	subject := Subject{
		Metadata: []MetadataSource{
			{Source: IdentitySourceSessionMetadata, Metadata: session.Metadata},
			{Source: IdentitySourceSessionReference, Metadata: map[string]string{MetadataUserIDKey: session.ClientReferenceID}},
			{Source: IdentitySourceSubscriptionMetadata, Metadata: sub.Metadata},
		},
		CustomerID:     customerID,
		SubscriptionID: sub.ID,
	}
	snapshot := snapshotFromProvider(sub)
	snapshot.CustomerID = customerID
	return r.resolveAndUpsert(ctx, evt, subject, snapshot, types.SubscriptionChangeReasonCheckout)
}

func (r *Reconciler) handleSubscriptionUpdated(ctx context.Context, evt *Event) (*Outcome, error) {
	var obj subscriptionObject
	if err := json.Unmarshal(evt.Object, &obj); err != nil || obj.ID == "" {
		return r.malformed(ctx, evt, err), nil
	}
	subject := Subject{
		Metadata:       []MetadataSource{{Source: IdentitySourceSubscriptionMetadata, Metadata: obj.Metadata}},
		CustomerID:     string(obj.Customer),
		SubscriptionID: obj.ID,
	}
	return r.resolveAndUpsert(ctx, evt, subject, obj.snapshot(), types.SubscriptionChangeReasonUpdated)
}

func (r *Reconciler) handleInvoicePaid(ctx context.Context, evt *Event) (*Outcome, error) {
	var inv invoiceObject
	if err := json.Unmarshal(evt.Object, &inv); err != nil {
		return r.malformed(ctx, evt, err), nil
	}
	if inv.BillingReason != BillingReasonSubscriptionCycle && inv.BillingReason != BillingReasonSubscriptionCreate {
		return &Outcome{Result: OutcomeIgnored, Detail: "billing reason " + inv.BillingReason}, nil
	}
	subID := inv.subscriptionID()
	if subID == "" {
		return r.malformed(ctx, evt, errors.New("invoice has no subscription")), nil
	}

	sub, err := r.provider.GetSubscription(ctx, subID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProviderFetch, err)
	}
	customerID := sub.CustomerID
	if customerID == "" {
		customerID = string(inv.Customer)
	}
	subject := Subject{
		Metadata: []MetadataSource{
			{Source: IdentitySourceSubscriptionMetadata, Metadata: sub.Metadata},
			{Source: IdentitySourceSubscriptionMetadata, Metadata: inv.subscriptionMetadata()},
		},
		CustomerID:     customerID,
		SubscriptionID: sub.ID,
	}
	snapshot := snapshotFromProvider(sub)
	snapshot.CustomerID = customerID
	return r.resolveAndUpsert(ctx, evt, subject, snapshot, types.SubscriptionChangeReasonRenewal)
}

// handleSubscriptionStatus sets status by subscription id alone, no identity needed.
func (r *Reconciler) handleSubscriptionStatus(ctx context.Context, evt *Event, status types.SubscriptionStatus, reason types.SubscriptionChangeReason) (*Outcome, error) {
	var subID string
	if evt.Kind == EventSubscriptionDeleted {
		var obj subscriptionObject
		if err := json.Unmarshal(evt.Object, &obj); err != nil {
			return r.malformed(ctx, evt, err), nil
		}
		subID = obj.ID
	} else {
		var inv invoiceObject
		if err := json.Unmarshal(evt.Object, &inv); err != nil {
			return r.malformed(ctx, evt, err), nil
		}
		subID = inv.subscriptionID()
	}
	if subID == "" {
		return r.malformed(ctx, evt, errors.New("event has no subscription id")), nil
	}

	l := logctx.FromCtx(ctx, r.log).With("event_id", evt.ID, "stripe_subscription_id", subID)
	applied, err := r.store.MarkStatus(ctx, subID, status, subscription.EventTime(evt.Created), subscription.Change{Reason: reason, EventID: evt.ID})
	if errors.Is(err, subscription.ErrRecordNotFound) {
		l.Warnw("webhook_subscription_not_found", "status", status)
		return &Outcome{Result: OutcomeNotFound, SubscriptionID: subID, Status: string(status)}, nil
	}
	if err != nil {
		return nil, err
	}
	if !applied {
		l.Infow("webhook_subscription_stale", "status", status)
		return &Outcome{Result: OutcomeStale, SubscriptionID: subID, Status: string(status)}, nil
	}
	l.Infow("webhook_subscription_status_updated", "status", status)
	return &Outcome{Result: OutcomeStatusUpdated, SubscriptionID: subID, Status: string(status)}, nil
}

func (r *Reconciler) resolveAndUpsert(ctx context.Context, evt *Event, subject Subject, snapshot subscription.Snapshot, reason types.SubscriptionChangeReason) (*Outcome, error) {
	l := logctx.FromCtx(ctx, r.log).With("event_id", evt.ID, "event_type", evt.Type, "stripe_subscription_id", snapshot.ID)

	identity, err := r.resolver.Resolve(ctx, subject)
	if errors.Is(err, ErrIdentityUnresolved) {
		l.Warnw("subscription_identity_unresolved", "stripe_customer_id", subject.CustomerID)
		return &Outcome{Result: OutcomeUnresolved, SubscriptionID: snapshot.ID, Status: snapshot.Status}, nil
	}
	if err != nil {
		return nil, err
	}

	rec := subscription.NewRecord(identity.UserID, snapshot, evt.Created)
	applied, err := r.store.Upsert(ctx, rec, subscription.Change{Reason: reason, EventID: evt.ID})
	if err != nil {
		return nil, err
	}
	out := &Outcome{
		Result:         OutcomeUpserted,
		SubscriptionID: snapshot.ID,
		UserID:         identity.UserID,
		IdentitySource: identity.Source,
		Status:         snapshot.Status,
	}
	if !applied {
		out.Result = OutcomeStale
		l.Infow("webhook_subscription_stale", "user_id", identity.UserID)
		return out, nil
	}
	l.Infow("webhook_subscription_upserted", "user_id", identity.UserID, "identity_source", identity.Source, "status", snapshot.Status)
	return out, nil
}

// unlockPersonality handles a one-time personality purchase.
func (r *Reconciler) unlockPersonality(ctx context.Context, evt *Event, session *checkoutSessionObject) (*Outcome, error) {
	l := logctx.FromCtx(ctx, r.log).With("event_id", evt.ID, "session_id", session.ID)
	userID := userIDFrom(session.Metadata)
	name := strings.TrimSpace(session.Metadata[MetadataPersonalityKey])
	if userID == "" || name == "" {
		l.Warnw("webhook_checkout_missing_metadata", "has_user_id", userID != "", "has_personality", name != "")
		return &Outcome{Result: OutcomeIgnored, Detail: "missing metadata"}, nil
	}

	err := r.unlocker.UnlockByName(ctx, userID, name)
	if errors.Is(err, personality.ErrPersonalityNotFound) {
		l.Warnw("webhook_checkout_unknown_personality", "user_id", userID, "personality", name)
		return &Outcome{Result: OutcomeIgnored, UserID: userID, Detail: "personality not found"}, nil
	}
	if err != nil {
		return nil, err
	}
	l.Infow("webhook_personality_unlocked", "user_id", userID, "personality", name)
	return &Outcome{Result: OutcomeUnlocked, UserID: userID, Detail: name}, nil
}

func (r *Reconciler) malformed(ctx context.Context, evt *Event, err error) *Outcome {
	logctx.FromCtx(ctx, r.log).Warnw("webhook_stripe_malformed", "event_id", evt.ID, "event_type", evt.Type, "err", err)
	return &Outcome{Result: OutcomeIgnored, Detail: "malformed payload"}
}
