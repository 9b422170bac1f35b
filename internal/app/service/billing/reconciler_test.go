package billing

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rotbot/rotbot-api/internal/models"
	stripeplatform "github.com/rotbot/rotbot-api/internal/platform/stripe"
	"github.com/rotbot/rotbot-api/pkg/types"
)

func event(id, typ string, created int64, object string) *Event {
	return &Event{ID: id, Type: typ, Kind: ClassifyEventType(typ), Created: created, Object: json.RawMessage(object)}
}

type harness struct {
	store    *memStore
	gw       *fakeGateway
	unlocker *fakeUnlocker
	r        *Reconciler
}

func newHarness() *harness {
	h := &harness{
		store: newMemStore(),
		gw: &fakeGateway{
			subs: map[string]*stripeplatform.Subscription{
				"sub_1": {ID: "sub_1", CustomerID: "cus_1", Status: "active", CurrentPeriodStart: 1700000000, CurrentPeriodEnd: 1702592000},
			},
			customers: map[string]map[string]string{},
		},
		unlocker: &fakeUnlocker{known: map[string]bool{"Sad Ghost": true}},
	}
	h.r = NewReconciler(h.gw, h.store, h.unlocker, zap.NewNop().Sugar())
	return h
}

const checkoutU1 = `{"id":"cs_1","object":"checkout.session","mode":"subscription","customer":"cus_1","subscription":"sub_1","metadata":{"user_id":"u1"}}`

func TestReconciler_CheckoutThenPaymentFailed(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	out, err := h.r.Handle(ctx, event("evt_1", "checkout.session.completed", 1700000000, checkoutU1))
	require.NoError(t, err)
	require.Equal(t, OutcomeUpserted, out.Result)
	require.Equal(t, IdentitySourceSessionMetadata, out.IdentitySource)

	row := h.store.get("sub_1")
	require.NotNil(t, row)
	require.Equal(t, "u1", row.UserID)
	require.Equal(t, "cus_1", row.StripeCustomerID)
	require.Equal(t, types.SubscriptionStatusActive, row.Status)
	require.EqualValues(t, 1702592000, row.CurrentPeriodEnd.Unix())

	out, err = h.r.Handle(ctx, event("evt_2", "invoice.payment_failed", 1702592100, `{"id":"in_1","subscription":"sub_1","billing_reason":"subscription_cycle"}`))
	require.NoError(t, err)
	require.Equal(t, OutcomeStatusUpdated, out.Result)

	row = h.store.get("sub_1")
	require.Equal(t, types.SubscriptionStatusPastDue, row.Status)
	require.Equal(t, "u1", row.UserID)
}

func TestReconciler_ReplayIsIdempotent(t *testing.T) {
	h := newHarness()
	evt := event("evt_1", "checkout.session.completed", 1700000000, checkoutU1)

	for range 2 {
		out, err := h.r.Handle(context.Background(), evt)
		require.NoError(t, err)
		require.Equal(t, OutcomeUpserted, out.Result)
	}
	require.Len(t, h.store.rows, 1)
	require.Equal(t, "u1", h.store.get("sub_1").UserID)

	upd := event("evt_3", "customer.subscription.updated", 1700000500, `{"id":"sub_1","status":"trialing","customer":"cus_1","metadata":{"user_id":"u1"}}`)
	for range 2 {
		_, err := h.r.Handle(context.Background(), upd)
		require.NoError(t, err)
	}
	require.Len(t, h.store.rows, 1)
	require.Equal(t, types.SubscriptionStatusTrialing, h.store.get("sub_1").Status)
}

func TestReconciler_UpdatedFallsBackToLocalRecord(t *testing.T) {
	h := newHarness()
	h.store.rows["sub_9"] = &models.Subscription{UserID: "u9", StripeSubscriptionID: "sub_9", Status: types.SubscriptionStatusIncomplete}

	out, err := h.r.Handle(context.Background(), event("evt_1", "customer.subscription.updated", 1700000000,
		`{"id":"sub_9","status":"active","customer":"cus_9","metadata":{}}`))
	require.NoError(t, err)
	require.Equal(t, OutcomeUpserted, out.Result)
	require.Equal(t, IdentitySourceLocalRecord, out.IdentitySource)
	require.Equal(t, "u9", h.store.get("sub_9").UserID)
	require.Equal(t, types.SubscriptionStatusActive, h.store.get("sub_9").Status)
}

func TestReconciler_UnresolvedIdentityWritesNothing(t *testing.T) {
	h := newHarness()

	out, err := h.r.Handle(context.Background(), event("evt_1", "customer.subscription.updated", 1700000000,
		`{"id":"sub_orphan","status":"active","customer":"cus_orphan"}`))
	require.NoError(t, err)
	require.Equal(t, OutcomeUnresolved, out.Result)
	require.Empty(t, h.store.rows)
}

func TestReconciler_StaleUpdateDoesNotClobber(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	newer := event("evt_new", "customer.subscription.updated", 1700000200, `{"id":"sub_1","status":"active","metadata":{"user_id":"u1"}}`)
	older := event("evt_old", "customer.subscription.updated", 1700000100, `{"id":"sub_1","status":"incomplete","metadata":{"user_id":"u1"}}`)

	_, err := h.r.Handle(ctx, newer)
	require.NoError(t, err)
	out, err := h.r.Handle(ctx, older)
	require.NoError(t, err)
	require.Equal(t, OutcomeStale, out.Result)
	require.Equal(t, types.SubscriptionStatusActive, h.store.get("sub_1").Status)

	out, err = h.r.Handle(ctx, event("evt_fail_old", "invoice.payment_failed", 1700000150, `{"id":"in_1","subscription":"sub_1"}`))
	require.NoError(t, err)
	require.Equal(t, OutcomeStale, out.Result)
	require.Equal(t, types.SubscriptionStatusActive, h.store.get("sub_1").Status)
}

func TestReconciler_DeletedMarksCanceled(t *testing.T) {
	h := newHarness()
	h.store.rows["sub_1"] = &models.Subscription{UserID: "u1", StripeSubscriptionID: "sub_1", Status: types.SubscriptionStatusActive}

	out, err := h.r.Handle(context.Background(), event("evt_1", "customer.subscription.deleted", 1700000000, `{"id":"sub_1","status":"canceled"}`))
	require.NoError(t, err)
	require.Equal(t, OutcomeStatusUpdated, out.Result)
	require.Equal(t, types.SubscriptionStatusCanceled, h.store.get("sub_1").Status)
	require.Len(t, h.store.rows, 1, "canceled rows are kept")

	out, err = h.r.Handle(context.Background(), event("evt_2", "customer.subscription.deleted", 1700000000, `{"id":"sub_unknown"}`))
	require.NoError(t, err)
	require.Equal(t, OutcomeNotFound, out.Result)
}

func TestReconciler_InvoicePaid(t *testing.T) {
	h := newHarness()
	h.gw.subs["sub_1"].Metadata = map[string]string{"user_id": "u1"}

	out, err := h.r.Handle(context.Background(), event("evt_1", "invoice.payment_succeeded", 1700000000,
		`{"id":"in_1","billing_reason":"manual","subscription":"sub_1"}`))
	require.NoError(t, err)
	require.Equal(t, OutcomeIgnored, out.Result)
	require.Empty(t, h.store.rows)

	out, err = h.r.Handle(context.Background(), event("evt_2", "invoice.payment_succeeded", 1700000000,
		`{"id":"in_2","billing_reason":"subscription_cycle","parent":{"subscription_details":{"subscription":"sub_1"}}}`))
	require.NoError(t, err)
	require.Equal(t, OutcomeUpserted, out.Result)
	require.Equal(t, "u1", h.store.get("sub_1").UserID)
}

func TestReconciler_ProviderAndStoreFailuresAreRetryable(t *testing.T) {
	h := newHarness()
	h.gw.subErr = errors.New("timeout")
	_, err := h.r.Handle(context.Background(), event("evt_1", "checkout.session.completed", 1700000000, checkoutU1))
	require.ErrorIs(t, err, ErrProviderFetch)

	h = newHarness()
	h.store.err = errors.New("db down")
	_, err = h.r.Handle(context.Background(), event("evt_1", "checkout.session.completed", 1700000000, checkoutU1))
	require.ErrorIs(t, err, h.store.err)

	_, err = h.r.Handle(context.Background(), event("evt_2", "invoice.payment_failed", 1700000000, `{"id":"in_1","subscription":"sub_1"}`))
	require.ErrorIs(t, err, h.store.err)
}

func TestReconciler_LegacyPersonalityPurchase(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	out, err := h.r.Handle(ctx, event("evt_1", "checkout.session.completed", 1700000000,
		`{"id":"cs_1","mode":"payment","metadata":{"user_id":"u1","personality":"Sad Ghost"}}`))
	require.NoError(t, err)
	require.Equal(t, OutcomeUnlocked, out.Result)
	require.Equal(t, []string{"Sad Ghost"}, h.unlocker.unlocked["u1"])
	require.Empty(t, h.store.rows, "payment sessions never touch subscriptions")

	out, err = h.r.Handle(ctx, event("evt_2", "checkout.session.completed", 1700000000,
		`{"id":"cs_2","mode":"payment","metadata":{"user_id":"u1","personality":"Nobody"}}`))
	require.NoError(t, err)
	require.Equal(t, OutcomeIgnored, out.Result)

	out, err = h.r.Handle(ctx, event("evt_3", "checkout.session.completed", 1700000000, `{"id":"cs_3","mode":"payment"}`))
	require.NoError(t, err)
	require.Equal(t, OutcomeIgnored, out.Result)
}

func TestReconciler_IgnoresUnhandledAndMalformed(t *testing.T) {
	h := newHarness()
	for _, evt := range []*Event{
		event("evt_1", "charge.refunded", 1700000000, `{"id":"ch_1"}`),
		event("evt_2", "customer.subscription.updated", 1700000000, `not json`),
		event("evt_3", "checkout.session.completed", 1700000000, `{"id":"cs_1","mode":"setup"}`),
		event("evt_4", "checkout.session.completed", 1700000000, `{"id":"cs_1","mode":"subscription"}`),
	} {
		out, err := h.r.Handle(context.Background(), evt)
		require.NoError(t, err, evt.ID)
		require.Equal(t, OutcomeIgnored, out.Result, evt.ID)
	}
	require.Empty(t, h.store.rows)
}
