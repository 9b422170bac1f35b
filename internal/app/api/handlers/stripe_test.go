package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"

	"github.com/rotbot/rotbot-api/internal/app/service/billing"
	stripeplatform "github.com/rotbot/rotbot-api/internal/platform/stripe"
	"github.com/rotbot/rotbot-api/pkg/config"
)

const testWebhookSecret = "whsec_handler_test"

type fakeCheckout struct {
	got *billing.CheckoutRequest
	url string
	err error
}

func (f *fakeCheckout) CreateSession(_ context.Context, req billing.CheckoutRequest) (string, error) {
	f.got = &req
	return f.url, f.err
}

type recordingProcessor struct {
	events []*billing.Event
	err    error
}

func (p *recordingProcessor) Process(_ context.Context, evt *billing.Event) (*billing.Outcome, error) {
	p.events = append(p.events, evt)
	if p.err != nil {
		return nil, p.err
	}
	return &billing.Outcome{Result: billing.OutcomeUpserted}, nil
}

func newStripeRouter(checkout CheckoutCreator, secret string, p WebhookProcessor) http.Handler {
	r := newTestRouter()
	v := stripeplatform.NewVerifier(&config.Config{Stripe: config.StripeConfig{WebhookSecret: secret}})
	RegisterStripeRoutes(r.Group("/api/stripe"), newTestAuth(), checkout, v, p, zap.NewNop().Sugar())
	return r
}

func signedHeader(payload []byte, secret string) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload: payload, Secret: secret, Timestamp: time.Now(), Scheme: "v1",
	}).Header
}

const checkoutEvent = `{"id":"evt_1","object":"event","type":"checkout.session.completed","created":1700000000,"data":{"object":{"id":"cs_1","mode":"subscription","subscription":"sub_1","metadata":{"user_id":"u1"}}}}`

func TestStripeWebhook_AcknowledgesVerifiedEvent(t *testing.T) {
	p := &recordingProcessor{}
	r := newStripeRouter(&fakeCheckout{}, testWebhookSecret, p)

	payload := []byte(checkoutEvent)
	w := doJSON(t, r, http.MethodPost, "/api/stripe/webhook", payload, map[string]string{
		stripeplatform.SignatureHeader: signedHeader(payload, testWebhookSecret),
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"received":true}`, w.Body.String())
	require.Len(t, p.events, 1)
	require.Equal(t, "evt_1", p.events[0].ID)
	require.Equal(t, billing.EventCheckoutSessionCompleted, p.events[0].Kind)
}

func TestStripeWebhook_RejectsBeforeProcessing(t *testing.T) {
	payload := []byte(checkoutEvent)
	cases := []struct {
		name   string
		secret string
		header string
	}{
		{"missing signature", testWebhookSecret, ""},
		{"bad signature", testWebhookSecret, signedHeader(payload, "whsec_wrong")},
		{"missing secret", "", signedHeader(payload, testWebhookSecret)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &recordingProcessor{}
			r := newStripeRouter(&fakeCheckout{}, tc.secret, p)
			headers := map[string]string{}
			if tc.header != "" {
				headers[stripeplatform.SignatureHeader] = tc.header
			}
			w := doJSON(t, r, http.MethodPost, "/api/stripe/webhook", payload, headers)
			require.Equal(t, http.StatusBadRequest, w.Code)
			require.JSONEq(t, `{"error":"Invalid signature."}`, w.Body.String())
			require.Empty(t, p.events)
		})
	}
}

func TestStripeWebhook_SignedButMalformed(t *testing.T) {
	p := &recordingProcessor{}
	r := newStripeRouter(&fakeCheckout{}, testWebhookSecret, p)

	payload := []byte(`{"id":"evt_1","object":"event"`)
	w := doJSON(t, r, http.MethodPost, "/api/stripe/webhook", payload, map[string]string{
		stripeplatform.SignatureHeader: signedHeader(payload, testWebhookSecret),
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.JSONEq(t, `{"error":"Invalid payload."}`, w.Body.String())
	require.Empty(t, p.events)
}

func TestStripeWebhook_ProcessFailureIs500(t *testing.T) {
	p := &recordingProcessor{err: errors.New("db down")}
	r := newStripeRouter(&fakeCheckout{}, testWebhookSecret, p)

	payload := []byte(checkoutEvent)
	w := doJSON(t, r, http.MethodPost, "/api/stripe/webhook", payload, map[string]string{
		stripeplatform.SignatureHeader: signedHeader(payload, testWebhookSecret),
	})
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestStripeWebhook_RejectsOversizedBody(t *testing.T) {
	p := &recordingProcessor{}
	r := newStripeRouter(&fakeCheckout{}, testWebhookSecret, p)

	payload := []byte(`{"pad":"` + strings.Repeat("x", maxWebhookBodyBytes) + `"}`)
	w := doJSON(t, r, http.MethodPost, "/api/stripe/webhook", payload, map[string]string{
		stripeplatform.SignatureHeader: signedHeader(payload, testWebhookSecret),
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Empty(t, p.events)
}

func TestStripeCheckout(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"ok", nil, http.StatusOK, `{"url":"https://checkout.stripe.test/cs_1"}`},
		{"unknown personality", billing.ErrUnknownPersonality, http.StatusBadRequest, `{"error":"Invalid personality."}`},
		{"price missing", billing.ErrPriceNotConfigured, http.StatusBadRequest, `{"error":"Subscription price is not configured."}`},
		{"invalid request", billing.ErrInvalidCheckoutRequest, http.StatusBadRequest, `{"error":"userId is required."}`},
		{"not configured", billing.ErrPaymentsNotConfigured, http.StatusInternalServerError, `{"error":"Payments are not configured."}`},
		{"provider failure", billing.ErrCheckoutFailed, http.StatusInternalServerError, `{"error":"Failed to create Stripe Checkout session."}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fc := &fakeCheckout{url: "https://checkout.stripe.test/cs_1", err: tc.err}
			r := newStripeRouter(fc, testWebhookSecret, &recordingProcessor{})
			w := doJSON(t, r, http.MethodPost, "/api/stripe/checkout", map[string]string{"userId": "u1"}, nil)
			require.Equal(t, tc.wantCode, w.Code)
			require.JSONEq(t, tc.wantBody, w.Body.String())
			require.Equal(t, "u1", fc.got.UserID)
		})
	}
}

func TestStripeCheckout_TokenSubjectMustMatch(t *testing.T) {
	fc := &fakeCheckout{url: "https://checkout.stripe.test/cs_1"}
	r := newStripeRouter(fc, testWebhookSecret, &recordingProcessor{})

	w := doJSON(t, r, http.MethodPost, "/api/stripe/checkout",
		map[string]string{"userId": "u2", "personalityName": "Sad Ghost"},
		map[string]string{"Authorization": bearer(t, "u1")})
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Nil(t, fc.got)

	w = doJSON(t, r, http.MethodPost, "/api/stripe/checkout",
		map[string]string{"userId": "u1", "personalityName": "Sad Ghost"},
		map[string]string{"Authorization": bearer(t, "u1")})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Sad Ghost", fc.got.PersonalityName)
}

func TestStripeCheckout_BadBody(t *testing.T) {
	r := newStripeRouter(&fakeCheckout{}, testWebhookSecret, &recordingProcessor{})
	w := doJSON(t, r, http.MethodPost, "/api/stripe/checkout", "{not json", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
