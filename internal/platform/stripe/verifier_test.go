package stripe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82/webhook"

	cfgpkg "github.com/rotbot/rotbot-api/pkg/config"
)

const testSecret = "whsec_test_secret"

func sign(t *testing.T, payload []byte, secret string) string {
	t.Helper()
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
		Scheme:    "v1",
	})
	return signed.Header
}

func newVerifier(secret string) *Verifier {
	return NewVerifier(&cfgpkg.Config{Stripe: cfgpkg.StripeConfig{WebhookSecret: secret}})
}

func TestVerifier_Verify(t *testing.T) {
	payload := []byte(`{"id":"evt_1","object":"event","type":"invoice.payment_failed","created":1700000000,"data":{"object":{"id":"in_1","subscription":"sub_1"}}}`)

	evt, err := newVerifier(testSecret).Verify(payload, sign(t, payload, testSecret))
	require.NoError(t, err)
	require.Equal(t, "evt_1", evt.ID)
	require.Equal(t, "invoice.payment_failed", evt.Type)
	require.EqualValues(t, 1700000000, evt.Created)
	require.JSONEq(t, `{"id":"in_1","subscription":"sub_1"}`, string(evt.Object))
}

func TestVerifier_Rejects(t *testing.T) {
	payload := []byte(`{"id":"evt_1","object":"event","type":"customer.subscription.deleted","data":{"object":{"id":"sub_1"}}}`)
	header := sign(t, payload, testSecret)

	cases := []struct {
		name     string
		verifier *Verifier
		payload  []byte
		header   string
		want     error
	}{
		{"missing secret", newVerifier(""), payload, header, ErrMissingSecret},
		{"missing signature", newVerifier(testSecret), payload, "", ErrMissingSignature},
		{"wrong secret", newVerifier("whsec_other"), payload, header, ErrInvalidSignature},
		{"tampered body", newVerifier(testSecret), []byte(`{"id":"evt_2","object":"event","type":"customer.subscription.deleted","data":{"object":{"id":"sub_1"}}}`), header, ErrInvalidSignature},
		{"garbage header", newVerifier(testSecret), payload, "t=1,v1=deadbeef", ErrInvalidSignature},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			evt, err := tc.verifier.Verify(tc.payload, tc.header)
			require.ErrorIs(t, err, tc.want)
			require.Nil(t, evt)
		})
	}
}

func TestVerifier_MalformedSignedBody(t *testing.T) {
	payload := []byte(`{"id":"evt_1","object":"event","created":"not-a-number"`)

	evt, err := newVerifier(testSecret).Verify(payload, sign(t, payload, testSecret))
	require.Nil(t, evt)
	require.ErrorIs(t, err, ErrMalformedEvent)
	require.NotErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifier_KeepsCause(t *testing.T) {
	payload := []byte(`{"id":"evt_1","object":"event","type":"customer.subscription.deleted","data":{"object":{"id":"sub_1"}}}`)

	_, err := newVerifier("whsec_other").Verify(payload, sign(t, payload, testSecret))
	require.ErrorIs(t, err, ErrInvalidSignature)
	require.ErrorIs(t, err, webhook.ErrNoValidSignature)
}
