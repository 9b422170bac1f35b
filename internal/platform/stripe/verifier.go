package stripe

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v82/webhook"

	cfgpkg "github.com/rotbot/rotbot-api/pkg/config"
)

const SignatureHeader = "Stripe-Signature"

// Event is a verified webhook envelope. Object holds data.object undecoded.
type Event struct {
	ID      string
	Type    string
	Created int64
	Object  json.RawMessage
}

// Verifier authenticates webhook deliveries against the signing secret.
type Verifier struct {
	secret string
}

func NewVerifier(cfg *cfgpkg.Config) *Verifier {
	return &Verifier{secret: strings.TrimSpace(cfg.Stripe.WebhookSecret)}
}

// Verify checks sigHeader against the exact payload bytes. Nothing in payload
// is interpreted before the signature matches.
func (v *Verifier) Verify(payload []byte, sigHeader string) (*Event, error) {
	if v.secret == "" {
		return nil, ErrMissingSecret
	}
	if strings.TrimSpace(sigHeader) == "" {
		return nil, ErrMissingSignature
	}
	evt, err := webhook.ConstructEventWithOptions(payload, sigHeader, v.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, classifyVerifyError(err)
	}
	out := &Event{ID: evt.ID, Type: string(evt.Type), Created: evt.Created}
	if evt.Data != nil {
		out.Object = evt.Data.Raw
	}
	return out, nil
}

func classifyVerifyError(err error) error {
	switch {
	case errors.Is(err, webhook.ErrNotSigned),
		errors.Is(err, webhook.ErrInvalidHeader),
		errors.Is(err, webhook.ErrNoValidSignature),
		errors.Is(err, webhook.ErrTooOld):
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	default:
		return fmt.Errorf("%w: %w", ErrMalformedEvent, err)
	}
}
