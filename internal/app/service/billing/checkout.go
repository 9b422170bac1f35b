package billing

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	stripeplatform "github.com/rotbot/rotbot-api/internal/platform/stripe"
	cfgpkg "github.com/rotbot/rotbot-api/pkg/config"
	"github.com/rotbot/rotbot-api/pkg/logctx"
)

type CheckoutRequest struct {
	UserID string `json:"userId"`
	// PersonalityName selects the legacy one-time purchase; empty means subscription.
	PersonalityName string `json:"personalityName,omitempty"`
}

type CheckoutSessionCreator interface {
	CreateCheckoutSession(ctx context.Context, in *stripeplatform.CheckoutSessionInput) (*stripeplatform.CheckoutSession, error)
}

// CheckoutService starts hosted checkout sessions.
type CheckoutService struct {
	cfg     *cfgpkg.Config
	creator CheckoutSessionCreator
	log     *zap.SugaredLogger
}

func NewCheckoutService(cfg *cfgpkg.Config, creator CheckoutSessionCreator, log *zap.SugaredLogger) *CheckoutService {
	return &CheckoutService{cfg: cfg, creator: creator, log: log}
}

// CreateSession returns the hosted checkout URL. The price must be configured
// server side; there is no fallback price.
func (s *CheckoutService) CreateSession(ctx context.Context, req CheckoutRequest) (string, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return "", fmt.Errorf("%w: userId is required", ErrInvalidCheckoutRequest)
	}
	name := strings.TrimSpace(req.PersonalityName)

	in, err := s.sessionInput(userID, name)
	if err != nil {
		return "", err
	}

	l := logctx.FromCtx(ctx, s.log).With("user_id", userID, "mode", in.Mode)
	session, err := s.creator.CreateCheckoutSession(ctx, in)
	if errors.Is(err, stripeplatform.ErrNotConfigured) {
		l.Errorw("checkout_payments_not_configured", "err", err)
		return "", fmt.Errorf("%w: %w", ErrPaymentsNotConfigured, err)
	}
	if err != nil {
		l.Errorw("checkout_session_failed", "err", err)
		return "", fmt.Errorf("%w: %w", ErrCheckoutFailed, err)
	}
	l.Infow("checkout_session_created", "session_id", session.ID)
	return session.URL, nil
}

func (s *CheckoutService) sessionInput(userID, personalityName string) (*stripeplatform.CheckoutSessionInput, error) {
	base := strings.TrimRight(s.cfg.BaseURL, "/")
	cancelURL := base + "/personalities?canceled=1"

	if personalityName != "" {
		item := s.cfg.PriceForPersonality(personalityName)
		if item == nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPersonality, personalityName)
		}
		return &stripeplatform.CheckoutSessionInput{
			Mode:       stripeplatform.CheckoutModePayment,
			PriceID:    item.ProviderPriceID,
			SuccessURL: base + "/personalities?success=1&personality=" + url.QueryEscape(personalityName),
			CancelURL:  cancelURL,
			Metadata: map[string]string{
				MetadataUserIDKey:      userID,
				MetadataPersonalityKey: personalityName,
			},
		}, nil
	}

	priceID := strings.TrimSpace(s.cfg.Stripe.SubscriptionPriceID)
	if priceID == "" {
		return nil, ErrPriceNotConfigured
	}
	return &stripeplatform.CheckoutSessionInput{
		Mode:                 stripeplatform.CheckoutModeSubscription,
		PriceID:              priceID,
		SuccessURL:           base + "/personalities?success=1",
		CancelURL:            cancelURL,
		Metadata:             map[string]string{MetadataUserIDKey: userID},
		SubscriptionMetadata: map[string]string{MetadataUserIDKey: userID},
	}, nil
}
