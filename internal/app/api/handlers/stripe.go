package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	mw "github.com/rotbot/rotbot-api/internal/app/api/middleware"
	"github.com/rotbot/rotbot-api/internal/app/service/billing"
	stripeplatform "github.com/rotbot/rotbot-api/internal/platform/stripe"
	"github.com/rotbot/rotbot-api/pkg/logctx"
	"github.com/rotbot/rotbot-api/pkg/response"
)

const maxWebhookBodyBytes = 1 << 20

type WebhookVerifier interface {
	Verify(payload []byte, sigHeader string) (*stripeplatform.Event, error)
}

type WebhookProcessor interface {
	Process(ctx context.Context, evt *billing.Event) (*billing.Outcome, error)
}

type CheckoutCreator interface {
	CreateSession(ctx context.Context, req billing.CheckoutRequest) (string, error)
}

type CheckoutResponse struct {
	URL string `json:"url"`
}

type WebhookAck struct {
	Received bool `json:"received"`
}

// @Summary      Create Stripe Checkout session
// @Description  Starts a hosted checkout for the premium subscription, or for a single personality when personalityName is set. With a bearer token the token subject must equal userId.
// @Tags         Stripe
// @Accept       json
// @Produce      json
// @Param        request body billing.CheckoutRequest true "Checkout request"
// @Success      200  {object}  handlers.CheckoutResponse
// @Failure      400  {object}  response.ErrorBody
// @Failure      403  {object}  response.ErrorBody
// @Failure      500  {object}  response.ErrorBody
// @Router       /api/stripe/checkout [post]
func ApiStripeCheckout(svc CheckoutCreator, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req billing.CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorBody{Error: "Invalid request body."})
			return
		}
		if uid := mw.UserID(c); uid != "" && uid != req.UserID {
			logctx.FromGin(c, log).Warnw("checkout_user_mismatch", "request_user_id", req.UserID)
			c.JSON(http.StatusForbidden, response.ErrorBody{Error: "userId does not match the signed-in user."})
			return
		}

		url, err := svc.CreateSession(c.Request.Context(), req)
		switch {
		case err == nil:
			c.JSON(http.StatusOK, CheckoutResponse{URL: url})
		case errors.Is(err, billing.ErrInvalidCheckoutRequest):
			c.JSON(http.StatusBadRequest, response.ErrorBody{Error: "userId is required."})
		case errors.Is(err, billing.ErrUnknownPersonality):
			c.JSON(http.StatusBadRequest, response.ErrorBody{Error: "Invalid personality."})
		case errors.Is(err, billing.ErrPriceNotConfigured):
			c.JSON(http.StatusBadRequest, response.ErrorBody{Error: "Subscription price is not configured."})
		case errors.Is(err, billing.ErrPaymentsNotConfigured):
			c.JSON(http.StatusInternalServerError, response.ErrorBody{Error: "Payments are not configured."})
		default:
			c.JSON(http.StatusInternalServerError, response.ErrorBody{Error: "Failed to create Stripe Checkout session."})
		}
	}
}

// @Summary      Stripe webhook
// @Description  Receives Stripe events. The raw body is verified against the Stripe-Signature header before anything is parsed.
// @Tags         Stripe
// @Accept       json
// @Produce      json
// @Param        Stripe-Signature header string true "Stripe signature"
// @Success      200  {object}  handlers.WebhookAck
// @Failure      400  {object}  response.ErrorBody
// @Failure      500  {object}  response.ErrorBody
// @Router       /api/stripe/webhook [post]
func ApiStripeWebhook(v WebhookVerifier, p WebhookProcessor, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		l := logctx.FromGin(c, log)
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes)
		payload, err := io.ReadAll(c.Request.Body)
		if err != nil {
			l.Warnw("webhook_stripe_body_unreadable", "err", err)
			c.JSON(http.StatusBadRequest, response.ErrorBody{Error: "Unable to read request body."})
			return
		}

		evt, err := v.Verify(payload, c.GetHeader(stripeplatform.SignatureHeader))
		if err != nil {
			switch {
			case errors.Is(err, stripeplatform.ErrMissingSecret):
				l.Errorw("webhook_stripe_secret_missing")
			case errors.Is(err, stripeplatform.ErrMalformedEvent):
				l.Warnw("webhook_stripe_malformed", "err", err)
				c.JSON(http.StatusBadRequest, response.ErrorBody{Error: "Invalid payload."})
				return
			default:
				l.Warnw("webhook_stripe_rejected", "err", err)
			}
			c.JSON(http.StatusBadRequest, response.ErrorBody{Error: "Invalid signature."})
			return
		}

		if _, err := p.Process(c.Request.Context(), billing.NewEvent(evt)); err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, response.ErrorBody{Error: "Webhook handling failed."})
			return
		}
		c.JSON(http.StatusOK, WebhookAck{Received: true})
	}
}

// RegisterStripeRoutes mounts the checkout and webhook endpoints under r, expected at "/api/stripe".
func RegisterStripeRoutes(r gin.IRouter, auth *mw.Authenticator, checkout CheckoutCreator, v WebhookVerifier, p WebhookProcessor, log *zap.SugaredLogger) {
	r.POST("/checkout", auth.OptionalAuth(), ApiStripeCheckout(checkout, log))
	r.POST("/webhook", ApiStripeWebhook(v, p, log))
}
