package billing

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/rotbot/rotbot-api/internal/app/service/personality"
	"github.com/rotbot/rotbot-api/internal/app/service/subscription"
	webhooklog "github.com/rotbot/rotbot-api/internal/app/service/webhook_log"
	stripeplatform "github.com/rotbot/rotbot-api/internal/platform/stripe"
	cfgpkg "github.com/rotbot/rotbot-api/pkg/config"
)

func newReconciler(c *stripeplatform.Client, store subscription.Store, p *personality.Service, log *zap.SugaredLogger) *Reconciler {
	return NewReconciler(c, store, p, log)
}

func newCheckoutService(cfg *cfgpkg.Config, c *stripeplatform.Client, log *zap.SugaredLogger) *CheckoutService {
	return NewCheckoutService(cfg, c, log)
}

func newWebhookService(r *Reconciler, events *webhooklog.Service, log *zap.SugaredLogger) *WebhookService {
	return NewWebhookService(r, events, log)
}

var Module = fx.Options(
	fx.Provide(newReconciler, newCheckoutService, newWebhookService),
)
