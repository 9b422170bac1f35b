package billing

import (
	"context"
	"encoding/json"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/rotbot/rotbot-api/internal/models"
	"github.com/rotbot/rotbot-api/pkg/logctx"
	"github.com/rotbot/rotbot-api/pkg/metrics"
)

type EventRecorder interface {
	Save(ctx context.Context, entry *models.WebhookEventLog)
}

// WebhookService records a verified delivery, reconciles it and records the result.
type WebhookService struct {
	reconciler *Reconciler
	events     EventRecorder
	log        *zap.SugaredLogger
}

func NewWebhookService(reconciler *Reconciler, events EventRecorder, log *zap.SugaredLogger) *WebhookService {
	return &WebhookService{reconciler: reconciler, events: events, log: log}
}

func (s *WebhookService) Process(ctx context.Context, evt *Event) (outcome *Outcome, resErr error) {
	start := time.Now()
	l := logctx.FromCtx(ctx, s.log)
	l.Infow("webhook_stripe_received", "event_id", evt.ID, "event_type", evt.Type)

	base := models.WebhookEventLog{
		EventID:        evt.ID,
		EventType:      evt.Type,
		TraceID:        logctx.TraceID(ctx),
		EventCreatedAt: time.Unix(evt.Created, 0).UTC(),
		Data:           datatypes.JSON(evt.Object),
	}
	received := base
	received.Status = models.WebhookEventLogStatusReceived
	s.events.Save(ctx, &received)

	defer func() {
		result := base
		res := map[string]any{"outcome": outcome}
		switch {
		case resErr != nil:
			result.Status = models.WebhookEventLogStatusHandleFailed
			res["error"] = resErr.Error()
			metrics.CountWebhookEvent(evt.Kind.String(), "error")
		case outcome.Result == OutcomeIgnored:
			result.Status = models.WebhookEventLogStatusIgnored
			metrics.CountWebhookEvent(evt.Kind.String(), string(outcome.Result))
		default:
			result.Status = models.WebhookEventLogStatusHandled
			metrics.CountWebhookEvent(evt.Kind.String(), string(outcome.Result))
		}
		if outcome != nil {
			result.SubscriptionID = outcome.SubscriptionID
			if outcome.UserID != "" {
				result.UserID = lo.ToPtr(outcome.UserID)
			}
		}
		resBytes, _ := json.Marshal(res)
		result.Result = lo.ToPtr(datatypes.JSON(resBytes))
		s.events.Save(ctx, &result)
		metrics.ObserveSince("webhook", evt.Kind.String(), start)
	}()

	outcome, resErr = s.reconciler.Handle(ctx, evt)
	if resErr != nil {
		l.Errorw("webhook_stripe_failed", "event_id", evt.ID, "event_type", evt.Type, "err", resErr)
		return nil, resErr
	}
	return outcome, nil
}
