package webhook_log

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/rotbot/rotbot-api/internal/models"
	"github.com/rotbot/rotbot-api/pkg/logctx"
	"github.com/rotbot/rotbot-api/pkg/tool"
)

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

// Save asynchronously persists a webhook event log. Nil input is ignored.
func (s *Service) Save(ctx context.Context, entry *models.WebhookEventLog) {
	if entry == nil {
		return
	}
	if entry.ID == "" {
		entry.ID = tool.GenerateUUIDV7()
	}
	go func() {
		if err := s.db.WithContext(context.WithoutCancel(ctx)).Create(entry).Error; err != nil {
			logctx.FromCtx(ctx, s.log).Errorw("webhook_event_log_save_failed", "event_id", entry.EventID, "err", err)
		}
	}()
}

var Module = fx.Options(
	fx.Provide(New),
)
