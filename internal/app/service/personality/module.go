package personality

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/rotbot/rotbot-api/internal/app/service/subscription"
	cfgpkg "github.com/rotbot/rotbot-api/pkg/config"
)

func newService(repo Repository, store subscription.Store, log *zap.SugaredLogger) *Service {
	return NewService(repo, store, log)
}

// seedDefaults runs alongside auto-migration so a fresh database has a catalogue.
func seedDefaults(lc fx.Lifecycle, cfg *cfgpkg.Config, s *Service, log *zap.SugaredLogger) {
	if !cfg.Database.AutoMigrate {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := s.EnsureDefaults(ctx); err != nil {
				log.Warnw("personalities_seed_failed", "err", err)
			}
			return nil
		},
	})
}

var Module = fx.Options(
	fx.Provide(NewRepository, newService),
	fx.Invoke(seedDefaults),
)
