package db

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/rotbot/rotbot-api/internal/models"
	cfgpkg "github.com/rotbot/rotbot-api/pkg/config"
	gormzap "github.com/rotbot/rotbot-api/pkg/gormlog"
)

const slowQueryThreshold = 500 * time.Millisecond

func NewDB(l *zap.SugaredLogger, cfg *cfgpkg.Config) (*gorm.DB, error) {
	if cfg.Database.DSN == "" {
		l.Error("database DSN is empty")
		return nil, gorm.ErrInvalidDB
	}
	level := gormlogger.Warn
	if cfg.Env == cfgpkg.EnvDev {
		level = gormlogger.Info
	}
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{Logger: gormzap.New(l, level, slowQueryThreshold)})
	if err != nil {
		l.Errorf("failed to connect database: %v", err)
		return nil, err
	}
	l.Infow("connected to postgres via DSN")
	return db, nil
}

var Module = fx.Options(
	fx.Provide(NewDB),
	fx.Invoke(AutoMigrate),
	fx.Invoke(registerDBClose),
)

// AutoMigrate runs GORM migrations on startup unless database.auto_migrate is off.
func AutoMigrate(l *zap.SugaredLogger, cfg *cfgpkg.Config, db *gorm.DB) error {
	if !cfg.Database.AutoMigrate {
		l.Infow("automigrate disabled")
		return nil
	}
	if err := db.AutoMigrate(
		&models.Subscription{},
		&models.SubscriptionLog{},
		&models.WebhookEventLog{},
		&models.Personality{},
		&models.UserPersonality{},
		&models.Profile{},
		&models.Message{},
		&models.DiaryEntry{},
		&models.DecayLogEntry{},
	); err != nil {
		l.Errorf("automigrate failed: %v", err)
		return err
	}
	l.Infow("automigrate completed")
	return nil
}

// registerDBClose ensures the underlying *sql.DB is closed on shutdown
func registerDBClose(lc fx.Lifecycle, l *zap.SugaredLogger, gdb *gorm.DB) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				l.Warnw("gorm: get sql.DB failed", "err", err)
				return nil
			}
			l.Infow("closing postgres connection pool")
			return sqlDB.Close()
		},
	})
}
