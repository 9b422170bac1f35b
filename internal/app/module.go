package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/rotbot/rotbot-api/internal/app/api/server"
	"github.com/rotbot/rotbot-api/internal/app/service/billing"
	"github.com/rotbot/rotbot-api/internal/app/service/chat"
	"github.com/rotbot/rotbot-api/internal/app/service/decaylog"
	"github.com/rotbot/rotbot-api/internal/app/service/personality"
	"github.com/rotbot/rotbot-api/internal/app/service/subscription"
	webhooklog "github.com/rotbot/rotbot-api/internal/app/service/webhook_log"
	"github.com/rotbot/rotbot-api/internal/platform/db"
	"github.com/rotbot/rotbot-api/internal/platform/llm"
	"github.com/rotbot/rotbot-api/internal/platform/stripe"
	"github.com/rotbot/rotbot-api/pkg/config"
	"github.com/rotbot/rotbot-api/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	stripe.Module,
	llm.Module,
	server.Module,
	subscription.Module,
	webhooklog.Module,
	personality.Module,
	billing.Module,
	chat.Module,
	decaylog.Module,
)
