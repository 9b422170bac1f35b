package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/rotbot/rotbot-api/docs"
	"github.com/rotbot/rotbot-api/internal/app/api/handlers"
	mw "github.com/rotbot/rotbot-api/internal/app/api/middleware"
	"github.com/rotbot/rotbot-api/internal/app/service/billing"
	"github.com/rotbot/rotbot-api/internal/app/service/chat"
	"github.com/rotbot/rotbot-api/internal/app/service/decaylog"
	"github.com/rotbot/rotbot-api/internal/app/service/personality"
	subsvc "github.com/rotbot/rotbot-api/internal/app/service/subscription"
	stripeplatform "github.com/rotbot/rotbot-api/internal/platform/stripe"
	cfgpkg "github.com/rotbot/rotbot-api/pkg/config"
	metrics "github.com/rotbot/rotbot-api/pkg/metrics"
)

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// Add request tracing middleware only; request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())
	return r
}

type routeDeps struct {
	fx.In

	Log           *zap.SugaredLogger
	Cfg           *cfgpkg.Config
	Auth          *mw.Authenticator
	Checkout      *billing.CheckoutService
	Verifier      *stripeplatform.Verifier
	Webhooks      *billing.WebhookService
	Chat          *chat.Service
	Subscriptions *subsvc.Service
	Personalities *personality.Service
	DecayLog      *decaylog.Service
}

func registerRoutes(r *gin.Engine, d routeDeps) {
	log, cfg := d.Log, d.Cfg

	// Prometheus metrics
	if cfg.MetricsAddr != "" {
		p := metrics.NewPrometheus(metrics.NewPrometheusOptions{Logger: log})
		p.SetListenAddress(cfg.MetricsAddr)
		p.Use(r)

		log.Infow("metrics started", "addr", cfg.MetricsAddr)
	}
	// Public group: request logger + access log
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub)
	// Swagger UI
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Routes the web client and Stripe already call
	api := r.Group("/api")
	api.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterStripeRoutes(api.Group("/stripe"), d.Auth, d.Checkout, d.Verifier, d.Webhooks, log)
	handlers.RegisterChatRoutes(api, d.Chat, log)

	apiV1 := r.Group("/api/v1")
	apiV1.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterPersonalityRoutes(apiV1, d.Auth, d.Personalities)

	me := apiV1.Group("/me", d.Auth.RequireAuth())
	handlers.RegisterMeRoutes(me, d.Subscriptions, d.Personalities, d.DecayLog)
	handlers.RegisterMeChatRoutes(me, d.Chat)

	// Admin APIs
	if len(cfg.Admin.Accounts) == 0 {
		log.Warnw("admin routes disabled, no admin accounts configured")
		return
	}
	admin := apiV1.Group("/admin", gin.BasicAuth(gin.Accounts(cfg.Admin.Accounts)))
	handlers.RegisterAdminRoutes(admin, d.Subscriptions)
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine, mw.NewAuthenticator),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
