package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rotbot/rotbot-api/pkg/logctx"
)

// RequestLoggerMiddleware attaches a request-scoped logger enriched with
// trace_id to gin.Context and request context. Auth adds user_id later.
func RequestLoggerMiddleware(base *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := logctx.TraceID(c.Request.Context())

		reqLogger := base.With("trace_id", traceID)
		c.Set(string(logctx.LoggerKey), reqLogger)
		c.Request = c.Request.WithContext(logctx.WithLogger(c.Request.Context(), reqLogger))

		if traceID != "" {
			c.Writer.Header().Set(RequestIDHeader, traceID)
		}

		c.Next()
	}
}
