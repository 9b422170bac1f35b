package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/rotbot/rotbot-api/pkg/logctx"
	"github.com/rotbot/rotbot-api/pkg/tool"
)

const RequestIDHeader = "X-Request-ID"

// TraceMiddleware adds a trace ID to the request context.
// It reads X-Request-ID if provided by the client; otherwise generates a UUIDv7.
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(RequestIDHeader)
		if traceID == "" || len(traceID) > 128 {
			traceID = tool.GenerateUUIDV7()
		}

		c.Set(string(logctx.TraceIDKey), traceID)
		ctx := context.WithValue(c.Request.Context(), logctx.TraceIDKey, traceID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
