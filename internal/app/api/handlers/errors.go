package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rotbot/rotbot-api/internal/app/service/chat"
	"github.com/rotbot/rotbot-api/internal/app/service/decaylog"
	"github.com/rotbot/rotbot-api/internal/app/service/personality"
	"github.com/rotbot/rotbot-api/internal/platform/llm"
	"github.com/rotbot/rotbot-api/pkg/response"
)

// codeFor maps service errors to envelope codes for the /api/v1 routes.
func codeFor(err error) response.APIResponseCode {
	switch {
	case errors.Is(err, personality.ErrPersonalityNotFound), errors.Is(err, decaylog.ErrEntryNotFound):
		return response.APIResponseCodeNotFound
	case errors.Is(err, personality.ErrPremiumRequired):
		return response.APIResponseCodeForbidden
	case errors.Is(err, chat.ErrEmptyMessage), errors.Is(err, chat.ErrInvalidMode),
		errors.Is(err, chat.ErrInvalidRole), errors.Is(err, chat.ErrEmptyConversation),
		errors.Is(err, decaylog.ErrInvalidMood):
		return response.APIResponseCodeBadRequest
	case errors.Is(err, llm.ErrNotConfigured):
		return response.APIResponseCodeUnavailable
	}
	return response.APIResponseCodeError
}

func writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusOK, response.ErrorT[any](codeFor(err), err.Error()))
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, msg))
}
