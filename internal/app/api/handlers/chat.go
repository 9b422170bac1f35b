package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	mw "github.com/rotbot/rotbot-api/internal/app/api/middleware"
	"github.com/rotbot/rotbot-api/internal/app/service/chat"
	"github.com/rotbot/rotbot-api/internal/models"
	"github.com/rotbot/rotbot-api/internal/platform/llm"
	"github.com/rotbot/rotbot-api/pkg/logctx"
	"github.com/rotbot/rotbot-api/pkg/response"
)

type ChatService interface {
	Complete(ctx context.Context, messages []llm.Message) (string, error)
	Send(ctx context.Context, req chat.SendRequest) (*models.Message, error)
	History(ctx context.Context, userID string, mode chat.Mode) ([]*models.Message, error)
	DeleteHistory(ctx context.Context, userID string, mode chat.Mode) ([]*models.Message, error)
	Diary(ctx context.Context, userID string) ([]*models.DiaryEntry, error)
}

type CompletionRequest struct {
	Messages []llm.Message `json:"messages"`
}

type CompletionResponse struct {
	Content string `json:"content"`
}

type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// @Summary      Chat completion
// @Description  Forwards a conversation to the language model and returns the reply.
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Param        request body handlers.CompletionRequest true "Conversation"
// @Success      200  {object}  handlers.CompletionResponse
// @Failure      400  {object}  response.ErrorBody
// @Failure      503  {object}  response.ErrorBody
// @Failure      502  {object}  response.ErrorBody
// @Router       /api/chat [post]
func ApiChatCompletion(svc ChatService, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CompletionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorBody{Error: "Invalid request body."})
			return
		}
		content, err := svc.Complete(c.Request.Context(), req.Messages)
		switch {
		case err == nil:
			c.JSON(http.StatusOK, CompletionResponse{Content: content})
		case errors.Is(err, chat.ErrEmptyConversation), errors.Is(err, chat.ErrInvalidRole):
			c.JSON(http.StatusBadRequest, response.ErrorBody{Error: err.Error()})
		case errors.Is(err, llm.ErrNotConfigured):
			logctx.FromGin(c, log).Errorw("chat_llm_not_configured", "err", err)
			c.JSON(http.StatusServiceUnavailable, response.ErrorBody{Error: "Chat is not configured."})
		default:
			logctx.FromGin(c, log).Errorw("chat_completion_failed", "err", err)
			c.JSON(http.StatusBadGateway, response.ErrorBody{Error: "Failed to get a reply."})
		}
	}
}

func chatMode(c *gin.Context) (chat.Mode, bool) {
	mode, err := chat.ParseMode(c.Param("mode"))
	if err != nil {
		badRequest(c, err.Error())
		return "", false
	}
	return mode, true
}

// @Summary      Chat history
// @Description  Returns the caller's conversation for a mode (snarky or safe). An empty conversation returns the greeting.
// @Tags         Me
// @Produce      json
// @Security     BearerAuth
// @Param        mode path string false "snarky or safe"
// @Success      200  {object}  handlers.RespMessages
// @Router       /api/v1/me/chat/{mode} [get]
func ApiChatHistory(svc ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		mode, ok := chatMode(c)
		if !ok {
			return
		}
		rows, err := svc.History(c.Request.Context(), mw.UserID(c), mode)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(rows))
	}
}

// @Summary      Send chat message
// @Description  Stores the message, asks RotBot for a reply and returns the stored reply.
// @Tags         Me
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        mode path string false "snarky or safe"
// @Param        request body handlers.SendMessageRequest true "Message"
// @Success      200  {object}  handlers.RespMessage
// @Router       /api/v1/me/chat/{mode} [post]
func ApiChatSend(svc ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		mode, ok := chatMode(c)
		if !ok {
			return
		}
		var req SendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		reply, err := svc.Send(c.Request.Context(), chat.SendRequest{
			UserID:      mw.UserID(c),
			DisplayName: mw.DisplayName(c),
			Mode:        mode,
			Text:        req.Content,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(reply))
	}
}

// @Summary      Delete chat history
// @Description  Deletes the caller's conversation for a mode and returns the fresh greeting.
// @Tags         Me
// @Produce      json
// @Security     BearerAuth
// @Param        mode path string false "snarky or safe"
// @Success      200  {object}  handlers.RespMessages
// @Router       /api/v1/me/chat/{mode} [delete]
func ApiChatDelete(svc ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		mode, ok := chatMode(c)
		if !ok {
			return
		}
		rows, err := svc.DeleteHistory(c.Request.Context(), mw.UserID(c), mode)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(rows))
	}
}

// @Summary      RotBot diary
// @Description  Returns RotBot's private diary entries about the caller, newest first.
// @Tags         Me
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespDiary
// @Router       /api/v1/me/diary [get]
func ApiDiary(svc ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := svc.Diary(c.Request.Context(), mw.UserID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(rows))
	}
}

// RegisterChatRoutes mounts the stateless completion proxy, expected at "/api".
func RegisterChatRoutes(r gin.IRouter, svc ChatService, log *zap.SugaredLogger) {
	r.POST("/chat", ApiChatCompletion(svc, log))
}

// RegisterMeChatRoutes mounts the per-user chat routes under an authenticated "/me" group.
func RegisterMeChatRoutes(r gin.IRouter, svc ChatService) {
	for _, path := range []string{"/chat", "/chat/:mode"} {
		r.GET(path, ApiChatHistory(svc))
		r.POST(path, ApiChatSend(svc))
		r.DELETE(path, ApiChatDelete(svc))
	}
	r.GET("/diary", ApiDiary(svc))
}

