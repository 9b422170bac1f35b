package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	mw "github.com/rotbot/rotbot-api/internal/app/api/middleware"
	"github.com/rotbot/rotbot-api/internal/app/service/personality"
	"github.com/rotbot/rotbot-api/internal/models"
	"github.com/rotbot/rotbot-api/pkg/response"
	"github.com/rotbot/rotbot-api/pkg/types"
)

type EntitlementReader interface {
	GetEntitledByUser(ctx context.Context, userID string) (*types.UserSubscriptionInfo, error)
}

type PersonalityService interface {
	List(ctx context.Context, userID string) ([]*personality.View, error)
	Select(ctx context.Context, userID, personalityID string) (*models.Personality, error)
}

type DecayLogService interface {
	Create(ctx context.Context, userID, mood, note string) (*models.DecayLogEntry, error)
	List(ctx context.Context, userID string) ([]*models.DecayLogEntry, error)
	Latest(ctx context.Context, userID string) (*models.DecayLogEntry, error)
	Remark(ctx context.Context, userID string, entryID int64) (string, error)
}

type SelectPersonalityRequest struct {
	PersonalityID string `json:"personality_id" binding:"required"`
}

type CreateDecayLogRequest struct {
	Mood string `json:"mood" binding:"required"`
	Note string `json:"note"`
}

type RemarkResponse struct {
	EntryID int64  `json:"entry_id"`
	Remark  string `json:"remark"`
}

type LatestDecayResponse struct {
	Entry  *models.DecayLogEntry `json:"entry"`
	Remark string                `json:"remark,omitempty"`
}

// @Summary      Current subscription
// @Description  Returns whether the caller has premium access and the subscription backing it.
// @Tags         Me
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespSubscription
// @Router       /api/v1/me/subscription [get]
func ApiMySubscription(svc EntitlementReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, err := svc.GetEntitledByUser(c.Request.Context(), mw.UserID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(info))
	}
}

// @Summary      List personalities
// @Description  Lists personalities, free first. With a bearer token each item carries the caller's lock and selection state.
// @Tags         Personality
// @Produce      json
// @Success      200  {object}  handlers.RespPersonalities
// @Router       /api/v1/personalities [get]
func ApiListPersonalities(svc PersonalityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := svc.List(c.Request.Context(), mw.UserID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(rows))
	}
}

// @Summary      Select personality
// @Description  Sets the personality RotBot uses with the caller. Premium personalities need an active subscription or a one-time unlock.
// @Tags         Me
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body handlers.SelectPersonalityRequest true "Personality"
// @Success      200  {object}  handlers.RespPersonality
// @Router       /api/v1/me/personality [post]
func ApiSelectPersonality(svc PersonalityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SelectPersonalityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		p, err := svc.Select(c.Request.Context(), mw.UserID(c), req.PersonalityID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(p))
	}
}

// @Summary      List decay log
// @Description  Returns the caller's mood entries, newest first.
// @Tags         Me
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespDecayLog
// @Router       /api/v1/me/decay_log [get]
func ApiListDecayLog(svc DecayLogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := svc.List(c.Request.Context(), mw.UserID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(rows))
	}
}

// @Summary      Add decay log entry
// @Tags         Me
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body handlers.CreateDecayLogRequest true "Mood is one of sadness, anger, anxiety, numb, joy, apathy, other"
// @Success      200  {object}  handlers.RespDecayLogEntry
// @Router       /api/v1/me/decay_log [post]
func ApiCreateDecayLog(svc DecayLogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateDecayLogRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Pick a mood, darling.")
			return
		}
		e, err := svc.Create(c.Request.Context(), mw.UserID(c), req.Mood, req.Note)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(e))
	}
}

// @Summary      Latest decay log entry
// @Description  Returns the newest entry with a snide remark. A failed remark leaves the remark empty.
// @Tags         Me
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespLatestDecay
// @Router       /api/v1/me/decay_log/latest [get]
func ApiLatestDecayLog(svc DecayLogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		e, err := svc.Latest(ctx, mw.UserID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		res := &LatestDecayResponse{Entry: e}
		if e != nil {
			if remark, err := svc.Remark(ctx, mw.UserID(c), e.ID); err == nil {
				res.Remark = remark
			} else {
				_ = c.Error(err)
			}
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Snide remark
// @Description  Asks RotBot for a snide remark about one decay log entry.
// @Tags         Me
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Entry id"
// @Success      200  {object}  handlers.RespRemark
// @Router       /api/v1/me/decay_log/{id}/remark [get]
func ApiDecayLogRemark(svc DecayLogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || id <= 0 {
			badRequest(c, "invalid entry id")
			return
		}
		remark, err := svc.Remark(c.Request.Context(), mw.UserID(c), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(&RemarkResponse{EntryID: id, Remark: remark}))
	}
}

// RegisterPersonalityRoutes mounts the public catalogue, expected at "/api/v1".
func RegisterPersonalityRoutes(r gin.IRouter, auth *mw.Authenticator, svc PersonalityService) {
	r.GET("/personalities", auth.OptionalAuth(), ApiListPersonalities(svc))
}

// RegisterMeRoutes mounts the per-user routes under an authenticated "/me" group.
func RegisterMeRoutes(r gin.IRouter, subs EntitlementReader, personalities PersonalityService, decay DecayLogService) {
	r.GET("/subscription", ApiMySubscription(subs))
	r.POST("/personality", ApiSelectPersonality(personalities))
	r.GET("/decay_log", ApiListDecayLog(decay))
	r.POST("/decay_log", ApiCreateDecayLog(decay))
	r.GET("/decay_log/latest", ApiLatestDecayLog(decay))
	r.GET("/decay_log/:id/remark", ApiDecayLogRemark(decay))
}
