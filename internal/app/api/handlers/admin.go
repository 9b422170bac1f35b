package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	subsvc "github.com/rotbot/rotbot-api/internal/app/service/subscription"
	"github.com/rotbot/rotbot-api/internal/models"
	"github.com/rotbot/rotbot-api/pkg/response"
	"github.com/rotbot/rotbot-api/pkg/types"
)

type SubscriptionAdmin interface {
	Scan(ctx context.Context, req *subsvc.ScanRequest) ([]*models.Subscription, int64, error)
	CountByStatus(ctx context.Context) (map[types.SubscriptionStatus]int64, error)
}

type ListSubscriptionsResponse struct {
	Items []*models.Subscription `json:"items"`
	Total int64                  `json:"total"`
}

type SubscriptionStatisticResponse struct {
	ByStatus map[types.SubscriptionStatus]int64 `json:"by_status"`
	Entitled int64                              `json:"entitled"`
	Total    int64                              `json:"total"`
}

// @Summary      List Subscriptions (Admin)
// @Description  Retrieves a paginated and filterable list of subscription records, most recently updated first.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BasicAuth
// @Param        request body subscription.ScanRequest true "Filters and pagination"
// @Success      200  {object}  handlers.RespListSubscriptions
// @Router       /api/v1/admin/list_subscriptions [post]
func ApiListSubscriptions(svc SubscriptionAdmin) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req subsvc.ScanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		if err := req.Validate(); err != nil {
			badRequest(c, err.Error())
			return
		}
		items, total, err := svc.Scan(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(&ListSubscriptionsResponse{Items: items, Total: total}))
	}
}

// @Summary      Subscription Statistics (Admin)
// @Description  Counts subscription records by status.
// @Tags         Admin
// @Produce      json
// @Security     BasicAuth
// @Success      200  {object}  handlers.RespSubscriptionStatistic
// @Router       /api/v1/admin/subscription_statistic [get]
func ApiSubscriptionStatistic(svc SubscriptionAdmin) gin.HandlerFunc {
	return func(c *gin.Context) {
		counts, err := svc.CountByStatus(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		res := &SubscriptionStatisticResponse{ByStatus: counts}
		for status, n := range counts {
			res.Total += n
			if status.Entitled() {
				res.Entitled += n
			}
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterAdminRoutes(r gin.IRouter, svc SubscriptionAdmin) {
	r.POST("/list_subscriptions", ApiListSubscriptions(svc))
	r.GET("/subscription_statistic", ApiSubscriptionStatistic(svc))
}
