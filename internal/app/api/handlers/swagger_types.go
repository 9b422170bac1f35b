package handlers

import (
	"github.com/rotbot/rotbot-api/internal/app/service/personality"
	"github.com/rotbot/rotbot-api/internal/models"
	"github.com/rotbot/rotbot-api/pkg/response"
	"github.com/rotbot/rotbot-api/pkg/types"
)

// Envelope types below exist for the swagger docs; handlers build them with response.OKT.

type RespStatus struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    map[string]string        `json:"data"`
}

type RespSubscription struct {
	Code    response.APIResponseCode   `json:"code"`
	Message string                     `json:"message"`
	Data    types.UserSubscriptionInfo `json:"data"`
}

type RespPersonalities struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []personality.View       `json:"data"`
}

type RespPersonality struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    models.Personality       `json:"data"`
}

type RespMessages struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []models.Message         `json:"data"`
}

type RespMessage struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    models.Message           `json:"data"`
}

type RespDiary struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []models.DiaryEntry      `json:"data"`
}

type RespDecayLog struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []models.DecayLogEntry   `json:"data"`
}

type RespDecayLogEntry struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    models.DecayLogEntry     `json:"data"`
}

type RespLatestDecay struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    LatestDecayResponse      `json:"data"`
}

type RespRemark struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    RemarkResponse           `json:"data"`
}

type RespListSubscriptions struct {
	Code    response.APIResponseCode  `json:"code"`
	Message string                    `json:"message"`
	Data    ListSubscriptionsResponse `json:"data"`
}

type RespSubscriptionStatistic struct {
	Code    response.APIResponseCode      `json:"code"`
	Message string                        `json:"message"`
	Data    SubscriptionStatisticResponse `json:"data"`
}
