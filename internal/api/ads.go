package api

import (
	"errors"
	"net/http"

	adssvc "quickearn-admin/internal/service/ads"
	appErr "quickearn-admin/pkg/errors"
	"quickearn-admin/pkg/response"

	"github.com/gin-gonic/gin"
)

type adConfigBody struct {
	Reward      float64 `json:"reward" binding:"min=0"`
	DailyLimit  int     `json:"dailyLimit" binding:"min=0"`
	HourlyLimit int     `json:"hourlyLimit" binding:"min=0"`
	Cooldown    int     `json:"cooldown" binding:"min=0"`
	WaitTime    int     `json:"waitTime" binding:"min=0"`
	Enabled     bool    `json:"enabled"`
	AppID       string  `json:"appId"`
}

func (h *Handler) ListAdConfigs(c *gin.Context) {
	configs, err := h.services.Ads.List(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Success(c, gin.H{"configs": configs})
}

func (h *Handler) GetAdConfig(c *gin.Context) {
	cfg, err := h.services.Ads.Get(c.Request.Context(), c.Param("provider"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, appErr.ErrUnknownProvider) {
			status = http.StatusNotFound
		}
		response.Error(c, status, err.Error())
		return
	}
	response.Success(c, gin.H{"config": cfg})
}

func (h *Handler) SaveAdConfig(c *gin.Context) {
	var body adConfigBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	cfg, err := h.services.Ads.Save(c.Request.Context(), c.Param("provider"), adssvc.SaveParams{
		Reward:      body.Reward,
		DailyLimit:  body.DailyLimit,
		HourlyLimit: body.HourlyLimit,
		Cooldown:    body.Cooldown,
		WaitTime:    body.WaitTime,
		Enabled:     body.Enabled,
		AppID:       body.AppID,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, appErr.ErrUnknownProvider) {
			status = http.StatusNotFound
		}
		response.Error(c, status, err.Error())
		return
	}
	response.Success(c, gin.H{"config": cfg})
}
