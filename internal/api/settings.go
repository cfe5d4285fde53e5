package api

import (
	"errors"
	"net/http"
	"strings"

	appconfigsvc "quickearn-admin/internal/service/appconfig"
	appErr "quickearn-admin/pkg/errors"
	"quickearn-admin/pkg/response"

	"github.com/gin-gonic/gin"
)

type appSettingsBody struct {
	LogoURL                string  `json:"logoUrl"`
	AppName                string  `json:"appName"`
	SupportURL             string  `json:"supportUrl"`
	TutorialVideoID        string  `json:"tutorialVideoId"`
	ReferralCommissionRate float64 `json:"referralCommissionRate"`
}

type addSlidersBody struct {
	URLs []string `json:"urls" binding:"required,min=1"`
}

type moveSliderBody struct {
	Direction string `json:"direction" binding:"required,oneof=up down"`
}

func (h *Handler) GetAppSettings(c *gin.Context) {
	cfg, err := h.services.AppConfig.Get(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Success(c, gin.H{"config": cfg})
}

func (h *Handler) SaveAppSettings(c *gin.Context) {
	var body appSettingsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	cfg, err := h.services.AppConfig.Save(c.Request.Context(), appconfigsvc.SaveParams{
		LogoURL:                body.LogoURL,
		AppName:                body.AppName,
		SupportURL:             body.SupportURL,
		TutorialVideoID:        body.TutorialVideoID,
		ReferralCommissionRate: body.ReferralCommissionRate,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, appErr.ErrInvalidCommissionRate) {
			status = http.StatusBadRequest
		}
		response.Error(c, status, err.Error())
		return
	}
	response.Success(c, gin.H{"config": cfg})
}

func (h *Handler) AddSliderImages(c *gin.Context) {
	var body addSlidersBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	urls := make([]string, 0, len(body.URLs))
	for _, u := range body.URLs {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	if len(urls) == 0 {
		response.Error(c, http.StatusBadRequest, "at least one image url is required")
		return
	}

	cfg, err := h.services.AppConfig.AddSliderImages(c.Request.Context(), urls)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Success(c, gin.H{"config": cfg})
}

func (h *Handler) RemoveSliderImage(c *gin.Context) {
	cfg, err := h.services.AppConfig.RemoveSliderImage(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, appErr.ErrSliderImageNotFound) {
			status = http.StatusNotFound
		}
		response.Error(c, status, err.Error())
		return
	}
	response.Success(c, gin.H{"config": cfg})
}

func (h *Handler) MoveSliderImage(c *gin.Context) {
	var body moveSliderBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	cfg, err := h.services.AppConfig.MoveSliderImage(c.Request.Context(), c.Param("id"), body.Direction)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, appErr.ErrSliderImageNotFound) {
			status = http.StatusNotFound
		}
		response.Error(c, status, err.Error())
		return
	}
	response.Success(c, gin.H{"config": cfg})
}
