package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	notifiersvc "quickearn-admin/internal/service/notifier"
	appErr "quickearn-admin/pkg/errors"
	"quickearn-admin/pkg/response"

	"github.com/gin-gonic/gin"
)

// A full broadcast to a large user base can outlive the default client
// timeout; the handler bounds it explicitly instead.
const broadcastTimeout = 10 * time.Minute

type botTokenBody struct {
	Token string `json:"token" binding:"required"`
}

type broadcastBody struct {
	Message      string               `json:"message"`
	ImageURL     string               `json:"imageUrl"`
	Buttons      []notifiersvc.Button `json:"buttons"`
	ButtonLayout string               `json:"buttonLayout"`
	BotToken     string               `json:"botToken"`
}

func (h *Handler) GetBotToken(c *gin.Context) {
	token, err := h.services.Notifier.GetToken(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Success(c, gin.H{"token": token})
}

func (h *Handler) SaveBotToken(c *gin.Context) {
	var body botTokenBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.services.Notifier.SaveToken(c.Request.Context(), body.Token); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, appErr.ErrBotTokenEmpty) {
			status = http.StatusBadRequest
		}
		response.Error(c, status, err.Error())
		return
	}
	response.SuccessWithMsg(c, gin.H{}, "token saved")
}

func (h *Handler) NotifierHealth(c *gin.Context) {
	response.Success(c, h.services.Notifier.Health())
}

func (h *Handler) ValidateBotToken(c *gin.Context) {
	var body botTokenBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.services.Notifier.Validate(c.Request.Context(), body.Token); err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, appErr.ErrBotTokenEmpty):
			status = http.StatusBadRequest
		case errors.Is(err, appErr.ErrBotTokenInvalid):
			status = http.StatusUnprocessableEntity
		}
		response.Error(c, status, err.Error())
		return
	}
	response.SuccessWithMsg(c, gin.H{"valid": true}, "token is valid")
}

func (h *Handler) Broadcast(c *gin.Context) {
	var body broadcastBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	token := strings.TrimSpace(body.BotToken)
	if token == "" {
		stored, err := h.services.Notifier.GetToken(c.Request.Context())
		if err != nil {
			response.Error(c, http.StatusInternalServerError, err.Error())
			return
		}
		token = stored
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), broadcastTimeout)
	defer cancel()

	stats, err := h.services.Notifier.Broadcast(ctx, notifiersvc.BroadcastParams{
		Message:      body.Message,
		ImageURL:     body.ImageURL,
		Buttons:      body.Buttons,
		ButtonLayout: body.ButtonLayout,
		BotToken:     token,
	})
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, appErr.ErrEmptyBroadcast), errors.Is(err, appErr.ErrBotTokenEmpty):
			status = http.StatusBadRequest
		case errors.Is(err, appErr.ErrBotTokenInvalid):
			status = http.StatusUnprocessableEntity
		case errors.Is(err, appErr.ErrNotifierOffline):
			status = http.StatusServiceUnavailable
		}
		response.Error(c, status, err.Error())
		return
	}
	response.Success(c, stats)
}
