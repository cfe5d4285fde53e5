package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	usersvc "quickearn-admin/internal/service/user"
	appErr "quickearn-admin/pkg/errors"
	"quickearn-admin/pkg/response"

	"github.com/gin-gonic/gin"
)

type adjustBalanceBody struct {
	Action      string  `json:"action" binding:"required"`
	Amount      float64 `json:"amount" binding:"required"`
	Description string  `json:"description"`
}

func (h *Handler) DashboardStats(c *gin.Context) {
	stats, err := h.services.User.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Success(c, stats)
}

func (h *Handler) ListUsers(c *gin.Context) {
	page, err := parsePositiveIntQuery(c, "page", 1)
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	size, err := parsePositiveIntQuery(c, "size", 10)
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.services.User.List(c.Request.Context(), usersvc.ListFilter{
		Page:   page,
		Size:   size,
		Search: strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}

	response.Success(c, gin.H{
		"items": result.Items,
		"total": result.Total,
		"page":  page,
		"size":  size,
	})
}

func (h *Handler) GetUser(c *gin.Context) {
	telegramID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || telegramID <= 0 {
		response.Error(c, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := h.services.User.Get(c.Request.Context(), telegramID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, appErr.ErrUserNotFound) {
			status = http.StatusNotFound
		}
		response.Error(c, status, err.Error())
		return
	}
	response.Success(c, gin.H{"user": user})
}

func (h *Handler) AdjustBalance(c *gin.Context) {
	telegramID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || telegramID <= 0 {
		response.Error(c, http.StatusBadRequest, "invalid user id")
		return
	}

	var body adjustBalanceBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.services.User.AdjustBalance(c.Request.Context(), telegramID, usersvc.BalanceAdjustment{
		Action:      strings.ToLower(strings.TrimSpace(body.Action)),
		Amount:      body.Amount,
		Description: strings.TrimSpace(body.Description),
	})
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, appErr.ErrUserNotFound):
			status = http.StatusNotFound
		case errors.Is(err, appErr.ErrInvalidAction), errors.Is(err, appErr.ErrInvalidAmount):
			status = http.StatusBadRequest
		}
		response.Error(c, status, err.Error())
		return
	}

	response.Success(c, result)
}
