package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	withdrawalsvc "quickearn-admin/internal/service/withdrawal"
	appErr "quickearn-admin/pkg/errors"
	"quickearn-admin/pkg/response"

	"github.com/gin-gonic/gin"
)

type rejectWithdrawalBody struct {
	Reason string `json:"reason"`
}

func (h *Handler) ListWithdrawals(c *gin.Context) {
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

	result, err := h.services.Withdrawal.List(c.Request.Context(), withdrawalsvc.ListFilter{
		Page:   page,
		Size:   size,
		Status: strings.ToLower(strings.TrimSpace(c.Query("status"))),
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

func (h *Handler) WithdrawalStats(c *gin.Context) {
	stats, err := h.services.Withdrawal.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Success(c, stats)
}

func (h *Handler) ApproveWithdrawal(c *gin.Context) {
	tx, err := h.services.Withdrawal.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleWithdrawalError(c, err)
		return
	}
	response.Success(c, gin.H{"transaction": tx})
}

func (h *Handler) RejectWithdrawal(c *gin.Context) {
	// The reason is optional and so is the body itself.
	var body rejectWithdrawalBody
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := h.services.Withdrawal.Reject(c.Request.Context(), c.Param("id"), strings.TrimSpace(body.Reason))
	if err != nil {
		h.handleWithdrawalError(c, err)
		return
	}
	response.Success(c, gin.H{"transaction": tx})
}

func (h *Handler) handleWithdrawalError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, appErr.ErrTransactionNotFound):
		response.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, appErr.ErrNotWithdrawal):
		response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, appErr.ErrTransactionProcessed):
		response.Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, appErr.ErrUserNotFound):
		response.Error(c, http.StatusUnprocessableEntity, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, err.Error())
	}
}
