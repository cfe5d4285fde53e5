package api

import (
	"errors"
	"net/http"

	walletsvc "quickearn-admin/internal/service/wallet"
	appErr "quickearn-admin/pkg/errors"
	"quickearn-admin/pkg/response"

	"github.com/gin-gonic/gin"
)

type walletConfigBody struct {
	Currency             string  `json:"currency" binding:"required"`
	CurrencySymbol       string  `json:"currencySymbol" binding:"required"`
	DefaultMinWithdrawal float64 `json:"defaultMinWithdrawal" binding:"min=0"`
	MaintenanceMode      bool    `json:"maintenanceMode"`
	MaintenanceMessage   string  `json:"maintenanceMessage"`
}

type paymentMethodBody struct {
	Name          string  `json:"name" binding:"required"`
	Logo          string  `json:"logo" binding:"required"`
	Status        string  `json:"status"`
	MinWithdrawal float64 `json:"minWithdrawal" binding:"min=0"`
}

func (h *Handler) GetWalletConfig(c *gin.Context) {
	cfg, err := h.services.Wallet.GetConfig(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Success(c, gin.H{"config": cfg})
}

func (h *Handler) SaveWalletConfig(c *gin.Context) {
	var body walletConfigBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	cfg, err := h.services.Wallet.SaveConfig(c.Request.Context(), walletsvc.ConfigParams{
		Currency:             body.Currency,
		CurrencySymbol:       body.CurrencySymbol,
		DefaultMinWithdrawal: body.DefaultMinWithdrawal,
		MaintenanceMode:      body.MaintenanceMode,
		MaintenanceMessage:   body.MaintenanceMessage,
	})
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Success(c, gin.H{"config": cfg})
}

func (h *Handler) ListPaymentMethods(c *gin.Context) {
	methods, err := h.services.Wallet.ListMethods(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Success(c, gin.H{"methods": methods})
}

func (h *Handler) CreatePaymentMethod(c *gin.Context) {
	var body paymentMethodBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	method, err := h.services.Wallet.CreateMethod(c.Request.Context(), body.toParams())
	if err != nil {
		h.handlePaymentMethodError(c, err)
		return
	}
	response.Success(c, gin.H{"method": method})
}

func (h *Handler) UpdatePaymentMethod(c *gin.Context) {
	var body paymentMethodBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	method, err := h.services.Wallet.UpdateMethod(c.Request.Context(), c.Param("id"), body.toParams())
	if err != nil {
		h.handlePaymentMethodError(c, err)
		return
	}
	response.Success(c, gin.H{"method": method})
}

func (h *Handler) DeletePaymentMethod(c *gin.Context) {
	if err := h.services.Wallet.DeleteMethod(c.Request.Context(), c.Param("id")); err != nil {
		h.handlePaymentMethodError(c, err)
		return
	}
	response.SuccessWithMsg(c, gin.H{}, "payment method deleted")
}

func (b paymentMethodBody) toParams() walletsvc.MethodParams {
	return walletsvc.MethodParams{
		Name:          b.Name,
		Logo:          b.Logo,
		Status:        b.Status,
		MinWithdrawal: b.MinWithdrawal,
	}
}

func (h *Handler) handlePaymentMethodError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, appErr.ErrPaymentMethodNotFound):
		response.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, appErr.ErrInvalidMethodPayload):
		response.Error(c, http.StatusBadRequest, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, err.Error())
	}
}
