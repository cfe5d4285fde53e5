package api

import (
	"errors"
	"net/http"
	"strings"

	vpnsvc "quickearn-admin/internal/service/vpn"
	appErr "quickearn-admin/pkg/errors"
	"quickearn-admin/pkg/response"

	"github.com/gin-gonic/gin"
)

type vpnConfigBody struct {
	VPNRequired      bool     `json:"vpnRequired"`
	AllowedCountries []string `json:"allowedCountries"`
}

type addCountriesBody struct {
	Countries string `json:"countries" binding:"required"`
}

func (h *Handler) GetVPNConfig(c *gin.Context) {
	cfg, err := h.services.VPN.Get(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Success(c, gin.H{"config": cfg})
}

func (h *Handler) SaveVPNConfig(c *gin.Context) {
	var body vpnConfigBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	cfg, err := h.services.VPN.Save(c.Request.Context(), vpnsvc.SaveParams{
		VPNRequired:      body.VPNRequired,
		AllowedCountries: body.AllowedCountries,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, appErr.ErrUnknownCountry) {
			status = http.StatusBadRequest
		}
		response.Error(c, status, err.Error())
		return
	}
	response.Success(c, gin.H{"config": cfg})
}

func (h *Handler) AddVPNCountries(c *gin.Context) {
	var body addCountriesBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.services.VPN.AddCountries(c.Request.Context(), body.Countries)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Success(c, result)
}

func (h *Handler) RemoveVPNCountry(c *gin.Context) {
	name := strings.TrimSpace(c.Param("name"))
	if name == "" {
		response.Error(c, http.StatusBadRequest, "country name is required")
		return
	}

	cfg, err := h.services.VPN.RemoveCountry(c.Request.Context(), name)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, appErr.ErrUnknownCountry) {
			status = http.StatusNotFound
		}
		response.Error(c, status, err.Error())
		return
	}
	response.Success(c, gin.H{"config": cfg})
}
