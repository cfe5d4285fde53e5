package api

import (
	"fmt"
	"net/http"
	"strconv"

	"quickearn-admin/internal/middleware"
	"quickearn-admin/internal/service"
	adminsvc "quickearn-admin/internal/service/admin"
	"quickearn-admin/internal/ws"
	appErr "quickearn-admin/pkg/errors"
	"quickearn-admin/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	services *service.Container
}

func RegisterRoutes(r *gin.Engine, services *service.Container) {
	handler := &Handler{services: services}
	wsHandler := ws.NewHandler(services.Bus)

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong"})
	})

	adminGroup := r.Group("/admin")
	{
		adminGroup.POST("/auth/login", handler.AdminLogin)

		protected := adminGroup.Group("/")
		protected.Use(middleware.AdminAuthRequired())
		{
			protected.GET("/profile", handler.GetProfile)
			protected.PUT("/profile", handler.UpdateProfile)

			protected.GET("/dashboard/stats", handler.DashboardStats)

			protected.GET("/users", handler.ListUsers)
			protected.GET("/users/:id", handler.GetUser)
			protected.POST("/users/:id/balance", handler.AdjustBalance)

			protected.GET("/withdrawals", handler.ListWithdrawals)
			protected.GET("/withdrawals/stats", handler.WithdrawalStats)
			protected.POST("/withdrawals/:id/approve", handler.ApproveWithdrawal)
			protected.POST("/withdrawals/:id/reject", handler.RejectWithdrawal)

			protected.GET("/tasks", handler.ListTasks)
			protected.POST("/tasks", handler.CreateTask)
			protected.PUT("/tasks/:id", handler.UpdateTask)
			protected.DELETE("/tasks/:id", handler.DeleteTask)
			protected.POST("/tasks/:id/reset_progress", handler.ResetTaskProgress)
			protected.POST("/tasks/:id/reset_daily", handler.ResetTaskDailyLimit)
			protected.POST("/tasks/:id/reset_users", handler.ResetTaskUsersLimit)

			protected.GET("/ads", handler.ListAdConfigs)
			protected.GET("/ads/:provider", handler.GetAdConfig)
			protected.PUT("/ads/:provider", handler.SaveAdConfig)

			protected.GET("/vpn", handler.GetVPNConfig)
			protected.PUT("/vpn", handler.SaveVPNConfig)
			protected.POST("/vpn/countries", handler.AddVPNCountries)
			protected.DELETE("/vpn/countries/:name", handler.RemoveVPNCountry)

			protected.GET("/wallet/config", handler.GetWalletConfig)
			protected.PUT("/wallet/config", handler.SaveWalletConfig)
			protected.GET("/wallet/methods", handler.ListPaymentMethods)
			protected.POST("/wallet/methods", handler.CreatePaymentMethod)
			protected.PUT("/wallet/methods/:id", handler.UpdatePaymentMethod)
			protected.DELETE("/wallet/methods/:id", handler.DeletePaymentMethod)

			protected.GET("/settings", handler.GetAppSettings)
			protected.PUT("/settings", handler.SaveAppSettings)
			protected.POST("/settings/sliders", handler.AddSliderImages)
			protected.DELETE("/settings/sliders/:id", handler.RemoveSliderImage)
			protected.POST("/settings/sliders/:id/move", handler.MoveSliderImage)

			protected.GET("/notifier/token", handler.GetBotToken)
			protected.PUT("/notifier/token", handler.SaveBotToken)
			protected.GET("/notifier/health", handler.NotifierHealth)
			protected.POST("/notifier/validate", handler.ValidateBotToken)
			protected.POST("/notifier/broadcast", handler.Broadcast)

			protected.POST("/uploads", handler.UploadImage)
		}
	}

	r.GET("/admin/ws", wsHandler.HandleEventsWS)
}

type adminLoginBody struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateProfileBody struct {
	DisplayName     *string `json:"displayName"`
	NewPassword     string  `json:"newPassword"`
	ConfirmPassword string  `json:"confirmPassword"`
}

func (h *Handler) AdminLogin(c *gin.Context) {
	var body adminLoginBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.services.Admin.Login(c.Request.Context(), body.Username, body.Password)
	if err != nil {
		status := http.StatusInternalServerError
		switch err {
		case appErr.ErrAdminNotFound, appErr.ErrInvalidAdminPassword:
			status = http.StatusUnauthorized
		case appErr.ErrAdminDisabled:
			status = http.StatusForbidden
		default:
			status = http.StatusInternalServerError
		}
		response.Error(c, status, err.Error())
		return
	}

	response.Success(c, resp)
}

func (h *Handler) GetProfile(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	profile, err := h.services.Admin.GetProfile(c.Request.Context(), adminID)
	if err != nil {
		status := http.StatusInternalServerError
		if err == appErr.ErrAdminNotFound {
			status = http.StatusNotFound
		}
		response.Error(c, status, err.Error())
		return
	}
	response.Success(c, profile)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var body updateProfileBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.services.Admin.UpdateProfile(c.Request.Context(), adminID, adminsvc.UpdateProfileRequest{
		DisplayName:     body.DisplayName,
		NewPassword:     body.NewPassword,
		ConfirmPassword: body.ConfirmPassword,
	})
	if err != nil {
		status := http.StatusInternalServerError
		switch err {
		case appErr.ErrAdminNotFound:
			status = http.StatusNotFound
		case appErr.ErrPasswordTooShort, appErr.ErrPasswordMismatch:
			status = http.StatusBadRequest
		}
		response.Error(c, status, err.Error())
		return
	}
	response.Success(c, updated)
}

func parsePositiveIntQuery(c *gin.Context, key string, defaultVal int) (int, error) {
	val := c.Query(key)
	if val == "" {
		return defaultVal, nil
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return parsed, nil
}

func getAdminID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(middleware.ContextAdminIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
