package api

import (
	"errors"
	"net/http"
	"strings"

	tasksvc "quickearn-admin/internal/service/task"
	appErr "quickearn-admin/pkg/errors"
	"quickearn-admin/pkg/response"

	"github.com/gin-gonic/gin"
)

type createTaskBody struct {
	Name            string  `json:"name" binding:"required"`
	Reward          float64 `json:"reward" binding:"required"`
	Category        string  `json:"category" binding:"required"`
	TotalRequired   int     `json:"totalRequired" binding:"required,min=1"`
	URL             string  `json:"url"`
	TelegramChannel string  `json:"telegramChannel"`
	CheckMembership bool    `json:"checkMembership"`
	UsersQuantity   int     `json:"usersQuantity"`
}

type updateTaskBody struct {
	Name            *string  `json:"name"`
	Reward          *float64 `json:"reward"`
	TotalRequired   *int     `json:"totalRequired"`
	URL             *string  `json:"url"`
	TelegramChannel *string  `json:"telegramChannel"`
	CheckMembership *bool    `json:"checkMembership"`
	UsersQuantity   *int     `json:"usersQuantity"`
}

func (h *Handler) ListTasks(c *gin.Context) {
	filter := strings.TrimSpace(c.Query("filter"))

	tasks, err := h.services.Task.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Success(c, gin.H{"tasks": tasks})
}

func (h *Handler) CreateTask(c *gin.Context) {
	var body createTaskBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	task, err := h.services.Task.Create(c.Request.Context(), tasksvc.CreateParams{
		Name:            body.Name,
		Reward:          body.Reward,
		Category:        body.Category,
		TotalRequired:   body.TotalRequired,
		URL:             strings.TrimSpace(body.URL),
		TelegramChannel: strings.TrimSpace(body.TelegramChannel),
		CheckMembership: body.CheckMembership,
		UsersQuantity:   body.UsersQuantity,
	})
	if err != nil {
		h.handleTaskError(c, err)
		return
	}
	response.Success(c, gin.H{"task": task})
}

func (h *Handler) UpdateTask(c *gin.Context) {
	var body updateTaskBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	task, err := h.services.Task.Update(c.Request.Context(), c.Param("id"), tasksvc.UpdateParams{
		Name:            body.Name,
		Reward:          body.Reward,
		TotalRequired:   body.TotalRequired,
		URL:             body.URL,
		TelegramChannel: body.TelegramChannel,
		CheckMembership: body.CheckMembership,
		UsersQuantity:   body.UsersQuantity,
	})
	if err != nil {
		h.handleTaskError(c, err)
		return
	}
	response.Success(c, gin.H{"task": task})
}

func (h *Handler) DeleteTask(c *gin.Context) {
	if err := h.services.Task.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleTaskError(c, err)
		return
	}
	response.SuccessWithMsg(c, gin.H{}, "task deleted")
}

func (h *Handler) ResetTaskProgress(c *gin.Context) {
	task, err := h.services.Task.ResetProgress(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleTaskError(c, err)
		return
	}
	response.Success(c, gin.H{"task": task})
}

func (h *Handler) ResetTaskDailyLimit(c *gin.Context) {
	task, err := h.services.Task.ResetDailyLimit(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleTaskError(c, err)
		return
	}
	response.Success(c, gin.H{"task": task})
}

func (h *Handler) ResetTaskUsersLimit(c *gin.Context) {
	task, err := h.services.Task.ResetUsersLimit(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleTaskError(c, err)
		return
	}
	response.Success(c, gin.H{"task": task})
}

func (h *Handler) handleTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, appErr.ErrTaskNotFound):
		response.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, appErr.ErrInvalidTaskPayload),
		errors.Is(err, appErr.ErrInvalidURL),
		errors.Is(err, appErr.ErrInvalidChannel):
		response.Error(c, http.StatusBadRequest, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, err.Error())
	}
}
