package api

import (
	"errors"
	"net/http"

	appErr "quickearn-admin/pkg/errors"
	"quickearn-admin/pkg/response"

	"github.com/gin-gonic/gin"
)

const maxUploadBytes = 10 << 20

func (h *Handler) UploadImage(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "file is required")
		return
	}
	if fileHeader.Size > maxUploadBytes {
		response.Error(c, http.StatusRequestEntityTooLarge, "file exceeds 10MB limit")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "failed to read file")
		return
	}
	defer file.Close()

	url, err := h.services.Uploads.Upload(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, appErr.ErrUploadFailed) {
			status = http.StatusBadGateway
		}
		response.Error(c, status, err.Error())
		return
	}
	response.Success(c, gin.H{"url": url})
}
