package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Tattzy25/real-code-homie/internal/gate"
	"github.com/Tattzy25/real-code-homie/internal/storage"
)

type UploadHandler struct {
	uploader *storage.Uploader
	log      *zap.SugaredLogger
}

func NewUploadHandler(uploader *storage.Uploader, log *zap.SugaredLogger) *UploadHandler {
	return &UploadHandler{uploader: uploader, log: log}
}

type uploadRequest struct {
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size" binding:"required"`
}

func (h *UploadHandler) Presign(c *gin.Context) {
	if h.uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "uploads are not configured"})
		return
	}

	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	upload, err := h.uploader.NewUpload(c.Request.Context(), c.GetString(gate.CtxUserID), req.FileName, req.ContentType, req.Size)
	if err != nil {
		status, msg := httpError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, upload)
}
