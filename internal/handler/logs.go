package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Tattzy25/real-code-homie/internal/domain"
	"github.com/Tattzy25/real-code-homie/internal/gate"
)

var validSeverities = map[string]bool{
	"low": true, "medium": true, "high": true, "critical": true,
}

type LogHandler struct {
	errorLogs domain.ErrorLogRepository
	log       *zap.SugaredLogger
}

func NewLogHandler(errorLogs domain.ErrorLogRepository, log *zap.SugaredLogger) *LogHandler {
	return &LogHandler{errorLogs: errorLogs, log: log}
}

type errorLogRequest struct {
	Message   string         `json:"message" binding:"required"`
	Severity  string         `json:"severity" binding:"required"`
	Timestamp time.Time      `json:"timestamp" binding:"required"`
	Path      string         `json:"path"`
	Component string         `json:"component"`
	Stack     string         `json:"stack"`
	Context   map[string]any `json:"context"`
}

// IngestError stores a client-side error report.
func (h *LogHandler) IngestError(c *gin.Context) {
	var req errorLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !validSeverities[req.Severity] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid severity"})
		return
	}

	entry := &domain.ErrorLog{
		ID:         uuid.New().String(),
		UserID:     c.GetString(gate.CtxUserID),
		Message:    req.Message,
		Path:       req.Path,
		Component:  req.Component,
		Severity:   req.Severity,
		StackTrace: req.Stack,
		Context:    req.Context,
		OccurredAt: req.Timestamp,
		CreatedAt:  time.Now().UTC(),
	}
	if err := h.errorLogs.Save(c.Request.Context(), entry); err != nil {
		h.log.Errorw("store error log failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store error log"})
		return
	}

	if req.Severity == "critical" {
		h.log.Errorw("critical client error reported",
			"user_id", entry.UserID, "component", req.Component, "message", req.Message)
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
