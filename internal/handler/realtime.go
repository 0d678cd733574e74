package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Tattzy25/real-code-homie/internal/application"
	"github.com/Tattzy25/real-code-homie/internal/domain"
	"github.com/Tattzy25/real-code-homie/internal/gate"
	"github.com/Tattzy25/real-code-homie/internal/realtime"
)

// RealtimeHandler bridges the pub/sub fan-out to browsers over SSE.
type RealtimeHandler struct {
	broker        *realtime.Broker
	conversations *application.ConversationService
	log           *zap.SugaredLogger
}

func NewRealtimeHandler(broker *realtime.Broker, conversations *application.ConversationService, log *zap.SugaredLogger) *RealtimeHandler {
	return &RealtimeHandler{broker: broker, conversations: conversations, log: log}
}

func (h *RealtimeHandler) Subscribe(c *gin.Context) {
	conversationID := c.Param("id")
	userID := c.GetString(gate.CtxUserID)

	owns, err := h.conversations.Owns(c.Request.Context(), userID, conversationID)
	if err != nil {
		status, msg := httpError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	if !owns {
		status, msg := httpError(domain.ErrPermissionDenied)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	events, err := h.broker.Subscribe(c.Request.Context(), conversationID)
	if err != nil {
		h.log.Warnw("realtime subscribe failed", "conversation_id", conversationID, "err", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "realtime updates unavailable"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Writer.Flush()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case env, ok := <-events:
			if !ok {
				return
			}
			c.SSEvent(env.Event, env.Data)
			c.Writer.Flush()
		}
	}
}
