package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"github.com/Tattzy25/real-code-homie/internal/application"
	"github.com/Tattzy25/real-code-homie/internal/domain"
	"github.com/Tattzy25/real-code-homie/internal/gate"
)

// TurnStreamer is the slice of the relay the HTTP layer depends on.
type TurnStreamer interface {
	StreamTurn(ctx context.Context, req *application.TurnRequest, emit func(application.TurnEvent) error) (*application.TurnResult, error)
}

type ChatHandler struct {
	relay TurnStreamer
	log   *zap.SugaredLogger
}

func NewChatHandler(relay TurnStreamer, log *zap.SugaredLogger) *ChatHandler {
	return &ChatHandler{relay: relay, log: log}
}

type chatRequest struct {
	Message        string `json:"message" binding:"required"`
	ConversationID string `json:"conversationId"`
	ModelName      string `json:"modelName"`
	Persona        string `json:"persona"`
}

// StreamChat runs one turn over SSE. Before the first frame, failures map to
// plain HTTP errors; once streaming has started they become error events.
func (h *ChatHandler) StreamChat(c *gin.Context) {
	// BodyWith: the quota middleware has already read (and cached) the body.
	var req chatRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString(gate.CtxUserID)
	tier := domain.Tier(c.GetString(gate.CtxTier))

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	started := false
	flushCounter := 0
	_, err := h.relay.StreamTurn(c.Request.Context(), &application.TurnRequest{
		UserID:         userID,
		Tier:           tier,
		ConversationID: req.ConversationID,
		Message:        req.Message,
		ModelName:      req.ModelName,
		Persona:        req.Persona,
	}, func(ev application.TurnEvent) error {
		started = true
		if ev.Finished {
			c.SSEvent("message", gin.H{
				"content":        "",
				"finished":       true,
				"conversationId": ev.ConversationID,
			})
			c.Writer.Flush()
			return nil
		}
		c.SSEvent("message", gin.H{
			"content":        ev.Delta,
			"finished":       false,
			"conversationId": ev.ConversationID,
		})
		flushCounter++
		if flushCounter >= 5 {
			c.Writer.Flush()
			flushCounter = 0
		}
		return nil
	})

	if err != nil {
		h.log.Warnw("chat turn failed", "user_id", userID, "err", err)
		if !started {
			status, msg := httpError(err)
			c.JSON(status, gin.H{"error": msg})
			return
		}
		c.SSEvent("error", gin.H{"message": publicMessage(err)})
		c.Writer.Flush()
	}
}

func httpError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest, publicMessage(err)
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, domain.ErrPermissionDenied):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "Not found"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func publicMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrUpstreamModel):
		return "The model is unavailable right now, please retry"
	case errors.Is(err, domain.ErrInvalidRequest):
		return err.Error()
	default:
		return "Something went wrong"
	}
}
