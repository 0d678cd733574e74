package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Tattzy25/real-code-homie/internal/application"
	"github.com/Tattzy25/real-code-homie/internal/gate"
)

type ConversationHandler struct {
	conversations *application.ConversationService
	log           *zap.SugaredLogger
}

func NewConversationHandler(conversations *application.ConversationService, log *zap.SugaredLogger) *ConversationHandler {
	return &ConversationHandler{conversations: conversations, log: log}
}

func pagination(c *gin.Context, defaultLimit int) (limit, offset int) {
	limit = defaultLimit
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}

func (h *ConversationHandler) Create(c *gin.Context) {
	var req struct {
		Title string `json:"title"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conv, err := h.conversations.Create(c.Request.Context(), c.GetString(gate.CtxUserID), req.Title)
	if err != nil {
		status, msg := httpError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"conversationId": conv.ID,
		"title":          conv.Title,
		"createdAt":      conv.CreatedAt,
	})
}

func (h *ConversationHandler) List(c *gin.Context) {
	limit, offset := pagination(c, 20)
	convs, err := h.conversations.List(c.Request.Context(), c.GetString(gate.CtxUserID), limit, offset)
	if err != nil {
		status, msg := httpError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	out := make([]gin.H, 0, len(convs))
	for _, conv := range convs {
		out = append(out, gin.H{
			"conversationId": conv.ID,
			"title":          conv.Title,
			"createdAt":      conv.CreatedAt,
			"updatedAt":      conv.UpdatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"conversations": out})
}

func (h *ConversationHandler) Messages(c *gin.Context) {
	limit, offset := pagination(c, 50)
	msgs, err := h.conversations.Messages(c.Request.Context(),
		c.GetString(gate.CtxUserID), c.Param("id"), limit, offset)
	if err != nil {
		status, msg := httpError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	out := make([]gin.H, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, gin.H{
			"messageId": m.ID,
			"role":      m.Role,
			"content":   m.Content,
			"createdAt": m.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"messages": out})
}

func (h *ConversationHandler) Delete(c *gin.Context) {
	err := h.conversations.Delete(c.Request.Context(), c.GetString(gate.CtxUserID), c.Param("id"))
	if err != nil {
		status, msg := httpError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *ConversationHandler) Usage(c *gin.Context) {
	limit, offset := pagination(c, 50)
	entries, err := h.conversations.UsageHistory(c.Request.Context(), c.GetString(gate.CtxUserID), limit, offset)
	if err != nil {
		status, msg := httpError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	out := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		out = append(out, gin.H{
			"actionType": e.ActionType,
			"model":      e.Model,
			"provider":   e.Provider,
			"tier":       e.Tier,
			"createdAt":  e.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"usage": out})
}
