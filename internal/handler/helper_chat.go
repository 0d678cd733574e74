package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Tattzy25/real-code-homie/internal/domain"
	"github.com/Tattzy25/real-code-homie/internal/llm"
)

const helperMaxHistory = 20

const helperSystemPrompt = `You are Helper Homie, a friendly AI assistant for the Code Homie platform. Your job is to help website visitors with questions about Code Homie.

About Code Homie:
- Code Homie is an AI-powered coding assistant platform
- It helps developers write, debug, and understand code
- It offers multiple AI models including Llama 4, DeepSeek, and GPT-4o
- It has three subscription tiers: Free, Pro Builder, and Pro Engineer

Your personality:
- Friendly and helpful
- Concise but informative
- Enthusiastic about coding
- Encouraging users to sign up or try the demo

Always try to answer questions directly. If you don't know something, say so and offer to connect them with support. Avoid making up information.

For technical questions about coding, suggest they try the actual Code Homie platform for detailed assistance.`

// HelperChatHandler serves the public marketing-site widget. No auth, no
// persistence, rate limited per IP instead.
type HelperChatHandler struct {
	inference domain.InferenceService
	maxTokens int
	log       *zap.SugaredLogger
}

func NewHelperChatHandler(inference domain.InferenceService, maxTokens int, log *zap.SugaredLogger) *HelperChatHandler {
	return &HelperChatHandler{inference: inference, maxTokens: maxTokens, log: log}
}

type helperChatRequest struct {
	Messages []domain.ChatMessage `json:"messages" binding:"required"`
}

func (h *HelperChatHandler) StreamChat(c *gin.Context) {
	var req helperChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Messages) > helperMaxHistory {
		req.Messages = req.Messages[len(req.Messages)-helperMaxHistory:]
	}

	messages := make([]domain.ChatMessage, 0, len(req.Messages)+1)
	messages = append(messages, domain.ChatMessage{Role: domain.RoleSystem, Content: helperSystemPrompt})
	for _, m := range req.Messages {
		if m.Role == domain.RoleUser || m.Role == domain.RoleAssistant {
			messages = append(messages, m)
		}
	}

	route := llm.Resolve(domain.TierPro, llm.ModelLlamaScout, "")
	tokens, err := h.inference.StreamChat(c.Request.Context(), &domain.InferenceRequest{
		Model:       route.Model,
		Provider:    route.Provider,
		Messages:    messages,
		MaxTokens:   h.maxTokens,
		Temperature: 0.7,
	})
	if err != nil {
		h.log.Warnw("helper chat upstream failed", "err", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "The assistant is unavailable right now"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	flushCounter := 0
	for token := range tokens {
		if token.Err != nil {
			c.SSEvent("error", gin.H{"message": "The assistant is unavailable right now"})
			c.Writer.Flush()
			return
		}
		c.SSEvent("message", gin.H{
			"content":  token.Content,
			"finished": token.IsLast,
		})
		flushCounter++
		if token.IsLast || flushCounter >= 5 {
			c.Writer.Flush()
			flushCounter = 0
		}
		if token.IsLast {
			break
		}
	}
}
