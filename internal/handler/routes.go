package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/Tattzy25/real-code-homie/internal/gate"
	"github.com/Tattzy25/real-code-homie/internal/security"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth          *AuthHandler
	Chat          *ChatHandler
	HelperChat    *HelperChatHandler
	Conversations *ConversationHandler
	Realtime      *RealtimeHandler
	Billing       *BillingHandler
	Uploads       *UploadHandler
	Logs          *LogHandler
}

// RegisterRoutes wires the full HTTP surface onto the engine.
func RegisterRoutes(
	r *gin.Engine,
	h *Handlers,
	jwtSvc *security.JWTService,
	quota *gate.Gate,
	redisClient *redis.Client,
	rateLimitQPS int,
	log *zap.SugaredLogger,
) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	// Public surface.
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/helper-chat", RateLimit(redisClient, rateLimitQPS, log), h.HelperChat.StreamChat)
	api.POST("/webhooks/paypal", h.Billing.Webhook)
	api.POST("/logs/error", RateLimit(redisClient, rateLimitQPS, log), h.Logs.IngestError)

	// Authenticated surface.
	authed := api.Group("", JWTAuth(jwtSvc))
	authed.POST("/chat", quota.Middleware(), h.Chat.StreamChat)
	authed.GET("/conversations", h.Conversations.List)
	authed.POST("/conversations", h.Conversations.Create)
	authed.GET("/conversations/:id/messages", h.Conversations.Messages)
	authed.GET("/conversations/:id/events", h.Realtime.Subscribe)
	authed.DELETE("/conversations/:id", h.Conversations.Delete)
	authed.GET("/usage", h.Conversations.Usage)
	authed.POST("/uploads", h.Uploads.Presign)
	authed.POST("/subscriptions", h.Billing.Activate)
	authed.POST("/subscriptions/cancel", h.Billing.Cancel)
}
