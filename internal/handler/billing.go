package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Tattzy25/real-code-homie/internal/billing"
	"github.com/Tattzy25/real-code-homie/internal/gate"
)

type BillingHandler struct {
	billing *billing.Service
	log     *zap.SugaredLogger
}

func NewBillingHandler(svc *billing.Service, log *zap.SugaredLogger) *BillingHandler {
	return &BillingHandler{billing: svc, log: log}
}

type activateRequest struct {
	SubscriptionID string `json:"subscriptionId" binding:"required"`
	PlanID         string `json:"planId" binding:"required"`
	PlanKey        string `json:"planKey" binding:"required"`
}

func (h *BillingHandler) Activate(c *gin.Context) {
	var req activateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.billing.Activate(c.Request.Context(),
		c.GetString(gate.CtxUserID), req.SubscriptionID, req.PlanID, req.PlanKey)
	if err != nil {
		status, msg := httpError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type cancelRequest struct {
	SubscriptionID string `json:"subscriptionId" binding:"required"`
}

func (h *BillingHandler) Cancel(c *gin.Context) {
	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.billing.Cancel(c.Request.Context(), c.GetString(gate.CtxUserID), req.SubscriptionID)
	if err != nil {
		status, msg := httpError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Webhook receives provider events. Unauthenticated by design, the signature
// check inside the service is the gate.
func (h *BillingHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	headers := billing.WebhookHeaders{
		TransmissionID:   c.GetHeader("Paypal-Transmission-Id"),
		TransmissionTime: c.GetHeader("Paypal-Transmission-Time"),
		TransmissionSig:  c.GetHeader("Paypal-Transmission-Sig"),
		CertURL:          c.GetHeader("Paypal-Cert-Url"),
		AuthAlgo:         c.GetHeader("Paypal-Auth-Algo"),
	}

	if err := h.billing.HandleWebhook(c.Request.Context(), headers, body); err != nil {
		h.log.Warnw("webhook rejected", "err", err)
		status, msg := httpError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
