package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Tattzy25/real-code-homie/config"
)

// PayPalClient talks to the PayPal REST API: webhook signature verification
// and server-side subscription cancellation.
type PayPalClient struct {
	http      *resty.Client
	clientID  string
	secret    string
	webhookID string

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewPayPalClient(cfg *config.PayPalConfig) *PayPalClient {
	return &PayPalClient{
		http:      resty.New().SetBaseURL(cfg.BaseURL).SetTimeout(15 * time.Second),
		clientID:  cfg.ClientID,
		secret:    cfg.Secret,
		webhookID: cfg.WebhookID,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func (c *PayPalClient) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	var tok tokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(c.clientID, c.secret).
		SetFormData(map[string]string{"grant_type": "client_credentials"}).
		SetResult(&tok).
		Post("/v1/oauth2/token")
	if err != nil {
		return "", fmt.Errorf("paypal oauth: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("paypal oauth: status %d", resp.StatusCode())
	}

	c.accessToken = tok.AccessToken
	// Refresh a minute early.
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn-60) * time.Second)
	return c.accessToken, nil
}

// WebhookHeaders carries the signature headers PayPal sends with each event.
type WebhookHeaders struct {
	TransmissionID   string `json:"transmission_id"`
	TransmissionTime string `json:"transmission_time"`
	TransmissionSig  string `json:"transmission_sig"`
	CertURL          string `json:"cert_url"`
	AuthAlgo         string `json:"auth_algo"`
}

type verifyResponse struct {
	VerificationStatus string `json:"verification_status"`
}

// VerifyWebhookSignature asks PayPal whether the event signature is genuine.
func (c *PayPalClient) VerifyWebhookSignature(ctx context.Context, headers WebhookHeaders, rawEvent []byte) (bool, error) {
	tok, err := c.token(ctx)
	if err != nil {
		return false, err
	}

	body := map[string]any{
		"transmission_id":   headers.TransmissionID,
		"transmission_time": headers.TransmissionTime,
		"transmission_sig":  headers.TransmissionSig,
		"cert_url":          headers.CertURL,
		"auth_algo":         headers.AuthAlgo,
		"webhook_id":        c.webhookID,
		"webhook_event":     json.RawMessage(rawEvent),
	}

	var out verifyResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(tok).
		SetBody(body).
		SetResult(&out).
		Post("/v1/notifications/verify-webhook-signature")
	if err != nil {
		return false, fmt.Errorf("paypal verify webhook: %w", err)
	}
	if resp.IsError() {
		return false, fmt.Errorf("paypal verify webhook: status %d", resp.StatusCode())
	}
	return out.VerificationStatus == "SUCCESS", nil
}

// CancelSubscription cancels the subscription upstream. PayPal keeps the
// subscription active until the end of the paid period.
func (c *PayPalClient) CancelSubscription(ctx context.Context, subscriptionID, reason string) error {
	tok, err := c.token(ctx)
	if err != nil {
		return err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(tok).
		SetBody(map[string]string{"reason": reason}).
		Post(fmt.Sprintf("/v1/billing/subscriptions/%s/cancel", subscriptionID))
	if err != nil {
		return fmt.Errorf("paypal cancel subscription: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("paypal cancel subscription: status %d", resp.StatusCode())
	}
	return nil
}
