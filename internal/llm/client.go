package llm

import (
	"errors"
	"fmt"
	"io"

	"context"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/Tattzy25/real-code-homie/config"
	"github.com/Tattzy25/real-code-homie/internal/domain"
)

// ProviderSet holds one streaming client per upstream API family. Groq speaks
// the OpenAI wire format, so both families use the same client type with a
// different base URL.
type ProviderSet struct {
	clients map[string]*openai.Client
	log     *zap.SugaredLogger
}

func NewProviderSet(cfg *config.ProvidersConfig, log *zap.SugaredLogger) *ProviderSet {
	clients := make(map[string]*openai.Client, 2)

	if cfg.OpenAI.APIKey != "" {
		c := openai.DefaultConfig(cfg.OpenAI.APIKey)
		if cfg.OpenAI.BaseURL != "" {
			c.BaseURL = cfg.OpenAI.BaseURL
		}
		clients[ProviderOpenAI] = openai.NewClientWithConfig(c)
	}
	if cfg.Groq.APIKey != "" {
		c := openai.DefaultConfig(cfg.Groq.APIKey)
		c.BaseURL = cfg.Groq.BaseURL
		clients[ProviderGroq] = openai.NewClientWithConfig(c)
	}

	return &ProviderSet{clients: clients, log: log}
}

// StreamChat starts a streaming completion and pumps its deltas into the
// returned channel. The stream's lifetime is tied to ctx: cancelling it stops
// consumption and releases the upstream call.
func (p *ProviderSet) StreamChat(ctx context.Context, req *domain.InferenceRequest) (<-chan domain.GeneratedToken, error) {
	client, ok := p.clients[req.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: provider %q not configured", domain.ErrUpstreamModel, req.Provider)
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    m.Role.String(),
			Content: m.Content,
		})
	}

	stream, err := client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Stream:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamModel, err)
	}

	out := make(chan domain.GeneratedToken)
	go func() {
		defer close(out)
		defer stream.Close()
		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				select {
				case out <- domain.GeneratedToken{IsLast: true}:
				case <-ctx.Done():
				}
				return
			}
			if err != nil {
				p.log.Errorw("stream recv failed", "provider", req.Provider, "err", err)
				select {
				case out <- domain.GeneratedToken{Err: fmt.Errorf("%w: %v", domain.ErrUpstreamModel, err), IsLast: true}:
				case <-ctx.Done():
				}
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			select {
			case out <- domain.GeneratedToken{Content: resp.Choices[0].Delta.Content}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}
