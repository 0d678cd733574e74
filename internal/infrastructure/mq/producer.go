package mq

import (
	"context"
	"encoding/json"
	"fmt"

	rocketmq "github.com/apache/rocketmq-client-go/v2"
	"github.com/apache/rocketmq-client-go/v2/primitive"

	"github.com/Tattzy25/real-code-homie/internal/domain"
)

// Producer publishes persistence events. It implements domain.MessageSink so
// the chat path hands writes off to the consumer instead of blocking on
// Postgres.
type Producer struct{ client rocketmq.Producer }

func NewProducer(client rocketmq.Producer) *Producer {
	return &Producer{client: client}
}

func (p *Producer) SaveMessage(ctx context.Context, msg *domain.Message) error {
	return p.send(ctx, TagSaveMessage, msg)
}

func (p *Producer) SaveUsageLog(ctx context.Context, entry *domain.UsageLog) error {
	return p.send(ctx, TagSaveUsageLog, entry)
}

func (p *Producer) send(ctx context.Context, tag string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", tag, err)
	}
	msg := primitive.NewMessage(TopicPersistence, data)
	msg.WithTag(tag)

	if _, err := p.client.SendSync(ctx, msg); err != nil {
		return fmt.Errorf("send %s event: %w", tag, err)
	}
	return nil
}

func (p *Producer) Shutdown() error {
	return p.client.Shutdown()
}
