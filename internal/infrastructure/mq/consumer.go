package mq

import (
	"context"
	"encoding/json"

	rocketmq "github.com/apache/rocketmq-client-go/v2"
	"github.com/apache/rocketmq-client-go/v2/consumer"
	"github.com/apache/rocketmq-client-go/v2/primitive"
	"go.uber.org/zap"

	"github.com/Tattzy25/real-code-homie/internal/domain"
)

type Consumer struct {
	client    rocketmq.PushConsumer
	messages  domain.MessageRepository
	usageLogs domain.UsageLogRepository
	log       *zap.SugaredLogger
}

func NewConsumer(
	client rocketmq.PushConsumer,
	messages domain.MessageRepository,
	usageLogs domain.UsageLogRepository,
	log *zap.SugaredLogger,
) *Consumer {
	return &Consumer{
		client:    client,
		messages:  messages,
		usageLogs: usageLogs,
		log:       log,
	}
}

func (c *Consumer) SubscribePersistence() error {
	return c.client.Subscribe(
		TopicPersistence,
		consumer.MessageSelector{},
		c.handlePersistenceMessage,
	)
}

func (c *Consumer) handlePersistenceMessage(ctx context.Context, msgs ...*primitive.MessageExt) (consumer.ConsumeResult, error) {
	for _, msg := range msgs {
		var err error
		switch msg.GetTags() {
		case TagSaveMessage:
			err = c.handleSaveMessage(ctx, msg.Body)
		case TagSaveUsageLog:
			err = c.handleSaveUsageLog(ctx, msg.Body)
		default:
			c.log.Warnw("unknown persistence tag", "tag", msg.GetTags())
			continue
		}

		if err != nil {
			c.log.Errorw("handle persistence event failed, will retry", "tag", msg.GetTags(), "err", err)
			return consumer.ConsumeRetryLater, nil
		}
	}
	return consumer.ConsumeSuccess, nil
}

func (c *Consumer) handleSaveMessage(ctx context.Context, body []byte) error {
	var msg domain.Message
	if err := json.Unmarshal(body, &msg); err != nil {
		// Poison payload, retrying cannot help.
		c.log.Errorw("unmarshal message event failed", "err", err)
		return nil
	}
	return c.messages.Save(ctx, &msg)
}

func (c *Consumer) handleSaveUsageLog(ctx context.Context, body []byte) error {
	var entry domain.UsageLog
	if err := json.Unmarshal(body, &entry); err != nil {
		c.log.Errorw("unmarshal usage log event failed", "err", err)
		return nil
	}
	return c.usageLogs.Save(ctx, &entry)
}

func (c *Consumer) Start() error {
	return c.client.Start()
}

func (c *Consumer) Shutdown() error {
	return c.client.Shutdown()
}
