package mq

import (
	"context"
	"fmt"
	"net"

	rocketmq "github.com/apache/rocketmq-client-go/v2"
	"github.com/apache/rocketmq-client-go/v2/consumer"
	"github.com/apache/rocketmq-client-go/v2/primitive"
	"github.com/apache/rocketmq-client-go/v2/producer"
	"go.uber.org/zap"

	"github.com/Tattzy25/real-code-homie/config"
	"github.com/Tattzy25/real-code-homie/internal/domain"
)

// InitProducer starts the RocketMQ producer. Returns (nil, nil) when no name
// servers are configured, which callers treat as "use the direct sink".
func InitProducer(cfg *config.AppConfig, log *zap.SugaredLogger) (*Producer, error) {
	nameServers := resolveNameServers(cfg.RocketMQ.NameServers, log)
	if len(nameServers) == 0 {
		log.Infow("rocketmq name servers not configured, skipping producer")
		return nil, nil
	}

	p, err := rocketmq.NewProducer(
		producer.WithNsResolver(primitive.NewPassthroughResolver(nameServers)),
		producer.WithRetry(cfg.RocketMQ.MaxRetries),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rocketmq producer: %w", err)
	}

	if err := p.Start(); err != nil {
		return nil, fmt.Errorf("failed to start rocketmq producer: %w", err)
	}

	// Bootstrap the topic (autoCreateTopicEnable=true on the broker).
	initMsg := primitive.NewMessage(TopicPersistence, []byte("init"))
	if _, err := p.SendSync(context.Background(), initMsg); err != nil {
		log.Warnw("failed to send init message", "topic", TopicPersistence, "err", err)
	}

	return NewProducer(p), nil
}

func InitConsumer(
	cfg *config.AppConfig,
	messages domain.MessageRepository,
	usageLogs domain.UsageLogRepository,
	log *zap.SugaredLogger,
) (*Consumer, error) {
	nameServers := resolveNameServers(cfg.RocketMQ.NameServers, log)
	if len(nameServers) == 0 {
		log.Infow("rocketmq name servers not configured, skipping consumer")
		return nil, nil
	}

	c, err := rocketmq.NewPushConsumer(
		consumer.WithNsResolver(primitive.NewPassthroughResolver(nameServers)),
		consumer.WithGroupName(cfg.RocketMQ.ConsumerGroup),
		consumer.WithRetry(cfg.RocketMQ.MaxRetries),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rocketmq consumer: %w", err)
	}

	mqConsumer := NewConsumer(c, messages, usageLogs, log)

	if err := mqConsumer.SubscribePersistence(); err != nil {
		return nil, fmt.Errorf("failed to subscribe persistence topic: %w", err)
	}
	if err := mqConsumer.Start(); err != nil {
		return nil, fmt.Errorf("failed to start rocketmq consumer: %w", err)
	}

	log.Infow("rocketmq consumer started", "group", cfg.RocketMQ.ConsumerGroup)
	return mqConsumer, nil
}

// resolveNameServers maps hostnames to IPs up front: the rocketmq client
// dials name servers by address and handles container DNS poorly.
func resolveNameServers(servers []string, log *zap.SugaredLogger) []string {
	var resolved []string
	for _, addr := range servers {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			log.Warnw("failed to split host port", "addr", addr, "err", err)
			resolved = append(resolved, addr)
			continue
		}
		ips, err := net.LookupHost(host)
		if err != nil || len(ips) == 0 {
			log.Warnw("failed to resolve name server", "host", host, "err", err)
			resolved = append(resolved, addr)
			continue
		}
		resolved = append(resolved, net.JoinHostPort(ips[0], port))
	}
	return resolved
}
