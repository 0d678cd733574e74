package repository

import (
	"context"

	"github.com/Tattzy25/real-code-homie/internal/domain"
)

// DirectSink writes messages and usage logs straight through the
// repositories. It is the fallback persistence path when the message queue
// is not configured.
type DirectSink struct {
	messages  domain.MessageRepository
	usageLogs domain.UsageLogRepository
}

func NewDirectSink(messages domain.MessageRepository, usageLogs domain.UsageLogRepository) *DirectSink {
	return &DirectSink{messages: messages, usageLogs: usageLogs}
}

func (s *DirectSink) SaveMessage(ctx context.Context, msg *domain.Message) error {
	return s.messages.Save(ctx, msg)
}

func (s *DirectSink) SaveUsageLog(ctx context.Context, entry *domain.UsageLog) error {
	return s.usageLogs.Save(ctx, entry)
}
