package domain

import "context"

type InferenceService interface {
	StreamChat(ctx context.Context, req *InferenceRequest) (<-chan GeneratedToken, error)
}

// ProgressPublisher fans progress out to a conversation's topic. Publishing is
// advisory: implementations must degrade to a no-op instead of failing a turn.
type ProgressPublisher interface {
	PublishCodeProgress(ctx context.Context, conversationID string, ev *CodeProgressEvent) error
}

// MessageSink persists messages and usage rows. Backed either by the MQ
// pipeline or by direct repository writes.
type MessageSink interface {
	SaveMessage(ctx context.Context, msg *Message) error
	SaveUsageLog(ctx context.Context, entry *UsageLog) error
}
