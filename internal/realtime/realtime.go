// Package realtime fans ephemeral progress events out over Redis pub/sub, one
// channel per conversation. It is advisory: persisted messages are the only
// source of truth, and a missing or failing connection degrades to a no-op.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/Tattzy25/real-code-homie/internal/domain"
)

// Event names carried in the envelope.
const (
	EventCodeProgress  = "code-progress"
	EventPreviewUpdate = "preview-update"
)

// Envelope is the wire shape on a conversation channel.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// PreviewUpdateEvent is the tagged payload for rendered-preview refreshes.
type PreviewUpdateEvent struct {
	Kind string `json:"kind"`
	HTML string `json:"html"`
}

const EventKindPreview = "preview"

func ChannelFor(conversationID string) string {
	return "conversation:" + conversationID
}

type Broker struct {
	client *redis.Client // nil means publishing is disabled
	log    *zap.SugaredLogger
}

// NewBroker wraps an explicitly constructed Redis client. client may be nil,
// in which case every publish is a no-op.
func NewBroker(client *redis.Client, log *zap.SugaredLogger) *Broker {
	return &Broker{client: client, log: log}
}

// PublishCodeProgress broadcasts the latest extracted code block. Transport
// failures are swallowed; a malformed payload is the caller's bug and is
// reported.
func (b *Broker) PublishCodeProgress(ctx context.Context, conversationID string, ev *domain.CodeProgressEvent) error {
	if ev == nil || ev.Kind != domain.EventKindProgress {
		return fmt.Errorf("realtime: invalid code-progress payload")
	}
	return b.publish(ctx, conversationID, EventCodeProgress, ev)
}

func (b *Broker) PublishPreviewUpdate(ctx context.Context, conversationID string, ev *PreviewUpdateEvent) error {
	if ev == nil || ev.Kind != EventKindPreview {
		return fmt.Errorf("realtime: invalid preview-update payload")
	}
	return b.publish(ctx, conversationID, EventPreviewUpdate, ev)
}

func (b *Broker) publish(ctx context.Context, conversationID, event string, payload any) error {
	if b.client == nil {
		return nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("realtime: marshal %s: %w", event, err)
	}
	env, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		return fmt.Errorf("realtime: marshal envelope: %w", err)
	}

	if err := b.client.Publish(ctx, ChannelFor(conversationID), env).Err(); err != nil {
		// At-most-once, best effort. Never fail a turn over this.
		b.log.Debugw("realtime publish dropped", "conversation_id", conversationID, "event", event, "err", err)
	}
	return nil
}

// Subscribe streams a conversation's envelopes until ctx is cancelled. The
// returned channel is closed on cancellation or transport loss.
func (b *Broker) Subscribe(ctx context.Context, conversationID string) (<-chan Envelope, error) {
	if b.client == nil {
		return nil, fmt.Errorf("realtime: not connected")
	}

	sub := b.client.Subscribe(ctx, ChannelFor(conversationID))
	out := make(chan Envelope)

	go func() {
		defer close(out)
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var env Envelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					b.log.Debugw("realtime: dropping malformed envelope", "err", err)
					continue
				}
				select {
				case out <- env:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
