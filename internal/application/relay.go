package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Tattzy25/real-code-homie/internal/codeblock"
	"github.com/Tattzy25/real-code-homie/internal/domain"
	"github.com/Tattzy25/real-code-homie/internal/llm"
)

type RelayConfig struct {
	HistoryLimit       int
	HistoryTokenBudget int
	MaxTokens          int
	Temperature        float32
	PersistTimeout     time.Duration
	// CountTokens is injectable so tests control the counter.
	CountTokens func(model, text string) int
}

func (c *RelayConfig) fill() {
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = 10
	}
	if c.HistoryTokenBudget <= 0 {
		c.HistoryTokenBudget = 3000
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 2048
	}
	if c.Temperature == 0 {
		c.Temperature = 0.7
	}
	if c.PersistTimeout <= 0 {
		c.PersistTimeout = 5 * time.Second
	}
	if c.CountTokens == nil {
		c.CountTokens = llm.CountTokens
	}
}

// Relay orchestrates one user turn: history, routing, the streaming model
// call, incremental code-block fan-out, then persistence and usage accounting.
type Relay struct {
	conversations domain.ConversationRepository
	messages      domain.MessageRepository
	users         domain.UserRepository
	sink          domain.MessageSink
	inference     domain.InferenceService
	publisher     domain.ProgressPublisher
	log           *zap.SugaredLogger
	cfg           RelayConfig
}

func NewRelay(
	conversations domain.ConversationRepository,
	messages domain.MessageRepository,
	users domain.UserRepository,
	sink domain.MessageSink,
	inference domain.InferenceService,
	publisher domain.ProgressPublisher,
	log *zap.SugaredLogger,
	cfg RelayConfig,
) *Relay {
	cfg.fill()
	return &Relay{
		conversations: conversations,
		messages:      messages,
		users:         users,
		sink:          sink,
		inference:     inference,
		publisher:     publisher,
		log:           log,
		cfg:           cfg,
	}
}

type TurnRequest struct {
	UserID         string
	Tier           domain.Tier
	ConversationID string
	Message        string
	ModelName      string
	Persona        string
}

// TurnEvent is one frame delivered to the caller, in emission order.
type TurnEvent struct {
	ConversationID string
	Delta          string
	Finished       bool
}

type TurnResult struct {
	ConversationID string
	FullText       string
	Route          domain.ModelRoute
}

// StreamTurn runs one turn, calling emit for every delta and once more with
// Finished set. Errors returned before the first emit are safe to surface as
// plain HTTP errors; after that the stream is already underway and the caller
// must terminate it instead.
func (r *Relay) StreamTurn(ctx context.Context, req *TurnRequest, emit func(TurnEvent) error) (*TurnResult, error) {
	// 1. Validate input
	if strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("%w: message is required", domain.ErrInvalidRequest)
	}
	if req.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}

	// 2. Ensure conversation
	conversationID, isNew, err := r.ensureConversation(ctx, req)
	if err != nil {
		return nil, err
	}

	// 3. Load context (lenient: a failed lookup degrades to empty history)
	var history []domain.ChatMessage
	if !isNew {
		history = r.loadHistory(ctx, conversationID)
	}

	// 4. Route and build the prompt
	route := llm.Resolve(req.Tier, req.ModelName, req.Persona)
	history = llm.TrimHistory(history, r.cfg.HistoryTokenBudget, func(s string) int {
		return r.cfg.CountTokens(route.Model, s)
	})

	prompt := make([]domain.ChatMessage, 0, len(history)+2)
	prompt = append(prompt, domain.ChatMessage{Role: domain.RoleSystem, Content: route.SystemPrompt})
	prompt = append(prompt, history...)
	prompt = append(prompt, domain.ChatMessage{Role: domain.RoleUser, Content: req.Message})

	// 5. Start the streaming model call
	tokens, err := r.inference.StreamChat(ctx, &domain.InferenceRequest{
		Model:       route.Model,
		Provider:    route.Provider,
		Messages:    prompt,
		MaxTokens:   r.cfg.MaxTokens,
		Temperature: r.cfg.Temperature,
	})
	if err != nil {
		return nil, err
	}

	// 6. Persist the user message, best effort, off the streaming path
	userMsg := &domain.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		UserID:         req.UserID,
		Role:           domain.RoleUser,
		Content:        req.Message,
		CreatedAt:      time.Now().UTC(),
	}
	go func() {
		saveCtx, cancel := context.WithTimeout(context.Background(), r.cfg.PersistTimeout)
		defer cancel()
		if err := r.sink.SaveMessage(saveCtx, userMsg); err != nil {
			r.log.Warnw("save user message failed", "conversation_id", conversationID, "err", err)
		}
	}()

	// 7. Consume the stream: emit deltas, track the trailing code block
	var buf strings.Builder
	var published codeblock.Block
	var hasPublished bool
	for token := range tokens {
		if token.Err != nil {
			return nil, token.Err
		}
		if token.Content != "" {
			if err := emit(TurnEvent{ConversationID: conversationID, Delta: token.Content}); err != nil {
				return nil, err
			}
			buf.WriteString(token.Content)

			if last, ok := codeblock.Extract(buf.String()).Last(); ok {
				if !hasPublished || last.Code != published.Code || last.Language != published.Language {
					r.publishProgress(ctx, conversationID, last, false)
					published, hasPublished = last, true
				}
			}
		}
		if token.IsLast {
			break
		}
	}

	if err := emit(TurnEvent{ConversationID: conversationID, Finished: true}); err != nil {
		return nil, err
	}

	// 8. Completion: final fan-out, then persistence and accounting on a
	// detached context so a client disconnect cannot lose the writes.
	fullText := buf.String()
	if last, ok := codeblock.Extract(fullText).Last(); ok {
		r.publishProgress(ctx, conversationID, last, true)
	}

	persistCtx, cancel := context.WithTimeout(context.Background(), r.cfg.PersistTimeout)
	defer cancel()

	if fullText != "" {
		assistantMsg := &domain.Message{
			ID:             uuid.New().String(),
			ConversationID: conversationID,
			UserID:         req.UserID,
			Role:           domain.RoleAssistant,
			Content:        fullText,
			CreatedAt:      time.Now().UTC(),
		}
		if err := r.sink.SaveMessage(persistCtx, assistantMsg); err != nil {
			// Tokens are already delivered; nothing to undo.
			r.log.Errorw("save assistant message failed", "conversation_id", conversationID, "err", err)
		}
	}

	if err := r.users.IncrementUsage(persistCtx, req.UserID); err != nil {
		r.log.Warnw("increment usage failed", "user_id", req.UserID, "err", err)
	}
	entry := &domain.UsageLog{
		ID:         uuid.New().String(),
		UserID:     req.UserID,
		ActionType: "chat_message",
		Model:      route.Name,
		Provider:   route.Provider,
		Tier:       req.Tier,
		Metadata: map[string]any{
			"conversation_id": conversationID,
			"persona":         req.Persona,
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := r.sink.SaveUsageLog(persistCtx, entry); err != nil {
		r.log.Warnw("save usage log failed", "user_id", req.UserID, "err", err)
	}

	return &TurnResult{ConversationID: conversationID, FullText: fullText, Route: route}, nil
}

func (r *Relay) ensureConversation(ctx context.Context, req *TurnRequest) (string, bool, error) {
	if req.ConversationID == "" {
		conv := &domain.Conversation{
			ID:        uuid.New().String(),
			UserID:    req.UserID,
			CreatedAt: time.Now().UTC(),
		}
		conv.SetTitle(req.Message)
		if err := r.conversations.Save(ctx, conv); err != nil {
			return "", false, fmt.Errorf("create conversation: %w", err)
		}
		return conv.ID, true, nil
	}

	conv, err := r.conversations.FindByID(ctx, req.ConversationID)
	if err != nil {
		// Lenient: history load below will degrade too.
		r.log.Warnw("conversation lookup failed", "conversation_id", req.ConversationID, "err", err)
		return req.ConversationID, false, nil
	}
	if conv != nil && conv.UserID != req.UserID {
		return "", false, domain.ErrPermissionDenied
	}
	return req.ConversationID, false, nil
}

func (r *Relay) loadHistory(ctx context.Context, conversationID string) []domain.ChatMessage {
	msgs, err := r.messages.FindByConversationID(ctx, conversationID, r.cfg.HistoryLimit, 0)
	if err != nil {
		r.log.Warnw("history lookup failed, using empty context", "conversation_id", conversationID, "err", err)
		return nil
	}

	// Repository returns newest first; the prompt wants oldest first.
	history := make([]domain.ChatMessage, 0, len(msgs))
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role != domain.RoleUser && msgs[i].Role != domain.RoleAssistant {
			continue
		}
		history = append(history, domain.ChatMessage{Role: msgs[i].Role, Content: msgs[i].Content})
	}
	return history
}

func (r *Relay) publishProgress(ctx context.Context, conversationID string, block codeblock.Block, complete bool) {
	ev := &domain.CodeProgressEvent{
		Kind:     domain.EventKindProgress,
		Language: block.Language,
		Code:     block.Code,
		Complete: complete,
	}
	if err := r.publisher.PublishCodeProgress(ctx, conversationID, ev); err != nil {
		r.log.Warnw("code progress publish rejected", "conversation_id", conversationID, "err", err)
	}
}
