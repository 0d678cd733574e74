package application

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Tattzy25/real-code-homie/internal/domain"
	"github.com/Tattzy25/real-code-homie/internal/llm"
)

// --- fakes ---

type fakeConvRepo struct {
	mu      sync.Mutex
	saved   []*domain.Conversation
	byID    map[string]*domain.Conversation
	deleted []string
	findErr error
}

func (f *fakeConvRepo) Save(ctx context.Context, conv *domain.Conversation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, conv)
	return nil
}
func (f *fakeConvRepo) FindByID(ctx context.Context, id string) (*domain.Conversation, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.byID[id], nil
}
func (f *fakeConvRepo) FindByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.Conversation, error) {
	return nil, nil
}
func (f *fakeConvRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeMsgRepo struct {
	history []*domain.Message
	purged  []string
	findErr error
}

func (f *fakeMsgRepo) Save(ctx context.Context, msg *domain.Message) error { return nil }
func (f *fakeMsgRepo) FindByConversationID(ctx context.Context, conversationID string, limit, offset int) ([]*domain.Message, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.history, nil
}
func (f *fakeMsgRepo) CountUserMessagesBetween(ctx context.Context, userID string, from, to time.Time) (int64, error) {
	return 0, nil
}
func (f *fakeMsgRepo) DeleteByConversationID(ctx context.Context, conversationID string) error {
	f.purged = append(f.purged, conversationID)
	return nil
}

type fakeUsers struct {
	mu         sync.Mutex
	increments []string
}

func (f *fakeUsers) Create(ctx context.Context, u *domain.User) error { return nil }
func (f *fakeUsers) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return nil, nil
}
func (f *fakeUsers) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return nil, nil
}
func (f *fakeUsers) UpdateTier(ctx context.Context, userID string, tier domain.Tier, status string) error {
	return nil
}
func (f *fakeUsers) SetSubscription(ctx context.Context, userID string, tier domain.Tier, status, subscriptionID, provider string) error {
	return nil
}
func (f *fakeUsers) IncrementUsage(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.increments = append(f.increments, userID)
	return nil
}

type fakeSink struct {
	mu          sync.Mutex
	messages    []*domain.Message
	usage       []*domain.UsageLog
	userSaveErr error
}

func (f *fakeSink) SaveMessage(ctx context.Context, msg *domain.Message) error {
	if msg.Role == domain.RoleUser && f.userSaveErr != nil {
		return f.userSaveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg)
	return nil
}
func (f *fakeSink) SaveUsageLog(ctx context.Context, entry *domain.UsageLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.usage = append(f.usage, entry)
	return nil
}

func (f *fakeSink) byRole(role domain.Role) []*domain.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Message
	for _, m := range f.messages {
		if m.Role == role {
			out = append(out, m)
		}
	}
	return out
}

type fakeInference struct {
	tokens  []domain.GeneratedToken
	err     error
	lastReq *domain.InferenceRequest
}

func (f *fakeInference) StreamChat(ctx context.Context, req *domain.InferenceRequest) (<-chan domain.GeneratedToken, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastReq = req
	out := make(chan domain.GeneratedToken, len(f.tokens))
	for _, t := range f.tokens {
		out <- t
	}
	close(out)
	return out, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []*domain.CodeProgressEvent
}

func (f *fakePublisher) PublishCodeProgress(ctx context.Context, conversationID string, ev *domain.CodeProgressEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

type relayFixture struct {
	convs     *fakeConvRepo
	msgs      *fakeMsgRepo
	users     *fakeUsers
	sink      *fakeSink
	inference *fakeInference
	publisher *fakePublisher
	relay     *Relay
}

func newRelayFixture(t *testing.T, tokens []domain.GeneratedToken) *relayFixture {
	t.Helper()
	fx := &relayFixture{
		convs:     &fakeConvRepo{byID: map[string]*domain.Conversation{}},
		msgs:      &fakeMsgRepo{},
		users:     &fakeUsers{},
		sink:      &fakeSink{},
		inference: &fakeInference{tokens: tokens},
		publisher: &fakePublisher{},
	}
	fx.relay = NewRelay(fx.convs, fx.msgs, fx.users, fx.sink, fx.inference, fx.publisher,
		zap.NewNop().Sugar(), RelayConfig{CountTokens: func(model, text string) int { return len(text) }})
	return fx
}

func deltas(tokens ...string) []domain.GeneratedToken {
	out := make([]domain.GeneratedToken, 0, len(tokens)+1)
	for _, t := range tokens {
		out = append(out, domain.GeneratedToken{Content: t})
	}
	return append(out, domain.GeneratedToken{IsLast: true})
}

// --- tests ---

// The persisted assistant content must equal the concatenation of the deltas
// delivered to the client, in delivery order.
func TestStreamTurnOrdering(t *testing.T) {
	fx := newRelayFixture(t, deltas("Hel", "lo ", "wor", "ld"))

	var delivered []string
	var finished bool
	res, err := fx.relay.StreamTurn(context.Background(), &TurnRequest{
		UserID: "u1", Tier: domain.TierPro, Message: "hi",
	}, func(ev TurnEvent) error {
		if ev.Finished {
			finished = true
		} else {
			delivered = append(delivered, ev.Delta)
		}
		return nil
	})

	require.NoError(t, err)
	assert.True(t, finished)
	assert.Equal(t, "Hello world", strings.Join(delivered, ""))
	assert.Equal(t, "Hello world", res.FullText)

	assistant := fx.sink.byRole(domain.RoleAssistant)
	require.Len(t, assistant, 1)
	assert.Equal(t, strings.Join(delivered, ""), assistant[0].Content)
	assert.Equal(t, res.ConversationID, assistant[0].ConversationID)
}

func TestStreamTurnEmptyMessage(t *testing.T) {
	fx := newRelayFixture(t, nil)

	emitted := false
	_, err := fx.relay.StreamTurn(context.Background(), &TurnRequest{
		UserID: "u1", Tier: domain.TierFree, Message: "   ",
	}, func(TurnEvent) error { emitted = true; return nil })

	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	assert.False(t, emitted)
	assert.Empty(t, fx.convs.saved)
}

func TestStreamTurnCreatesConversation(t *testing.T) {
	long := strings.Repeat("x", 80)
	fx := newRelayFixture(t, deltas("ok"))

	res, err := fx.relay.StreamTurn(context.Background(), &TurnRequest{
		UserID: "u1", Tier: domain.TierFree, Message: long,
	}, func(TurnEvent) error { return nil })

	require.NoError(t, err)
	require.Len(t, fx.convs.saved, 1)
	conv := fx.convs.saved[0]
	assert.Equal(t, res.ConversationID, conv.ID)
	assert.Equal(t, "u1", conv.UserID)
	assert.Equal(t, strings.Repeat("x", 50), conv.Title)
}

func TestStreamTurnForeignConversation(t *testing.T) {
	fx := newRelayFixture(t, deltas("ok"))
	fx.convs.byID["c1"] = &domain.Conversation{ID: "c1", UserID: "someone-else"}

	_, err := fx.relay.StreamTurn(context.Background(), &TurnRequest{
		UserID: "u1", Tier: domain.TierFree, ConversationID: "c1", Message: "hi",
	}, func(TurnEvent) error { return nil })

	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
}

func TestStreamTurnHistoryOrder(t *testing.T) {
	fx := newRelayFixture(t, deltas("ok"))
	fx.convs.byID["c1"] = &domain.Conversation{ID: "c1", UserID: "u1"}
	// Repository order: newest first.
	fx.msgs.history = []*domain.Message{
		{Role: domain.RoleAssistant, Content: "third"},
		{Role: domain.RoleUser, Content: "second"},
		{Role: domain.RoleUser, Content: "first"},
	}

	_, err := fx.relay.StreamTurn(context.Background(), &TurnRequest{
		UserID: "u1", Tier: domain.TierEngineer, ConversationID: "c1", Message: "now",
	}, func(TurnEvent) error { return nil })

	require.NoError(t, err)
	req := fx.inference.lastReq
	require.NotNil(t, req)
	require.Len(t, req.Messages, 5)
	assert.Equal(t, domain.RoleSystem, req.Messages[0].Role)
	assert.Equal(t, "first", req.Messages[1].Content)
	assert.Equal(t, "second", req.Messages[2].Content)
	assert.Equal(t, "third", req.Messages[3].Content)
	assert.Equal(t, "now", req.Messages[4].Content)
}

// A history lookup failure degrades to an empty context, it never aborts the turn.
func TestStreamTurnLenientHistoryFailure(t *testing.T) {
	fx := newRelayFixture(t, deltas("ok"))
	fx.convs.byID["c1"] = &domain.Conversation{ID: "c1", UserID: "u1"}
	fx.msgs.findErr = errors.New("db flaked")

	_, err := fx.relay.StreamTurn(context.Background(), &TurnRequest{
		UserID: "u1", Tier: domain.TierFree, ConversationID: "c1", Message: "hi",
	}, func(TurnEvent) error { return nil })

	require.NoError(t, err)
	require.Len(t, fx.inference.lastReq.Messages, 2) // system + user only
}

func TestStreamTurnUpstreamErrorMidStream(t *testing.T) {
	fx := newRelayFixture(t, []domain.GeneratedToken{
		{Content: "partial "},
		{Err: domain.ErrUpstreamModel, IsLast: true},
	})

	var delivered []string
	_, err := fx.relay.StreamTurn(context.Background(), &TurnRequest{
		UserID: "u1", Tier: domain.TierFree, Message: "hi",
	}, func(ev TurnEvent) error {
		delivered = append(delivered, ev.Delta)
		return nil
	})

	assert.ErrorIs(t, err, domain.ErrUpstreamModel)
	assert.Equal(t, []string{"partial "}, delivered)
	// No assistant message, usage counter untouched: step 7 never ran.
	assert.Empty(t, fx.sink.byRole(domain.RoleAssistant))
	assert.Empty(t, fx.users.increments)
	assert.Empty(t, fx.sink.usage)
}

// A failed user-message write is logged and swallowed; the stream and the
// assistant persistence proceed.
func TestStreamTurnUserSaveFailureIsNonFatal(t *testing.T) {
	fx := newRelayFixture(t, deltas("fine"))
	fx.sink.userSaveErr = errors.New("mq unavailable")

	res, err := fx.relay.StreamTurn(context.Background(), &TurnRequest{
		UserID: "u1", Tier: domain.TierFree, Message: "hi",
	}, func(TurnEvent) error { return nil })

	require.NoError(t, err)
	assert.Equal(t, "fine", res.FullText)
	require.Len(t, fx.sink.byRole(domain.RoleAssistant), 1)
}

func TestStreamTurnPersistsUserMessage(t *testing.T) {
	fx := newRelayFixture(t, deltas("ok"))

	res, err := fx.relay.StreamTurn(context.Background(), &TurnRequest{
		UserID: "u1", Tier: domain.TierFree, Message: "remember me",
	}, func(TurnEvent) error { return nil })
	require.NoError(t, err)

	// The user write runs off the streaming path.
	assert.Eventually(t, func() bool {
		msgs := fx.sink.byRole(domain.RoleUser)
		return len(msgs) == 1 && msgs[0].Content == "remember me" &&
			msgs[0].ConversationID == res.ConversationID
	}, time.Second, 10*time.Millisecond)
}

func TestStreamTurnUsageAccounting(t *testing.T) {
	fx := newRelayFixture(t, deltas("ok"))

	_, err := fx.relay.StreamTurn(context.Background(), &TurnRequest{
		UserID: "u1", Tier: domain.TierPro, Message: "hi", ModelName: "default",
	}, func(TurnEvent) error { return nil })

	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, fx.users.increments)
	require.Len(t, fx.sink.usage, 1)
	entry := fx.sink.usage[0]
	assert.Equal(t, "chat_message", entry.ActionType)
	assert.Equal(t, llm.ModelLlamaScout, entry.Model)
	assert.Equal(t, llm.ProviderGroq, entry.Provider)
	assert.Equal(t, domain.TierPro, entry.Tier)
}

func TestStreamTurnPublishesCodeProgress(t *testing.T) {
	fx := newRelayFixture(t, deltas(
		"Here you go:\n```js\n",
		"console.",
		"log(1)\n",
		"```",
		"\ndone",
	))

	_, err := fx.relay.StreamTurn(context.Background(), &TurnRequest{
		UserID: "u1", Tier: domain.TierFree, Message: "write js",
	}, func(TurnEvent) error { return nil })
	require.NoError(t, err)

	events := fx.publisher.events
	require.NotEmpty(t, events)

	final := events[len(events)-1]
	assert.True(t, final.Complete)
	assert.Equal(t, "js", final.Language)
	assert.Equal(t, "console.log(1)\n", final.Code)

	// Everything before the final event was an incomplete snapshot, and
	// snapshots only appear once the closing fence exists in the buffer.
	for _, ev := range events[:len(events)-1] {
		assert.False(t, ev.Complete)
		assert.Equal(t, domain.EventKindProgress, ev.Kind)
	}
}
