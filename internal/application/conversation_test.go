package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tattzy25/real-code-homie/internal/domain"
)

type fakeUsageLogs struct {
	entries []*domain.UsageLog
}

func (f *fakeUsageLogs) Save(ctx context.Context, entry *domain.UsageLog) error {
	f.entries = append(f.entries, entry)
	return nil
}
func (f *fakeUsageLogs) FindByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.UsageLog, error) {
	return f.entries, nil
}

func newConvFixture() (*ConversationService, *fakeConvRepo, *fakeMsgRepo) {
	convs := &fakeConvRepo{byID: map[string]*domain.Conversation{}}
	msgs := &fakeMsgRepo{}
	return NewConversationService(convs, msgs, &fakeUsageLogs{}), convs, msgs
}

func TestConversationCreateDefaultTitle(t *testing.T) {
	svc, convs, _ := newConvFixture()

	conv, err := svc.Create(context.Background(), "u1", "")
	require.NoError(t, err)
	assert.Equal(t, "New Chat", conv.Title)
	assert.Equal(t, "u1", conv.UserID)
	assert.NotEmpty(t, conv.ID)
	require.Len(t, convs.saved, 1)
}

func TestConversationMessagesOwnership(t *testing.T) {
	svc, convs, _ := newConvFixture()
	convs.byID["c1"] = &domain.Conversation{ID: "c1", UserID: "owner"}

	_, err := svc.Messages(context.Background(), "intruder", "c1", 50, 0)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	_, err = svc.Messages(context.Background(), "owner", "missing", 50, 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConversationMessagesOldestFirst(t *testing.T) {
	svc, convs, msgs := newConvFixture()
	convs.byID["c1"] = &domain.Conversation{ID: "c1", UserID: "u1"}
	now := time.Now()
	msgs.history = []*domain.Message{
		{ID: "m3", CreatedAt: now},
		{ID: "m2", CreatedAt: now.Add(-time.Minute)},
		{ID: "m1", CreatedAt: now.Add(-2 * time.Minute)},
	}

	out, err := svc.Messages(context.Background(), "u1", "c1", 50, 0)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "m1", out[0].ID)
	assert.Equal(t, "m3", out[2].ID)
}

func TestConversationOwns(t *testing.T) {
	svc, convs, _ := newConvFixture()
	convs.byID["c1"] = &domain.Conversation{ID: "c1", UserID: "u1"}

	ok, err := svc.Owns(context.Background(), "u1", "c1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Owns(context.Background(), "u2", "c1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.Owns(context.Background(), "u1", "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConversationDelete(t *testing.T) {
	svc, convs, msgs := newConvFixture()
	convs.byID["c1"] = &domain.Conversation{ID: "c1", UserID: "u1"}

	require.NoError(t, svc.Delete(context.Background(), "u1", "c1"))
	assert.Equal(t, []string{"c1"}, msgs.purged)
	assert.Equal(t, []string{"c1"}, convs.deleted)

	// Deleting a conversation that is already gone is not an error.
	require.NoError(t, svc.Delete(context.Background(), "u1", "c1"))
	assert.Len(t, convs.deleted, 1)
}

func TestConversationDeleteForeign(t *testing.T) {
	svc, convs, msgs := newConvFixture()
	convs.byID["c1"] = &domain.Conversation{ID: "c1", UserID: "owner"}

	err := svc.Delete(context.Background(), "intruder", "c1")
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
	assert.Empty(t, msgs.purged)
}
