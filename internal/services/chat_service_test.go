package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"lens-backend/internal/models"
	"lens-backend/internal/store"
)

// fakeNotifier records every emitted payload per user.
type fakeNotifier struct {
	emitted map[string][]interface{}
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{emitted: make(map[string][]interface{})}
}

func (f *fakeNotifier) EmitToUser(userID string, payload interface{}) {
	f.emitted[userID] = append(f.emitted[userID], payload)
}

func newTestChatService(t *testing.T) (*ChatService, *UserService, *fakeNotifier) {
	t.Helper()
	st := newTestStore(t)
	notify := newFakeNotifier()
	return NewChatService(st, notify), NewUserService(st), notify
}

func TestSendPersistsAndNotifies(t *testing.T) {
	chat, users, notify := newTestChatService(t)
	ctx := context.Background()

	a := registerTestUser(t, users, "A", "a@x.com")
	b := registerTestUser(t, users, "B", "b@x.com")

	msg, err := chat.Send(ctx, a.ID, b.ID, "  hello  ")
	require.NoError(t, err)
	require.Equal(t, "hello", msg.Content, "content is trimmed before storage")
	require.False(t, msg.Read, "new messages start unread")

	require.Len(t, notify.emitted[b.ID], 1)
	ws, ok := notify.emitted[b.ID][0].(models.WSMessage)
	require.True(t, ok)
	require.Equal(t, "receive_message", ws.Event)
	require.Equal(t, "hello", ws.Content)
	require.Equal(t, a.ID, ws.SenderID)
	require.Equal(t, msg.ClockTime(), ws.Timestamp)

	require.Empty(t, notify.emitted[a.ID], "the sender gets no push")

	n, err := chat.UnreadCount(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestSendRejections(t *testing.T) {
	chat, users, notify := newTestChatService(t)
	ctx := context.Background()

	a := registerTestUser(t, users, "A", "a@x.com")
	b := registerTestUser(t, users, "B", "b@x.com")

	_, err := chat.Send(ctx, a.ID, a.ID, "hi me")
	require.ErrorIs(t, err, ErrSelfMessage)

	_, err = chat.Send(ctx, a.ID, b.ID, "   ")
	require.ErrorIs(t, err, ErrEmptyMessage)

	_, err = chat.Send(ctx, a.ID, "missing", "hi")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.Empty(t, notify.emitted, "rejected sends must not push anything")
}

func TestConversationMarksIncomingRead(t *testing.T) {
	chat, users, _ := newTestChatService(t)
	ctx := context.Background()

	a := registerTestUser(t, users, "A", "a@x.com")
	b := registerTestUser(t, users, "B", "b@x.com")

	_, err := chat.Send(ctx, b.ID, a.ID, "one")
	require.NoError(t, err)
	_, err = chat.Send(ctx, b.ID, a.ID, "two")
	require.NoError(t, err)
	_, err = chat.Send(ctx, a.ID, b.ID, "reply")
	require.NoError(t, err)

	page, err := chat.Conversation(ctx, a.ID, b.ID)
	require.NoError(t, err)
	require.Equal(t, b.ID, page.OtherUser.ID)
	require.Len(t, page.Messages, 3)

	n, err := chat.UnreadCount(ctx, a.ID)
	require.NoError(t, err)
	require.Zero(t, n, "opening the chat clears the unread count")

	// B still has A's unread reply.
	n, err = chat.UnreadCount(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestConversationUnknownCounterpart(t *testing.T) {
	chat, users, _ := newTestChatService(t)

	a := registerTestUser(t, users, "A", "a@x.com")
	_, err := chat.Conversation(context.Background(), a.ID, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestRecentSinceReturnsOnlyNewerAndMarksRead(t *testing.T) {
	st := newTestStore(t)
	chat := NewChatService(st, nil)
	users := NewUserService(st)
	ctx := context.Background()

	a := registerTestUser(t, users, "A", "a@x.com")
	b := registerTestUser(t, users, "B", "b@x.com")

	first := &models.Message{SenderID: b.ID, RecipientID: a.ID, Content: "first", CreatedAt: 100}
	require.NoError(t, st.CreateMessage(ctx, first))
	require.NoError(t, st.CreateMessage(ctx, &models.Message{SenderID: b.ID, RecipientID: a.ID, Content: "second", CreatedAt: 101}))

	payloads, err := chat.RecentSince(ctx, a.ID, b.ID, first.CreatedAt)
	require.NoError(t, err)
	require.Len(t, payloads, 1)
	require.Equal(t, "second", payloads[0].Content)
	require.Equal(t, b.ID, payloads[0].SenderID)

	// Polling marked the fetched message read; the first one is untouched.
	n, err := chat.UnreadCount(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestRecentSinceZeroCutoffReturnsEverything(t *testing.T) {
	chat, users, _ := newTestChatService(t)
	ctx := context.Background()

	a := registerTestUser(t, users, "A", "a@x.com")
	b := registerTestUser(t, users, "B", "b@x.com")

	_, err := chat.Send(ctx, b.ID, a.ID, "hello")
	require.NoError(t, err)

	payloads, err := chat.RecentSince(ctx, a.ID, b.ID, 0)
	require.NoError(t, err)
	require.Len(t, payloads, 1)

	n, err := chat.UnreadCount(ctx, a.ID)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestInboxGroupsByCounterpart(t *testing.T) {
	chat, users, _ := newTestChatService(t)
	ctx := context.Background()

	a := registerTestUser(t, users, "A", "a@x.com")
	b := registerTestUser(t, users, "B", "b@x.com")
	c := registerTestUser(t, users, "C", "c@x.com")

	_, err := chat.Send(ctx, b.ID, a.ID, "from b, one")
	require.NoError(t, err)
	_, err = chat.Send(ctx, b.ID, a.ID, "from b, two")
	require.NoError(t, err)
	_, err = chat.Send(ctx, a.ID, c.ID, "to c")
	require.NoError(t, err)

	conversations, err := chat.Inbox(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, conversations, 2)

	byUser := make(map[string]*models.Conversation)
	for _, conv := range conversations {
		byUser[conv.User.ID] = conv
	}
	require.Equal(t, 2, byUser[b.ID].UnreadCount)
	require.Equal(t, "from b, two", byUser[b.ID].LastMessage.Content)
	require.Zero(t, byUser[c.ID].UnreadCount, "own outgoing messages are never unread")
	require.Equal(t, "to c", byUser[c.ID].LastMessage.Content)
}

func TestInboxEmptyForNewUser(t *testing.T) {
	chat, users, _ := newTestChatService(t)

	a := registerTestUser(t, users, "A", "a@x.com")
	conversations, err := chat.Inbox(context.Background(), a.ID)
	require.NoError(t, err)
	require.Empty(t, conversations)
}
