package chat

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtline/court-reservation/internal/notify"
	"github.com/courtline/court-reservation/internal/pkg/clock"
)

const (
	alice = "11111111-1111-4111-8111-111111111111"
	bob   = "22222222-2222-4222-8222-222222222222"
	carol = "33333333-3333-4333-8333-333333333333"
)

type memChat struct {
	low, high string
	last      *LastMessage
	unread    map[string]int
	readAt    map[string]time.Time
	created   time.Time
}

type memRepo struct {
	mu       sync.Mutex
	users    map[string]Participant
	chats    map[string]*memChat
	messages []*Message
	seq      int
	now      time.Time
}

func newMemRepo() *memRepo {
	name := func(s string) *string { return &s }
	return &memRepo{
		users: map[string]Participant{
			alice: {UserID: alice, FullName: name("Alice Ace"), Email: "alice@example.com"},
			bob:   {UserID: bob, FullName: name("Bob Baseline"), Email: "bob@example.com"},
			carol: {UserID: carol, Email: "carol.coach@example.com"},
		},
		chats: map[string]*memChat{},
		now:   time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (m *memRepo) tick() time.Time {
	m.now = m.now.Add(time.Minute)
	return m.now
}

func (m *memRepo) FindOrCreate(_ context.Context, low, high string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[low]; !ok {
		return "", false, ErrUserNotFound
	}
	if _, ok := m.users[high]; !ok {
		return "", false, ErrUserNotFound
	}
	for id, c := range m.chats {
		if c.low == low && c.high == high {
			return id, false, nil
		}
	}
	m.seq++
	id := fmt.Sprintf("chat-%d", m.seq)
	m.chats[id] = &memChat{
		low: low, high: high,
		unread:  map[string]int{low: 0, high: 0},
		readAt:  map[string]time.Time{},
		created: m.tick(),
	}
	return id, true, nil
}

func (m *memRepo) view(id, viewerID string, c *memChat) *Chat {
	out := &Chat{
		ID:           id,
		Participants: []Participant{m.users[c.low], m.users[c.high]},
		UnreadCount:  c.unread[viewerID],
		CreatedAt:    c.created,
		UpdatedAt:    c.created,
	}
	if c.last != nil {
		last := *c.last
		out.LastMessage = &last
		out.UpdatedAt = last.SentAt
	}
	return out
}

func (m *memRepo) GetByID(_ context.Context, id, viewerID string) (*Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.chats[id]
	if !ok {
		return nil, ErrNotFound
	}
	return m.view(id, viewerID, c), nil
}

func (m *memRepo) ListForUser(_ context.Context, userID string) ([]*Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Chat
	for id, c := range m.chats {
		if c.low == userID || c.high == userID {
			out = append(out, m.view(id, userID, c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m *memRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.chats[id]; !ok {
		return ErrNotFound
	}
	delete(m.chats, id)
	kept := m.messages[:0]
	for _, msg := range m.messages {
		if msg.ChatID != id {
			kept = append(kept, msg)
		}
	}
	m.messages = kept
	return nil
}

func (m *memRepo) ListMessages(_ context.Context, chatID string, limit, offset int) ([]*Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []*Message
	for i := len(m.messages) - 1; i >= 0; i-- {
		if m.messages[i].ChatID == chatID {
			cp := *m.messages[i]
			all = append(all, &cp)
		}
	}
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *memRepo) CreateMessage(_ context.Context, msg *Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.chats[msg.ChatID]
	if !ok {
		return ErrNotFound
	}
	m.seq++
	msg.ID = fmt.Sprintf("msg-%d", m.seq)
	msg.CreatedAt = m.tick()
	cp := *msg
	m.messages = append(m.messages, &cp)

	c.last = &LastMessage{Content: msg.Content, SenderID: msg.SenderID, SentAt: msg.CreatedAt}
	for _, u := range []string{c.low, c.high} {
		if u != msg.SenderID {
			c.unread[u]++
		}
	}
	return nil
}

func (m *memRepo) MarkRead(_ context.Context, chatID, userID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.chats[chatID]; ok {
		c.unread[userID] = 0
		c.readAt[userID] = at
	}
	return nil
}

func (m *memRepo) SearchUsers(_ context.Context, excludeID, query string, limit int) ([]Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Participant
	q := strings.ToLower(query)
	for id, p := range m.users {
		if id == excludeID {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(p.DisplayName()), q) &&
			!strings.Contains(strings.ToLower(p.Email), q) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type captureDispatcher struct {
	mu     sync.Mutex
	events []notify.Event
}

func (c *captureDispatcher) Dispatch(_ context.Context, e notify.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
	return nil
}

type chatFixture struct {
	svc      Service
	repo     *memRepo
	notifier *captureDispatcher
	now      time.Time
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	repo := newMemRepo()
	d := &captureDispatcher{}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &chatFixture{
		svc:      NewService(repo, d, clock.NewFixed(now)),
		repo:     repo,
		notifier: d,
		now:      now,
	}
}

func (f *chatFixture) open(t *testing.T, a, b string) *Chat {
	t.Helper()
	c, err := f.svc.GetOrCreate(context.Background(), a, b)
	require.NoError(t, err)
	return c
}

func TestGetOrCreate_OneChatPerPair(t *testing.T) {
	f := newChatFixture(t)

	first := f.open(t, alice, bob)
	again := f.open(t, bob, alice)
	upper := f.open(t, alice, strings.ToUpper(bob))

	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, first.ID, upper.ID)
	assert.Len(t, f.repo.chats, 1)
	assert.True(t, first.HasParticipant(alice))
	assert.True(t, first.HasParticipant(bob))
	assert.Len(t, first.Others(alice), 1)
}

func TestGetOrCreate_Validation(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		other string
		want  error
	}{
		{"missing other user", "  ", ErrOtherUserRequired},
		{"self", strings.ToUpper(alice), ErrSelfChat},
		{"malformed id", "bob", ErrUserNotFound},
		{"unknown user", "44444444-4444-4444-8444-444444444444", ErrUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.GetOrCreate(ctx, alice, tt.other)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSend_TracksUnreadAndNotifiesRecipient(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	c := f.open(t, alice, bob)

	long := strings.Repeat("é", 80)
	m, err := f.svc.Send(ctx, SendRequest{ChatID: c.ID, SenderID: alice, Content: "  " + long + "  "})
	require.NoError(t, err)
	assert.Equal(t, KindText, m.Kind)
	assert.Equal(t, long, m.Content)
	require.NotNil(t, m.Sender)
	assert.Equal(t, "Alice Ace", m.Sender.DisplayName())

	forBob, err := f.svc.Get(ctx, c.ID, bob)
	require.NoError(t, err)
	assert.Equal(t, 1, forBob.UnreadCount)
	require.NotNil(t, forBob.LastMessage)
	assert.Equal(t, alice, forBob.LastMessage.SenderID)

	forAlice, err := f.svc.Get(ctx, c.ID, alice)
	require.NoError(t, err)
	assert.Zero(t, forAlice.UnreadCount)

	require.Len(t, f.notifier.events, 1)
	e := f.notifier.events[0]
	assert.Equal(t, notify.EventChatMessage, e.Type)
	assert.Equal(t, "bob@example.com", e.Recipient)
	payload, ok := e.Payload.(notify.ChatMessagePayload)
	require.True(t, ok)
	assert.Equal(t, "Alice Ace", payload.SenderName)
	assert.Equal(t, strings.Repeat("é", 50), payload.Preview)
}

func TestSend_Validation(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	c := f.open(t, alice, bob)

	tests := []struct {
		name string
		req  SendRequest
		want error
	}{
		{"blank content", SendRequest{ChatID: c.ID, SenderID: alice, Content: "   "}, ErrContentRequired},
		{"too long", SendRequest{ChatID: c.ID, SenderID: alice, Content: strings.Repeat("x", 2001)}, ErrContentTooLong},
		{"unknown kind", SendRequest{ChatID: c.ID, SenderID: alice, Content: "hi", Kind: "video"}, ErrInvalidKind},
		{"outsider", SendRequest{ChatID: c.ID, SenderID: carol, Content: "hi"}, ErrNotParticipant},
		{"missing chat", SendRequest{ChatID: "chat-404", SenderID: alice, Content: "hi"}, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Send(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, f.repo.messages)
	assert.Empty(t, f.notifier.events)
}

func TestMessages_PagesBackFromNewest(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	c := f.open(t, alice, bob)

	for i := 1; i <= 5; i++ {
		sender := alice
		if i%2 == 0 {
			sender = bob
		}
		_, err := f.svc.Send(ctx, SendRequest{ChatID: c.ID, SenderID: sender, Content: fmt.Sprintf("m%d", i)})
		require.NoError(t, err)
	}

	contents := func(list []*Message) []string {
		out := make([]string, len(list))
		for i, m := range list {
			out[i] = m.Content
		}
		return out
	}

	latest, err := f.svc.Messages(ctx, c.ID, bob, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"m4", "m5"}, contents(latest))

	older, err := f.svc.Messages(ctx, c.ID, bob, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"m2", "m3"}, contents(older))

	all, err := f.svc.Messages(ctx, c.ID, alice, 0, -3)
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2", "m3", "m4", "m5"}, contents(all))

	_, err = f.svc.Messages(ctx, c.ID, carol, 10, 0)
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestMarkRead_ResetsUnread(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	c := f.open(t, alice, bob)

	for i := 0; i < 3; i++ {
		_, err := f.svc.Send(ctx, SendRequest{ChatID: c.ID, SenderID: alice, Content: "ping"})
		require.NoError(t, err)
	}

	assert.ErrorIs(t, f.svc.MarkRead(ctx, c.ID, carol), ErrNotParticipant)
	require.NoError(t, f.svc.MarkRead(ctx, c.ID, bob))

	forBob, err := f.svc.Get(ctx, c.ID, bob)
	require.NoError(t, err)
	assert.Zero(t, forBob.UnreadCount)
	assert.Equal(t, f.now, f.repo.chats[c.ID].readAt[bob])
}

func TestListForUser_OnlyOwnChatsByActivity(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	withBob := f.open(t, alice, bob)
	withCarol := f.open(t, carol, alice)
	f.open(t, bob, carol)

	_, err := f.svc.Send(ctx, SendRequest{ChatID: withBob.ID, SenderID: bob, Content: "latest"})
	require.NoError(t, err)

	chats, err := f.svc.ListForUser(ctx, alice)
	require.NoError(t, err)
	require.Len(t, chats, 2)
	assert.Equal(t, withBob.ID, chats[0].ID)
	assert.Equal(t, withCarol.ID, chats[1].ID)
	assert.Equal(t, 1, chats[0].UnreadCount)
}

func TestUsers(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	_, err := f.svc.Users(ctx, alice, " c ")
	assert.ErrorIs(t, err, ErrQueryTooShort)

	everyone, err := f.svc.Users(ctx, alice, "")
	require.NoError(t, err)
	assert.Len(t, everyone, 2)
	for _, p := range everyone {
		assert.NotEqual(t, alice, p.UserID)
	}

	coaches, err := f.svc.Users(ctx, alice, "COACH")
	require.NoError(t, err)
	require.Len(t, coaches, 1)
	assert.Equal(t, carol, coaches[0].UserID)
	assert.Equal(t, "carol.coach@example.com", coaches[0].DisplayName())
}

func TestDelete_RemovesHistoryForBoth(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	c := f.open(t, alice, bob)
	_, err := f.svc.Send(ctx, SendRequest{ChatID: c.ID, SenderID: alice, Content: "bye"})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Delete(ctx, c.ID, carol), ErrNotParticipant)
	require.NoError(t, f.svc.Delete(ctx, c.ID, bob))

	_, err = f.svc.Get(ctx, c.ID, alice)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, f.repo.messages)

	// Reopening starts a fresh chat.
	fresh := f.open(t, alice, bob)
	assert.NotEqual(t, c.ID, fresh.ID)
}
