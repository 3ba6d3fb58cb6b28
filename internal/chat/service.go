package chat

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/courtline/court-reservation/internal/notify"
	"github.com/courtline/court-reservation/internal/pkg/clock"
	"github.com/courtline/court-reservation/internal/pkg/metrics"
)

type SendRequest struct {
	ChatID   string
	SenderID string
	Content  string
	// Kind defaults to text.
	Kind Kind
}

type Service interface {
	GetOrCreate(ctx context.Context, userID, otherUserID string) (*Chat, error)
	ListForUser(ctx context.Context, userID string) ([]*Chat, error)
	Get(ctx context.Context, chatID, userID string) (*Chat, error)
	// Messages returns one page of history in chronological order. offset
	// counts back from the newest message.
	Messages(ctx context.Context, chatID, userID string, limit, offset int) ([]*Message, error)
	Send(ctx context.Context, req SendRequest) (*Message, error)
	MarkRead(ctx context.Context, chatID, userID string) error
	// Users lists people userID can start a chat with, filtered by query
	// against name and email when it is set.
	Users(ctx context.Context, userID, query string) ([]Participant, error)
	Delete(ctx context.Context, chatID, userID string) error
}

type service struct {
	repo     Repository
	notifier notify.Dispatcher
	clock    clock.Clock
}

func NewService(repo Repository, notifier notify.Dispatcher, clk clock.Clock) Service {
	if notifier == nil {
		notifier = notify.LogDispatcher{}
	}
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &service{repo: repo, notifier: notifier, clock: clk}
}

func (s *service) GetOrCreate(ctx context.Context, userID, otherUserID string) (*Chat, error) {
	otherUserID = strings.TrimSpace(otherUserID)
	if otherUserID == "" {
		return nil, ErrOtherUserRequired
	}
	self, err := canonicalID(userID)
	if err != nil {
		return nil, err
	}
	other, err := canonicalID(otherUserID)
	if err != nil {
		return nil, err
	}
	if self == other {
		return nil, ErrSelfChat
	}

	low, high := pair(self, other)
	id, created, err := s.repo.FindOrCreate(ctx, low, high)
	if err != nil {
		return nil, err
	}
	if created {
		log.Ctx(ctx).Info().Str("chat_id", id).Msg("chat created")
	}
	return s.repo.GetByID(ctx, id, self)
}

func (s *service) ListForUser(ctx context.Context, userID string) ([]*Chat, error) {
	return s.repo.ListForUser(ctx, userID)
}

func (s *service) Get(ctx context.Context, chatID, userID string) (*Chat, error) {
	c, err := s.repo.GetByID(ctx, chatID, userID)
	if err != nil {
		return nil, err
	}
	if !c.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}
	return c, nil
}

func (s *service) Messages(ctx context.Context, chatID, userID string, limit, offset int) ([]*Message, error) {
	if _, err := s.Get(ctx, chatID, userID); err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = DefaultMessageLimit
	}
	if limit > MaxMessageLimit {
		limit = MaxMessageLimit
	}
	if offset < 0 {
		offset = 0
	}

	list, err := s.repo.ListMessages(ctx, chatID, limit, offset)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
		list[i], list[j] = list[j], list[i]
	}
	return list, nil
}

func (s *service) Send(ctx context.Context, req SendRequest) (*Message, error) {
	m := &Message{
		ChatID:   req.ChatID,
		SenderID: req.SenderID,
		Content:  strings.TrimSpace(req.Content),
		Kind:     req.Kind,
	}
	if m.Kind == "" {
		m.Kind = KindText
	}
	switch {
	case m.Content == "":
		return nil, ErrContentRequired
	case utf8.RuneCountInString(m.Content) > maxContentLength:
		return nil, ErrContentTooLong
	case !m.Kind.Valid():
		return nil, ErrInvalidKind
	}

	c, err := s.Get(ctx, req.ChatID, req.SenderID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateMessage(ctx, m); err != nil {
		return nil, err
	}
	metrics.ChatMessagesSent.Inc()

	for _, p := range c.Participants {
		if p.UserID == m.SenderID {
			sender := p
			m.Sender = &sender
		}
	}
	s.notifyRecipients(ctx, c, m)
	return m, nil
}

func (s *service) MarkRead(ctx context.Context, chatID, userID string) error {
	if _, err := s.Get(ctx, chatID, userID); err != nil {
		return err
	}
	return s.repo.MarkRead(ctx, chatID, userID, s.clock.Now())
}

func (s *service) Users(ctx context.Context, userID, query string) ([]Participant, error) {
	query = strings.TrimSpace(query)
	limit := directoryLimit
	if query != "" {
		if utf8.RuneCountInString(query) < minQueryLength {
			return nil, ErrQueryTooShort
		}
		limit = searchLimit
	}
	return s.repo.SearchUsers(ctx, userID, query, limit)
}

// Delete removes the chat and its history for both participants.
func (s *service) Delete(ctx context.Context, chatID, userID string) error {
	if _, err := s.Get(ctx, chatID, userID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, chatID); err != nil {
		return err
	}
	log.Ctx(ctx).Info().Str("chat_id", chatID).Str("actor_id", userID).Msg("chat deleted")
	return nil
}

func (s *service) notifyRecipients(ctx context.Context, c *Chat, m *Message) {
	senderName := ""
	if m.Sender != nil {
		senderName = m.Sender.DisplayName()
	}
	for _, p := range c.Others(m.SenderID) {
		_ = s.notifier.Dispatch(ctx, notify.Event{
			Type:       notify.EventChatMessage,
			Recipient:  p.Email,
			OccurredAt: m.CreatedAt,
			Payload: notify.ChatMessagePayload{
				ChatID:     c.ID,
				MessageID:  m.ID,
				SenderID:   m.SenderID,
				SenderName: senderName,
				Preview:    preview(m.Content),
			},
		})
	}
}

func preview(content string) string {
	if utf8.RuneCountInString(content) <= previewLength {
		return content
	}
	return string([]rune(content)[:previewLength])
}

func canonicalID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", ErrUserNotFound
	}
	return parsed.String(), nil
}
