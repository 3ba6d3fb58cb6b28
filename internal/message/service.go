package message

import (
	"context"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/courtline/court-reservation/internal/notify"
)

const (
	maxNameLength = 100
	maxBodyLength = 1000
)

type CreateRequest struct {
	Name  string
	Email string
	Body  string
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Message, error)
	List(ctx context.Context, filter Filter) ([]*Message, int, error)
}

type service struct {
	repo       Repository
	notifier   notify.Dispatcher
	adminEmail string
}

// NewService stores messages and forwards each one to adminEmail through notifier.
func NewService(repo Repository, notifier notify.Dispatcher, adminEmail string) Service {
	if notifier == nil {
		notifier = notify.LogDispatcher{}
	}
	return &service{repo: repo, notifier: notifier, adminEmail: adminEmail}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Message, error) {
	m := &Message{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.TrimSpace(req.Email),
		Body:  strings.TrimSpace(req.Body),
	}
	if err := validate(m); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	log.Ctx(ctx).Info().Str("message_id", m.ID).Msg("contact message received")

	_ = s.notifier.Dispatch(ctx, notify.Event{
		Type:      notify.EventMessageReceived,
		Recipient: s.adminEmail,
		Payload: notify.MessagePayload{
			MessageID: m.ID,
			Name:      m.Name,
			Email:     m.Email,
			Body:      m.Body,
		},
	})
	return m, nil
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Message, int, error) {
	filter.Keyword = strings.TrimSpace(filter.Keyword)
	return s.repo.List(ctx, filter)
}

func validate(m *Message) error {
	switch {
	case m.Name == "":
		return ErrNameRequired
	case utf8.RuneCountInString(m.Name) > maxNameLength:
		return ErrNameTooLong
	case !validEmail(m.Email):
		return ErrInvalidEmail
	case m.Body == "":
		return ErrBodyRequired
	case utf8.RuneCountInString(m.Body) > maxBodyLength:
		return ErrBodyTooLong
	}
	return nil
}

// validEmail accepts a bare address only, not "Name <addr>".
func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
