package chat

import (
	"net/http"
	"time"

	"github.com/courtline/court-reservation/internal/pkg/apperror"
)

var (
	ErrNotFound          = apperror.New(http.StatusNotFound, "chat not found")
	ErrUserNotFound      = apperror.New(http.StatusNotFound, "user not found")
	ErrNotParticipant    = apperror.New(http.StatusForbidden, "not a participant in this chat")
	ErrOtherUserRequired = apperror.New(http.StatusBadRequest, "other_user_id is required")
	ErrSelfChat          = apperror.New(http.StatusBadRequest, "cannot create chat with yourself")
	ErrContentRequired   = apperror.New(http.StatusBadRequest, "message content is required")
	ErrContentTooLong    = apperror.New(http.StatusBadRequest, "message content must be at most 2000 characters")
	ErrInvalidKind       = apperror.New(http.StatusBadRequest, "type must be one of text, image, file")
	ErrQueryTooShort     = apperror.New(http.StatusBadRequest, "search query must be at least 2 characters")
)

type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindFile  Kind = "file"
)

func (k Kind) Valid() bool {
	switch k {
	case KindText, KindImage, KindFile:
		return true
	}
	return false
}

const (
	maxContentLength = 2000
	minQueryLength   = 2

	DefaultMessageLimit = 50
	MaxMessageLimit     = 100
	searchLimit         = 10
	directoryLimit      = 100
	previewLength       = 50
)

// Participant is the public part of a user profile shown in chats.
type Participant struct {
	UserID   string
	FullName *string
	Email    string
}

// DisplayName returns the full name when set, otherwise the email.
func (p Participant) DisplayName() string {
	if p.FullName != nil && *p.FullName != "" {
		return *p.FullName
	}
	return p.Email
}

type LastMessage struct {
	Content  string
	SenderID string
	SentAt   time.Time
}

// Chat is a conversation between exactly two users. UnreadCount is the
// viewer's count.
type Chat struct {
	ID           string
	Participants []Participant
	LastMessage  *LastMessage
	UnreadCount  int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (c *Chat) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// Others returns every participant except userID.
func (c *Chat) Others(userID string) []Participant {
	out := make([]Participant, 0, len(c.Participants))
	for _, p := range c.Participants {
		if p.UserID != userID {
			out = append(out, p)
		}
	}
	return out
}

type Message struct {
	ID        string
	ChatID    string
	SenderID  string
	Content   string
	Kind      Kind
	CreatedAt time.Time
	Sender    *Participant
}

// pair orders two user ids so one conversation maps to one row.
func pair(a, b string) (low, high string) {
	if a < b {
		return a, b
	}
	return b, a
}
