package http

import (
	"time"

	"github.com/courtline/court-reservation/internal/chat"
)

type CreateChatRequest struct {
	OtherUserID string `json:"other_user_id" binding:"required"`
}

type SendMessageRequest struct {
	Content string `json:"content" binding:"required,max=2000"`
	Type    string `json:"type" binding:"omitempty,oneof=text image file"`
}

type MessagesQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
	Skip  int `form:"skip" binding:"omitempty,min=0"`
}

type SearchQuery struct {
	Q string `form:"q"`
}

type ParticipantResponse struct {
	UserID   string  `json:"user_id"`
	FullName *string `json:"full_name"`
	Email    string  `json:"email"`
}

type LastMessageResponse struct {
	Content  string    `json:"content"`
	SenderID string    `json:"sender_id"`
	SentAt   time.Time `json:"sent_at"`
}

type ChatResponse struct {
	ID           string                `json:"id"`
	Participants []ParticipantResponse `json:"participants"`
	LastMessage  *LastMessageResponse  `json:"last_message"`
	UnreadCount  int                   `json:"unread_count"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

type MessageResponse struct {
	ID        string               `json:"id"`
	ChatID    string               `json:"chat_id"`
	SenderID  string               `json:"sender_id"`
	Content   string               `json:"content"`
	Type      string               `json:"type"`
	CreatedAt time.Time            `json:"created_at"`
	Sender    *ParticipantResponse `json:"sender,omitempty"`
}

func NewParticipantResponse(p chat.Participant) ParticipantResponse {
	return ParticipantResponse{UserID: p.UserID, FullName: p.FullName, Email: p.Email}
}

func NewChatResponse(c *chat.Chat) ChatResponse {
	resp := ChatResponse{
		ID:           c.ID,
		Participants: make([]ParticipantResponse, len(c.Participants)),
		UnreadCount:  c.UnreadCount,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
	for i, p := range c.Participants {
		resp.Participants[i] = NewParticipantResponse(p)
	}
	if c.LastMessage != nil {
		resp.LastMessage = &LastMessageResponse{
			Content:  c.LastMessage.Content,
			SenderID: c.LastMessage.SenderID,
			SentAt:   c.LastMessage.SentAt,
		}
	}
	return resp
}

func NewMessageResponse(m *chat.Message) MessageResponse {
	resp := MessageResponse{
		ID:        m.ID,
		ChatID:    m.ChatID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		Type:      string(m.Kind),
		CreatedAt: m.CreatedAt,
	}
	if m.Sender != nil {
		s := NewParticipantResponse(*m.Sender)
		resp.Sender = &s
	}
	return resp
}
