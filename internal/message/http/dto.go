package http

import (
	"time"

	"github.com/courtline/court-reservation/internal/message"
	"github.com/courtline/court-reservation/internal/pkg/request"
)

type CreateMessageRequest struct {
	Name    string `json:"name" binding:"required,max=100"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required,max=1000"`
}

type ListMessagesRequest struct {
	request.ListParams
	Keyword string `form:"q"`
}

type MessageResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func NewResponse(m *message.Message) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Message:   m.Body,
		CreatedAt: m.CreatedAt,
	}
}
