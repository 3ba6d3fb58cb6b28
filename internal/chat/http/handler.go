package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/courtline/court-reservation/internal/auth"
	"github.com/courtline/court-reservation/internal/chat"
	"github.com/courtline/court-reservation/internal/pkg/request"
	"github.com/courtline/court-reservation/internal/pkg/response"
)

type Handler struct {
	service chat.Service
}

func NewHandler(service chat.Service) *Handler {
	return &Handler{service: service}
}

// List returns the caller's chats, most recently active first.
func (h *Handler) List(c *gin.Context) {
	chats, err := h.service.ListForUser(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]ChatResponse, len(chats))
	for i, ch := range chats {
		items[i] = NewChatResponse(ch)
	}
	c.JSON(http.StatusOK, response.NewListResponse(items))
}

// Users lists people to start a chat with. q narrows by name or email.
func (h *Handler) Users(c *gin.Context) {
	var query SearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	users, err := h.service.Users(c.Request.Context(), auth.GetUserID(c), query.Q)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]ParticipantResponse, len(users))
	for i, u := range users {
		items[i] = NewParticipantResponse(u)
	}
	c.JSON(http.StatusOK, response.NewListResponse(items))
}

// Create returns the chat with another user, starting one if needed.
func (h *Handler) Create(c *gin.Context) {
	var body CreateChatRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	ch, err := h.service.GetOrCreate(c.Request.Context(), auth.GetUserID(c), body.OtherUserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewChatResponse(ch))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid id", err)
		return
	}

	ch, err := h.service.Get(c.Request.Context(), uri.ID, auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewChatResponse(ch))
}

// Messages returns a page of history, oldest first. skip counts back from the newest message.
func (h *Handler) Messages(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid id", err)
		return
	}
	var query MessagesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	list, err := h.service.Messages(c.Request.Context(), uri.ID, auth.GetUserID(c), query.Limit, query.Skip)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]MessageResponse, len(list))
	for i, m := range list {
		items[i] = NewMessageResponse(m)
	}
	c.JSON(http.StatusOK, response.NewListResponse(items))
}

func (h *Handler) Send(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid id", err)
		return
	}
	var body SendMessageRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	m, err := h.service.Send(c.Request.Context(), chat.SendRequest{
		ChatID:   uri.ID,
		SenderID: auth.GetUserID(c),
		Content:  body.Content,
		Kind:     chat.Kind(body.Type),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewMessageResponse(m))
}

func (h *Handler) MarkRead(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid id", err)
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), uri.ID, auth.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete removes the chat for both participants.
func (h *Handler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid id", err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), uri.ID, auth.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
