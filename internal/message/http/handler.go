package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/courtline/court-reservation/internal/message"
	"github.com/courtline/court-reservation/internal/pkg/response"
)

type Handler struct {
	service message.Service
}

func NewHandler(service message.Service) *Handler {
	return &Handler{service: service}
}

// Create accepts a contact-form submission. Public.
func (h *Handler) Create(c *gin.Context) {
	var body CreateMessageRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	m, err := h.service.Create(c.Request.Context(), message.CreateRequest{
		Name:  body.Name,
		Email: body.Email,
		Body:  body.Message,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": m.ID, "message": "message received"})
}

// List returns submissions, newest first.
// Access Control: admin only.
func (h *Handler) List(c *gin.Context) {
	var req ListMessagesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	req.Normalize()

	list, total, err := h.service.List(c.Request.Context(), message.Filter{
		Keyword:  req.Keyword,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]MessageResponse, len(list))
	for i, m := range list {
		items[i] = NewResponse(m)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}
