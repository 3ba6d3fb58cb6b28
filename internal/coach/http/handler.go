package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/courtline/court-reservation/internal/coach"
	"github.com/courtline/court-reservation/internal/pkg/response"
)

type CoachResponse struct {
	ID        string    `json:"id"`
	Name      *string   `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Handler struct {
	service coach.Service
}

func NewHandler(service coach.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(c *gin.Context) {
	coaches, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]CoachResponse, len(coaches))
	for i, co := range coaches {
		items[i] = CoachResponse{ID: co.ID, Name: co.Name, CreatedAt: co.CreatedAt}
	}
	c.JSON(http.StatusOK, response.NewListResponse(items))
}

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	r.GET("/coaches", h.List)
}
