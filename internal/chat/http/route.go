package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the chat endpoints. Every route needs a signed-in user.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/chats", authMiddleware)

	group.GET("", h.List)
	group.POST("", h.Create)
	group.GET("/users", h.Users)

	group.GET("/:id", h.Get)
	group.DELETE("/:id", h.Delete)
	group.GET("/:id/messages", h.Messages)
	group.POST("/:id/messages", h.Send)
	group.POST("/:id/read", h.MarkRead)
}
