package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, limitMiddleware, authMiddleware, adminMiddleware gin.HandlerFunc) {
	group := g.Group("/messages")

	// === Public Routes ===
	group.POST("", limitMiddleware, h.Create)

	// === Administration Routes ===
	group.GET("", authMiddleware, adminMiddleware, h.List)
}
