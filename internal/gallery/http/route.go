package http

import "github.com/gin-gonic/gin"

// RegisterRoutes wires gallery routes. Reads are public; writes need an admin.
func RegisterRoutes(r *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	group := r.Group("/gallery")
	{
		group.GET("", h.List)
		group.GET("/:id", h.Get)
		group.GET("/:id/image", h.ServeImage)
		group.GET("/:id/thumbnail", h.ServeThumbnail)

		group.POST("", authMiddleware, adminMiddleware, h.Upload)
		group.PATCH("/:id", authMiddleware, adminMiddleware, h.Update)
		group.DELETE("/:id", authMiddleware, adminMiddleware, h.Delete)
	}
}
