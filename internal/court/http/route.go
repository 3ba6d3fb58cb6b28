package http

import "github.com/gin-gonic/gin"

// RegisterRoutes wires court routes. Reads are public; viewerMiddleware only
// resolves the caller's admin flag so List can honor all=true.
func RegisterRoutes(r *gin.RouterGroup, h *Handler, viewerMiddleware, authMiddleware, adminMiddleware gin.HandlerFunc) {
	courts := r.Group("/courts")
	{
		courts.GET("", viewerMiddleware, h.List)
		courts.GET("/:id", h.Get)

		courts.POST("", authMiddleware, adminMiddleware, h.Create)
		courts.PATCH("/:id", authMiddleware, adminMiddleware, h.Update)
		courts.DELETE("/:id", authMiddleware, adminMiddleware, h.Delete)
	}
}
