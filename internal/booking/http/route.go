package http

import (
	"github.com/gin-gonic/gin"
)

// Middlewares groups the handlers the booking routes depend on.
type Middlewares struct {
	// Viewer identifies the caller when a token is present, without requiring one.
	Viewer gin.HandlerFunc
	// Auth requires a valid token and resolves the caller's admin flag.
	Auth  []gin.HandlerFunc
	Admin gin.HandlerFunc
	// AvailabilityLimit throttles the public availability endpoint.
	AvailabilityLimit gin.HandlerFunc
}

func RegisterRoutes(g *gin.RouterGroup, h *Handler, mw Middlewares) {
	group := g.Group("/bookings")

	// === Public Routes ===
	group.GET("/availability", mw.AvailabilityLimit, mw.Viewer, h.Availability)

	// === Authenticated Routes ===
	authed := group.Group("")
	authed.Use(mw.Auth...)
	{
		authed.GET("", h.List)
		authed.POST("", h.Create)
		authed.GET("/all", mw.Admin, h.ListAll)
		authed.GET("/:id", h.Get)
		authed.PATCH("/:id", h.Update)
		authed.PATCH("/:id/cancel", h.Cancel)
		authed.DELETE("/:id", h.Delete)
	}
}
