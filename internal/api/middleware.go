package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/courtline/court-reservation/internal/auth"
)

// RoleResolver reports whether a user currently holds the admin flag.
type RoleResolver interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// LoadRole resolves the caller's admin flag from the profile store.
// It MUST be used after auth.AuthRequired middleware.
func LoadRole(roles RoleResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		isAdmin, err := roles.IsAdmin(c.Request.Context(), auth.GetUserID(c))
		if err != nil {
			log.Ctx(c.Request.Context()).Error().Err(err).Msg("role lookup failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		auth.SetAdmin(c, isAdmin)
		c.Next()
	}
}

// RequireAdmin ensures the authenticated user is an active admin.
// It MUST be used after auth.AuthRequired middleware.
func RequireAdmin(roles RoleResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := auth.GetUserID(c)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		isAdmin, err := roles.IsAdmin(c.Request.Context(), userID)
		if err != nil {
			log.Ctx(c.Request.Context()).Error().Err(err).Msg("role lookup failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		if !isAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden: admin access required"})
			return
		}

		auth.SetAdmin(c, true)
		c.Next()
	}
}

// Viewer identifies the caller on public routes. Anonymous requests and
// invalid tokens pass through as anonymous; a failed role lookup only
// withholds the admin flag.
func Viewer(jwtManager *auth.JWTManager, roles RoleResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if auth.Identify(c, jwtManager) {
			isAdmin, err := roles.IsAdmin(c.Request.Context(), auth.GetUserID(c))
			if err != nil {
				log.Ctx(c.Request.Context()).Warn().Err(err).Msg("role lookup failed")
			}
			auth.SetAdmin(c, isAdmin)
		}
		c.Next()
	}
}
