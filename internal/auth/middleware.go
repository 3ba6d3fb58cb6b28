package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

var (
	errMissingHeader = errors.New("missing Authorization header")
	errHeaderFormat  = errors.New("invalid Authorization header format")
)

// AuthRequired is a Gin middleware that validates JWT from Authorization: Bearer <token>
func AuthRequired(jwtManager *JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := bearerToken(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		claims, err := jwtManager.ParseAndValidate(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired token",
			})
			return
		}

		setIdentity(c, claims)
		tagLogger(c, claims.UserID)
		c.Next()
	}
}

// OptionalAuth attaches the caller's identity when a valid token is present
// and lets anonymous requests through untouched.
func OptionalAuth(jwtManager *JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		Identify(c, jwtManager)
		c.Next()
	}
}

// Identify attaches the caller's identity when the request carries a valid
// bearer token and reports whether it did. It never aborts.
func Identify(c *gin.Context, jwtManager *JWTManager) bool {
	tokenStr, err := bearerToken(c)
	if err != nil {
		return false
	}
	claims, err := jwtManager.ParseAndValidate(tokenStr)
	if err != nil {
		return false
	}
	setIdentity(c, claims)
	tagLogger(c, claims.UserID)
	return true
}

func bearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", errMissingHeader
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", errHeaderFormat
	}
	return parts[1], nil
}

// tagLogger adds the user id to the request-scoped logger.
func tagLogger(c *gin.Context, userID string) {
	l := zerolog.Ctx(c.Request.Context())
	// Only a logger attached to this request may be mutated.
	if l.GetLevel() == zerolog.Disabled || l == zerolog.DefaultContextLogger {
		return
	}
	l.UpdateContext(func(zc zerolog.Context) zerolog.Context {
		return zc.Str("user_id", userID)
	})
}
