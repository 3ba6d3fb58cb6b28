package auth

import "github.com/gin-gonic/gin"

const (
	ctxUserID    = "userID"
	ctxUserEmail = "userEmail"
	ctxIsAdmin   = "isAdmin"
)

// GetUserID returns the authenticated user's ID or empty string.
func GetUserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

// GetUserEmail returns the authenticated user's email or empty string.
func GetUserEmail(c *gin.Context) string {
	return c.GetString(ctxUserEmail)
}

// IsAuthenticated reports whether a valid bearer token was presented.
func IsAuthenticated(c *gin.Context) bool {
	return GetUserID(c) != ""
}

func setIdentity(c *gin.Context, claims *Claims) {
	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxUserEmail, claims.Email)
}

// SetAdmin records whether the caller holds the privileged flag.
func SetAdmin(c *gin.Context, isAdmin bool) {
	c.Set(ctxIsAdmin, isAdmin)
}

// IsAdmin reports the flag stored by SetAdmin. It is false when unset.
func IsAdmin(c *gin.Context) bool {
	return c.GetBool(ctxIsAdmin)
}
