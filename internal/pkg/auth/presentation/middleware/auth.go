package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"go-courier/internal/pkg/auth/port"
)

const (
	// ContextUserID is the gin context key holding the authenticated user id.
	ContextUserID = "auth_user_id"
	// ContextUsername is the gin context key holding the authenticated username.
	ContextUsername = "auth_username"
)

// RequireAuth verifies the bearer token and stores the identity on the context.
func RequireAuth(verifier port.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		id, err := verifier.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Set(ContextUserID, id.UserID)
		c.Set(ContextUsername, id.Username)
		c.Next()
	}
}

// BearerToken extracts the credential from the Authorization header or, for
// websocket upgrades where headers are awkward for browser clients, from the
// "token" query parameter.
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Query("token")
}

// UserID returns the authenticated user id stored by RequireAuth.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
