package web

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const ctxAdminUser = "admin_user"

// requireAdmin authenticates admin requests against the static token table.
// The resolved username becomes the audit actor for write endpoints.
func (s *Server) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("X-Admin-Token")
		if token == "" {
			auth := c.GetHeader("Authorization")
			token = strings.TrimPrefix(auth, "Bearer ")
			if token == auth {
				token = ""
			}
		}
		user, ok := s.AdminTokens[token]
		if token == "" || !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthorized"})
			return
		}
		c.Set(ctxAdminUser, user)
		c.Next()
	}
}

func adminUser(c *gin.Context) string {
	if v, ok := c.Get(ctxAdminUser); ok {
		if name, ok := v.(string); ok {
			return name
		}
	}
	return "unknown"
}
