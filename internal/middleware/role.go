package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hostelms/internal/domain"
	"hostelms/internal/pkg/response"
)

// RequireStaff rejects callers whose role carries no management rights at
// all (students). Finer hostel-level authorization is the workflow's job via
// the scoping policy; this gate only keeps residents off staff endpoints.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ctxRole)
		if !exists {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Role not found in token")
			c.Abort()
			return
		}

		if !domain.Role(role.(string)).IsStaff() {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireRole ensures the authenticated actor has one of the given roles.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ctxRole)
		if !exists {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Role not found in token")
			c.Abort()
			return
		}

		have := domain.Role(role.(string))
		for _, want := range roles {
			if have == want {
				c.Next()
				return
			}
		}

		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
		c.Abort()
	}
}
