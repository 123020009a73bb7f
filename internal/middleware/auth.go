package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hostelms/internal/domain"
	jwtsvc "hostelms/internal/pkg/jwt"
	"hostelms/internal/pkg/response"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
	ctxHostel = "hostel"
)

// Auth validates the bearer token and stores the actor's identity on the
// request context. Token issuance and role assignment live with the identity
// provider; this layer only consumes the claims.
func Auth(j *jwtsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing Authorization header")
			c.Abort()
			return
		}
		if !strings.HasPrefix(h, "Bearer ") {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid Authorization header")
			c.Abort()
			return
		}

		claims, err := j.ValidateToken(strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRole, claims.Role)
		c.Set(ctxHostel, claims.Hostel)
		c.Next()
	}
}

// ActorFromContext rebuilds the actor stored by Auth. The second return is
// false when the request never passed the middleware.
func ActorFromContext(c *gin.Context) (domain.Actor, bool) {
	userID := c.GetInt64(ctxUserID)
	if userID == 0 {
		return domain.Actor{}, false
	}
	return domain.Actor{
		ID:     userID,
		Role:   domain.Role(c.GetString(ctxRole)),
		Hostel: c.GetString(ctxHostel),
	}, true
}
