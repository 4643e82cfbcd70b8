package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/pkg/jwt"
	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/pkg/response"
)

// JWTAuth guards the admin console routes. It extracts and verifies the
// access token from Authorization: Bearer <token>. The public signup and
// manage routes never pass through here; their credential is the manage
// token in the URL.
func JWTAuth(jwtMgr *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, 10002, "malformed authorization header")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, 10002, "token invalid or expired")
			c.Abort()
			return
		}
		if claims.Role != "admin" {
			// There is only one role; anything else is a forged token.
			response.Forbidden(c, 10003, "insufficient permissions")
			c.Abort()
			return
		}

		c.Set("admin_email", claims.Subject)
		c.Set("role", claims.Role)

		c.Next()
	}
}
