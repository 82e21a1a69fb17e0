package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"spacebook/internal/domain"
	"spacebook/internal/pkg/jwt"
	"spacebook/internal/pkg/response"
	"spacebook/internal/policy"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// JWTAuth validates the bearer token and stores user_id and role on the context.
func JWTAuth(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			response.AbortWithError(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Missing Authorization header")
			return
		}

		tokenStr, ok := strings.CutPrefix(h, "Bearer ")
		if !ok || strings.TrimSpace(tokenStr) == "" {
			response.AbortWithError(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be: Bearer <token>")
			return
		}

		claims, err := jwtService.ValidateToken(strings.TrimSpace(tokenStr))
		if err != nil {
			response.AbortWithError(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRole, claims.Role)
		c.Next()
	}
}

// CurrentSubject returns the authenticated caller as a policy subject.
// Anonymous requests yield a zero subject.
func CurrentSubject(c *gin.Context) policy.Subject {
	return policy.Subject{
		UserID: c.GetInt64(ctxUserID),
		Role:   domain.UserRole(c.GetString(ctxRole)),
	}
}
