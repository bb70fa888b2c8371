package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/staff-attendance/internal/models"
	appErrors "github.com/noah-isme/staff-attendance/pkg/errors"
)

// RequireRoles lets through only callers holding one of roles. It must run
// after JWT.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(c *gin.Context) {
		claims, ok := c.Value(ContextUserKey).(*models.JWTClaims)
		switch {
		case !ok || claims == nil:
			abort(c, appErrors.ErrUnauthorized)
		case !allowed[claims.Role]:
			abort(c, appErrors.Clone(appErrors.ErrForbidden, "role "+string(claims.Role)+" may not perform this action"))
		default:
			c.Next()
		}
	}
}
