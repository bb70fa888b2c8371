package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/staff-attendance/internal/models"
	appErrors "github.com/noah-isme/staff-attendance/pkg/errors"
	"github.com/noah-isme/staff-attendance/pkg/response"
)

// ContextUserKey holds the *models.JWTClaims of the caller.
const ContextUserKey = "currentUser"

// TokenValidator turns a bearer token into claims.
type TokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

// JWT rejects requests without a valid "Authorization: Bearer" token and
// stores the claims under ContextUserKey.
func JWT(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			abort(c, err)
			return
		}
		claims, err := validator.ValidateToken(token)
		if err != nil {
			abort(c, err)
			return
		}
		c.Set(ContextUserKey, claims)
		c.Next()
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", appErrors.ErrUnauthorized
	}
	scheme, token, found := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !found || !strings.EqualFold(scheme, models.TokenTypeBearer) || token == "" {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header")
	}
	return token, nil
}

func abort(c *gin.Context, err error) {
	response.Error(c, err)
	c.Abort()
}
