package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/staff-attendance/internal/middleware"
	"github.com/noah-isme/staff-attendance/internal/models"
)

// currentClaims returns the claims the JWT middleware stored, if any.
func currentClaims(c *gin.Context) (*models.JWTClaims, bool) {
	claims, ok := c.Value(middleware.ContextUserKey).(*models.JWTClaims)
	return claims, ok && claims != nil
}
