package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTypeBearer is the only token type the API issues.
const TokenTypeBearer = "Bearer"

// LoginRequest is the sign-in payload. ClientIP is filled from the connection.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	ClientIP string `json:"-"`
}

// LoginResponse carries a fresh access token.
type LoginResponse struct {
	TokenType   string    `json:"token_type"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        UserInfo  `json:"user"`
}

// UserInfo identifies the signed-in account.
type UserInfo struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	Role     UserRole `json:"role"`
}

// JWTClaims is the access token payload.
type JWTClaims struct {
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}

// UserID is the token subject.
func (c *JWTClaims) UserID() string {
	if c == nil {
		return ""
	}
	return c.Subject
}

// Info rebuilds the account view from the token alone.
func (c *JWTClaims) Info() UserInfo {
	return UserInfo{ID: c.Subject, Email: c.Email, FullName: c.FullName, Role: c.Role}
}
