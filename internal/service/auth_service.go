package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/staff-attendance/internal/models"
	appErrors "github.com/noah-isme/staff-attendance/pkg/errors"
)

type accountStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id string, ts time.Time) error
	CreateIfMissing(ctx context.Context, user *models.User) (bool, error)
}

// AuthConfig controls access token issuance.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
}

// BootstrapAccount describes an account provisioned at startup.
type BootstrapAccount struct {
	Email    string          `validate:"required,email"`
	Password string          `validate:"required,min=8"`
	FullName string          `validate:"required"`
	Role     models.UserRole `validate:"required"`
}

// AuthService checks credentials and issues HS256 access tokens carrying the
// account role, which gates attendance submission.
type AuthService struct {
	accounts  accountStore
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService builds an AuthService. Tokens live 12h unless configured.
func NewAuthService(accounts accountStore, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = 12 * time.Hour
	}
	return &AuthService{accounts: accounts, validator: validate, logger: logger, config: config, now: time.Now}
}

// Login exchanges email and password for an access token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid login payload")
	}

	user, err := s.authenticate(ctx, req)
	if err != nil {
		return nil, err
	}

	issuedAt := s.now().UTC()
	token, expiresAt, err := s.issueToken(user, issuedAt)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to create access token")
	}
	if err := s.accounts.UpdateLastLogin(ctx, user.ID, issuedAt); err != nil {
		s.logger.Warn("last login not recorded", zap.String("user_id", user.ID), zap.Error(err))
	}

	return &models.LoginResponse{
		TokenType:   models.TokenTypeBearer,
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User:        user.Info(),
	}, nil
}

func (s *AuthService) authenticate(ctx context.Context, req models.LoginRequest) (*models.User, error) {
	rejected := appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")

	user, err := s.accounts.FindByEmail(ctx, req.Email)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, rejected
	case err != nil:
		return nil, appErrors.Internal(err, "failed to fetch account")
	}
	if !user.Active {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "account is inactive")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Info("login rejected", zap.String("user_id", user.ID), zap.String("ip", req.ClientIP))
		return nil, rejected
	}
	return user, nil
}

// ValidateToken verifies signature, expiry and issuer and returns the claims.
// Tokens without a subject or with an unknown role are rejected.
func (s *AuthService) ValidateToken(raw string) (*models.JWTClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}

	claims := &models.JWTClaims{}
	if _, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(s.config.AccessTokenSecret), nil
	}, opts...); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}
	if claims.Subject == "" || !claims.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// Bootstrap creates acct unless an account with its email already exists.
// It reports whether the account was created.
func (s *AuthService) Bootstrap(ctx context.Context, acct BootstrapAccount) (bool, error) {
	acct.Email = strings.ToLower(strings.TrimSpace(acct.Email))
	if err := s.validator.Struct(acct); err != nil {
		return false, fmt.Errorf("bootstrap account: %w", err)
	}
	if !acct.Role.Valid() {
		return false, fmt.Errorf("bootstrap account: unknown role %q", acct.Role)
	}
	hash, err := HashPassword(acct.Password)
	if err != nil {
		return false, err
	}

	created, err := s.accounts.CreateIfMissing(ctx, &models.User{
		Email:        acct.Email,
		PasswordHash: hash,
		FullName:     acct.FullName,
		Role:         acct.Role,
		Active:       true,
	})
	if err != nil {
		return false, err
	}
	if created {
		s.logger.Info("account provisioned", zap.String("email", acct.Email), zap.String("role", string(acct.Role)))
	}
	return created, nil
}

// HashPassword bcrypt-hashes a password for the users table.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (s *AuthService) issueToken(user *models.User, issuedAt time.Time) (string, time.Time, error) {
	expiresAt := issuedAt.Add(s.config.AccessTokenExpiry)
	claims := &models.JWTClaims{
		Role:     user.Role,
		Email:    user.Email,
		FullName: user.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.AccessTokenSecret))
	return token, expiresAt, err
}
