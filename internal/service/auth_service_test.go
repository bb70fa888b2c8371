package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/staff-attendance/internal/models"
	appErrors "github.com/noah-isme/staff-attendance/pkg/errors"
)

type mockAuthRepo struct {
	userByEmail      *models.User
	findByEmailErr   error
	lastLoginUpdated bool
	lastLoginAt      time.Time
	created          []*models.User
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findByEmailErr != nil {
		return nil, m.findByEmailErr
	}
	if m.userByEmail == nil {
		return nil, sql.ErrNoRows
	}
	return m.userByEmail, nil
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	m.lastLoginAt = ts
	return nil
}

func (m *mockAuthRepo) CreateIfMissing(ctx context.Context, user *models.User) (bool, error) {
	for _, existing := range m.created {
		if existing.Email == user.Email {
			return false, nil
		}
	}
	m.created = append(m.created, user)
	return true, nil
}

func newAuthUser(t *testing.T, active bool) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{ID: "u1", Email: "nurse.lead@ward.example.org", FullName: "Asha Menon", PasswordHash: string(hash), Active: active, Role: models.RoleSupervisor}
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	repo := &mockAuthRepo{userByEmail: newAuthUser(t, true)}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{AccessTokenSecret: "secret", AccessTokenExpiry: time.Hour, Issuer: "staff-attendance"})

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: " nurse.lead@ward.example.org ", Password: "password"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, models.TokenTypeBearer, res.TokenType)
	assert.Equal(t, models.RoleSupervisor, res.User.Role)
	assert.True(t, repo.lastLoginUpdated)
	assert.Equal(t, time.Hour, res.ExpiresAt.Sub(repo.lastLoginAt))

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID())
	assert.Equal(t, res.User, claims.Info())
	assert.Equal(t, "staff-attendance", claims.Issuer)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	repo := &mockAuthRepo{userByEmail: newAuthUser(t, true)}
	svc := NewAuthService(repo, nil, nil, AuthConfig{AccessTokenSecret: "secret"})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "nurse.lead@ward.example.org", Password: "nope"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
	assert.False(t, repo.lastLoginUpdated)
}

func TestAuthServiceLoginUnknownUser(t *testing.T) {
	svc := NewAuthService(&mockAuthRepo{}, nil, nil, AuthConfig{AccessTokenSecret: "secret"})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ghost@ward.example.org", Password: "password"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginInactive(t *testing.T) {
	repo := &mockAuthRepo{userByEmail: newAuthUser(t, false)}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{AccessTokenSecret: "secret", AccessTokenExpiry: time.Hour})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "nurse.lead@ward.example.org", Password: "password"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginValidation(t *testing.T) {
	svc := NewAuthService(&mockAuthRepo{}, nil, nil, AuthConfig{AccessTokenSecret: "secret"})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "not-an-email", Password: ""})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := NewAuthService(&mockAuthRepo{}, nil, nil, AuthConfig{AccessTokenSecret: "secret", AccessTokenExpiry: time.Minute})
	issued := time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)
	token, _, err := svc.issueToken(&models.User{ID: "u1", Role: models.RoleStaff}, issued)
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(30 * time.Second) }
	_, err = svc.ValidateToken(token)
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	issuer := NewAuthService(&mockAuthRepo{}, nil, nil, AuthConfig{AccessTokenSecret: "other", AccessTokenExpiry: time.Hour})
	token, _, err := issuer.issueToken(&models.User{ID: "u1", Role: models.RoleStaff}, time.Now())
	require.NoError(t, err)

	svc := NewAuthService(&mockAuthRepo{}, nil, nil, AuthConfig{AccessTokenSecret: "secret"})
	_, err = svc.ValidateToken(token)
	require.Error(t, err)
}

func TestValidateTokenRejectsUnknownRole(t *testing.T) {
	svc := NewAuthService(&mockAuthRepo{}, nil, nil, AuthConfig{AccessTokenSecret: "secret"})
	token, _, err := svc.issueToken(&models.User{ID: "u1", Role: "JANITOR"}, time.Now())
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceBootstrap(t *testing.T) {
	repo := &mockAuthRepo{}
	svc := NewAuthService(repo, nil, nil, AuthConfig{AccessTokenSecret: "secret"})
	acct := BootstrapAccount{Email: " Admin@Ward.example.org ", Password: "correct-horse", FullName: "Administrator", Role: models.RoleAdmin}

	created, err := svc.Bootstrap(context.Background(), acct)
	require.NoError(t, err)
	assert.True(t, created)
	require.Len(t, repo.created, 1)
	assert.Equal(t, "admin@ward.example.org", repo.created[0].Email)
	assert.True(t, repo.created[0].Active)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.created[0].PasswordHash), []byte("correct-horse")))

	created, err = svc.Bootstrap(context.Background(), acct)
	require.NoError(t, err)
	assert.False(t, created)

	_, err = svc.Bootstrap(context.Background(), BootstrapAccount{Email: "x@ward.example.org", Password: "short", FullName: "X", Role: models.RoleAdmin})
	assert.Error(t, err)
	_, err = svc.Bootstrap(context.Background(), BootstrapAccount{Email: "x@ward.example.org", Password: "long-enough", FullName: "X", Role: "ROOT"})
	assert.Error(t, err)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))
}
