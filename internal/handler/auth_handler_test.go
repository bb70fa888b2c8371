package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/staff-attendance/internal/middleware"
	"github.com/noah-isme/staff-attendance/internal/models"
	appErrors "github.com/noah-isme/staff-attendance/pkg/errors"
)

type fakeAuthSrv struct {
	last models.LoginRequest
	err  error
}

func (f *fakeAuthSrv) Login(_ context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.LoginResponse{TokenType: models.TokenTypeBearer, AccessToken: "token"}, nil
}

func TestAuthHandlerLogin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeAuthSrv{}
	h := NewAuthHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"a@ward.example.org","password":"pw"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Login(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a@ward.example.org", srv.last.Email)
	assert.NotEmpty(t, srv.last.ClientIP)
	var res models.LoginResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &res))
	assert.Equal(t, "token", res.AccessToken)
}

func TestAuthHandlerLoginInvalidCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAuthHandler(&fakeAuthSrv{err: appErrors.ErrInvalidCredentials})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"a@ward.example.org","password":"bad"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Login(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandlerMe(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAuthHandler(&fakeAuthSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	h.Me(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{Email: "a@ward.example.org", Role: models.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"}})
	h.Me(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	var info models.UserInfo
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &info))
	assert.Equal(t, models.RoleAdmin, info.Role)
	assert.Equal(t, "u1", info.ID)
}
