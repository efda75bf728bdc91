package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-instructor-api/internal/models"
	appErrors "github.com/noah-isme/lms-instructor-api/pkg/errors"
)

type authFlowStub struct {
	signup     models.SignupRequest
	login      models.LoginRequest
	loggedOut  string
	forgotErr  error
	resetErr   error
	loginErr   error
	forgotSeen string
}

func (s *authFlowStub) Signup(_ context.Context, req models.SignupRequest) (*models.AuthResult, error) {
	s.signup = req
	return &models.AuthResult{AccessToken: "tok", SessionID: "sess-1", Redirect: models.RedirectDefault}, nil
}

func (s *authFlowStub) Login(_ context.Context, req models.LoginRequest) (*models.AuthResult, error) {
	s.login = req
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &models.AuthResult{AccessToken: "tok", SessionID: "sess-1", Redirect: models.RedirectAdmin}, nil
}

func (s *authFlowStub) Logout(_ context.Context, sessionID string) error {
	s.loggedOut = sessionID
	return nil
}

func (s *authFlowStub) Me(_ context.Context, userID string) (*models.CurrentUser, error) {
	return &models.CurrentUser{User: models.UserInfo{ID: userID}}, nil
}

func (s *authFlowStub) ForgotPassword(_ context.Context, req models.ForgotPasswordRequest) error {
	s.forgotSeen = req.Email
	return s.forgotErr
}

func (s *authFlowStub) ResetPassword(context.Context, models.ResetPasswordRequest) error {
	return s.resetErr
}

func TestAuthHandlerSignupCapturesClientDetails(t *testing.T) {
	stub := &authFlowStub{}
	h := NewAuthHandler(stub)
	r := newRouter(http.MethodPost, "/auth/signup", nil, h.Signup)

	req := httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(`{"email":"a@b.io","password":"secret123","name":"Ann"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "lms-test")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "a@b.io", stub.signup.Email)
	assert.Equal(t, "lms-test", stub.signup.UserAgent)
	assert.NotEmpty(t, stub.signup.IP)
}

func TestAuthHandlerLoginForwardsBearerToken(t *testing.T) {
	stub := &authFlowStub{}
	h := NewAuthHandler(stub)
	r := newRouter(http.MethodPost, "/auth/login", nil, h.Login)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"a@b.io","password":"secret123"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer existing-token")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "existing-token", stub.login.SessionToken)

	var result models.AuthResult
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &result))
	assert.Equal(t, models.RedirectAdmin, result.Redirect)
}

func TestAuthHandlerLoginMapsInvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&authFlowStub{loginErr: appErrors.ErrInvalidCredentials})
	r := newRouter(http.MethodPost, "/auth/login", nil, h.Login)

	rec := serve(r, http.MethodPost, "/auth/login", gin.H{"email": "a@b.io", "password": "wrong-pass"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", decodeEnvelope(t, rec).Error["code"])
}

func TestAuthHandlerLogoutRevokesCallerSession(t *testing.T) {
	stub := &authFlowStub{}
	h := NewAuthHandler(stub)

	rec := serve(newRouter(http.MethodPost, "/auth/logout", asStudent("u-1"), h.Logout), http.MethodPost, "/auth/logout", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "sess-u-1", stub.loggedOut)

	rec = serve(newRouter(http.MethodPost, "/auth/logout", nil, h.Logout), http.MethodPost, "/auth/logout", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandlerForgotPasswordAccepted(t *testing.T) {
	stub := &authFlowStub{}
	h := NewAuthHandler(stub)
	r := newRouter(http.MethodPost, "/auth/password/forgot", nil, h.ForgotPassword)

	rec := serve(r, http.MethodPost, "/auth/password/forgot", gin.H{"email": "a@b.io"})

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "a@b.io", stub.forgotSeen)
}

func TestAuthHandlerResetPasswordRejectsMalformedBody(t *testing.T) {
	h := NewAuthHandler(&authFlowStub{})
	r := newRouter(http.MethodPost, "/auth/password/reset", nil, h.ResetPassword)

	req := httptest.NewRequest(http.MethodPost, "/auth/password/reset", strings.NewReader(`{"token":`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
