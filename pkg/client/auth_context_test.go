package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-instructor-api/internal/models"
)

type recordingAlerter struct {
	mu       sync.Mutex
	messages []string
}

func (r *recordingAlerter) Alert(_, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
}

func (r *recordingAlerter) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return ""
	}
	return r.messages[len(r.messages)-1]
}

type fakeBackend struct {
	mu         sync.Mutex
	role       models.UserRole
	logins     int
	logouts    []string
	signupErr  *APIError
	forgotSeen string
	resetSeen  string
}

func (f *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	writeData := func(w http.ResponseWriter, status int, data interface{}) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": data})
	}
	writeErr := func(w http.ResponseWriter, e *APIError) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(e.Status)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"error": e})
	}

	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret123" {
			writeErr(w, &APIError{Status: http.StatusUnauthorized, Code: "INVALID_CREDENTIALS", Message: "invalid email or password"})
			return
		}
		f.mu.Lock()
		f.logins++
		f.mu.Unlock()
		writeData(w, http.StatusOK, models.AuthResult{AccessToken: "token-1", SessionID: "sess-1"})
	})
	mux.HandleFunc("/api/v1/auth/signup", func(w http.ResponseWriter, r *http.Request) {
		if f.signupErr != nil {
			writeErr(w, f.signupErr)
			return
		}
		writeData(w, http.StatusCreated, models.AuthResult{AccessToken: "token-2", SessionID: "sess-2"})
	})
	mux.HandleFunc("/api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer token-") {
			writeErr(w, &APIError{Status: http.StatusUnauthorized, Code: "UNAUTHORIZED", Message: "unauthorized"})
			return
		}
		writeData(w, http.StatusOK, models.CurrentUser{
			User:    models.UserInfo{ID: "u-1", Email: "ana@example.com", Name: "Ana"},
			Profile: &models.UserProfile{UserID: "u-1", Role: f.role},
		})
	})
	mux.HandleFunc("/api/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.logouts = append(f.logouts, r.Header.Get("Authorization"))
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/api/v1/auth/password/forgot", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.forgotSeen = body["email"]
		writeData(w, http.StatusAccepted, map[string]string{"message": "sent"})
	})
	mux.HandleFunc("/api/v1/auth/password/reset", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["token"] != "reset-ok" {
			writeErr(w, &APIError{Status: http.StatusUnauthorized, Code: "UNAUTHORIZED", Message: "reset token is invalid or expired"})
			return
		}
		f.resetSeen = body["new_password"]
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func newTestContext(t *testing.T, backend *fakeBackend) (*AuthContext, *recordingAlerter) {
	t.Helper()
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)
	alerts := &recordingAlerter{}
	return NewAuthContext(New(srv.URL+"/api/v1"), alerts), alerts
}

func TestLoginRedirectsByRole(t *testing.T) {
	ctx := context.Background()

	admin, _ := newTestContext(t, &fakeBackend{role: models.RoleAdmin})
	redirect, err := admin.Login(ctx, "ana@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, models.RedirectAdmin, redirect)

	instructor, _ := newTestContext(t, &fakeBackend{role: models.RoleInstructor})
	redirect, err = instructor.Login(ctx, "ana@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, models.RedirectDefault, redirect)

	state := instructor.State()
	assert.True(t, state.Authenticated)
	assert.False(t, state.Loading)
	require.NotNil(t, state.User)
	assert.Equal(t, "ana@example.com", state.User.Email)
}

func TestLoginReusesHeldSession(t *testing.T) {
	backend := &fakeBackend{role: models.RoleStudent}
	auth, _ := newTestContext(t, backend)

	_, err := auth.Login(context.Background(), "ana@example.com", "secret123")
	require.NoError(t, err)
	_, err = auth.Login(context.Background(), "ana@example.com", "secret123")
	require.NoError(t, err)

	assert.Equal(t, 1, backend.logins)
}

func TestLoginFailureAlertsAndReturnsError(t *testing.T) {
	auth, alerts := newTestContext(t, &fakeBackend{})

	_, err := auth.Login(context.Background(), "ana@example.com", "wrong")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "invalid email or password", alerts.last())
	assert.False(t, auth.State().Authenticated)
}

func TestSignupMapsKnownFailures(t *testing.T) {
	cases := map[string]struct {
		err  *APIError
		want string
	}{
		"duplicate": {&APIError{Status: http.StatusConflict, Code: "CONFLICT", Message: "account already exists"}, MessageAccountExists},
		"password":  {&APIError{Status: http.StatusBadRequest, Code: "VALIDATION_ERROR", Message: "password must be at least 8 characters"}, MessageWeakPassword},
		"other":     {&APIError{Status: http.StatusInternalServerError, Code: "INTERNAL_ERROR", Message: "internal server error"}, MessageSignupFailed},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			auth, alerts := newTestContext(t, &fakeBackend{signupErr: tc.err})
			ok := auth.Signup(context.Background(), "ana@example.com", "secret123", "Ana")
			assert.False(t, ok)
			assert.Equal(t, tc.want, alerts.last())
		})
	}
}

func TestSignupLoadsProfile(t *testing.T) {
	auth, alerts := newTestContext(t, &fakeBackend{role: models.RoleStudent})

	ok := auth.Signup(context.Background(), "ana@example.com", "secret123", "Ana")

	assert.True(t, ok)
	assert.Empty(t, alerts.last())
	state := auth.State()
	require.NotNil(t, state.Profile)
	assert.Equal(t, models.RoleStudent, state.Profile.Role)
	assert.Equal(t, "token-2", auth.Token())
}

func TestLogoutClearsStateBeforeServerCall(t *testing.T) {
	backend := &fakeBackend{role: models.RoleStudent}
	auth, _ := newTestContext(t, backend)
	_, err := auth.Login(context.Background(), "ana@example.com", "secret123")
	require.NoError(t, err)

	require.NoError(t, auth.Logout(context.Background()))

	assert.False(t, auth.State().Authenticated)
	assert.Empty(t, auth.Token())
	assert.Equal(t, []string{"Bearer token-1"}, backend.logouts)

	require.NoError(t, auth.Logout(context.Background()))
	assert.Len(t, backend.logouts, 1)
}

func TestPasswordRecovery(t *testing.T) {
	backend := &fakeBackend{}
	auth, alerts := newTestContext(t, backend)

	require.NoError(t, auth.ResetPassword(context.Background(), "ana@example.com"))
	assert.Equal(t, "ana@example.com", backend.forgotSeen)

	require.NoError(t, auth.ConfirmReset(context.Background(), "reset-ok", "newsecret1"))
	assert.Equal(t, "newsecret1", backend.resetSeen)

	require.Error(t, auth.ConfirmReset(context.Background(), "stale", "newsecret1"))
	assert.Equal(t, "reset token is invalid or expired", alerts.last())
}
