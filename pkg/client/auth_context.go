package client

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/lms-instructor-api/internal/models"
)

// User-facing signup messages.
const (
	MessageAccountExists = "An account with this email already exists."
	MessageWeakPassword  = "Password must be at least 8 characters."
	MessageSignupFailed  = "Could not create your account. Please try again."
)

// Alerter shows a message to the person using the app.
type Alerter interface {
	Alert(title, message string)
}

// LogAlerter writes alerts to a zap logger.
type LogAlerter struct {
	Logger *zap.Logger
}

// Alert implements Alerter.
func (a LogAlerter) Alert(title, message string) {
	if a.Logger == nil {
		return
	}
	a.Logger.Warn(title, zap.String("message", message))
}

// State is a snapshot of the held session.
type State struct {
	User          *models.UserInfo
	Profile       *models.UserProfile
	Loading       bool
	Authenticated bool
}

// AuthContext holds the current user and session for one process. State only
// changes through its methods.
type AuthContext struct {
	api     *Client
	alerter Alerter

	mu      sync.RWMutex
	token   string
	user    *models.UserInfo
	profile *models.UserProfile
	loading bool
}

// NewAuthContext wraps api. A nil alerter drops alerts.
func NewAuthContext(api *Client, alerter Alerter) *AuthContext {
	if alerter == nil {
		alerter = LogAlerter{Logger: api.logger}
	}
	return &AuthContext{api: api, alerter: alerter}
}

// State returns a copy of the current state.
func (a *AuthContext) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	s := State{Loading: a.loading, Authenticated: a.token != "" && a.user != nil}
	if a.user != nil {
		u := *a.user
		s.User = &u
	}
	if a.profile != nil {
		p := *a.profile
		s.Profile = &p
	}
	return s
}

// Token returns the access token of the held session, if any.
func (a *AuthContext) Token() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token
}

// Login authenticates unless a session is already held, then loads the user
// and profile. It returns the landing route for the profile's role.
func (a *AuthContext) Login(ctx context.Context, email, password string) (string, error) {
	a.setLoading(true)
	defer a.setLoading(false)

	token := a.Token()
	if token == "" {
		res, err := a.api.Login(ctx, email, password)
		if err != nil {
			a.alerter.Alert("Login failed", errorMessage(err))
			return "", err
		}
		token = res.AccessToken
	}

	me, err := a.api.Me(ctx, token)
	if err != nil {
		a.alerter.Alert("Login failed", errorMessage(err))
		return "", err
	}

	a.mu.Lock()
	a.token = token
	a.user = &me.User
	a.profile = me.Profile
	a.mu.Unlock()

	role := models.RoleStudent
	if me.Profile != nil {
		role = me.Profile.Role
	}
	return models.RedirectFor(role), nil
}

// Signup creates the account and loads the user and profile. Handled failures
// are reported through the Alerter and yield false.
func (a *AuthContext) Signup(ctx context.Context, email, password, name string) bool {
	a.setLoading(true)
	defer a.setLoading(false)

	res, err := a.api.Signup(ctx, email, password, name)
	if err != nil {
		a.alerter.Alert("Signup failed", signupMessage(err))
		return false
	}

	me, err := a.api.Me(ctx, res.AccessToken)
	if err != nil {
		a.alerter.Alert("Signup failed", signupMessage(err))
		return false
	}

	a.mu.Lock()
	a.token = res.AccessToken
	a.user = &me.User
	a.profile = me.Profile
	a.mu.Unlock()
	return true
}

// Logout drops the local session before revoking it on the server.
func (a *AuthContext) Logout(ctx context.Context) error {
	a.mu.Lock()
	token := a.token
	a.token = ""
	a.user = nil
	a.profile = nil
	a.mu.Unlock()

	if token == "" {
		return nil
	}
	return a.api.Logout(ctx, token)
}

// ResetPassword requests a recovery mail for email.
func (a *AuthContext) ResetPassword(ctx context.Context, email string) error {
	if err := a.api.ForgotPassword(ctx, email); err != nil {
		a.alerter.Alert("Password reset failed", errorMessage(err))
		return err
	}
	return nil
}

// ConfirmReset sets a new password with the mailed token.
func (a *AuthContext) ConfirmReset(ctx context.Context, resetToken, newPassword string) error {
	if err := a.api.ResetPassword(ctx, resetToken, newPassword); err != nil {
		a.alerter.Alert("Password reset failed", errorMessage(err))
		return err
	}
	return nil
}

func (a *AuthContext) setLoading(v bool) {
	a.mu.Lock()
	a.loading = v
	a.mu.Unlock()
}

func signupMessage(err error) string {
	text := strings.ToLower(errorMessage(err))
	switch {
	case strings.Contains(text, "already exists"):
		return MessageAccountExists
	case strings.Contains(text, "password"):
		return MessageWeakPassword
	default:
		return MessageSignupFailed
	}
}

func errorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
