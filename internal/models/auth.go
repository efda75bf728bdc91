package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Post-login destinations.
const (
	RedirectAdmin   = "/admin"
	RedirectDefault = "/home"
)

// RedirectFor returns the landing route for a role.
func RedirectFor(role UserRole) string {
	if role == RoleAdmin {
		return RedirectAdmin
	}
	return RedirectDefault
}

// SignupRequest creates an account.
type SignupRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Name      string `json:"name" validate:"required,max=120"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginRequest holds credentials. SessionToken lets a client that already
// holds a live session reuse it instead of opening a new one.
type LoginRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required"`
	SessionToken string `json:"-"`
	IP           string `json:"-"`
	UserAgent    string `json:"-"`
}

// AuthResult is returned by signup and login.
type AuthResult struct {
	AccessToken string       `json:"access_token"`
	SessionID   string       `json:"session_id"`
	ExpiresIn   int64        `json:"expires_in"`
	IssuedAt    time.Time    `json:"issued_at"`
	Reused      bool         `json:"reused"`
	User        UserInfo     `json:"user"`
	Profile     *UserProfile `json:"profile"`
	Redirect    string       `json:"redirect"`
}

// ForgotPasswordRequest starts account recovery.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest completes account recovery.
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// UpdateRoleRequest is used by admins to change a user's role.
type UpdateRoleRequest struct {
	Role UserRole `json:"role" validate:"required,oneof=student instructor admin"`
}

// UserInfo describes the authenticated account.
type UserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// CurrentUser bundles the account and its profile.
type CurrentUser struct {
	User    UserInfo     `json:"user"`
	Profile *UserProfile `json:"profile"`
}

// JWTClaims represents the access token payload.
type JWTClaims struct {
	UserID    string   `json:"user_id"`
	SessionID string   `json:"session_id"`
	Role      UserRole `json:"role"`
	Email     string   `json:"email"`
	jwt.RegisteredClaims
}
