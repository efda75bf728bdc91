package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	netmail "net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/lms-instructor-api/internal/models"
	"github.com/noah-isme/lms-instructor-api/internal/repository"
	appErrors "github.com/noah-isme/lms-instructor-api/pkg/errors"
	"github.com/noah-isme/lms-instructor-api/pkg/mail"
)

type accountRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByID(ctx context.Context, id string) (*models.Account, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, account *models.Account) error
	UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error
}

type userProfileStore interface {
	FindByUserID(ctx context.Context, userID string) (*models.UserProfile, error)
	CreateIfMissing(ctx context.Context, profile *models.UserProfile) (bool, error)
}

type authSessionRepository interface {
	CreateSession(ctx context.Context, session *models.AuthSession) error
	FindSession(ctx context.Context, id string) (*models.AuthSession, error)
	RevokeSession(ctx context.Context, id string, revokedAt time.Time) error
	RevokeUserSessions(ctx context.Context, userID string, revokedAt time.Time) error
	CreateRecovery(ctx context.Context, recovery *models.PasswordRecovery) error
	ConsumeRecovery(ctx context.Context, tokenHash string, now time.Time) (*models.PasswordRecovery, error)
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	SessionExpiry     time.Duration
	Issuer            string
	PasswordResetURL  string
	PasswordResetTTL  time.Duration
}

// AuthService provides signup, login, session and account recovery use cases.
type AuthService struct {
	accounts  accountRepository
	profiles  userProfileStore
	sessions  authSessionRepository
	mailer    mail.Mailer
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance. mailer and metrics may be nil.
func NewAuthService(accounts accountRepository, profiles userProfileStore, sessions authSessionRepository, mailer mail.Mailer, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if mailer == nil {
		mailer = mail.NewConsoleMailer(logger)
	}
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = 24 * time.Hour
	}
	if config.SessionExpiry <= 0 {
		config.SessionExpiry = 30 * 24 * time.Hour
	}
	if config.PasswordResetTTL <= 0 {
		config.PasswordResetTTL = time.Hour
	}
	return &AuthService{
		accounts:  accounts,
		profiles:  profiles,
		sessions:  sessions,
		mailer:    mailer,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		config:    config,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Signup creates an account with a student profile and opens a session.
func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResult, error) {
	result, err := s.signup(ctx, req)
	s.metrics.RecordAuthAttempt("signup", err == nil)
	return result, err
}

func (s *AuthService) signup(ctx context.Context, req models.SignupRequest) (*models.AuthResult, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, signupValidationMessage(err))
	}

	exists, err := s.accounts.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check account email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "account already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to hash password")
	}
	account := &models.Account{Email: strings.ToLower(req.Email), PasswordHash: string(hash), Name: req.Name}
	if err := s.accounts.Create(ctx, account); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "account already exists")
		}
		return nil, appErrors.Internal(err, "failed to create account")
	}

	profile, err := s.ensureProfile(ctx, account)
	if err != nil {
		return nil, err
	}
	return s.openSession(ctx, account, profile, req.IP, req.UserAgent)
}

// Login authenticates credentials. A live session presented by the same
// account is reused instead of opening a new one.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResult, error) {
	result, err := s.login(ctx, req)
	s.metrics.RecordAuthAttempt("login", err == nil)
	return result, err
}

func (s *AuthService) login(ctx context.Context, req models.LoginRequest) (*models.AuthResult, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid login payload")
	}

	if req.SessionToken != "" {
		if result, ok := s.reuseSession(ctx, req); ok {
			return result, nil
		}
	}

	account, err := s.accounts.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
		}
		return nil, appErrors.Internal(err, "failed to fetch account")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}

	profile, err := s.ensureProfile(ctx, account)
	if err != nil {
		return nil, err
	}
	return s.openSession(ctx, account, profile, req.IP, req.UserAgent)
}

func (s *AuthService) reuseSession(ctx context.Context, req models.LoginRequest) (*models.AuthResult, bool) {
	claims, session, err := s.verify(ctx, req.SessionToken)
	if err != nil || !strings.EqualFold(claims.Email, req.Email) {
		return nil, false
	}
	account, err := s.accounts.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, false
	}
	profile, err := s.ensureProfile(ctx, account)
	if err != nil {
		return nil, false
	}
	issuedAt := s.now()
	if claims.IssuedAt != nil {
		issuedAt = claims.IssuedAt.Time
	}
	var expiresIn int64
	if claims.ExpiresAt != nil {
		expiresIn = int64(claims.ExpiresAt.Time.Sub(s.now()).Seconds())
	}
	return &models.AuthResult{
		AccessToken: req.SessionToken,
		SessionID:   session.ID,
		ExpiresIn:   expiresIn,
		IssuedAt:    issuedAt,
		Reused:      true,
		User:        userInfo(account),
		Profile:     profile,
		Redirect:    models.RedirectFor(profile.Role),
	}, true
}

// Logout revokes the session the access token is bound to.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return appErrors.Clone(appErrors.ErrUnauthorized, "no active session")
	}
	if err := s.sessions.RevokeSession(ctx, sessionID, s.now()); err != nil {
		return appErrors.Internal(err, "failed to revoke session")
	}
	return nil
}

// Me returns the account and profile of an authenticated user.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.CurrentUser, error) {
	account, err := s.accounts.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "account not found")
		}
		return nil, appErrors.Internal(err, "failed to load account")
	}
	profile, err := s.ensureProfile(ctx, account)
	if err != nil {
		return nil, err
	}
	return &models.CurrentUser{User: userInfo(account), Profile: profile}, nil
}

// ForgotPassword mails a one-time reset link. Unknown emails succeed silently.
func (s *AuthService) ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Validation(err, "invalid forgot password payload")
	}
	account, err := s.accounts.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Info("password reset requested for unknown email")
			return nil
		}
		return appErrors.Internal(err, "failed to fetch account")
	}

	token, err := randomToken()
	if err != nil {
		return appErrors.Internal(err, "failed to create reset token")
	}
	recovery := &models.PasswordRecovery{
		UserID:    account.ID,
		TokenHash: hashToken(token),
		ExpiresAt: s.now().Add(s.config.PasswordResetTTL),
	}
	if err := s.sessions.CreateRecovery(ctx, recovery); err != nil {
		return appErrors.Internal(err, "failed to store reset token")
	}

	link := resetLink(s.config.PasswordResetURL, token)
	msg := mail.Message{
		To:       netmail.Address{Name: account.Name, Address: account.Email},
		Subject:  "Reset your password",
		Text:     fmt.Sprintf("Hi %s,\n\nUse the link below to choose a new password. It expires in %s.\n\n%s\n", account.Name, s.config.PasswordResetTTL, link),
		Category: "password-reset",
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Error("send password reset mail", zap.String("user_id", account.ID), zap.Error(err))
		return appErrors.Internal(err, "failed to send reset mail")
	}
	return nil
}

// ResetPassword consumes a reset token, stores the new password and revokes
// every session of the account.
func (s *AuthService) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Validation(err, "invalid reset password payload")
	}
	now := s.now()
	recovery, err := s.sessions.ConsumeRecovery(ctx, hashToken(req.Token), now)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrUnauthorized, "reset token is invalid or expired")
		}
		return appErrors.Internal(err, "failed to consume reset token")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Internal(err, "failed to hash password")
	}
	if err := s.accounts.UpdatePassword(ctx, recovery.UserID, string(hash), now); err != nil {
		return appErrors.Internal(err, "failed to update password")
	}
	if err := s.sessions.RevokeUserSessions(ctx, recovery.UserID, now); err != nil {
		s.logger.Warn("revoke sessions after password reset", zap.String("user_id", recovery.UserID), zap.Error(err))
	}
	return nil
}

// Authenticate validates an access token and requires its session to be live.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.JWTClaims, error) {
	claims, _, err := s.verify(ctx, token)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *AuthService) verify(ctx context.Context, token string) (*models.JWTClaims, *models.AuthSession, error) {
	claims, err := s.ValidateToken(token)
	if err != nil {
		return nil, nil, err
	}
	session, err := s.sessions.FindSession(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrUnauthorized, "session not found")
		}
		return nil, nil, appErrors.Internal(err, "failed to load session")
	}
	if session.UserID != claims.UserID || !session.Live(s.now()) {
		return nil, nil, appErrors.Clone(appErrors.ErrUnauthorized, "session expired or revoked")
	}
	return claims, session, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}
	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

func (s *AuthService) ensureProfile(ctx context.Context, account *models.Account) (*models.UserProfile, error) {
	profile, err := s.profiles.FindByUserID(ctx, account.ID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Internal(err, "failed to load profile")
	}
	if _, err := s.profiles.CreateIfMissing(ctx, &models.UserProfile{
		UserID: account.ID,
		Email:  account.Email,
		Name:   account.Name,
		Role:   models.RoleStudent,
	}); err != nil {
		return nil, appErrors.Internal(err, "failed to create profile")
	}
	profile, err = s.profiles.FindByUserID(ctx, account.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load profile")
	}
	return profile, nil
}

func (s *AuthService) openSession(ctx context.Context, account *models.Account, profile *models.UserProfile, ip, userAgent string) (*models.AuthResult, error) {
	issuedAt := s.now()
	session := &models.AuthSession{
		UserID:    account.ID,
		ExpiresAt: issuedAt.Add(s.config.SessionExpiry),
		IPAddress: ip,
		UserAgent: userAgent,
		CreatedAt: issuedAt,
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, appErrors.Internal(err, "failed to create session")
	}

	token, err := s.signAccessToken(account, profile, session, issuedAt)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to create access token")
	}
	return &models.AuthResult{
		AccessToken: token,
		SessionID:   session.ID,
		ExpiresIn:   int64(s.config.AccessTokenExpiry.Seconds()),
		IssuedAt:    issuedAt,
		User:        userInfo(account),
		Profile:     profile,
		Redirect:    models.RedirectFor(profile.Role),
	}, nil
}

func (s *AuthService) signAccessToken(account *models.Account, profile *models.UserProfile, session *models.AuthSession, issuedAt time.Time) (string, error) {
	expiresAt := issuedAt.Add(s.config.AccessTokenExpiry)
	if session.ExpiresAt.Before(expiresAt) {
		expiresAt = session.ExpiresAt
	}
	claims := &models.JWTClaims{
		UserID:    account.ID,
		SessionID: session.ID,
		Role:      profile.Role,
		Email:     account.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   account.ID,
			ID:        session.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.AccessTokenSecret))
}

func userInfo(account *models.Account) models.UserInfo {
	return models.UserInfo{ID: account.ID, Email: account.Email, Name: account.Name}
}

// signupValidationMessage keeps the words "password" and "email" in the
// message so clients can map it to friendlier text.
func signupValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			switch fe.Field() {
			case "Password":
				return "password must be at least 8 characters"
			case "Email":
				return "a valid email is required"
			case "Name":
				return "name is required"
			}
		}
	}
	return "invalid signup payload"
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func resetLink(base, token string) string {
	if base == "" {
		return token
	}
	u, err := url.Parse(base)
	if err != nil {
		return base + "?token=" + url.QueryEscape(token)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}
