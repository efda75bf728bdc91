package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-instructor-api/internal/models"
)

// AuthSessionRepository persists login sessions and password recovery tokens.
type AuthSessionRepository struct {
	db *sqlx.DB
}

// NewAuthSessionRepository constructs an AuthSessionRepository.
func NewAuthSessionRepository(db *sqlx.DB) *AuthSessionRepository {
	return &AuthSessionRepository{db: db}
}

// CreateSession stores a new session.
func (r *AuthSessionRepository) CreateSession(ctx context.Context, session *models.AuthSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO auth_sessions (id, user_id, expires_at, revoked, ip_address, user_agent, created_at)
		VALUES (:id, :user_id, :expires_at, :revoked, :ip_address, :user_agent, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("create auth session: %w", err)
	}
	return nil
}

// FindSession fetches a session by id.
func (r *AuthSessionRepository) FindSession(ctx context.Context, id string) (*models.AuthSession, error) {
	const query = `SELECT id, user_id, expires_at, revoked, revoked_at, ip_address, user_agent, created_at FROM auth_sessions WHERE id = $1`
	var session models.AuthSession
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// RevokeSession marks one session revoked.
func (r *AuthSessionRepository) RevokeSession(ctx context.Context, id string, revokedAt time.Time) error {
	const query = `UPDATE auth_sessions SET revoked = TRUE, revoked_at = $2 WHERE id = $1 AND revoked = FALSE`
	if _, err := r.db.ExecContext(ctx, query, id, revokedAt); err != nil {
		return fmt.Errorf("revoke auth session: %w", err)
	}
	return nil
}

// RevokeUserSessions revokes every live session of a user.
func (r *AuthSessionRepository) RevokeUserSessions(ctx context.Context, userID string, revokedAt time.Time) error {
	const query = `UPDATE auth_sessions SET revoked = TRUE, revoked_at = $2 WHERE user_id = $1 AND revoked = FALSE`
	if _, err := r.db.ExecContext(ctx, query, userID, revokedAt); err != nil {
		return fmt.Errorf("revoke user sessions: %w", err)
	}
	return nil
}

// CreateRecovery stores a hashed password recovery token.
func (r *AuthSessionRepository) CreateRecovery(ctx context.Context, recovery *models.PasswordRecovery) error {
	if recovery.ID == "" {
		recovery.ID = uuid.NewString()
	}
	if recovery.CreatedAt.IsZero() {
		recovery.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO password_recoveries (id, user_id, token_hash, expires_at, created_at)
		VALUES (:id, :user_id, :token_hash, :expires_at, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, recovery); err != nil {
		return fmt.Errorf("create password recovery: %w", err)
	}
	return nil
}

// ConsumeRecovery marks an unused, unexpired token as used and returns it.
// It returns sql.ErrNoRows when no such token exists.
func (r *AuthSessionRepository) ConsumeRecovery(ctx context.Context, tokenHash string, now time.Time) (*models.PasswordRecovery, error) {
	const query = `UPDATE password_recoveries SET used_at = $2
		WHERE token_hash = $1 AND used_at IS NULL AND expires_at > $2
		RETURNING id, user_id, token_hash, expires_at, used_at, created_at`
	var recovery models.PasswordRecovery
	if err := r.db.GetContext(ctx, &recovery, query, tokenHash, now); err != nil {
		return nil, err
	}
	return &recovery, nil
}
