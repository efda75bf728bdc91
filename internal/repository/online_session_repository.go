package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-instructor-api/internal/models"
	"github.com/noah-isme/lms-instructor-api/pkg/blob"
)

const onlineSessionColumns = "id, session_id, instructor_id, platform, meeting_url, meeting_id, status, attendees, recording, content, created_at, updated_at"

var onlineSessionUpdatable = columnSet("platform", "meeting_url", "meeting_id", "status", "attendees", "recording", "content")

// OnlineSessionRepository manages persistence for online meeting metadata.
type OnlineSessionRepository struct {
	db *sqlx.DB
}

// NewOnlineSessionRepository constructs an OnlineSessionRepository.
func NewOnlineSessionRepository(db *sqlx.DB) *OnlineSessionRepository {
	return &OnlineSessionRepository{db: db}
}

// FindBySessionID fetches the online session attached to a class session.
func (r *OnlineSessionRepository) FindBySessionID(ctx context.Context, sessionID string) (*models.OnlineSessionDocument, error) {
	const query = `SELECT ` + onlineSessionColumns + ` FROM online_sessions WHERE session_id = $1 LIMIT 1`
	var doc models.OnlineSessionDocument
	if err := r.db.GetContext(ctx, &doc, query, sessionID); err != nil {
		return nil, err
	}
	return &doc, nil
}

// FindByID fetches an online session by id.
func (r *OnlineSessionRepository) FindByID(ctx context.Context, id string) (*models.OnlineSessionDocument, error) {
	const query = `SELECT ` + onlineSessionColumns + ` FROM online_sessions WHERE id = $1`
	var doc models.OnlineSessionDocument
	if err := r.db.GetContext(ctx, &doc, query, id); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ExistsForSession reports whether a class session already has online metadata.
func (r *OnlineSessionRepository) ExistsForSession(ctx context.Context, sessionID string) (bool, error) {
	const query = `SELECT 1 FROM online_sessions WHERE session_id = $1 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, sessionID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check online session: %w", err)
	}
	return true, nil
}

// Create inserts new online session metadata.
func (r *OnlineSessionRepository) Create(ctx context.Context, doc *models.OnlineSessionDocument) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	stamp(&doc.CreatedAt, &doc.UpdatedAt)
	if len(doc.Attendees) == 0 {
		doc.Attendees = blob.EmptyArray()
	}
	if len(doc.Recording) == 0 {
		doc.Recording = blob.EmptyObject()
	}
	if len(doc.Content) == 0 {
		doc.Content = blob.EmptyObject()
	}

	const query = `INSERT INTO online_sessions (id, session_id, instructor_id, platform, meeting_url, meeting_id, status, attendees, recording, content, created_at, updated_at)
		VALUES (:id, :session_id, :instructor_id, :platform, :meeting_url, :meeting_id, :status, :attendees, :recording, :content, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, doc); err != nil {
		return fmt.Errorf("create online session: %w", err)
	}
	return nil
}

// Update writes only the supplied columns.
func (r *OnlineSessionRepository) Update(ctx context.Context, id string, fields Fields) error {
	return execUpdate(ctx, r.db, "online_sessions", onlineSessionUpdatable, id, fields)
}
