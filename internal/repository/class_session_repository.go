package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-instructor-api/internal/models"
	"github.com/noah-isme/lms-instructor-api/pkg/blob"
)

const classSessionColumns = "id, class_id, instructor_id, school_id, title, date, time_slot, session_type, status, actual_times, session_data, created_at, updated_at"

var classSessionUpdatable = columnSet("class_id", "school_id", "title", "date", "time_slot", "session_type", "status", "actual_times", "session_data")

// ClassSessionRepository manages persistence for class sessions.
type ClassSessionRepository struct {
	db *sqlx.DB
}

// NewClassSessionRepository constructs a ClassSessionRepository.
func NewClassSessionRepository(db *sqlx.DB) *ClassSessionRepository {
	return &ClassSessionRepository{db: db}
}

// List returns every session matching the equality filter ordered by date and slot.
func (r *ClassSessionRepository) List(ctx context.Context, filter models.SessionFilter) ([]models.ClassSessionDocument, error) {
	var conditions []string
	var args []interface{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if filter.InstructorID != "" {
		add("instructor_id", filter.InstructorID)
	}
	if filter.ClassID != "" {
		add("class_id", filter.ClassID)
	}
	if filter.Date != "" {
		add("date", filter.Date)
	}
	if filter.Status != "" {
		add("status", filter.Status)
	}

	query := "SELECT " + classSessionColumns + " FROM class_sessions"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date ASC, time_slot ASC"

	docs := make([]models.ClassSessionDocument, 0)
	if err := r.db.SelectContext(ctx, &docs, query, args...); err != nil {
		return nil, fmt.Errorf("list class sessions: %w", err)
	}
	return docs, nil
}

// FindByID fetches a session by id.
func (r *ClassSessionRepository) FindByID(ctx context.Context, id string) (*models.ClassSessionDocument, error) {
	const query = `SELECT ` + classSessionColumns + ` FROM class_sessions WHERE id = $1`
	var doc models.ClassSessionDocument
	if err := r.db.GetContext(ctx, &doc, query, id); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Create inserts a new session.
func (r *ClassSessionRepository) Create(ctx context.Context, doc *models.ClassSessionDocument) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	stamp(&doc.CreatedAt, &doc.UpdatedAt)
	if len(doc.ActualTimes) == 0 {
		doc.ActualTimes = blob.EmptyObject()
	}
	if len(doc.SessionData) == 0 {
		doc.SessionData = blob.EmptyObject()
	}

	const query = `INSERT INTO class_sessions (id, class_id, instructor_id, school_id, title, date, time_slot, session_type, status, actual_times, session_data, created_at, updated_at)
		VALUES (:id, :class_id, :instructor_id, :school_id, :title, :date, :time_slot, :session_type, :status, :actual_times, :session_data, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, doc); err != nil {
		return fmt.Errorf("create class session: %w", err)
	}
	return nil
}

// Update writes only the supplied columns.
func (r *ClassSessionRepository) Update(ctx context.Context, id string, fields Fields) error {
	return execUpdate(ctx, r.db, "class_sessions", classSessionUpdatable, id, fields)
}
