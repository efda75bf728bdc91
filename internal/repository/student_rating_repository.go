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

const studentRatingColumns = "id, student_id, session_id, instructor_id, class_id, ratings, feedback, is_visible, created_at, updated_at"

var studentRatingUpdatable = columnSet("ratings", "feedback", "is_visible")

// StudentRatingRepository manages persistence for student ratings.
type StudentRatingRepository struct {
	db *sqlx.DB
}

// NewStudentRatingRepository constructs a StudentRatingRepository.
func NewStudentRatingRepository(db *sqlx.DB) *StudentRatingRepository {
	return &StudentRatingRepository{db: db}
}

// List returns every rating matching the filter, newest first.
func (r *StudentRatingRepository) List(ctx context.Context, filter models.RatingFilter) ([]models.StudentRatingDocument, error) {
	var conditions []string
	var args []interface{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if filter.StudentID != "" {
		add("student_id", filter.StudentID)
	}
	if filter.SessionID != "" {
		add("session_id", filter.SessionID)
	}
	if filter.InstructorID != "" {
		add("instructor_id", filter.InstructorID)
	}
	if filter.VisibleOnly {
		conditions = append(conditions, "is_visible = TRUE")
	}

	query := "SELECT " + studentRatingColumns + " FROM student_ratings"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	docs := make([]models.StudentRatingDocument, 0)
	if err := r.db.SelectContext(ctx, &docs, query, args...); err != nil {
		return nil, fmt.Errorf("list student ratings: %w", err)
	}
	return docs, nil
}

// FindByID fetches a rating by id.
func (r *StudentRatingRepository) FindByID(ctx context.Context, id string) (*models.StudentRatingDocument, error) {
	const query = `SELECT ` + studentRatingColumns + ` FROM student_ratings WHERE id = $1`
	var doc models.StudentRatingDocument
	if err := r.db.GetContext(ctx, &doc, query, id); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Create inserts a new rating.
func (r *StudentRatingRepository) Create(ctx context.Context, doc *models.StudentRatingDocument) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	stamp(&doc.CreatedAt, &doc.UpdatedAt)
	if len(doc.Ratings) == 0 {
		doc.Ratings = blob.EmptyObject()
	}
	if len(doc.Feedback) == 0 {
		doc.Feedback = blob.EmptyObject()
	}

	const query = `INSERT INTO student_ratings (id, student_id, session_id, instructor_id, class_id, ratings, feedback, is_visible, created_at, updated_at)
		VALUES (:id, :student_id, :session_id, :instructor_id, :class_id, :ratings, :feedback, :is_visible, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, doc); err != nil {
		return fmt.Errorf("create student rating: %w", err)
	}
	return nil
}

// Update writes only the supplied columns.
func (r *StudentRatingRepository) Update(ctx context.Context, id string, fields Fields) error {
	return execUpdate(ctx, r.db, "student_ratings", studentRatingUpdatable, id, fields)
}
