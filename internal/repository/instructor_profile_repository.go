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

const instructorProfileColumns = "id, user_id, name, email, phone, status, max_classes, current_assignments, rating, total_ratings, profile_data, created_at, updated_at"

var instructorProfileUpdatable = columnSet("name", "email", "phone", "status", "max_classes", "current_assignments", "profile_data")

// InstructorProfileRepository manages persistence for instructor profiles.
type InstructorProfileRepository struct {
	db *sqlx.DB
}

// NewInstructorProfileRepository constructs an InstructorProfileRepository.
func NewInstructorProfileRepository(db *sqlx.DB) *InstructorProfileRepository {
	return &InstructorProfileRepository{db: db}
}

// List returns every profile matching the filter, newest first.
func (r *InstructorProfileRepository) List(ctx context.Context, filter models.InstructorFilter) ([]models.InstructorProfileDocument, error) {
	var conditions []string
	var args []interface{}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	query := "SELECT " + instructorProfileColumns + " FROM instructor_profiles"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	docs := make([]models.InstructorProfileDocument, 0)
	if err := r.db.SelectContext(ctx, &docs, query, args...); err != nil {
		return nil, fmt.Errorf("list instructor profiles: %w", err)
	}
	return docs, nil
}

// FindByID fetches a profile by its id.
func (r *InstructorProfileRepository) FindByID(ctx context.Context, id string) (*models.InstructorProfileDocument, error) {
	const query = `SELECT ` + instructorProfileColumns + ` FROM instructor_profiles WHERE id = $1`
	var doc models.InstructorProfileDocument
	if err := r.db.GetContext(ctx, &doc, query, id); err != nil {
		return nil, err
	}
	return &doc, nil
}

// FindByUserID fetches the profile owned by a user account.
func (r *InstructorProfileRepository) FindByUserID(ctx context.Context, userID string) (*models.InstructorProfileDocument, error) {
	const query = `SELECT ` + instructorProfileColumns + ` FROM instructor_profiles WHERE user_id = $1 LIMIT 1`
	var doc models.InstructorProfileDocument
	if err := r.db.GetContext(ctx, &doc, query, userID); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Create inserts a new profile, stamping id and timestamps.
func (r *InstructorProfileRepository) Create(ctx context.Context, doc *models.InstructorProfileDocument) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	stamp(&doc.CreatedAt, &doc.UpdatedAt)
	if doc.CurrentAssignments == nil {
		doc.CurrentAssignments = []string{}
	}
	if len(doc.ProfileData) == 0 {
		doc.ProfileData = blob.EmptyObject()
	}

	const query = `INSERT INTO instructor_profiles (id, user_id, name, email, phone, status, max_classes, current_assignments, rating, total_ratings, profile_data, created_at, updated_at)
		VALUES (:id, :user_id, :name, :email, :phone, :status, :max_classes, :current_assignments, :rating, :total_ratings, :profile_data, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, doc); err != nil {
		return fmt.Errorf("create instructor profile: %w", err)
	}
	return nil
}

// Update writes only the supplied columns and restamps updated_at.
func (r *InstructorProfileRepository) Update(ctx context.Context, id string, fields Fields) error {
	return execUpdate(ctx, r.db, "instructor_profiles", instructorProfileUpdatable, id, fields)
}

// UpdateRatingAggregate stores the recomputed rating mean and count.
func (r *InstructorProfileRepository) UpdateRatingAggregate(ctx context.Context, id string, rating float64, total int) error {
	return execUpdate(ctx, r.db, "instructor_profiles", columnSet("rating", "total_ratings"), id, Fields{
		"rating":        rating,
		"total_ratings": total,
	})
}
