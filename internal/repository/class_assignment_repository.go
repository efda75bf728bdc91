package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-instructor-api/internal/models"
	"github.com/noah-isme/lms-instructor-api/pkg/blob"
)

const classAssignmentColumns = "id, instructor_id, class_id, school_id, start_date, end_date, is_temporary, status, assigned_by, class_details, created_at, updated_at"

var classAssignmentUpdatable = columnSet("class_id", "school_id", "start_date", "end_date", "is_temporary", "status", "assigned_by", "class_details")

// ClassAssignmentRepository manages persistence for class assignments.
type ClassAssignmentRepository struct {
	db *sqlx.DB
}

// NewClassAssignmentRepository constructs a ClassAssignmentRepository.
func NewClassAssignmentRepository(db *sqlx.DB) *ClassAssignmentRepository {
	return &ClassAssignmentRepository{db: db}
}

// ListByInstructor returns an instructor's assignments, optionally narrowed by status.
func (r *ClassAssignmentRepository) ListByInstructor(ctx context.Context, instructorID string, status models.AssignmentStatus) ([]models.ClassAssignmentDocument, error) {
	query := "SELECT " + classAssignmentColumns + " FROM class_assignments WHERE instructor_id = $1"
	args := []interface{}{instructorID}
	if status != "" {
		query += " AND status = $2"
		args = append(args, status)
	}
	query += " ORDER BY start_date DESC"

	docs := make([]models.ClassAssignmentDocument, 0)
	if err := r.db.SelectContext(ctx, &docs, query, args...); err != nil {
		return nil, fmt.Errorf("list class assignments: %w", err)
	}
	return docs, nil
}

// FindByID fetches an assignment by id.
func (r *ClassAssignmentRepository) FindByID(ctx context.Context, id string) (*models.ClassAssignmentDocument, error) {
	const query = `SELECT ` + classAssignmentColumns + ` FROM class_assignments WHERE id = $1`
	var doc models.ClassAssignmentDocument
	if err := r.db.GetContext(ctx, &doc, query, id); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Create inserts a new assignment.
func (r *ClassAssignmentRepository) Create(ctx context.Context, doc *models.ClassAssignmentDocument) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	stamp(&doc.CreatedAt, &doc.UpdatedAt)
	if len(doc.ClassDetails) == 0 {
		doc.ClassDetails = blob.EmptyObject()
	}

	const query = `INSERT INTO class_assignments (id, instructor_id, class_id, school_id, start_date, end_date, is_temporary, status, assigned_by, class_details, created_at, updated_at)
		VALUES (:id, :instructor_id, :class_id, :school_id, :start_date, :end_date, :is_temporary, :status, :assigned_by, :class_details, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, doc); err != nil {
		return fmt.Errorf("create class assignment: %w", err)
	}
	return nil
}

// Update writes only the supplied columns.
func (r *ClassAssignmentRepository) Update(ctx context.Context, id string, fields Fields) error {
	return execUpdate(ctx, r.db, "class_assignments", classAssignmentUpdatable, id, fields)
}
