package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-instructor-api/internal/models"
	"github.com/noah-isme/lms-instructor-api/pkg/blob"
)

const instructorScheduleColumns = "id, instructor_id, date, time_slots, created_at, updated_at"

// InstructorScheduleRepository manages per-day instructor schedules.
type InstructorScheduleRepository struct {
	db *sqlx.DB
}

// NewInstructorScheduleRepository constructs an InstructorScheduleRepository.
func NewInstructorScheduleRepository(db *sqlx.DB) *InstructorScheduleRepository {
	return &InstructorScheduleRepository{db: db}
}

// FindByDate fetches the schedule of one instructor for one day.
func (r *InstructorScheduleRepository) FindByDate(ctx context.Context, instructorID, date string) (*models.InstructorScheduleDocument, error) {
	const query = `SELECT ` + instructorScheduleColumns + ` FROM instructor_schedules WHERE instructor_id = $1 AND date = $2 LIMIT 1`
	var doc models.InstructorScheduleDocument
	if err := r.db.GetContext(ctx, &doc, query, instructorID, date); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListRange returns schedules between from and to inclusive. Empty bounds are open.
func (r *InstructorScheduleRepository) ListRange(ctx context.Context, instructorID, from, to string) ([]models.InstructorScheduleDocument, error) {
	query := "SELECT " + instructorScheduleColumns + " FROM instructor_schedules WHERE instructor_id = $1"
	args := []interface{}{instructorID}
	if from != "" {
		args = append(args, from)
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if to != "" {
		args = append(args, to)
		query += fmt.Sprintf(" AND date <= $%d", len(args))
	}
	query += " ORDER BY date ASC"

	docs := make([]models.InstructorScheduleDocument, 0)
	if err := r.db.SelectContext(ctx, &docs, query, args...); err != nil {
		return nil, fmt.Errorf("list instructor schedules: %w", err)
	}
	return docs, nil
}

// Upsert replaces the slot list of a day, creating the row when missing.
func (r *InstructorScheduleRepository) Upsert(ctx context.Context, doc *models.InstructorScheduleDocument) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	stamp(&doc.CreatedAt, &doc.UpdatedAt)
	if len(doc.TimeSlots) == 0 {
		doc.TimeSlots = blob.EmptyArray()
	}

	const query = `INSERT INTO instructor_schedules (id, instructor_id, date, time_slots, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (instructor_id, date) DO UPDATE SET time_slots = EXCLUDED.time_slots, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`
	row := r.db.QueryRowxContext(ctx, query, doc.ID, doc.InstructorID, doc.Date, doc.TimeSlots, doc.CreatedAt, doc.UpdatedAt)
	if err := row.Scan(&doc.ID, &doc.CreatedAt); err != nil {
		return fmt.Errorf("upsert instructor schedule: %w", err)
	}
	return nil
}
