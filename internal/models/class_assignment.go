package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// AssignmentStatus tracks a class assignment's lifecycle.
type AssignmentStatus string

const (
	AssignmentActive    AssignmentStatus = "active"
	AssignmentPending   AssignmentStatus = "pending"
	AssignmentCompleted AssignmentStatus = "completed"
	AssignmentCancelled AssignmentStatus = "cancelled"
)

// ClassDetails is the class_details blob.
type ClassDetails struct {
	ClassName *string `json:"class_name,omitempty"`
	Subject   *string `json:"subject,omitempty"`
	Grade     *string `json:"grade,omitempty"`
	Schedule  *string `json:"schedule,omitempty"`
}

// ClassAssignmentDocument is the stored form of an assignment.
type ClassAssignmentDocument struct {
	ID           string           `db:"id"`
	InstructorID string           `db:"instructor_id"`
	ClassID      string           `db:"class_id"`
	SchoolID     string           `db:"school_id"`
	StartDate    string           `db:"start_date"`
	EndDate      string           `db:"end_date"`
	IsTemporary  bool             `db:"is_temporary"`
	Status       AssignmentStatus `db:"status"`
	AssignedBy   string           `db:"assigned_by"`
	ClassDetails types.JSONText   `db:"class_details"`
	CreatedAt    time.Time        `db:"created_at"`
	UpdatedAt    time.Time        `db:"updated_at"`
}

// ClassAssignment links an instructor to a class at a school for a date range.
type ClassAssignment struct {
	ID           string           `json:"id"`
	InstructorID string           `json:"instructor_id"`
	ClassID      string           `json:"class_id"`
	SchoolID     string           `json:"school_id"`
	StartDate    string           `json:"start_date"`
	EndDate      string           `json:"end_date"`
	IsTemporary  bool             `json:"is_temporary"`
	Status       AssignmentStatus `json:"status"`
	AssignedBy   string           `json:"assigned_by"`
	ClassName    string           `json:"class_name"`
	Subject      string           `json:"subject"`
	Grade        string           `json:"grade"`
	Schedule     string           `json:"schedule"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// ClassSummary is the class view derived from an assignment's class details.
type ClassSummary struct {
	ClassID   string `json:"class_id"`
	SchoolID  string `json:"school_id"`
	ClassName string `json:"class_name"`
	Subject   string `json:"subject"`
	Grade     string `json:"grade"`
	Schedule  string `json:"schedule"`
}
