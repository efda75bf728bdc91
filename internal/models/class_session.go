package models

import (
	"strings"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// SessionStatus is the advisory lifecycle of a class session.
type SessionStatus string

const (
	SessionScheduled SessionStatus = "scheduled"
	SessionOngoing   SessionStatus = "ongoing"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

// SessionType distinguishes online and in-person sessions.
type SessionType string

const (
	SessionOnline  SessionType = "online"
	SessionOffline SessionType = "offline"
)

// ActualTimes is the actual_times blob.
type ActualTimes struct {
	ActualStartTime *time.Time `json:"actual_start_time,omitempty"`
	ActualEndTime   *time.Time `json:"actual_end_time,omitempty"`
}

// SessionData is the session_data blob.
type SessionData struct {
	Materials          *[]string `json:"materials,omitempty"`
	Homework           *string   `json:"homework,omitempty"`
	Notes              *string   `json:"notes,omitempty"`
	CancellationReason *string   `json:"cancellation_reason,omitempty"`
}

// ClassSessionDocument is the stored form of a session.
type ClassSessionDocument struct {
	ID           string         `db:"id"`
	ClassID      string         `db:"class_id"`
	InstructorID string         `db:"instructor_id"`
	SchoolID     string         `db:"school_id"`
	Title        string         `db:"title"`
	Date         string         `db:"date"`
	TimeSlot     string         `db:"time_slot"`
	SessionType  SessionType    `db:"session_type"`
	Status       SessionStatus  `db:"status"`
	ActualTimes  types.JSONText `db:"actual_times"`
	SessionData  types.JSONText `db:"session_data"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

// ClassSession is one teaching occurrence.
type ClassSession struct {
	ID                 string        `json:"id"`
	ClassID            string        `json:"class_id"`
	InstructorID       string        `json:"instructor_id"`
	SchoolID           string        `json:"school_id"`
	Title              string        `json:"title"`
	Date               string        `json:"date"`
	StartTime          string        `json:"start_time"`
	EndTime            string        `json:"end_time"`
	SessionType        SessionType   `json:"session_type"`
	Status             SessionStatus `json:"status"`
	ActualStartTime    *time.Time    `json:"actual_start_time,omitempty"`
	ActualEndTime      *time.Time    `json:"actual_end_time,omitempty"`
	Materials          []string      `json:"materials"`
	Homework           string        `json:"homework"`
	Notes              string        `json:"notes"`
	CancellationReason string        `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// JoinTimeSlot renders the stored "HH:MM-HH:MM" form.
func JoinTimeSlot(start, end string) string {
	return start + "-" + end
}

// NormalizeClock parses an "H:MM" or "HH:MM" clock time and renders it zero
// padded so stored slots compare and sort as strings.
func NormalizeClock(v string) (string, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(v))
	if err != nil {
		return "", err
	}
	return t.Format("15:04"), nil
}

// SplitTimeSlot recovers start and end from a stored slot. A slot without a
// separator is treated as a start time with no end.
func SplitTimeSlot(slot string) (start, end string) {
	start, end, found := strings.Cut(slot, "-")
	if !found {
		return slot, ""
	}
	return start, end
}

// SessionFilter narrows session listings by equality.
type SessionFilter struct {
	InstructorID string
	ClassID      string
	Date         string
	Status       SessionStatus
}
