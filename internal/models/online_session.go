package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// OnlineSessionStatus tracks the meeting state.
type OnlineSessionStatus string

const (
	OnlineScheduled OnlineSessionStatus = "scheduled"
	OnlineLive      OnlineSessionStatus = "live"
	OnlineEnded     OnlineSessionStatus = "ended"
)

// Attendee is one entry of the attendees blob.
type Attendee struct {
	StudentID string     `json:"student_id" validate:"required"`
	Name      string     `json:"name,omitempty"`
	JoinedAt  *time.Time `json:"joined_at,omitempty"`
	LeftAt    *time.Time `json:"left_at,omitempty"`
}

// RecordingInfo is the recording blob.
type RecordingInfo struct {
	URL             *string `json:"url,omitempty"`
	DurationSeconds *int    `json:"duration_seconds,omitempty"`
	Available       *bool   `json:"available,omitempty"`
}

// ChatMessage is one chat line inside the content blob.
type ChatMessage struct {
	SenderID string    `json:"sender_id"`
	Message  string    `json:"message"`
	SentAt   time.Time `json:"sent_at"`
}

// SessionContent is the content blob holding chat and whiteboard state.
type SessionContent struct {
	Chat       *[]ChatMessage `json:"chat,omitempty"`
	Whiteboard *string        `json:"whiteboard,omitempty"`
}

// OnlineSessionDocument is the stored form of online meeting metadata.
type OnlineSessionDocument struct {
	ID           string              `db:"id"`
	SessionID    string              `db:"session_id"`
	InstructorID string              `db:"instructor_id"`
	Platform     string              `db:"platform"`
	MeetingURL   string              `db:"meeting_url"`
	MeetingID    string              `db:"meeting_id"`
	Status       OnlineSessionStatus `db:"status"`
	Attendees    types.JSONText      `db:"attendees"`
	Recording    types.JSONText      `db:"recording"`
	Content      types.JSONText      `db:"content"`
	CreatedAt    time.Time           `db:"created_at"`
	UpdatedAt    time.Time           `db:"updated_at"`
}

// OnlineSession is the meeting metadata of a class session.
type OnlineSession struct {
	ID                string              `json:"id"`
	SessionID         string              `json:"session_id"`
	InstructorID      string              `json:"instructor_id"`
	Platform          string              `json:"platform"`
	MeetingURL        string              `json:"meeting_url"`
	MeetingID         string              `json:"meeting_id"`
	Status            OnlineSessionStatus `json:"status"`
	Attendees         []Attendee          `json:"attendees"`
	RecordingURL      string              `json:"recording_url"`
	RecordingDuration int                 `json:"recording_duration_seconds"`
	RecordingReady    bool                `json:"recording_available"`
	Chat              []ChatMessage       `json:"chat"`
	Whiteboard        string              `json:"whiteboard"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}
