package models

import (
	"math"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// RatingScores is the ratings blob: five sub-scores and their derived overall.
type RatingScores struct {
	Participation int `json:"participation" validate:"min=1,max=5"`
	Comprehension int `json:"comprehension" validate:"min=1,max=5"`
	Homework      int `json:"homework" validate:"min=1,max=5"`
	Speaking      int `json:"speaking" validate:"min=1,max=5"`
	Listening     int `json:"listening" validate:"min=1,max=5"`
	Overall       int `json:"overall"`
}

// ComputeOverall returns the mean of the five sub-scores rounded half up.
func (r RatingScores) ComputeOverall() int {
	sum := r.Participation + r.Comprehension + r.Homework + r.Speaking + r.Listening
	return int(math.Floor(float64(sum)/5 + 0.5))
}

// WithOverall returns a copy with Overall derived from the sub-scores.
func (r RatingScores) WithOverall() RatingScores {
	r.Overall = r.ComputeOverall()
	return r
}

// RatingFeedback is the feedback blob.
type RatingFeedback struct {
	Strengths    *string `json:"strengths,omitempty"`
	Improvements *string `json:"improvements,omitempty"`
	Comments     *string `json:"comments,omitempty"`
	ParentNote   *string `json:"parent_note,omitempty"`
}

// StudentRatingDocument is the stored form of a rating.
type StudentRatingDocument struct {
	ID           string         `db:"id"`
	StudentID    string         `db:"student_id"`
	SessionID    string         `db:"session_id"`
	InstructorID string         `db:"instructor_id"`
	ClassID      string         `db:"class_id"`
	Ratings      types.JSONText `db:"ratings"`
	Feedback     types.JSONText `db:"feedback"`
	IsVisible    bool           `db:"is_visible"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

// StudentRating is an instructor's evaluation of one student in one session.
type StudentRating struct {
	ID           string       `json:"id"`
	StudentID    string       `json:"student_id"`
	SessionID    string       `json:"session_id"`
	InstructorID string       `json:"instructor_id"`
	ClassID      string       `json:"class_id"`
	Ratings      RatingScores `json:"ratings"`
	Strengths    string       `json:"strengths"`
	Improvements string       `json:"improvements"`
	Comments     string       `json:"comments"`
	ParentNote   string       `json:"parent_note"`
	IsVisible    bool         `json:"is_visible"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// RatingFilter narrows rating listings by equality.
type RatingFilter struct {
	StudentID    string
	SessionID    string
	InstructorID string
	VisibleOnly  bool
}
