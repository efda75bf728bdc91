package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
)

// InstructorStatus is the availability state of an instructor.
type InstructorStatus string

const (
	InstructorAvailable   InstructorStatus = "available"
	InstructorAssigned    InstructorStatus = "assigned"
	InstructorUnavailable InstructorStatus = "unavailable"
	InstructorOnLeave     InstructorStatus = "on-leave"
)

// ProfileData is the profile_data blob. Nil members are absent from the stored JSON.
type ProfileData struct {
	ProfileImage   *string   `json:"profile_image,omitempty"`
	Bio            *string   `json:"bio,omitempty"`
	Specialization *[]string `json:"specialization,omitempty"`
	Experience     *int      `json:"experience,omitempty"`
	Qualifications *[]string `json:"qualifications,omitempty"`
	Location       *string   `json:"location,omitempty"`
}

// InstructorProfileDocument is the stored form of an instructor profile.
type InstructorProfileDocument struct {
	ID                 string           `db:"id"`
	UserID             string           `db:"user_id"`
	Name               string           `db:"name"`
	Email              string           `db:"email"`
	Phone              string           `db:"phone"`
	Status             InstructorStatus `db:"status"`
	MaxClasses         int              `db:"max_classes"`
	CurrentAssignments pq.StringArray   `db:"current_assignments"`
	Rating             float64          `db:"rating"`
	TotalRatings       int              `db:"total_ratings"`
	ProfileData        types.JSONText   `db:"profile_data"`
	CreatedAt          time.Time        `db:"created_at"`
	UpdatedAt          time.Time        `db:"updated_at"`
}

// InstructorProfile is the typed view of an instructor.
type InstructorProfile struct {
	ID                 string           `json:"id"`
	UserID             string           `json:"user_id"`
	Name               string           `json:"name"`
	Email              string           `json:"email"`
	Phone              string           `json:"phone"`
	Status             InstructorStatus `json:"status"`
	MaxClasses         int              `json:"max_classes"`
	CurrentAssignments []string         `json:"current_assignments"`
	Rating             float64          `json:"rating"`
	TotalRatings       int              `json:"total_ratings"`
	ProfileImage       string           `json:"profile_image"`
	Bio                string           `json:"bio"`
	Specialization     []string         `json:"specialization"`
	Experience         int              `json:"experience"`
	Qualifications     []string         `json:"qualifications"`
	Location           string           `json:"location"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// InstructorFilter narrows instructor listings. All fields are equality filters.
type InstructorFilter struct {
	UserID string
	Status InstructorStatus
}
