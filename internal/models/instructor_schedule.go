package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// SlotStatus tags a schedule time slot.
type SlotStatus string

const (
	SlotAvailable   SlotStatus = "available"
	SlotBooked      SlotStatus = "booked"
	SlotBreak       SlotStatus = "break"
	SlotUnavailable SlotStatus = "unavailable"
)

// TimeSlot is one entry of the time_slots blob.
type TimeSlot struct {
	StartTime string     `json:"start_time" validate:"required,datetime=15:04"`
	EndTime   string     `json:"end_time" validate:"required,datetime=15:04"`
	Status    SlotStatus `json:"status" validate:"required,oneof=available booked break unavailable"`
	ClassID   string     `json:"class_id,omitempty"`
	SessionID string     `json:"session_id,omitempty"`
}

// InstructorScheduleDocument is the stored form of a day schedule.
type InstructorScheduleDocument struct {
	ID           string         `db:"id"`
	InstructorID string         `db:"instructor_id"`
	Date         string         `db:"date"`
	TimeSlots    types.JSONText `db:"time_slots"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

// InstructorSchedule lists an instructor's slots for one day.
type InstructorSchedule struct {
	ID           string     `json:"id"`
	InstructorID string     `json:"instructor_id"`
	Date         string     `json:"date"`
	TimeSlots    []TimeSlot `json:"time_slots"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
