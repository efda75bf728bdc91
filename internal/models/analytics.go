package models

import "time"

// InstructorAnalytics aggregates an instructor's sessions and ratings.
type InstructorAnalytics struct {
	InstructorID      string    `json:"instructor_id"`
	TotalSessions     int       `json:"total_sessions"`
	ScheduledSessions int       `json:"scheduled_sessions"`
	OngoingSessions   int       `json:"ongoing_sessions"`
	CompletedSessions int       `json:"completed_sessions"`
	CancelledSessions int       `json:"cancelled_sessions"`
	TotalRatings      int       `json:"total_ratings"`
	AverageRating     float64   `json:"average_rating"`
	GeneratedAt       time.Time `json:"generated_at"`
}

// CalendarOverview is the per-day instructor calendar.
type CalendarOverview struct {
	InstructorID string              `json:"instructor_id"`
	Date         string              `json:"date"`
	Sessions     []ClassSession      `json:"sessions"`
	Schedule     *InstructorSchedule `json:"schedule"`
	Assignments  []ClassAssignment   `json:"assignments"`
	Classes      []ClassSummary      `json:"classes"`
	Degraded     []string            `json:"degraded,omitempty"`
}

// SystemMetrics is a lightweight snapshot of process metrics.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
