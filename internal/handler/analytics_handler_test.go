package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-instructor-api/internal/models"
)

type analyticsStub struct {
	hit bool
}

func (a *analyticsStub) GetInstructorAnalytics(_ context.Context, instructorID string) (*models.InstructorAnalytics, bool, error) {
	return &models.InstructorAnalytics{InstructorID: instructorID, TotalSessions: 3, AverageRating: 4.5}, a.hit, nil
}

func (a *analyticsStub) SystemMetrics() models.SystemMetrics {
	return models.SystemMetrics{CacheHitRatio: 0.5}
}

type calendarStub struct {
	degraded []string
	date     string
}

func (c *calendarStub) GetCalendar(_ context.Context, instructorID, date string) (*models.CalendarOverview, error) {
	c.date = date
	return &models.CalendarOverview{InstructorID: instructorID, Date: date, Degraded: c.degraded}, nil
}

func TestAnalyticsHandlerReportsCacheHit(t *testing.T) {
	h := NewAnalyticsHandler(&analyticsStub{hit: true}, &calendarStub{})
	r := newRouter(http.MethodGet, "/instructors/:id/analytics", asInstructor("u-1"), h.Instructor)

	rec := serve(r, http.MethodGet, "/instructors/ins-1/analytics", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, true, env.Meta["cache_hit"])
	assert.Contains(t, string(env.Data), `"instructor_id":"ins-1"`)
}

func TestAnalyticsHandlerCalendarListsDegradedParts(t *testing.T) {
	cal := &calendarStub{degraded: []string{"classes", "sessions"}}
	h := NewAnalyticsHandler(&analyticsStub{}, cal)
	r := newRouter(http.MethodGet, "/instructors/:id/calendar", asInstructor("u-1"), h.Calendar)

	rec := serve(r, http.MethodGet, "/instructors/ins-1/calendar?date=2024-05-01", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024-05-01", cal.date)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, []interface{}{"classes", "sessions"}, env.Meta["degraded"])
}

func TestAnalyticsHandlerCalendarWithoutDegradation(t *testing.T) {
	h := NewAnalyticsHandler(&analyticsStub{}, &calendarStub{})
	r := newRouter(http.MethodGet, "/instructors/:id/calendar", asInstructor("u-1"), h.Calendar)

	rec := serve(r, http.MethodGet, "/instructors/ins-1/calendar", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	_, present := decodeEnvelope(t, rec).Meta["degraded"]
	assert.False(t, present)
}
