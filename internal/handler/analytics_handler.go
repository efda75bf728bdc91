package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-instructor-api/internal/middleware"
	"github.com/noah-isme/lms-instructor-api/internal/models"
	"github.com/noah-isme/lms-instructor-api/pkg/response"
)

type instructorAnalyticsService interface {
	GetInstructorAnalytics(ctx context.Context, instructorID string) (*models.InstructorAnalytics, bool, error)
	SystemMetrics() models.SystemMetrics
}

type calendarService interface {
	GetCalendar(ctx context.Context, instructorID, date string) (*models.CalendarOverview, error)
}

// AnalyticsHandler exposes instructor analytics and the calendar overview.
type AnalyticsHandler struct {
	analytics instructorAnalyticsService
	calendar  calendarService
}

// NewAnalyticsHandler constructs the analytics handler.
func NewAnalyticsHandler(analytics instructorAnalyticsService, calendar calendarService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, calendar: calendar}
}

// Instructor godoc
// @Summary Instructor analytics
// @Description Session counts by status and the mean overall rating. meta.cache_hit reports cache use.
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Param id path string true "Instructor profile ID"
// @Success 200 {object} response.Envelope
// @Router /instructors/{id}/analytics [get]
func (h *AnalyticsHandler) Instructor(c *gin.Context) {
	result, cacheHit, err := h.analytics.GetInstructorAnalytics(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, result, nil, withMeta(c))
}

// Calendar godoc
// @Summary Calendar overview of a day
// @Description Sessions, schedule, assignments and classes fetched concurrently. Failed parts are listed in meta.degraded.
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Param id path string true "Instructor profile ID"
// @Param date query string false "YYYY-MM-DD, defaults to today"
// @Success 200 {object} response.Envelope
// @Router /instructors/{id}/calendar [get]
func (h *AnalyticsHandler) Calendar(c *gin.Context) {
	overview, err := h.calendar.GetCalendar(c.Request.Context(), c.Param("id"), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetDegraded(c, overview.Degraded)
	response.JSON(c, http.StatusOK, overview, nil, withMeta(c))
}

// SystemMetrics godoc
// @Summary Process metrics snapshot
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/system-metrics [get]
func (h *AnalyticsHandler) SystemMetrics(c *gin.Context) {
	response.OK(c, h.analytics.SystemMetrics())
}
