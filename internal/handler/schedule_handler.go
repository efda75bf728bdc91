package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-instructor-api/internal/models"
	"github.com/noah-isme/lms-instructor-api/internal/service"
	"github.com/noah-isme/lms-instructor-api/pkg/response"
)

type instructorScheduleService interface {
	GetInstructorSchedule(ctx context.Context, instructorID, date string) (*models.InstructorSchedule, error)
	ListInstructorSchedules(ctx context.Context, instructorID, from, to string) ([]models.InstructorSchedule, error)
	UpsertInstructorSchedule(ctx context.Context, req service.UpsertScheduleRequest) (*models.InstructorSchedule, error)
}

// ScheduleHandler exposes per-day instructor availability.
type ScheduleHandler struct {
	service instructorScheduleService
}

// NewScheduleHandler constructs a ScheduleHandler.
func NewScheduleHandler(svc instructorScheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: svc}
}

// List godoc
// @Summary List schedules in a range
// @Tags Schedules
// @Produce json
// @Security BearerAuth
// @Param id path string true "Instructor profile ID"
// @Param from query string false "YYYY-MM-DD"
// @Param to query string false "YYYY-MM-DD"
// @Success 200 {object} response.Envelope
// @Router /instructors/{id}/schedules [get]
func (h *ScheduleHandler) List(c *gin.Context) {
	schedules, err := h.service.ListInstructorSchedules(c.Request.Context(), c.Param("id"), c.Query("from"), c.Query("to"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, schedules)
}

// Get godoc
// @Summary Schedule of a day
// @Tags Schedules
// @Produce json
// @Security BearerAuth
// @Param id path string true "Instructor profile ID"
// @Param date path string true "YYYY-MM-DD"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /instructors/{id}/schedules/{date} [get]
func (h *ScheduleHandler) Get(c *gin.Context) {
	schedule, err := h.service.GetInstructorSchedule(c.Request.Context(), c.Param("id"), c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, schedule)
}

// Upsert godoc
// @Summary Replace the slots of a day
// @Tags Schedules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Instructor profile ID"
// @Param date path string true "YYYY-MM-DD"
// @Param payload body service.UpsertScheduleRequest true "Time slots"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /instructors/{id}/schedules/{date} [put]
func (h *ScheduleHandler) Upsert(c *gin.Context) {
	if !requireOwner(c, c.Param("id")) {
		return
	}
	var req service.UpsertScheduleRequest
	if !bindJSON(c, &req, "invalid schedule payload") {
		return
	}
	req.InstructorID = c.Param("id")
	req.Date = c.Param("date")
	schedule, err := h.service.UpsertInstructorSchedule(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, schedule)
}
