package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-instructor-api/internal/models"
	"github.com/noah-isme/lms-instructor-api/internal/service"
	appErrors "github.com/noah-isme/lms-instructor-api/pkg/errors"
	"github.com/noah-isme/lms-instructor-api/pkg/export"
	"github.com/noah-isme/lms-instructor-api/pkg/response"
)

type studentRatingService interface {
	GetSessionRatings(ctx context.Context, sessionID string) ([]models.StudentRating, error)
	GetStudentRatings(ctx context.Context, studentID string, visibleOnly bool) ([]models.StudentRating, error)
	CreateStudentRating(ctx context.Context, req service.CreateStudentRatingRequest) (*models.StudentRating, error)
	UpdateStudentRating(ctx context.Context, id string, req service.UpdateStudentRatingRequest) (*models.StudentRating, error)
	GetStudentRating(ctx context.Context, id string) (*models.StudentRating, error)
}

type ratingExporter interface {
	ExportSessionRatings(ctx context.Context, sessionID string, format export.Format) (*service.ExportFile, error)
}

// RatingHandler exposes student rating endpoints.
type RatingHandler struct {
	service  studentRatingService
	exporter ratingExporter
}

// NewRatingHandler constructs a RatingHandler.
func NewRatingHandler(svc studentRatingService, exporter ratingExporter) *RatingHandler {
	return &RatingHandler{service: svc, exporter: exporter}
}

// ListBySession godoc
// @Summary List session ratings
// @Tags Ratings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/ratings [get]
func (h *RatingHandler) ListBySession(c *gin.Context) {
	ratings, err := h.service.GetSessionRatings(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, ratings)
}

// ListByStudent godoc
// @Summary List student ratings
// @Description Students only see their own released ratings.
// @Tags Ratings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /students/{id}/ratings [get]
func (h *RatingHandler) ListByStudent(c *gin.Context) {
	studentID := c.Param("id")
	visibleOnly := false
	if claims := claimsFromContext(c); claims != nil && claims.Role == models.RoleStudent {
		if claims.UserID != studentID {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "students can only read their own ratings"))
			return
		}
		visibleOnly = true
	}
	ratings, err := h.service.GetStudentRatings(c.Request.Context(), studentID, visibleOnly)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, ratings)
}

// Create godoc
// @Summary Rate a student
// @Description The overall score is derived from the five sub-scores.
// @Tags Ratings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateStudentRatingRequest true "Rating payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /ratings [post]
func (h *RatingHandler) Create(c *gin.Context) {
	var req service.CreateStudentRatingRequest
	if !bindJSON(c, &req, "invalid student rating payload") {
		return
	}
	if !requireOwner(c, req.InstructorID) {
		return
	}
	rating, err := h.service.CreateStudentRating(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	created(c, rating.ID, rating)
}

// Update godoc
// @Summary Update rating
// @Tags Ratings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Rating ID"
// @Param payload body service.UpdateStudentRatingRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /ratings/{id} [patch]
func (h *RatingHandler) Update(c *gin.Context) {
	if !isAdmin(c) {
		current, err := h.service.GetStudentRating(c.Request.Context(), c.Param("id"))
		if err != nil {
			response.Error(c, err)
			return
		}
		if !requireOwner(c, current.InstructorID) {
			return
		}
	}
	var req service.UpdateStudentRatingRequest
	if !bindJSON(c, &req, "invalid student rating payload") {
		return
	}
	rating, err := h.service.UpdateStudentRating(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, rating)
}

// Export godoc
// @Summary Export session ratings
// @Tags Ratings
// @Produce octet-stream
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param format query string false "csv|pdf|xlsx" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /sessions/{id}/ratings/export [get]
func (h *RatingHandler) Export(c *gin.Context) {
	file, err := h.exporter.ExportSessionRatings(c.Request.Context(), c.Param("id"), export.Format(c.DefaultQuery("format", string(export.FormatCSV))))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.Filename, file.ContentType, file.Data)
}
