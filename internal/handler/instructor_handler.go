package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-instructor-api/internal/models"
	"github.com/noah-isme/lms-instructor-api/internal/service"
	appErrors "github.com/noah-isme/lms-instructor-api/pkg/errors"
	"github.com/noah-isme/lms-instructor-api/pkg/response"
)

type instructorProfileService interface {
	GetInstructorProfile(ctx context.Context, userID string) (*models.InstructorProfile, error)
	GetInstructorProfileByID(ctx context.Context, id string) (*models.InstructorProfile, error)
	ListInstructors(ctx context.Context, filter models.InstructorFilter) ([]models.InstructorProfile, error)
	CreateInstructorProfile(ctx context.Context, req service.CreateInstructorProfileRequest) (*models.InstructorProfile, error)
	UpdateInstructorProfile(ctx context.Context, id string, req service.UpdateInstructorProfileRequest) (*models.InstructorProfile, error)
}

// InstructorHandler exposes instructor profile endpoints.
type InstructorHandler struct {
	service instructorProfileService
}

// NewInstructorHandler constructs an InstructorHandler.
func NewInstructorHandler(svc instructorProfileService) *InstructorHandler {
	return &InstructorHandler{service: svc}
}

// List godoc
// @Summary List instructors
// @Tags Instructors
// @Produce json
// @Security BearerAuth
// @Param status query string false "available|assigned|unavailable|on-leave"
// @Param user_id query string false "Owning account id"
// @Success 200 {object} response.Envelope
// @Router /instructors [get]
func (h *InstructorHandler) List(c *gin.Context) {
	filter := models.InstructorFilter{
		UserID: c.Query("user_id"),
		Status: models.InstructorStatus(c.Query("status")),
	}
	profiles, err := h.service.ListInstructors(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, profiles)
}

// Me godoc
// @Summary Instructor profile of the caller
// @Tags Instructors
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /instructors/me [get]
func (h *InstructorHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	profile, err := h.service.GetInstructorProfile(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, profile)
}

// Get godoc
// @Summary Get instructor
// @Tags Instructors
// @Produce json
// @Security BearerAuth
// @Param id path string true "Instructor profile ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /instructors/{id} [get]
func (h *InstructorHandler) Get(c *gin.Context) {
	profile, err := h.service.GetInstructorProfileByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, profile)
}

// Create godoc
// @Summary Register instructor
// @Tags Instructors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateInstructorProfileRequest true "Instructor payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /instructors [post]
func (h *InstructorHandler) Create(c *gin.Context) {
	var req service.CreateInstructorProfileRequest
	if !bindJSON(c, &req, "invalid instructor payload") {
		return
	}
	profile, err := h.service.CreateInstructorProfile(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	created(c, profile.ID, profile)
}

// Update godoc
// @Summary Update instructor
// @Description Partial update. Instructors may only update their own profile.
// @Tags Instructors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Instructor profile ID"
// @Param payload body service.UpdateInstructorProfileRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /instructors/{id} [patch]
func (h *InstructorHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if claims := claimsFromContext(c); claims != nil && claims.Role == models.RoleInstructor {
		current, err := h.service.GetInstructorProfileByID(c.Request.Context(), id)
		if err != nil {
			response.Error(c, err)
			return
		}
		if current.UserID != claims.UserID {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "instructors can only update their own profile"))
			return
		}
	}

	var req service.UpdateInstructorProfileRequest
	if !bindJSON(c, &req, "invalid instructor payload") {
		return
	}
	profile, err := h.service.UpdateInstructorProfile(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, profile)
}
