package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-instructor-api/internal/models"
	"github.com/noah-isme/lms-instructor-api/internal/service"
	"github.com/noah-isme/lms-instructor-api/pkg/response"
)

type classAssignmentService interface {
	GetInstructorAssignments(ctx context.Context, instructorID string, status models.AssignmentStatus) ([]models.ClassAssignment, error)
	CreateClassAssignment(ctx context.Context, req service.CreateClassAssignmentRequest) (*models.ClassAssignment, error)
	UpdateClassAssignment(ctx context.Context, id string, req service.UpdateClassAssignmentRequest) (*models.ClassAssignment, error)
}

// AssignmentHandler exposes class assignment endpoints.
type AssignmentHandler struct {
	service classAssignmentService
}

// NewAssignmentHandler constructs an AssignmentHandler.
func NewAssignmentHandler(svc classAssignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: svc}
}

// ListByInstructor godoc
// @Summary List instructor assignments
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Instructor profile ID"
// @Param status query string false "active|pending|completed|cancelled"
// @Success 200 {object} response.Envelope
// @Router /instructors/{id}/assignments [get]
func (h *AssignmentHandler) ListByInstructor(c *gin.Context) {
	assignments, err := h.service.GetInstructorAssignments(c.Request.Context(), c.Param("id"), models.AssignmentStatus(c.Query("status")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, assignments)
}

// Create godoc
// @Summary Assign instructor to class
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateClassAssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	var req service.CreateClassAssignmentRequest
	if !bindJSON(c, &req, "invalid class assignment payload") {
		return
	}
	if claims := claimsFromContext(c); claims != nil {
		req.AssignedBy = claims.UserID
	}
	assignment, err := h.service.CreateClassAssignment(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	created(c, assignment.ID, assignment)
}

// Update godoc
// @Summary Update assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assignment ID"
// @Param payload body service.UpdateClassAssignmentRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /assignments/{id} [patch]
func (h *AssignmentHandler) Update(c *gin.Context) {
	var req service.UpdateClassAssignmentRequest
	if !bindJSON(c, &req, "invalid class assignment payload") {
		return
	}
	assignment, err := h.service.UpdateClassAssignment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, assignment)
}
