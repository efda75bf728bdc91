package handler

import (
	"context"
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-instructor-api/internal/models"
	"github.com/noah-isme/lms-instructor-api/internal/service"
	appErrors "github.com/noah-isme/lms-instructor-api/pkg/errors"
	"github.com/noah-isme/lms-instructor-api/pkg/response"
)

type classSessionService interface {
	GetInstructorSessions(ctx context.Context, instructorID, date string) ([]models.ClassSession, error)
	GetSession(ctx context.Context, id string) (*models.ClassSession, error)
	CreateClassSession(ctx context.Context, req service.CreateClassSessionRequest) (*models.ClassSession, error)
	UpdateClassSession(ctx context.Context, id string, req service.UpdateClassSessionRequest) (*models.ClassSession, error)
	StartSession(ctx context.Context, id string) (*models.ClassSession, error)
	EndSession(ctx context.Context, id string, notes *string) (*models.ClassSession, error)
	CancelSession(ctx context.Context, id, reason string) (*models.ClassSession, error)
}

// SessionHandler exposes class session endpoints and lifecycle transitions.
type SessionHandler struct {
	service classSessionService
}

// NewSessionHandler constructs a SessionHandler.
func NewSessionHandler(svc classSessionService) *SessionHandler {
	return &SessionHandler{service: svc}
}

type endSessionRequest struct {
	Notes *string `json:"notes"`
}

type cancelSessionRequest struct {
	Reason string `json:"reason"`
}

// ListByInstructor godoc
// @Summary List instructor sessions
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Instructor profile ID"
// @Param date query string false "YYYY-MM-DD"
// @Success 200 {object} response.Envelope
// @Router /instructors/{id}/sessions [get]
func (h *SessionHandler) ListByInstructor(c *gin.Context) {
	sessions, err := h.service.GetInstructorSessions(c.Request.Context(), c.Param("id"), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, sessions)
}

// Get godoc
// @Summary Get session
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	session, err := h.service.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, session)
}

// Create godoc
// @Summary Schedule session
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateClassSessionRequest true "Session payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /sessions [post]
func (h *SessionHandler) Create(c *gin.Context) {
	var req service.CreateClassSessionRequest
	if !bindJSON(c, &req, "invalid class session payload") {
		return
	}
	if !requireOwner(c, req.InstructorID) {
		return
	}
	session, err := h.service.CreateClassSession(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	created(c, session.ID, session)
}

// Update godoc
// @Summary Update session
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param payload body service.UpdateClassSessionRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sessions/{id} [patch]
func (h *SessionHandler) Update(c *gin.Context) {
	if !h.ownsSession(c, c.Param("id")) {
		return
	}
	var req service.UpdateClassSessionRequest
	if !bindJSON(c, &req, "invalid class session payload") {
		return
	}
	session, err := h.service.UpdateClassSession(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, session)
}

// Start godoc
// @Summary Start session
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/start [post]
func (h *SessionHandler) Start(c *gin.Context) {
	if !h.ownsSession(c, c.Param("id")) {
		return
	}
	session, err := h.service.StartSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, session)
}

// End godoc
// @Summary End session
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param payload body endSessionRequest false "Closing notes"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/end [post]
func (h *SessionHandler) End(c *gin.Context) {
	if !h.ownsSession(c, c.Param("id")) {
		return
	}
	var req endSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Validation(err, "invalid end session payload"))
		return
	}
	session, err := h.service.EndSession(c.Request.Context(), c.Param("id"), req.Notes)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, session)
}

// Cancel godoc
// @Summary Cancel session
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param payload body cancelSessionRequest true "Cancellation reason"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /sessions/{id}/cancel [post]
func (h *SessionHandler) Cancel(c *gin.Context) {
	if !h.ownsSession(c, c.Param("id")) {
		return
	}
	var req cancelSessionRequest
	if !bindJSON(c, &req, "invalid cancel session payload") {
		return
	}
	session, err := h.service.CancelSession(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, session)
}

// ownsSession checks the session's instructor; admins skip the lookup.
func (h *SessionHandler) ownsSession(c *gin.Context, id string) bool {
	if isAdmin(c) {
		return true
	}
	session, err := h.service.GetSession(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return false
	}
	return requireOwner(c, session.InstructorID)
}
