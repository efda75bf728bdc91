package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-instructor-api/internal/models"
	"github.com/noah-isme/lms-instructor-api/internal/service"
	"github.com/noah-isme/lms-instructor-api/pkg/response"
)

type onlineSessionService interface {
	GetOnlineSession(ctx context.Context, sessionID string) (*models.OnlineSession, error)
	CreateOnlineSession(ctx context.Context, req service.CreateOnlineSessionRequest) (*models.OnlineSession, error)
	UpdateOnlineSession(ctx context.Context, id string, req service.UpdateOnlineSessionRequest) (*models.OnlineSession, error)
	GetOnlineSessionByID(ctx context.Context, id string) (*models.OnlineSession, error)
}

// OnlineSessionHandler exposes meeting metadata endpoints.
type OnlineSessionHandler struct {
	service onlineSessionService
}

// NewOnlineSessionHandler constructs an OnlineSessionHandler.
func NewOnlineSessionHandler(svc onlineSessionService) *OnlineSessionHandler {
	return &OnlineSessionHandler{service: svc}
}

// GetBySession godoc
// @Summary Online metadata of a session
// @Tags Online Sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class session ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sessions/{id}/online [get]
func (h *OnlineSessionHandler) GetBySession(c *gin.Context) {
	online, err := h.service.GetOnlineSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, online)
}

// Create godoc
// @Summary Attach online meeting
// @Tags Online Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateOnlineSessionRequest true "Meeting payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /online-sessions [post]
func (h *OnlineSessionHandler) Create(c *gin.Context) {
	var req service.CreateOnlineSessionRequest
	if !bindJSON(c, &req, "invalid online session payload") {
		return
	}
	if !requireOwner(c, req.InstructorID) {
		return
	}
	online, err := h.service.CreateOnlineSession(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	created(c, online.ID, online)
}

// Update godoc
// @Summary Update online meeting
// @Tags Online Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Online session ID"
// @Param payload body service.UpdateOnlineSessionRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /online-sessions/{id} [patch]
func (h *OnlineSessionHandler) Update(c *gin.Context) {
	if !isAdmin(c) {
		current, err := h.service.GetOnlineSessionByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			response.Error(c, err)
			return
		}
		if !requireOwner(c, current.InstructorID) {
			return
		}
	}
	var req service.UpdateOnlineSessionRequest
	if !bindJSON(c, &req, "invalid online session payload") {
		return
	}
	online, err := h.service.UpdateOnlineSession(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, online)
}
