package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-instructor-api/internal/models"
	"github.com/noah-isme/lms-instructor-api/internal/service"
	appErrors "github.com/noah-isme/lms-instructor-api/pkg/errors"
)

type sessionServiceStub struct {
	created      bool
	endNotes     *string
	endCalled    bool
	cancelReason string
	listDate     string
	getErr       error
}

func (s *sessionServiceStub) GetInstructorSessions(_ context.Context, instructorID, date string) ([]models.ClassSession, error) {
	s.listDate = date
	return []models.ClassSession{{ID: "sess-1", InstructorID: instructorID, Date: date}}, nil
}

func (s *sessionServiceStub) GetSession(_ context.Context, id string) (*models.ClassSession, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return &models.ClassSession{ID: id, InstructorID: "ins-1"}, nil
}

func (s *sessionServiceStub) CreateClassSession(_ context.Context, req service.CreateClassSessionRequest) (*models.ClassSession, error) {
	s.created = true
	return &models.ClassSession{ID: "sess-new", ClassID: req.ClassID}, nil
}

func (s *sessionServiceStub) UpdateClassSession(_ context.Context, id string, _ service.UpdateClassSessionRequest) (*models.ClassSession, error) {
	return &models.ClassSession{ID: id}, nil
}

func (s *sessionServiceStub) StartSession(_ context.Context, id string) (*models.ClassSession, error) {
	return &models.ClassSession{ID: id, Status: models.SessionOngoing}, nil
}

func (s *sessionServiceStub) EndSession(_ context.Context, id string, notes *string) (*models.ClassSession, error) {
	s.endCalled = true
	s.endNotes = notes
	return &models.ClassSession{ID: id, Status: models.SessionCompleted}, nil
}

func (s *sessionServiceStub) CancelSession(_ context.Context, id, reason string) (*models.ClassSession, error) {
	s.cancelReason = reason
	return &models.ClassSession{ID: id, Status: models.SessionCancelled}, nil
}

func TestSessionHandlerEndWithoutBodyKeepsNotes(t *testing.T) {
	stub := &sessionServiceStub{}
	h := NewSessionHandler(stub)
	r := newRouter(http.MethodPost, "/sessions/:id/end", asInstructor("u-1"), h.End)

	rec := serve(r, http.MethodPost, "/sessions/sess-1/end", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, stub.endCalled)
	assert.Nil(t, stub.endNotes)
}

func TestSessionHandlerEndWithNotes(t *testing.T) {
	stub := &sessionServiceStub{}
	h := NewSessionHandler(stub)
	r := newRouter(http.MethodPost, "/sessions/:id/end", asInstructor("u-1"), h.End)

	rec := serve(r, http.MethodPost, "/sessions/sess-1/end", gin.H{"notes": "covered unit 3"})

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, stub.endNotes)
	assert.Equal(t, "covered unit 3", *stub.endNotes)
}

func TestSessionHandlerCancelPassesReason(t *testing.T) {
	stub := &sessionServiceStub{}
	h := NewSessionHandler(stub)
	r := newRouter(http.MethodPost, "/sessions/:id/cancel", asInstructor("u-1"), h.Cancel)

	rec := serve(r, http.MethodPost, "/sessions/sess-1/cancel", gin.H{"reason": "instructor sick"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "instructor sick", stub.cancelReason)
}

func TestSessionHandlerListPassesDateFilter(t *testing.T) {
	stub := &sessionServiceStub{}
	h := NewSessionHandler(stub)
	r := newRouter(http.MethodGet, "/instructors/:id/sessions", asInstructor("u-1"), h.ListByInstructor)

	rec := serve(r, http.MethodGet, "/instructors/ins-1/sessions?date=2024-05-01", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024-05-01", stub.listDate)
}

func TestSessionHandlerGetNotFound(t *testing.T) {
	h := NewSessionHandler(&sessionServiceStub{getErr: appErrors.Clone(appErrors.ErrNotFound, "class session not found")})
	r := newRouter(http.MethodGet, "/sessions/:id", asInstructor("u-1"), h.Get)

	rec := serve(r, http.MethodGet, "/sessions/missing", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "class session not found", decodeEnvelope(t, rec).Error["message"])
}

func TestSessionHandlerRejectsOtherInstructorsSessions(t *testing.T) {
	stub := &sessionServiceStub{}
	h := NewSessionHandler(stub)

	cancel := newRouter(http.MethodPost, "/sessions/:id/cancel", asInstructor("u-2"), h.Cancel)
	rec := serve(cancel, http.MethodPost, "/sessions/sess-1/cancel", gin.H{"reason": "not mine"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, stub.cancelReason)

	create := newRouter(http.MethodPost, "/sessions", asInstructor("u-2"), h.Create)
	body := gin.H{
		"class_id": "class-1", "instructor_id": "ins-1", "school_id": "school-1", "title": "Grammar",
		"date": "2024-05-01", "start_time": "09:00", "end_time": "10:00", "session_type": "offline",
	}
	rec = serve(create, http.MethodPost, "/sessions", body)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, stub.created)

	rec = serve(newRouter(http.MethodPost, "/sessions", asInstructor("u-1"), h.Create), http.MethodPost, "/sessions", body)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = serve(newRouter(http.MethodPost, "/sessions/:id/cancel", asAdmin("root"), h.Cancel), http.MethodPost, "/sessions/sess-1/cancel", gin.H{"reason": "closed"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "closed", stub.cancelReason)
}
