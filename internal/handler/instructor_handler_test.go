package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/lms-instructor-api/internal/models"
	"github.com/noah-isme/lms-instructor-api/internal/service"
	appErrors "github.com/noah-isme/lms-instructor-api/pkg/errors"
)

type instructorServiceStub struct {
	profiles map[string]models.InstructorProfile
	updated  string
	filter   models.InstructorFilter
}

func newInstructorServiceStub() *instructorServiceStub {
	return &instructorServiceStub{profiles: map[string]models.InstructorProfile{
		"ins-1": {ID: "ins-1", UserID: "u-1", Name: "Ana"},
		"ins-2": {ID: "ins-2", UserID: "u-2", Name: "Budi"},
	}}
}

func (s *instructorServiceStub) GetInstructorProfile(_ context.Context, userID string) (*models.InstructorProfile, error) {
	for _, p := range s.profiles {
		if p.UserID == userID {
			profile := p
			return &profile, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor profile not found")
}

func (s *instructorServiceStub) GetInstructorProfileByID(_ context.Context, id string) (*models.InstructorProfile, error) {
	p, ok := s.profiles[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor profile not found")
	}
	return &p, nil
}

func (s *instructorServiceStub) ListInstructors(_ context.Context, filter models.InstructorFilter) ([]models.InstructorProfile, error) {
	s.filter = filter
	return []models.InstructorProfile{}, nil
}

func (s *instructorServiceStub) CreateInstructorProfile(_ context.Context, req service.CreateInstructorProfileRequest) (*models.InstructorProfile, error) {
	return &models.InstructorProfile{ID: "ins-new", UserID: req.UserID}, nil
}

func (s *instructorServiceStub) UpdateInstructorProfile(_ context.Context, id string, _ service.UpdateInstructorProfileRequest) (*models.InstructorProfile, error) {
	s.updated = id
	p := s.profiles[id]
	return &p, nil
}

func TestInstructorHandlerMeResolvesCaller(t *testing.T) {
	h := NewInstructorHandler(newInstructorServiceStub())

	rec := serve(newRouter(http.MethodGet, "/instructors/me", asInstructor("u-2"), h.Me), http.MethodGet, "/instructors/me", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(decodeEnvelope(t, rec).Data), `"id":"ins-2"`)

	rec = serve(newRouter(http.MethodGet, "/instructors/me", asInstructor("u-404"), h.Me), http.MethodGet, "/instructors/me", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInstructorHandlerUpdateOwnProfileOnly(t *testing.T) {
	stub := newInstructorServiceStub()
	h := NewInstructorHandler(stub)
	r := newRouter(http.MethodPatch, "/instructors/:id", asInstructor("u-1"), h.Update)

	rec := serve(r, http.MethodPatch, "/instructors/ins-2", gin.H{"phone": "0812"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, stub.updated)

	rec = serve(r, http.MethodPatch, "/instructors/ins-1", gin.H{"phone": "0812"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ins-1", stub.updated)
}

func TestInstructorHandlerAdminUpdatesAnyProfile(t *testing.T) {
	stub := newInstructorServiceStub()
	h := NewInstructorHandler(stub)
	r := newRouter(http.MethodPatch, "/instructors/:id", asAdmin("root"), h.Update)

	rec := serve(r, http.MethodPatch, "/instructors/ins-2", gin.H{"status": "on-leave"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ins-2", stub.updated)
}

func TestInstructorHandlerListFilters(t *testing.T) {
	stub := newInstructorServiceStub()
	h := NewInstructorHandler(stub)
	r := newRouter(http.MethodGet, "/instructors", asAdmin("root"), h.List)

	rec := serve(r, http.MethodGet, "/instructors?status=available&user_id=u-1", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-1", stub.filter.UserID)
	assert.Equal(t, models.InstructorStatus("available"), stub.filter.Status)
}
