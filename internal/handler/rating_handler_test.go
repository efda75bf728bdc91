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
	"github.com/noah-isme/lms-instructor-api/pkg/export"
)

type ratingServiceStub struct {
	mutated     bool
	studentID   string
	visibleOnly bool
	called      bool
}

func (s *ratingServiceStub) GetSessionRatings(_ context.Context, sessionID string) ([]models.StudentRating, error) {
	return []models.StudentRating{{ID: "r-1", SessionID: sessionID}}, nil
}

func (s *ratingServiceStub) GetStudentRatings(_ context.Context, studentID string, visibleOnly bool) ([]models.StudentRating, error) {
	s.called = true
	s.studentID = studentID
	s.visibleOnly = visibleOnly
	return []models.StudentRating{}, nil
}

func (s *ratingServiceStub) CreateStudentRating(_ context.Context, req service.CreateStudentRatingRequest) (*models.StudentRating, error) {
	s.mutated = true
	return &models.StudentRating{ID: "r-new", StudentID: req.StudentID}, nil
}

func (s *ratingServiceStub) UpdateStudentRating(_ context.Context, id string, _ service.UpdateStudentRatingRequest) (*models.StudentRating, error) {
	s.mutated = true
	return &models.StudentRating{ID: id}, nil
}

func (s *ratingServiceStub) GetStudentRating(_ context.Context, id string) (*models.StudentRating, error) {
	return &models.StudentRating{ID: id, InstructorID: "ins-1"}, nil
}

type exporterStub struct {
	format export.Format
}

func (e *exporterStub) ExportSessionRatings(_ context.Context, sessionID string, format export.Format) (*service.ExportFile, error) {
	e.format = format
	if format != export.FormatCSV && format != export.FormatPDF && format != export.FormatXLSX {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
	return &service.ExportFile{
		Filename:    "ratings-2024-05-01-" + sessionID + "." + string(format),
		ContentType: "text/csv",
		Data:        []byte("student_id\nstu-1\n"),
	}, nil
}

func TestRatingHandlerStudentReadsOnlyOwnVisibleRatings(t *testing.T) {
	stub := &ratingServiceStub{}
	h := NewRatingHandler(stub, &exporterStub{})
	r := newRouter(http.MethodGet, "/students/:id/ratings", asStudent("stu-1"), h.ListByStudent)

	rec := serve(r, http.MethodGet, "/students/stu-1/ratings", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "stu-1", stub.studentID)
	assert.True(t, stub.visibleOnly)

	stub.called = false
	rec = serve(r, http.MethodGet, "/students/stu-2/ratings", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, stub.called)
}

func TestRatingHandlerInstructorSeesHiddenRatings(t *testing.T) {
	stub := &ratingServiceStub{}
	h := NewRatingHandler(stub, &exporterStub{})
	r := newRouter(http.MethodGet, "/students/:id/ratings", asInstructor("u-9"), h.ListByStudent)

	rec := serve(r, http.MethodGet, "/students/stu-1/ratings", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, stub.visibleOnly)
}

func TestRatingHandlerExportDefaultsToCSV(t *testing.T) {
	exporter := &exporterStub{}
	h := NewRatingHandler(&ratingServiceStub{}, exporter)
	r := newRouter(http.MethodGet, "/sessions/:id/ratings/export", asInstructor("u-1"), h.Export)

	rec := serve(r, http.MethodGet, "/sessions/sess-1/ratings/export", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.FormatCSV, exporter.format)
	assert.Equal(t, `attachment; filename="ratings-2024-05-01-sess-1.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "student_id\nstu-1\n", rec.Body.String())
}

func TestRatingHandlerExportRejectsUnknownFormat(t *testing.T) {
	h := NewRatingHandler(&ratingServiceStub{}, &exporterStub{})
	r := newRouter(http.MethodGet, "/sessions/:id/ratings/export", asInstructor("u-1"), h.Export)

	rec := serve(r, http.MethodGet, "/sessions/sess-1/ratings/export?format=docx", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRatingHandlerMutationsRequireOwnProfile(t *testing.T) {
	stub := &ratingServiceStub{}
	h := NewRatingHandler(stub, &exporterStub{})
	body := gin.H{"session_id": "sess-1", "student_id": "stu-1", "instructor_id": "ins-1"}

	rec := serve(newRouter(http.MethodPost, "/ratings", asInstructor("u-2"), h.Create), http.MethodPost, "/ratings", body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(newRouter(http.MethodPatch, "/ratings/:id", asInstructor("u-2"), h.Update), http.MethodPatch, "/ratings/r-1", gin.H{"comments": "x"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, stub.mutated)

	rec = serve(newRouter(http.MethodPost, "/ratings", asInstructor("u-1"), h.Create), http.MethodPost, "/ratings", body)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, stub.mutated)
}
