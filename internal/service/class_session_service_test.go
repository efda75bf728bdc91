package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-instructor-api/internal/models"
	"github.com/noah-isme/lms-instructor-api/internal/repository"
	"github.com/noah-isme/lms-instructor-api/pkg/blob"
	appErrors "github.com/noah-isme/lms-instructor-api/pkg/errors"
)

type sessionRepoStub struct {
	docs       map[string]*models.ClassSessionDocument
	lastFields repository.Fields
}

func newSessionRepoStub(docs ...models.ClassSessionDocument) *sessionRepoStub {
	stub := &sessionRepoStub{docs: map[string]*models.ClassSessionDocument{}}
	for i := range docs {
		doc := docs[i]
		stub.docs[doc.ID] = &doc
	}
	return stub
}

func (s *sessionRepoStub) List(ctx context.Context, filter models.SessionFilter) ([]models.ClassSessionDocument, error) {
	out := []models.ClassSessionDocument{}
	for _, doc := range s.docs {
		if filter.InstructorID != "" && doc.InstructorID != filter.InstructorID {
			continue
		}
		if filter.Date != "" && doc.Date != filter.Date {
			continue
		}
		out = append(out, *doc)
	}
	return out, nil
}

func (s *sessionRepoStub) FindByID(ctx context.Context, id string) (*models.ClassSessionDocument, error) {
	doc, ok := s.docs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *doc
	return &copied, nil
}

func (s *sessionRepoStub) Create(ctx context.Context, doc *models.ClassSessionDocument) error {
	doc.ID = "sess-new"
	copied := *doc
	s.docs[doc.ID] = &copied
	return nil
}

func (s *sessionRepoStub) Update(ctx context.Context, id string, fields repository.Fields) error {
	doc, ok := s.docs[id]
	if !ok {
		return sql.ErrNoRows
	}
	s.lastFields = fields
	for column, value := range fields {
		switch column {
		case "status":
			doc.Status = value.(models.SessionStatus)
		case "title":
			doc.Title = value.(string)
		case "time_slot":
			doc.TimeSlot = value.(string)
		case "actual_times":
			doc.ActualTimes = value.(types.JSONText)
		case "session_data":
			doc.SessionData = value.(types.JSONText)
		}
	}
	return nil
}

type invalidationRecorder struct {
	instructors []string
}

func (r *invalidationRecorder) InvalidateInstructor(ctx context.Context, instructorID string) {
	r.instructors = append(r.instructors, instructorID)
}

func scheduledSession() models.ClassSessionDocument {
	return models.ClassSessionDocument{
		ID:           "sess-1",
		InstructorID: "ins-1",
		ClassID:      "class-1",
		Title:        "Grammar",
		Date:         "2024-05-01",
		TimeSlot:     "09:00-10:30",
		Status:       models.SessionScheduled,
		SessionData:  types.JSONText(`{"homework":"p. 12","notes":"bring books"}`),
	}
}

func TestStartThenEndSessionCompletesWithBothTimes(t *testing.T) {
	repo := newSessionRepoStub(scheduledSession())
	recorder := &invalidationRecorder{}
	svc := NewClassSessionService(repo, recorder, nil, nil)

	started := time.Date(2024, 5, 1, 9, 2, 0, 0, time.UTC)
	svc.now = func() time.Time { return started }
	session, err := svc.StartSession(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, models.SessionOngoing, session.Status)
	require.NotNil(t, session.ActualStartTime)
	assert.Nil(t, session.ActualEndTime)

	ended := started.Add(90 * time.Minute)
	svc.now = func() time.Time { return ended }
	session, err = svc.EndSession(context.Background(), "sess-1", blob.Ptr("went well"))
	require.NoError(t, err)
	assert.Equal(t, models.SessionCompleted, session.Status)
	require.NotNil(t, session.ActualStartTime)
	require.NotNil(t, session.ActualEndTime)
	assert.True(t, session.ActualStartTime.Equal(started))
	assert.True(t, session.ActualEndTime.Equal(ended))
	assert.Equal(t, "went well", session.Notes)
	assert.Equal(t, "p. 12", session.Homework)
	assert.Equal(t, []string{"ins-1", "ins-1"}, recorder.instructors)
}

func TestEndSessionWithoutNotesKeepsSessionData(t *testing.T) {
	repo := newSessionRepoStub(scheduledSession())
	svc := NewClassSessionService(repo, nil, nil, nil)

	_, err := svc.EndSession(context.Background(), "sess-1", nil)
	require.NoError(t, err)
	assert.NotContains(t, repo.lastFields, "session_data")
}

func TestCancelSessionRequiresReason(t *testing.T) {
	repo := newSessionRepoStub(scheduledSession())
	svc := NewClassSessionService(repo, nil, nil, nil)

	_, err := svc.CancelSession(context.Background(), "sess-1", "  ")
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	session, err := svc.CancelSession(context.Background(), "sess-1", "instructor unwell")
	require.NoError(t, err)
	assert.Equal(t, models.SessionCancelled, session.Status)
	assert.Equal(t, "instructor unwell", session.CancellationReason)
	assert.Equal(t, "bring books", session.Notes)
}

func TestUpdateClassSessionMergesLoneTimeIntoSlot(t *testing.T) {
	repo := newSessionRepoStub(scheduledSession())
	svc := NewClassSessionService(repo, nil, nil, nil)

	session, err := svc.UpdateClassSession(context.Background(), "sess-1", UpdateClassSessionRequest{EndTime: blob.Ptr("11:00")})
	require.NoError(t, err)
	assert.Equal(t, "09:00", session.StartTime)
	assert.Equal(t, "11:00", session.EndTime)
	assert.Equal(t, "09:00-11:00", repo.lastFields["time_slot"])
}

func TestUpdateClassSessionPresenceSemantics(t *testing.T) {
	repo := newSessionRepoStub(scheduledSession())
	svc := NewClassSessionService(repo, nil, nil, nil)

	session, err := svc.UpdateClassSession(context.Background(), "sess-1", UpdateClassSessionRequest{Homework: blob.Ptr("")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"homework":""}`, string(repo.lastFields["session_data"].(types.JSONText)))
	assert.Empty(t, session.Homework)
	assert.Empty(t, session.Notes)

	_, err = svc.UpdateClassSession(context.Background(), "sess-1", UpdateClassSessionRequest{Title: blob.Ptr("Reading")})
	require.NoError(t, err)
	assert.Equal(t, repository.Fields{"title": "Reading"}, repo.lastFields)
}

func TestCreateClassSessionValidatesSlot(t *testing.T) {
	svc := NewClassSessionService(newSessionRepoStub(), nil, nil, nil)
	req := CreateClassSessionRequest{
		ClassID:      "class-1",
		InstructorID: "ins-1",
		SchoolID:     "school-1",
		Title:        "Grammar",
		Date:         "2024-05-01",
		StartTime:    "10:00",
		EndTime:      "09:00",
		SessionType:  models.SessionOffline,
	}
	_, err := svc.CreateClassSession(context.Background(), req)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	req.EndTime = "11:00"
	session, err := svc.CreateClassSession(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, models.SessionScheduled, session.Status)
	assert.Equal(t, "10:00", session.StartTime)
	assert.Equal(t, "11:00", session.EndTime)
	assert.Empty(t, session.Materials)
}

func TestGetSessionNotFound(t *testing.T) {
	svc := NewClassSessionService(newSessionRepoStub(), nil, nil, nil)
	_, err := svc.GetSession(context.Background(), "nope")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestCreateClassSessionNormalisesClockTimes(t *testing.T) {
	repo := newSessionRepoStub()
	svc := NewClassSessionService(repo, nil, nil, nil)

	session, err := svc.CreateClassSession(context.Background(), CreateClassSessionRequest{
		ClassID:      "class-1",
		InstructorID: "ins-1",
		SchoolID:     "school-1",
		Title:        "Phonics",
		Date:         "2024-05-01",
		StartTime:    "9:30",
		EndTime:      "10:00",
		SessionType:  models.SessionOnline,
	})
	require.NoError(t, err)
	assert.Equal(t, "09:30", session.StartTime)
	assert.Equal(t, "09:30-10:00", repo.docs["sess-new"].TimeSlot)
}

func TestUpdateClassSessionRejectsInvertedSlot(t *testing.T) {
	repo := newSessionRepoStub(scheduledSession())
	svc := NewClassSessionService(repo, nil, nil, nil)

	_, err := svc.UpdateClassSession(context.Background(), "sess-1", UpdateClassSessionRequest{StartTime: blob.Ptr("11:00")})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Nil(t, repo.lastFields)
	assert.Equal(t, "09:00-10:30", repo.docs["sess-1"].TimeSlot)

	_, err = svc.UpdateClassSession(context.Background(), "sess-1", UpdateClassSessionRequest{EndTime: blob.Ptr("09:00")})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}
