package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-instructor-api/internal/models"
	"github.com/noah-isme/lms-instructor-api/internal/repository"
	"github.com/noah-isme/lms-instructor-api/pkg/blob"
	appErrors "github.com/noah-isme/lms-instructor-api/pkg/errors"
)

type classSessionRepository interface {
	List(ctx context.Context, filter models.SessionFilter) ([]models.ClassSessionDocument, error)
	FindByID(ctx context.Context, id string) (*models.ClassSessionDocument, error)
	Create(ctx context.Context, doc *models.ClassSessionDocument) error
	Update(ctx context.Context, id string, fields repository.Fields) error
}

// CreateClassSessionRequest schedules a new class session.
type CreateClassSessionRequest struct {
	ClassID      string             `json:"class_id" validate:"required"`
	InstructorID string             `json:"instructor_id" validate:"required"`
	SchoolID     string             `json:"school_id" validate:"required"`
	Title        string             `json:"title" validate:"required,max=200"`
	Date         string             `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime    string             `json:"start_time" validate:"required,datetime=15:04"`
	EndTime      string             `json:"end_time" validate:"required,datetime=15:04"`
	SessionType  models.SessionType `json:"session_type" validate:"required,oneof=online offline"`
	Materials    *[]string          `json:"materials"`
	Homework     *string            `json:"homework"`
	Notes        *string            `json:"notes"`
}

// UpdateClassSessionRequest is a partial update. Actual time members rewrite the
// actual_times blob; material, homework, notes and cancellation members rewrite
// the session_data blob.
type UpdateClassSessionRequest struct {
	ClassID            *string               `json:"class_id"`
	SchoolID           *string               `json:"school_id"`
	Title              *string               `json:"title" validate:"omitempty,max=200"`
	Date               *string               `json:"date" validate:"omitempty,datetime=2006-01-02"`
	StartTime          *string               `json:"start_time" validate:"omitempty,datetime=15:04"`
	EndTime            *string               `json:"end_time" validate:"omitempty,datetime=15:04"`
	SessionType        *models.SessionType   `json:"session_type" validate:"omitempty,oneof=online offline"`
	Status             *models.SessionStatus `json:"status" validate:"omitempty,oneof=scheduled ongoing completed cancelled"`
	ActualStartTime    *time.Time            `json:"actual_start_time"`
	ActualEndTime      *time.Time            `json:"actual_end_time"`
	Materials          *[]string             `json:"materials"`
	Homework           *string               `json:"homework"`
	Notes              *string               `json:"notes"`
	CancellationReason *string               `json:"cancellation_reason"`
}

// ClassSessionService manages class sessions and their lifecycle transitions.
type ClassSessionService struct {
	repo      classSessionRepository
	analytics analyticsInvalidator
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewClassSessionService constructs a ClassSessionService. analytics may be nil.
func NewClassSessionService(repo classSessionRepository, analytics analyticsInvalidator, validate *validator.Validate, logger *zap.Logger) *ClassSessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassSessionService{
		repo:      repo,
		analytics: analytics,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// GetInstructorSessions lists an instructor's sessions, optionally for one date.
func (s *ClassSessionService) GetInstructorSessions(ctx context.Context, instructorID, date string) ([]models.ClassSession, error) {
	docs, err := s.repo.List(ctx, models.SessionFilter{InstructorID: instructorID, Date: date})
	if err != nil {
		s.logger.Error("list class sessions", zap.String("instructor_id", instructorID), zap.String("date", date), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to list class sessions")
	}
	sessions := make([]models.ClassSession, 0, len(docs))
	for _, doc := range docs {
		sessions = append(sessions, toClassSession(doc))
	}
	return sessions, nil
}

// GetSession returns one session.
func (s *ClassSessionService) GetSession(ctx context.Context, id string) (*models.ClassSession, error) {
	doc, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	session := toClassSession(*doc)
	return &session, nil
}

// CreateClassSession stores a new session in the scheduled state.
func (s *ClassSessionService) CreateClassSession(ctx context.Context, req CreateClassSessionRequest) (*models.ClassSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid class session payload")
	}
	start, end, err := clockRange(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	data, err := blob.Encode(models.SessionData{Materials: req.Materials, Homework: req.Homework, Notes: req.Notes})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to encode session data")
	}
	doc := &models.ClassSessionDocument{
		ClassID:      req.ClassID,
		InstructorID: req.InstructorID,
		SchoolID:     req.SchoolID,
		Title:        strings.TrimSpace(req.Title),
		Date:         req.Date,
		TimeSlot:     models.JoinTimeSlot(start, end),
		SessionType:  req.SessionType,
		Status:       models.SessionScheduled,
		ActualTimes:  blob.EmptyObject(),
		SessionData:  data,
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		s.logger.Error("create class session", zap.String("instructor_id", req.InstructorID), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to create class session")
	}
	s.invalidate(ctx, doc.InstructorID)
	session := toClassSession(*doc)
	return &session, nil
}

// UpdateClassSession applies a partial update.
func (s *ClassSessionService) UpdateClassSession(ctx context.Context, id string, req UpdateClassSessionRequest) (*models.ClassSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid class session payload")
	}
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := repository.Fields{}
	if req.ClassID != nil {
		fields["class_id"] = *req.ClassID
	}
	if req.SchoolID != nil {
		fields["school_id"] = *req.SchoolID
	}
	if req.Title != nil {
		fields["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Date != nil {
		fields["date"] = *req.Date
	}
	if req.SessionType != nil {
		fields["session_type"] = *req.SessionType
	}
	if req.Status != nil {
		fields["status"] = *req.Status
	}
	if req.StartTime != nil || req.EndTime != nil {
		start, end := models.SplitTimeSlot(current.TimeSlot)
		if req.StartTime != nil {
			start = *req.StartTime
		}
		if req.EndTime != nil {
			end = *req.EndTime
		}
		start, end, err := clockRange(start, end)
		if err != nil {
			return nil, err
		}
		fields["time_slot"] = models.JoinTimeSlot(start, end)
	}
	if blob.AnySet(req.ActualStartTime != nil, req.ActualEndTime != nil) {
		raw, err := blob.Encode(models.ActualTimes{ActualStartTime: req.ActualStartTime, ActualEndTime: req.ActualEndTime})
		if err != nil {
			return nil, appErrors.Internal(err, "failed to encode actual times")
		}
		fields["actual_times"] = raw
	}
	if blob.AnySet(req.Materials != nil, req.Homework != nil, req.Notes != nil, req.CancellationReason != nil) {
		raw, err := blob.Encode(models.SessionData{
			Materials:          req.Materials,
			Homework:           req.Homework,
			Notes:              req.Notes,
			CancellationReason: req.CancellationReason,
		})
		if err != nil {
			return nil, appErrors.Internal(err, "failed to encode session data")
		}
		fields["session_data"] = raw
	}

	return s.apply(ctx, current, fields)
}

// StartSession marks the session ongoing and records the actual start time.
// Any previously stored actual times are replaced.
func (s *ClassSessionService) StartSession(ctx context.Context, id string) (*models.ClassSession, error) {
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	raw, err := blob.Encode(models.ActualTimes{ActualStartTime: &now})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to encode actual times")
	}
	return s.apply(ctx, current, repository.Fields{
		"status":       models.SessionOngoing,
		"actual_times": raw,
	})
}

// EndSession marks the session completed, records the actual end time and,
// when notes are given, merges them into the stored session data.
func (s *ClassSessionService) EndSession(ctx context.Context, id string, notes *string) (*models.ClassSession, error) {
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	times := blob.Decode[models.ActualTimes](current.ActualTimes)
	times.ActualEndTime = &now
	rawTimes, err := blob.Encode(times)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to encode actual times")
	}
	fields := repository.Fields{
		"status":       models.SessionCompleted,
		"actual_times": rawTimes,
	}
	if notes != nil {
		data := blob.Decode[models.SessionData](current.SessionData)
		data.Notes = notes
		rawData, err := blob.Encode(data)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to encode session data")
		}
		fields["session_data"] = rawData
	}
	return s.apply(ctx, current, fields)
}

// CancelSession marks the session cancelled and records the reason.
func (s *ClassSessionService) CancelSession(ctx context.Context, id, reason string) (*models.ClassSession, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cancellation reason is required")
	}
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	data := blob.Decode[models.SessionData](current.SessionData)
	data.CancellationReason = &reason
	raw, err := blob.Encode(data)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to encode session data")
	}
	return s.apply(ctx, current, repository.Fields{
		"status":       models.SessionCancelled,
		"session_data": raw,
	})
}

func (s *ClassSessionService) apply(ctx context.Context, current *models.ClassSessionDocument, fields repository.Fields) (*models.ClassSession, error) {
	if err := s.repo.Update(ctx, current.ID, fields); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class session not found")
		}
		s.logger.Error("update class session", zap.String("id", current.ID), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to update class session")
	}
	s.invalidate(ctx, current.InstructorID)
	return s.GetSession(ctx, current.ID)
}

func (s *ClassSessionService) load(ctx context.Context, id string) (*models.ClassSessionDocument, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class session not found")
		}
		s.logger.Error("load class session", zap.String("id", id), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to load class session")
	}
	return doc, nil
}

func (s *ClassSessionService) invalidate(ctx context.Context, instructorID string) {
	if s.analytics != nil {
		s.analytics.InvalidateInstructor(ctx, instructorID)
	}
}

// clockRange normalises a start/end pair and requires end to be after start.
func clockRange(start, end string) (string, string, error) {
	normStart, err := models.NormalizeClock(start)
	if err != nil {
		return "", "", appErrors.Validation(err, "start_time must be HH:MM")
	}
	normEnd, err := models.NormalizeClock(end)
	if err != nil {
		return "", "", appErrors.Validation(err, "end_time must be HH:MM")
	}
	if normEnd <= normStart {
		return "", "", appErrors.Clone(appErrors.ErrValidation, "end_time must be after start_time")
	}
	return normStart, normEnd, nil
}
