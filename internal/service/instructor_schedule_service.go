package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-instructor-api/internal/models"
	"github.com/noah-isme/lms-instructor-api/pkg/blob"
	appErrors "github.com/noah-isme/lms-instructor-api/pkg/errors"
)

type instructorScheduleRepository interface {
	FindByDate(ctx context.Context, instructorID, date string) (*models.InstructorScheduleDocument, error)
	ListRange(ctx context.Context, instructorID, from, to string) ([]models.InstructorScheduleDocument, error)
	Upsert(ctx context.Context, doc *models.InstructorScheduleDocument) error
}

// UpsertScheduleRequest replaces the slots of one day.
type UpsertScheduleRequest struct {
	InstructorID string            `json:"-" validate:"required"`
	Date         string            `json:"-" validate:"required,datetime=2006-01-02"`
	TimeSlots    []models.TimeSlot `json:"time_slots" validate:"dive"`
}

type scheduleRange struct {
	From string `validate:"omitempty,datetime=2006-01-02"`
	To   string `validate:"omitempty,datetime=2006-01-02"`
}

// InstructorScheduleService manages per-day instructor availability.
type InstructorScheduleService struct {
	repo      instructorScheduleRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewInstructorScheduleService constructs an InstructorScheduleService.
func NewInstructorScheduleService(repo instructorScheduleRepository, validate *validator.Validate, logger *zap.Logger) *InstructorScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstructorScheduleService{repo: repo, validator: validate, logger: logger}
}

// GetInstructorSchedule returns the schedule of one day.
func (s *InstructorScheduleService) GetInstructorSchedule(ctx context.Context, instructorID, date string) (*models.InstructorSchedule, error) {
	doc, err := s.repo.FindByDate(ctx, instructorID, date)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor schedule not found")
		}
		s.logger.Error("load instructor schedule", zap.String("instructor_id", instructorID), zap.String("date", date), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to load instructor schedule")
	}
	schedule := toInstructorSchedule(*doc)
	return &schedule, nil
}

// ListInstructorSchedules returns schedules within an inclusive date range.
func (s *InstructorScheduleService) ListInstructorSchedules(ctx context.Context, instructorID, from, to string) ([]models.InstructorSchedule, error) {
	if err := s.validator.Struct(scheduleRange{From: from, To: to}); err != nil {
		return nil, appErrors.Validation(err, "invalid date range")
	}
	if from != "" && to != "" && to < from {
		return nil, appErrors.Clone(appErrors.ErrValidation, "to must not be before from")
	}
	docs, err := s.repo.ListRange(ctx, instructorID, from, to)
	if err != nil {
		s.logger.Error("list instructor schedules", zap.String("instructor_id", instructorID), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to list instructor schedules")
	}
	schedules := make([]models.InstructorSchedule, 0, len(docs))
	for _, doc := range docs {
		schedules = append(schedules, toInstructorSchedule(doc))
	}
	return schedules, nil
}

// UpsertInstructorSchedule replaces the slot list of a day.
func (s *InstructorScheduleService) UpsertInstructorSchedule(ctx context.Context, req UpsertScheduleRequest) (*models.InstructorSchedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid schedule payload")
	}
	for i, slot := range req.TimeSlots {
		start, end, err := clockRange(slot.StartTime, slot.EndTime)
		if err != nil {
			return nil, err
		}
		req.TimeSlots[i].StartTime, req.TimeSlots[i].EndTime = start, end
	}
	raw, err := blob.EncodeList(req.TimeSlots)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to encode time slots")
	}
	doc := &models.InstructorScheduleDocument{
		InstructorID: req.InstructorID,
		Date:         req.Date,
		TimeSlots:    raw,
	}
	if err := s.repo.Upsert(ctx, doc); err != nil {
		s.logger.Error("upsert instructor schedule", zap.String("instructor_id", req.InstructorID), zap.String("date", req.Date), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to save instructor schedule")
	}
	schedule := toInstructorSchedule(*doc)
	return &schedule, nil
}
