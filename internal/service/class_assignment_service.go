package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-instructor-api/internal/models"
	"github.com/noah-isme/lms-instructor-api/internal/repository"
	"github.com/noah-isme/lms-instructor-api/pkg/blob"
	appErrors "github.com/noah-isme/lms-instructor-api/pkg/errors"
)

type classAssignmentRepository interface {
	ListByInstructor(ctx context.Context, instructorID string, status models.AssignmentStatus) ([]models.ClassAssignmentDocument, error)
	FindByID(ctx context.Context, id string) (*models.ClassAssignmentDocument, error)
	Create(ctx context.Context, doc *models.ClassAssignmentDocument) error
	Update(ctx context.Context, id string, fields repository.Fields) error
}

// CreateClassAssignmentRequest assigns an instructor to a class.
type CreateClassAssignmentRequest struct {
	InstructorID string                  `json:"instructor_id" validate:"required"`
	ClassID      string                  `json:"class_id" validate:"required"`
	SchoolID     string                  `json:"school_id" validate:"required"`
	StartDate    string                  `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate      string                  `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	IsTemporary  bool                    `json:"is_temporary"`
	Status       models.AssignmentStatus `json:"status" validate:"omitempty,oneof=active pending completed cancelled"`
	AssignedBy   string                  `json:"-"`
	ClassName    *string                 `json:"class_name"`
	Subject      *string                 `json:"subject"`
	Grade        *string                 `json:"grade"`
	Schedule     *string                 `json:"schedule"`
}

// UpdateClassAssignmentRequest is a partial update; class detail members rewrite
// the whole class_details blob.
type UpdateClassAssignmentRequest struct {
	ClassID     *string                  `json:"class_id"`
	SchoolID    *string                  `json:"school_id"`
	StartDate   *string                  `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate     *string                  `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	IsTemporary *bool                    `json:"is_temporary"`
	Status      *models.AssignmentStatus `json:"status" validate:"omitempty,oneof=active pending completed cancelled"`
	ClassName   *string                  `json:"class_name"`
	Subject     *string                  `json:"subject"`
	Grade       *string                  `json:"grade"`
	Schedule    *string                  `json:"schedule"`
}

// ClassAssignmentService manages instructor class assignments.
type ClassAssignmentService struct {
	repo      classAssignmentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassAssignmentService constructs a ClassAssignmentService.
func NewClassAssignmentService(repo classAssignmentRepository, validate *validator.Validate, logger *zap.Logger) *ClassAssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassAssignmentService{repo: repo, validator: validate, logger: logger}
}

// GetInstructorAssignments lists an instructor's assignments, optionally by status.
func (s *ClassAssignmentService) GetInstructorAssignments(ctx context.Context, instructorID string, status models.AssignmentStatus) ([]models.ClassAssignment, error) {
	docs, err := s.repo.ListByInstructor(ctx, instructorID, status)
	if err != nil {
		s.logger.Error("list class assignments", zap.String("instructor_id", instructorID), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to list class assignments")
	}
	assignments := make([]models.ClassAssignment, 0, len(docs))
	for _, doc := range docs {
		assignments = append(assignments, toClassAssignment(doc))
	}
	return assignments, nil
}

// GetClassAssignment returns one assignment.
func (s *ClassAssignmentService) GetClassAssignment(ctx context.Context, id string) (*models.ClassAssignment, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class assignment not found")
		}
		s.logger.Error("load class assignment", zap.String("id", id), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to load class assignment")
	}
	assignment := toClassAssignment(*doc)
	return &assignment, nil
}

// CreateClassAssignment stores a new assignment.
func (s *ClassAssignmentService) CreateClassAssignment(ctx context.Context, req CreateClassAssignmentRequest) (*models.ClassAssignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid class assignment payload")
	}
	details, err := blob.Encode(models.ClassDetails{
		ClassName: req.ClassName,
		Subject:   req.Subject,
		Grade:     req.Grade,
		Schedule:  req.Schedule,
	})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to encode class details")
	}
	status := req.Status
	if status == "" {
		status = models.AssignmentPending
	}
	doc := &models.ClassAssignmentDocument{
		InstructorID: req.InstructorID,
		ClassID:      req.ClassID,
		SchoolID:     req.SchoolID,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		IsTemporary:  req.IsTemporary,
		Status:       status,
		AssignedBy:   req.AssignedBy,
		ClassDetails: details,
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		s.logger.Error("create class assignment", zap.String("instructor_id", req.InstructorID), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to create class assignment")
	}
	assignment := toClassAssignment(*doc)
	return &assignment, nil
}

// UpdateClassAssignment applies a partial update.
func (s *ClassAssignmentService) UpdateClassAssignment(ctx context.Context, id string, req UpdateClassAssignmentRequest) (*models.ClassAssignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid class assignment payload")
	}
	fields := repository.Fields{}
	if req.ClassID != nil {
		fields["class_id"] = *req.ClassID
	}
	if req.SchoolID != nil {
		fields["school_id"] = *req.SchoolID
	}
	if req.StartDate != nil {
		fields["start_date"] = *req.StartDate
	}
	if req.EndDate != nil {
		fields["end_date"] = *req.EndDate
	}
	if req.IsTemporary != nil {
		fields["is_temporary"] = *req.IsTemporary
	}
	if req.Status != nil {
		fields["status"] = *req.Status
	}
	if blob.AnySet(req.ClassName != nil, req.Subject != nil, req.Grade != nil, req.Schedule != nil) {
		raw, err := blob.Encode(models.ClassDetails{ClassName: req.ClassName, Subject: req.Subject, Grade: req.Grade, Schedule: req.Schedule})
		if err != nil {
			return nil, appErrors.Internal(err, "failed to encode class details")
		}
		fields["class_details"] = raw
	}

	if err := s.repo.Update(ctx, id, fields); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class assignment not found")
		}
		s.logger.Error("update class assignment", zap.String("id", id), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to update class assignment")
	}
	return s.GetClassAssignment(ctx, id)
}

// ClassesFromAssignments derives the distinct classes taught under the given
// assignments, keeping the first occurrence of each class id.
func ClassesFromAssignments(assignments []models.ClassAssignment) []models.ClassSummary {
	seen := make(map[string]struct{}, len(assignments))
	classes := make([]models.ClassSummary, 0, len(assignments))
	for _, a := range assignments {
		if _, ok := seen[a.ClassID]; ok {
			continue
		}
		seen[a.ClassID] = struct{}{}
		classes = append(classes, models.ClassSummary{
			ClassID:   a.ClassID,
			SchoolID:  a.SchoolID,
			ClassName: a.ClassName,
			Subject:   a.Subject,
			Grade:     a.Grade,
			Schedule:  a.Schedule,
		})
	}
	return classes
}
