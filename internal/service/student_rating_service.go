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

type studentRatingRepository interface {
	List(ctx context.Context, filter models.RatingFilter) ([]models.StudentRatingDocument, error)
	FindByID(ctx context.Context, id string) (*models.StudentRatingDocument, error)
	Create(ctx context.Context, doc *models.StudentRatingDocument) error
	Update(ctx context.Context, id string, fields repository.Fields) error
}

type jobEnqueuer interface {
	Enqueue(jobType string, payload interface{}) (string, error)
}

// CreateStudentRatingRequest records an evaluation. Ratings.Overall is ignored
// and derived from the five sub-scores.
type CreateStudentRatingRequest struct {
	StudentID    string              `json:"student_id" validate:"required"`
	SessionID    string              `json:"session_id" validate:"required"`
	InstructorID string              `json:"instructor_id" validate:"required"`
	ClassID      string              `json:"class_id" validate:"required"`
	Ratings      models.RatingScores `json:"ratings"`
	Strengths    *string             `json:"strengths"`
	Improvements *string             `json:"improvements"`
	Comments     *string             `json:"comments"`
	ParentNote   *string             `json:"parent_note"`
	IsVisible    *bool               `json:"is_visible"`
}

// UpdateStudentRatingRequest is a partial update. Supplying ratings rewrites the
// ratings blob with a recomputed overall; any feedback member rewrites feedback.
type UpdateStudentRatingRequest struct {
	Ratings      *models.RatingScores `json:"ratings"`
	Strengths    *string              `json:"strengths"`
	Improvements *string              `json:"improvements"`
	Comments     *string              `json:"comments"`
	ParentNote   *string              `json:"parent_note"`
	IsVisible    *bool                `json:"is_visible"`
}

// StudentRatingService records per-session student evaluations.
type StudentRatingService struct {
	repo      studentRatingRepository
	jobs      jobEnqueuer
	analytics analyticsInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentRatingService constructs a StudentRatingService. jobs and analytics may be nil.
func NewStudentRatingService(repo studentRatingRepository, jobs jobEnqueuer, analytics analyticsInvalidator, validate *validator.Validate, logger *zap.Logger) *StudentRatingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentRatingService{repo: repo, jobs: jobs, analytics: analytics, validator: validate, logger: logger}
}

// GetSessionRatings lists every rating recorded for a session.
func (s *StudentRatingService) GetSessionRatings(ctx context.Context, sessionID string) ([]models.StudentRating, error) {
	return s.list(ctx, models.RatingFilter{SessionID: sessionID})
}

// GetStudentRatings lists a student's ratings; visibleOnly hides ratings not
// released to the student.
func (s *StudentRatingService) GetStudentRatings(ctx context.Context, studentID string, visibleOnly bool) ([]models.StudentRating, error) {
	return s.list(ctx, models.RatingFilter{StudentID: studentID, VisibleOnly: visibleOnly})
}

func (s *StudentRatingService) list(ctx context.Context, filter models.RatingFilter) ([]models.StudentRating, error) {
	docs, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("list student ratings", zap.Any("filter", filter), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to list student ratings")
	}
	ratings := make([]models.StudentRating, 0, len(docs))
	for _, doc := range docs {
		ratings = append(ratings, toStudentRating(doc))
	}
	return ratings, nil
}

// CreateStudentRating stores a rating with its overall score derived.
func (s *StudentRatingService) CreateStudentRating(ctx context.Context, req CreateStudentRatingRequest) (*models.StudentRating, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid student rating payload")
	}
	scores, err := blob.Encode(req.Ratings.WithOverall())
	if err != nil {
		return nil, appErrors.Internal(err, "failed to encode ratings")
	}
	feedback, err := blob.Encode(models.RatingFeedback{
		Strengths:    req.Strengths,
		Improvements: req.Improvements,
		Comments:     req.Comments,
		ParentNote:   req.ParentNote,
	})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to encode feedback")
	}
	visible := true
	if req.IsVisible != nil {
		visible = *req.IsVisible
	}
	doc := &models.StudentRatingDocument{
		StudentID:    req.StudentID,
		SessionID:    req.SessionID,
		InstructorID: req.InstructorID,
		ClassID:      req.ClassID,
		Ratings:      scores,
		Feedback:     feedback,
		IsVisible:    visible,
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		s.logger.Error("create student rating", zap.String("session_id", req.SessionID), zap.String("student_id", req.StudentID), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to create student rating")
	}
	s.afterChange(ctx, doc.InstructorID)
	rating := toStudentRating(*doc)
	return &rating, nil
}

// UpdateStudentRating applies a partial update.
func (s *StudentRatingService) UpdateStudentRating(ctx context.Context, id string, req UpdateStudentRatingRequest) (*models.StudentRating, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid student rating payload")
	}
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := repository.Fields{}
	if req.Ratings != nil {
		raw, err := blob.Encode(req.Ratings.WithOverall())
		if err != nil {
			return nil, appErrors.Internal(err, "failed to encode ratings")
		}
		fields["ratings"] = raw
	}
	if blob.AnySet(req.Strengths != nil, req.Improvements != nil, req.Comments != nil, req.ParentNote != nil) {
		raw, err := blob.Encode(models.RatingFeedback{
			Strengths:    req.Strengths,
			Improvements: req.Improvements,
			Comments:     req.Comments,
			ParentNote:   req.ParentNote,
		})
		if err != nil {
			return nil, appErrors.Internal(err, "failed to encode feedback")
		}
		fields["feedback"] = raw
	}
	if req.IsVisible != nil {
		fields["is_visible"] = *req.IsVisible
	}

	if err := s.repo.Update(ctx, id, fields); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student rating not found")
		}
		s.logger.Error("update student rating", zap.String("id", id), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to update student rating")
	}
	if req.Ratings != nil {
		s.afterChange(ctx, current.InstructorID)
	}

	updated, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	rating := toStudentRating(*updated)
	return &rating, nil
}

// GetStudentRating returns one rating.
func (s *StudentRatingService) GetStudentRating(ctx context.Context, id string) (*models.StudentRating, error) {
	doc, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	rating := toStudentRating(*doc)
	return &rating, nil
}

func (s *StudentRatingService) load(ctx context.Context, id string) (*models.StudentRatingDocument, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student rating not found")
		}
		s.logger.Error("load student rating", zap.String("id", id), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to load student rating")
	}
	return doc, nil
}

// afterChange schedules the aggregate recompute and drops cached analytics.
// Neither failure affects the stored rating.
func (s *StudentRatingService) afterChange(ctx context.Context, instructorID string) {
	if s.jobs != nil {
		if _, err := s.jobs.Enqueue(JobRecomputeInstructorRating, instructorID); err != nil {
			s.logger.Warn("enqueue rating recompute", zap.String("instructor_id", instructorID), zap.Error(err))
		}
	}
	if s.analytics != nil {
		s.analytics.InvalidateInstructor(ctx, instructorID)
	}
}
