package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-instructor-api/internal/models"
	"github.com/noah-isme/lms-instructor-api/internal/repository"
	"github.com/noah-isme/lms-instructor-api/pkg/blob"
	appErrors "github.com/noah-isme/lms-instructor-api/pkg/errors"
)

type instructorProfileRepository interface {
	List(ctx context.Context, filter models.InstructorFilter) ([]models.InstructorProfileDocument, error)
	FindByID(ctx context.Context, id string) (*models.InstructorProfileDocument, error)
	FindByUserID(ctx context.Context, userID string) (*models.InstructorProfileDocument, error)
	Create(ctx context.Context, doc *models.InstructorProfileDocument) error
	Update(ctx context.Context, id string, fields repository.Fields) error
}

// CreateInstructorProfileRequest is the payload for registering an instructor.
type CreateInstructorProfileRequest struct {
	UserID             string                  `json:"user_id" validate:"required"`
	Name               string                  `json:"name" validate:"required,max=120"`
	Email              string                  `json:"email" validate:"required,email"`
	Phone              string                  `json:"phone" validate:"omitempty,max=50"`
	Status             models.InstructorStatus `json:"status" validate:"omitempty,oneof=available assigned unavailable on-leave"`
	MaxClasses         int                     `json:"max_classes" validate:"min=0"`
	CurrentAssignments []string                `json:"current_assignments"`
	ProfileImage       *string                 `json:"profile_image"`
	Bio                *string                 `json:"bio"`
	Specialization     *[]string               `json:"specialization"`
	Experience         *int                    `json:"experience" validate:"omitempty,min=0"`
	Qualifications     *[]string               `json:"qualifications"`
	Location           *string                 `json:"location"`
}

// UpdateInstructorProfileRequest carries a partial update. A nil field is left
// untouched; any non-nil profile_data member rewrites the whole profile_data blob.
type UpdateInstructorProfileRequest struct {
	Name               *string                  `json:"name" validate:"omitempty,max=120"`
	Email              *string                  `json:"email" validate:"omitempty,email"`
	Phone              *string                  `json:"phone" validate:"omitempty,max=50"`
	Status             *models.InstructorStatus `json:"status" validate:"omitempty,oneof=available assigned unavailable on-leave"`
	MaxClasses         *int                     `json:"max_classes" validate:"omitempty,min=0"`
	CurrentAssignments *[]string                `json:"current_assignments"`
	ProfileImage       *string                  `json:"profile_image"`
	Bio                *string                  `json:"bio"`
	Specialization     *[]string                `json:"specialization"`
	Experience         *int                     `json:"experience" validate:"omitempty,min=0"`
	Qualifications     *[]string                `json:"qualifications"`
	Location           *string                  `json:"location"`
}

func (r UpdateInstructorProfileRequest) profileData() (models.ProfileData, bool) {
	data := models.ProfileData{
		ProfileImage:   r.ProfileImage,
		Bio:            r.Bio,
		Specialization: r.Specialization,
		Experience:     r.Experience,
		Qualifications: r.Qualifications,
		Location:       r.Location,
	}
	present := blob.AnySet(r.ProfileImage != nil, r.Bio != nil, r.Specialization != nil, r.Experience != nil, r.Qualifications != nil, r.Location != nil)
	return data, present
}

// InstructorService exposes instructor profile operations.
type InstructorService struct {
	repo      instructorProfileRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewInstructorService constructs an InstructorService.
func NewInstructorService(repo instructorProfileRepository, validate *validator.Validate, logger *zap.Logger) *InstructorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstructorService{repo: repo, validator: validate, logger: logger}
}

// GetInstructorProfile returns the profile owned by a user account.
func (s *InstructorService) GetInstructorProfile(ctx context.Context, userID string) (*models.InstructorProfile, error) {
	doc, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, s.lookupError(err, "user_id", userID)
	}
	profile := toInstructorProfile(*doc)
	return &profile, nil
}

// GetInstructorProfileByID returns a profile by its id.
func (s *InstructorService) GetInstructorProfileByID(ctx context.Context, id string) (*models.InstructorProfile, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(err, "id", id)
	}
	profile := toInstructorProfile(*doc)
	return &profile, nil
}

// ListInstructors returns every profile matching the filter.
func (s *InstructorService) ListInstructors(ctx context.Context, filter models.InstructorFilter) ([]models.InstructorProfile, error) {
	docs, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("list instructor profiles", zap.Error(err))
		return nil, appErrors.Internal(err, "failed to list instructors")
	}
	profiles := make([]models.InstructorProfile, 0, len(docs))
	for _, doc := range docs {
		profiles = append(profiles, toInstructorProfile(doc))
	}
	return profiles, nil
}

// CreateInstructorProfile registers a new instructor.
func (s *InstructorService) CreateInstructorProfile(ctx context.Context, req CreateInstructorProfileRequest) (*models.InstructorProfile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid instructor payload")
	}

	if _, err := s.repo.FindByUserID(ctx, req.UserID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "instructor profile already exists for user")
	} else if err != sql.ErrNoRows {
		return nil, appErrors.Internal(err, "failed to check instructor profile")
	}

	data, err := blob.Encode(models.ProfileData{
		ProfileImage:   req.ProfileImage,
		Bio:            req.Bio,
		Specialization: req.Specialization,
		Experience:     req.Experience,
		Qualifications: req.Qualifications,
		Location:       req.Location,
	})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to encode profile data")
	}

	status := req.Status
	if status == "" {
		status = models.InstructorAvailable
	}
	doc := &models.InstructorProfileDocument{
		UserID:             req.UserID,
		Name:               strings.TrimSpace(req.Name),
		Email:              strings.TrimSpace(req.Email),
		Phone:              strings.TrimSpace(req.Phone),
		Status:             status,
		MaxClasses:         req.MaxClasses,
		CurrentAssignments: pq.StringArray(req.CurrentAssignments),
		ProfileData:        data,
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		s.logger.Error("create instructor profile", zap.String("user_id", req.UserID), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to create instructor profile")
	}
	profile := toInstructorProfile(*doc)
	return &profile, nil
}

// UpdateInstructorProfile applies a partial update and returns the stored result.
func (s *InstructorService) UpdateInstructorProfile(ctx context.Context, id string, req UpdateInstructorProfileRequest) (*models.InstructorProfile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid instructor payload")
	}

	fields := repository.Fields{}
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		fields["email"] = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		fields["phone"] = strings.TrimSpace(*req.Phone)
	}
	if req.Status != nil {
		fields["status"] = *req.Status
	}
	if req.MaxClasses != nil {
		fields["max_classes"] = *req.MaxClasses
	}
	if req.CurrentAssignments != nil {
		fields["current_assignments"] = pq.StringArray(*req.CurrentAssignments)
	}
	if data, ok := req.profileData(); ok {
		raw, err := blob.Encode(data)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to encode profile data")
		}
		fields["profile_data"] = raw
	}

	if err := s.repo.Update(ctx, id, fields); err != nil {
		return nil, s.lookupError(err, "id", id)
	}
	return s.GetInstructorProfileByID(ctx, id)
}

func (s *InstructorService) lookupError(err error, key, value string) error {
	if err == sql.ErrNoRows {
		return appErrors.Clone(appErrors.ErrNotFound, "instructor profile not found")
	}
	s.logger.Error("load instructor profile", zap.String(key, value), zap.Error(err))
	return appErrors.Internal(err, "failed to load instructor profile")
}
