package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-instructor-api/internal/models"
	appErrors "github.com/noah-isme/lms-instructor-api/pkg/errors"
)

type userProfileRepository interface {
	List(ctx context.Context, filter models.UserProfileFilter) ([]models.UserProfile, int, error)
	FindByUserID(ctx context.Context, userID string) (*models.UserProfile, error)
	UpdateRole(ctx context.Context, userID string, role models.UserRole, updatedAt time.Time) error
}

// UserService backs the admin area: listing profiles and changing roles.
type UserService struct {
	repo      userProfileRepository
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userProfileRepository, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{repo: repo, validator: validate, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// ListUsers returns a page of profiles, optionally restricted to one role.
func (s *UserService) ListUsers(ctx context.Context, filter models.UserProfileFilter) ([]models.UserProfile, *models.Pagination, error) {
	if filter.Role != nil && !filter.Role.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "role must be student, instructor or admin")
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}

	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("list user profiles", zap.Error(err))
		return nil, nil, appErrors.Internal(err, "failed to list users")
	}
	return users, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// UpdateUserRole changes the role of the profile owned by userID.
func (s *UserService) UpdateUserRole(ctx context.Context, userID string, req models.UpdateRoleRequest) (*models.UserProfile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "role must be student, instructor or admin")
	}
	if _, err := s.repo.FindByUserID(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Internal(err, "failed to load user")
	}
	if err := s.repo.UpdateRole(ctx, userID, req.Role, s.now()); err != nil {
		s.logger.Error("update user role", zap.String("user_id", userID), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to update role")
	}
	s.logger.Info("user role changed", zap.String("user_id", userID), zap.String("role", string(req.Role)))

	updated, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load user")
	}
	return updated, nil
}
