package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-instructor-api/internal/models"
)

const userProfileColumns = "id, user_id, email, name, role, created_at, updated_at"

// UserProfileRepository manages role-bearing user profiles.
type UserProfileRepository struct {
	db *sqlx.DB
}

// NewUserProfileRepository constructs a UserProfileRepository.
func NewUserProfileRepository(db *sqlx.DB) *UserProfileRepository {
	return &UserProfileRepository{db: db}
}

// FindByUserID fetches the profile of an account.
func (r *UserProfileRepository) FindByUserID(ctx context.Context, userID string) (*models.UserProfile, error) {
	const query = `SELECT ` + userProfileColumns + ` FROM user_profiles WHERE user_id = $1`
	var profile models.UserProfile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		return nil, err
	}
	return &profile, nil
}

// CreateIfMissing inserts the profile unless one exists for the account.
// It reports whether a row was written.
func (r *UserProfileRepository) CreateIfMissing(ctx context.Context, profile *models.UserProfile) (bool, error) {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	stamp(&profile.CreatedAt, &profile.UpdatedAt)
	const query = `INSERT INTO user_profiles (id, user_id, email, name, role, created_at, updated_at)
		VALUES (:id, :user_id, :email, :name, :role, :created_at, :updated_at)
		ON CONFLICT (user_id) DO NOTHING`
	result, err := r.db.NamedExecContext(ctx, query, profile)
	if err != nil {
		return false, fmt.Errorf("create user profile: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("create user profile: %w", err)
	}
	return affected > 0, nil
}

// List returns profiles matching the filter with a total count.
func (r *UserProfileRepository) List(ctx context.Context, filter models.UserProfileFilter) ([]models.UserProfile, int, error) {
	base := "FROM user_profiles WHERE 1=1"
	var args []interface{}
	if filter.Role != nil {
		args = append(args, *filter.Role)
		base += fmt.Sprintf(" AND role = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		base += fmt.Sprintf(" AND (LOWER(name) LIKE $%d OR LOWER(email) LIKE $%d)", len(args), len(args))
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", userProfileColumns, base, size, offset)
	profiles := make([]models.UserProfile, 0)
	if err := r.db.SelectContext(ctx, &profiles, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list user profiles: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count user profiles: %w", err)
	}
	return profiles, total, nil
}

// UpdateRole changes the role of an account's profile.
func (r *UserProfileRepository) UpdateRole(ctx context.Context, userID string, role models.UserRole, updatedAt time.Time) error {
	const query = `UPDATE user_profiles SET role = $1, updated_at = $2 WHERE user_id = $3`
	if _, err := r.db.ExecContext(ctx, query, role, updatedAt, userID); err != nil {
		return fmt.Errorf("update user role: %w", err)
	}
	return nil
}
