package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-instructor-api/internal/models"
	appErrors "github.com/noah-isme/lms-instructor-api/pkg/errors"
)

type profileRepoStub struct {
	profiles   map[string]*models.UserProfile
	lastFilter models.UserProfileFilter
}

func (s *profileRepoStub) List(ctx context.Context, filter models.UserProfileFilter) ([]models.UserProfile, int, error) {
	s.lastFilter = filter
	out := []models.UserProfile{}
	for _, p := range s.profiles {
		if filter.Role != nil && p.Role != *filter.Role {
			continue
		}
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (s *profileRepoStub) FindByUserID(ctx context.Context, userID string) (*models.UserProfile, error) {
	p, ok := s.profiles[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *p
	return &copied, nil
}

func (s *profileRepoStub) UpdateRole(ctx context.Context, userID string, role models.UserRole, updatedAt time.Time) error {
	s.profiles[userID].Role = role
	return nil
}

func newProfileRepoStub() *profileRepoStub {
	return &profileRepoStub{profiles: map[string]*models.UserProfile{
		"u1": {UserID: "u1", Role: models.RoleStudent},
		"u2": {UserID: "u2", Role: models.RoleInstructor},
		"u3": {UserID: "u3", Role: models.RoleAdmin},
	}}
}

func TestListUsersFiltersByRoleAndClampsPaging(t *testing.T) {
	repo := newProfileRepoStub()
	svc := NewUserService(repo, nil, nil)

	role := models.RoleInstructor
	users, page, err := svc.ListUsers(context.Background(), models.UserProfileFilter{Role: &role, PageSize: 500})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "u2", users[0].UserID)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 100, page.PageSize)
	assert.Equal(t, 1, page.TotalCount)

	bad := models.UserRole("principal")
	_, _, err = svc.ListUsers(context.Background(), models.UserProfileFilter{Role: &bad})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestUpdateUserRole(t *testing.T) {
	repo := newProfileRepoStub()
	svc := NewUserService(repo, nil, nil)

	updated, err := svc.UpdateUserRole(context.Background(), "u1", models.UpdateRoleRequest{Role: models.RoleInstructor})
	require.NoError(t, err)
	assert.Equal(t, models.RoleInstructor, updated.Role)

	_, err = svc.UpdateUserRole(context.Background(), "u1", models.UpdateRoleRequest{Role: "owner"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.UpdateUserRole(context.Background(), "ghost", models.UpdateRoleRequest{Role: models.RoleAdmin})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
