package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-instructor-api/internal/models"
	appErrors "github.com/noah-isme/lms-instructor-api/pkg/errors"
	"github.com/noah-isme/lms-instructor-api/pkg/response"
)

// ContextInstructorKey holds the instructor profile id of an instructor caller.
const ContextInstructorKey = "instructor_profile_id"

// InstructorResolver finds the instructor profile owned by an account.
type InstructorResolver interface {
	GetInstructorProfile(ctx context.Context, userID string) (*models.InstructorProfile, error)
}

// ResolveInstructor stores the caller's instructor profile id for instructor
// callers. Other roles pass through untouched. It must run after JWT.
func ResolveInstructor(resolver InstructorResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil || claims.Role != models.RoleInstructor {
			c.Next()
			return
		}
		profile, err := resolver.GetInstructorProfile(c.Request.Context(), claims.UserID)
		if err != nil {
			if appErrors.FromError(err).Code == appErrors.ErrNotFound.Code {
				response.Abort(c, appErrors.Clone(appErrors.ErrForbidden, "caller has no instructor profile"))
				return
			}
			response.Abort(c, err)
			return
		}
		c.Set(ContextInstructorKey, profile.ID)
		c.Next()
	}
}

// CanActFor reports whether the caller may change data owned by instructorID.
// Admins may act for anyone; instructors only for their own profile.
func CanActFor(c *gin.Context, instructorID string) bool {
	claims := Claims(c)
	if claims == nil {
		return false
	}
	switch claims.Role {
	case models.RoleAdmin:
		return true
	case models.RoleInstructor:
		own := c.GetString(ContextInstructorKey)
		return own != "" && own == instructorID
	default:
		return false
	}
}
