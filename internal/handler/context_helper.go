package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-instructor-api/internal/middleware"
	"github.com/noah-isme/lms-instructor-api/internal/models"
	appErrors "github.com/noah-isme/lms-instructor-api/pkg/errors"
	"github.com/noah-isme/lms-instructor-api/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.Claims(c)
}

// bindJSON decodes the body into dest, writing a validation error on failure.
func bindJSON(c *gin.Context, dest interface{}, message string) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Validation(err, message))
		return false
	}
	return true
}

func withMeta(c *gin.Context) map[string]interface{} {
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = make(map[string]interface{})
	}
	return meta
}

func isAdmin(c *gin.Context) bool {
	claims := claimsFromContext(c)
	return claims != nil && claims.Role == models.RoleAdmin
}

// requireOwner writes 403 unless the caller may act for instructorID.
func requireOwner(c *gin.Context, instructorID string) bool {
	if middleware.CanActFor(c, instructorID) {
		return true
	}
	response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "instructors can only manage their own records"))
	return false
}

// created writes a 201 and exposes id to the audit trail.
func created(c *gin.Context, id string, data interface{}) {
	middleware.SetResourceID(c, id)
	response.Created(c, data)
}
