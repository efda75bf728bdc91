package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/lms-instructor-api/internal/models"
	appErrors "github.com/noah-isme/lms-instructor-api/pkg/errors"
)

type authenticatorStub struct {
	claims *models.JWTClaims
	token  string
}

func (a authenticatorStub) Authenticate(ctx context.Context, token string) (*models.JWTClaims, error) {
	if token != a.token {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session expired or revoked")
	}
	return a.claims, nil
}

func newProtectedRouter(roles ...models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	auth := authenticatorStub{token: "good", claims: &models.JWTClaims{UserID: "u1", Role: models.RoleInstructor}}
	handlers := []gin.HandlerFunc{JWT(auth)}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRoles(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		c.String(http.StatusOK, Claims(c).UserID)
	})
	r.GET("/protected", handlers...)
	return r
}

func TestJWTRequiresLiveSession(t *testing.T) {
	r := newProtectedRouter()
	cases := map[string]int{
		"":            http.StatusUnauthorized,
		"Token good":  http.StatusUnauthorized,
		"Bearer ":     http.StatusUnauthorized,
		"Bearer bad":  http.StatusUnauthorized,
		"Bearer good": http.StatusOK,
		"bearer good": http.StatusOK,
	}
	for header, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, header)
		if want == http.StatusOK {
			assert.Equal(t, "u1", rec.Body.String())
		}
	}
}

func TestRequireRoles(t *testing.T) {
	for roles, want := range map[string]struct {
		roles []models.UserRole
		code  int
	}{
		"allowed":   {[]models.UserRole{models.RoleAdmin, models.RoleInstructor}, http.StatusOK},
		"forbidden": {[]models.UserRole{models.RoleAdmin}, http.StatusForbidden},
	} {
		r := newProtectedRouter(want.roles...)
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer good")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, want.code, rec.Code, roles)
	}
}

func TestRequireRolesWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", RequireRoles(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestResponseMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var captured map[string]interface{}
	r.GET("/meta", WithResponseMeta(), func(c *gin.Context) {
		SetCacheHit(c, true)
		SetDegraded(c, nil)
		SetDegraded(c, []string{"schedule"})
		captured = ExtractMeta(c)
		c.Status(http.StatusOK)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/meta", nil))
	assert.Equal(t, true, captured[cacheHitKey])
	assert.Equal(t, []string{"schedule"}, captured[degradedKey])
	assert.Contains(t, captured, "processing_time_ms")
}
