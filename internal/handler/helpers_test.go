package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-instructor-api/internal/middleware"
	"github.com/noah-isme/lms-instructor-api/internal/models"
)

type apiEnvelope struct {
	Data       json.RawMessage        `json:"data"`
	Error      map[string]interface{} `json:"error"`
	Pagination map[string]interface{} `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

// instructorProfileOf maps test user "u-N" to the instructor profile "ins-N".
func instructorProfileOf(userID string) string {
	return "ins-" + strings.TrimPrefix(userID, "u-")
}

// newRouter registers one route, optionally authenticating as claims.
// Instructor callers own the profile named by instructorProfileOf.
func newRouter(method, path string, claims *models.JWTClaims, handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.WithResponseMeta())
	if claims != nil {
		r.Use(func(c *gin.Context) {
			c.Set(middleware.ContextUserKey, claims)
			if claims.Role == models.RoleInstructor {
				c.Set(middleware.ContextInstructorKey, instructorProfileOf(claims.UserID))
			}
			c.Next()
		})
	}
	r.Handle(method, path, handler)
	return r
}

func serve(r *gin.Engine, method, target string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	var req *http.Request
	if reader != nil {
		req = httptest.NewRequest(method, target, reader)
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func asInstructor(userID string) *models.JWTClaims {
	return &models.JWTClaims{UserID: userID, SessionID: "sess-" + userID, Role: models.RoleInstructor}
}

func asStudent(userID string) *models.JWTClaims {
	return &models.JWTClaims{UserID: userID, SessionID: "sess-" + userID, Role: models.RoleStudent}
}

func asAdmin(userID string) *models.JWTClaims {
	return &models.JWTClaims{UserID: userID, SessionID: "sess-" + userID, Role: models.RoleAdmin}
}
