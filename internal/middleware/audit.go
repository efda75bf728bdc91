package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-instructor-api/pkg/middleware/requestid"
)

// ContextResourceIDKey carries the id of a resource created by the handler.
const ContextResourceIDKey = "audit_resource_id"

// SetResourceID records the id of the resource the handler created so Audit
// can log it on routes without an :id parameter.
func SetResourceID(c *gin.Context, id string) {
	c.Set(ContextResourceIDKey, id)
}

// Audit writes one structured audit line for every successful request on the
// route. It must run after JWT.
func Audit(logger *zap.Logger, action, resource string) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("audit")
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}

		fields := []zap.Field{
			zap.String("action", action),
			zap.String("resource", resource),
			zap.String("path", c.FullPath()),
			zap.String("method", c.Request.Method),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
			zap.String("user_agent", c.GetHeader("User-Agent")),
		}
		if id := resourceID(c); id != "" {
			fields = append(fields, zap.String("resource_id", id))
		}
		if claims := Claims(c); claims != nil {
			fields = append(fields, zap.String("user_id", claims.UserID), zap.String("role", string(claims.Role)))
		}
		if reqID := requestid.Value(c); reqID != "" {
			fields = append(fields, zap.String("request_id", reqID))
		}
		logger.Info("audit", fields...)
	}
}

func resourceID(c *gin.Context) string {
	if id := c.GetString(ContextResourceIDKey); id != "" {
		return id
	}
	return c.Param("id")
}
