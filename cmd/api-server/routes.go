package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/lms-instructor-api/api/swagger"
	"github.com/noah-isme/lms-instructor-api/internal/handler"
	"github.com/noah-isme/lms-instructor-api/internal/middleware"
	"github.com/noah-isme/lms-instructor-api/internal/models"
	"github.com/noah-isme/lms-instructor-api/internal/service"
	"github.com/noah-isme/lms-instructor-api/pkg/config"
	"github.com/noah-isme/lms-instructor-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/lms-instructor-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/lms-instructor-api/pkg/middleware/requestid"
)

type routeHandlers struct {
	auth        *handler.AuthHandler
	instructors *handler.InstructorHandler
	assignments *handler.AssignmentHandler
	sessions    *handler.SessionHandler
	ratings     *handler.RatingHandler
	schedules   *handler.ScheduleHandler
	online      *handler.OnlineSessionHandler
	analytics   *handler.AnalyticsHandler
	users       *handler.UserHandler
	metrics     *handler.MetricsHandler

	profiles middleware.InstructorResolver
}

func newRouter(cfg *config.Config, logr *zap.Logger, metrics *service.MetricsService, auth middleware.TokenAuthenticator, h routeHandlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics, "/metrics", "/health", "/ready"))

	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	r.GET("/metrics", h.metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.WithResponseMeta())

	authGroup := api.Group("/auth")
	authGroup.POST("/signup", h.auth.Signup)
	authGroup.POST("/login", h.auth.Login)
	authGroup.POST("/password/forgot", h.auth.ForgotPassword)
	authGroup.POST("/password/reset", h.auth.ResetPassword)

	secured := api.Group("")
	secured.Use(middleware.JWT(auth))
	secured.POST("/auth/logout", h.auth.Logout)
	secured.GET("/auth/me", h.auth.Me)

	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleInstructor)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	owner := middleware.ResolveInstructor(h.profiles)

	instructors := secured.Group("/instructors")
	instructors.GET("", h.instructors.List)
	instructors.POST("", adminOnly, middleware.Audit(logr, "create", "instructor_profile"), h.instructors.Create)
	instructors.GET("/me", staff, h.instructors.Me)
	instructors.GET("/:id", h.instructors.Get)
	instructors.PATCH("/:id", staff, middleware.Audit(logr, "update", "instructor_profile"), h.instructors.Update)
	instructors.GET("/:id/assignments", staff, h.assignments.ListByInstructor)
	instructors.GET("/:id/sessions", h.sessions.ListByInstructor)
	instructors.GET("/:id/schedules", h.schedules.List)
	instructors.GET("/:id/schedules/:date", h.schedules.Get)
	instructors.PUT("/:id/schedules/:date", staff, owner, h.schedules.Upsert)
	instructors.GET("/:id/analytics", staff, h.analytics.Instructor)
	instructors.GET("/:id/calendar", staff, h.analytics.Calendar)

	assignments := secured.Group("/assignments", adminOnly)
	assignments.POST("", middleware.Audit(logr, "create", "class_assignment"), h.assignments.Create)
	assignments.PATCH("/:id", middleware.Audit(logr, "update", "class_assignment"), h.assignments.Update)

	sessions := secured.Group("/sessions")
	sessions.POST("", staff, owner, h.sessions.Create)
	sessions.GET("/:id", h.sessions.Get)
	sessions.PATCH("/:id", staff, owner, h.sessions.Update)
	sessions.POST("/:id/start", staff, owner, h.sessions.Start)
	sessions.POST("/:id/end", staff, owner, h.sessions.End)
	sessions.POST("/:id/cancel", staff, owner, middleware.Audit(logr, "cancel", "class_session"), h.sessions.Cancel)
	sessions.GET("/:id/ratings", staff, h.ratings.ListBySession)
	sessions.GET("/:id/ratings/export", staff, h.ratings.Export)
	sessions.GET("/:id/online", h.online.GetBySession)

	ratings := secured.Group("/ratings", staff, owner)
	ratings.POST("", h.ratings.Create)
	ratings.PATCH("/:id", h.ratings.Update)

	secured.GET("/students/:id/ratings", h.ratings.ListByStudent)

	online := secured.Group("/online-sessions", staff, owner)
	online.POST("", h.online.Create)
	online.PATCH("/:id", h.online.Update)

	admin := secured.Group("/admin", adminOnly)
	admin.GET("/users", h.users.List)
	admin.PATCH("/users/:id/role", middleware.Audit(logr, "update_role", "user"), h.users.UpdateRole)
	admin.GET("/system-metrics", h.analytics.SystemMetrics)

	return r
}
