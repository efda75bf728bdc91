package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/lms-instructor-api/internal/models"
	appErrors "github.com/noah-isme/lms-instructor-api/pkg/errors"
)

type analyticsInvalidator interface {
	InvalidateInstructor(ctx context.Context, instructorID string)
}

type sessionLister interface {
	List(ctx context.Context, filter models.SessionFilter) ([]models.ClassSessionDocument, error)
}

// AnalyticsService aggregates instructor sessions and ratings with cache integration.
type AnalyticsService struct {
	sessions sessionLister
	ratings  ratingLister
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time
}

// NewAnalyticsService constructs an analytics service. cache and metrics may be nil.
func NewAnalyticsService(sessions sessionLister, ratings ratingLister, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{
		sessions: sessions,
		ratings:  ratings,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// GetInstructorAnalytics counts sessions by status and averages the overall
// score of every rating. The boolean reports whether the result came from cache.
func (s *AnalyticsService) GetInstructorAnalytics(ctx context.Context, instructorID string) (*models.InstructorAnalytics, bool, error) {
	cacheKey := makeAnalyticsCacheKey("instructor", instructorID)
	if s.cache != nil {
		var cached models.InstructorAnalytics
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
			s.logger.Warn("read analytics cache", zap.String("key", cacheKey), zap.Error(err))
		} else if hit {
			return &cached, true, nil
		}
	}

	var (
		sessions []models.ClassSessionDocument
		ratings  []models.StudentRatingDocument
	)
	start := time.Now()
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		docs, err := s.sessions.List(groupCtx, models.SessionFilter{InstructorID: instructorID})
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}
		sessions = docs
		return nil
	})
	group.Go(func() error {
		docs, err := s.ratings.List(groupCtx, models.RatingFilter{InstructorID: instructorID})
		if err != nil {
			return fmt.Errorf("list ratings: %w", err)
		}
		ratings = docs
		return nil
	})
	if err := group.Wait(); err != nil {
		s.logger.Error("aggregate instructor analytics", zap.String("instructor_id", instructorID), zap.Error(err))
		return nil, false, appErrors.Internal(err, "failed to aggregate instructor analytics")
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("analytics_instructor", time.Since(start))
	}

	result := aggregateInstructor(instructorID, sessions, ratings)
	result.GeneratedAt = s.now()

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, result, 0); err != nil {
			s.logger.Warn("cache instructor analytics", zap.Error(err))
		}
	}
	return &result, false, nil
}

// InvalidateInstructor drops cached analytics for an instructor.
func (s *AnalyticsService) InvalidateInstructor(ctx context.Context, instructorID string) {
	if s == nil || s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, makeAnalyticsCacheKey("instructor", instructorID)); err != nil {
		s.logger.Warn("invalidate instructor analytics", zap.String("instructor_id", instructorID), zap.Error(err))
	}
}

// SystemMetrics returns the process instrumentation snapshot.
func (s *AnalyticsService) SystemMetrics() models.SystemMetrics {
	if s.metrics == nil {
		return models.SystemMetrics{GeneratedAt: s.now()}
	}
	return s.metrics.Snapshot()
}

func aggregateInstructor(instructorID string, sessions []models.ClassSessionDocument, ratings []models.StudentRatingDocument) models.InstructorAnalytics {
	result := models.InstructorAnalytics{
		InstructorID:  instructorID,
		TotalSessions: len(sessions),
		TotalRatings:  len(ratings),
		AverageRating: averageOverall(ratings),
	}
	for _, session := range sessions {
		switch session.Status {
		case models.SessionScheduled:
			result.ScheduledSessions++
		case models.SessionOngoing:
			result.OngoingSessions++
		case models.SessionCompleted:
			result.CompletedSessions++
		case models.SessionCancelled:
			result.CancelledSessions++
		}
	}
	return result
}

func makeAnalyticsCacheKey(parts ...string) string {
	var builder strings.Builder
	builder.Grow(len(parts) * 16)
	builder.WriteString("analytics")
	for _, part := range parts {
		if part == "" {
			continue
		}
		builder.WriteByte(':')
		builder.WriteString(strings.ReplaceAll(part, ":", "|"))
	}
	return builder.String()
}

