package service

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/noah-isme/lms-instructor-api/internal/models"
	"github.com/noah-isme/lms-instructor-api/pkg/blob"
	"github.com/noah-isme/lms-instructor-api/pkg/jobs"
)

// JobRecomputeInstructorRating is the job type carrying an instructor id.
const JobRecomputeInstructorRating = "instructor.rating.recompute"

type ratingAggregateStore interface {
	UpdateRatingAggregate(ctx context.Context, id string, rating float64, total int) error
	List(ctx context.Context, filter models.InstructorFilter) ([]models.InstructorProfileDocument, error)
}

type ratingLister interface {
	List(ctx context.Context, filter models.RatingFilter) ([]models.StudentRatingDocument, error)
}

// RatingAggregator keeps InstructorProfile.rating and total_ratings in step
// with the stored student ratings.
type RatingAggregator struct {
	profiles ratingAggregateStore
	ratings  ratingLister
	jobs     jobEnqueuer
	logger   *zap.Logger
}

// NewRatingAggregator constructs a RatingAggregator. jobs is only needed by ReconcileAll.
func NewRatingAggregator(profiles ratingAggregateStore, ratings ratingLister, jobs jobEnqueuer, logger *zap.Logger) *RatingAggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RatingAggregator{profiles: profiles, ratings: ratings, jobs: jobs, logger: logger}
}

// Recompute stores the mean overall score of every rating of the instructor,
// rounded to two decimals. Zero ratings store 0.
func (a *RatingAggregator) Recompute(ctx context.Context, instructorID string) error {
	docs, err := a.ratings.List(ctx, models.RatingFilter{InstructorID: instructorID})
	if err != nil {
		return fmt.Errorf("list ratings for %s: %w", instructorID, err)
	}
	mean := averageOverall(docs)
	rounded := math.Round(mean*100) / 100
	if err := a.profiles.UpdateRatingAggregate(ctx, instructorID, rounded, len(docs)); err != nil {
		if err == sql.ErrNoRows {
			a.logger.Warn("rating recompute for unknown instructor", zap.String("instructor_id", instructorID))
			return nil
		}
		return fmt.Errorf("store rating aggregate for %s: %w", instructorID, err)
	}
	return nil
}

// Handle adapts Recompute to the job queue.
func (a *RatingAggregator) Handle(ctx context.Context, job jobs.Job) error {
	instructorID, ok := job.Payload.(string)
	if !ok || instructorID == "" {
		a.logger.Error("rating recompute job without instructor id", zap.String("job_id", job.ID))
		return nil
	}
	return a.Recompute(ctx, instructorID)
}

// ReconcileAll enqueues a recompute for every instructor.
func (a *RatingAggregator) ReconcileAll(ctx context.Context) error {
	profiles, err := a.profiles.List(ctx, models.InstructorFilter{})
	if err != nil {
		return fmt.Errorf("list instructors: %w", err)
	}
	var failed int
	for _, p := range profiles {
		if _, err := a.jobs.Enqueue(JobRecomputeInstructorRating, p.ID); err != nil {
			failed++
			a.logger.Warn("enqueue rating reconcile", zap.String("instructor_id", p.ID), zap.Error(err))
		}
	}
	if failed > 0 {
		return fmt.Errorf("failed to enqueue %d of %d rating recomputes", failed, len(profiles))
	}
	a.logger.Info("rating reconcile enqueued", zap.Int("instructors", len(profiles)))
	return nil
}

func averageOverall(docs []models.StudentRatingDocument) float64 {
	if len(docs) == 0 {
		return 0
	}
	var sum int
	for _, doc := range docs {
		sum += blob.Decode[models.RatingScores](doc.Ratings).Overall
	}
	return float64(sum) / float64(len(docs))
}
