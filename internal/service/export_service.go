package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/lms-instructor-api/internal/models"
	"github.com/noah-isme/lms-instructor-api/pkg/blob"
	appErrors "github.com/noah-isme/lms-instructor-api/pkg/errors"
	"github.com/noah-isme/lms-instructor-api/pkg/export"
)

type sessionFinder interface {
	FindByID(ctx context.Context, id string) (*models.ClassSessionDocument, error)
}

var ratingExportHeaders = []string{
	"student_id", "participation", "comprehension", "homework", "speaking", "listening",
	"overall", "strengths", "improvements", "comments", "visible",
}

// ExportFile is a rendered report ready to be streamed to the client.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders rating reports in csv, pdf or xlsx.
type ExportService struct {
	sessions sessionFinder
	ratings  ratingLister
	logger   *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(sessions sessionFinder, ratings ratingLister, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{sessions: sessions, ratings: ratings, logger: logger}
}

// ExportSessionRatings renders every rating of a session in the requested format.
func (s *ExportService) ExportSessionRatings(ctx context.Context, sessionID string, format export.Format) (*ExportFile, error) {
	renderer, err := export.ForFormat(format)
	if err != nil {
		return nil, appErrors.Validation(err, "format must be csv, pdf or xlsx")
	}

	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class session not found")
		}
		return nil, appErrors.Internal(err, "failed to load class session")
	}
	docs, err := s.ratings.List(ctx, models.RatingFilter{SessionID: sessionID})
	if err != nil {
		s.logger.Error("list ratings for export", zap.String("session_id", sessionID), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to list student ratings")
	}

	dataset := ratingDataset(session, docs)
	payload, err := renderer.Render(dataset)
	if err != nil {
		s.logger.Error("render rating export", zap.String("session_id", sessionID), zap.String("format", renderer.Extension()), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to render export")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("ratings-%s-%s.%s", session.Date, session.ID, renderer.Extension()),
		ContentType: renderer.ContentType(),
		Data:        payload,
	}, nil
}

func ratingDataset(session *models.ClassSessionDocument, docs []models.StudentRatingDocument) export.Dataset {
	title := fmt.Sprintf("Ratings - %s (%s %s)", session.Title, session.Date, session.TimeSlot)
	rows := make([]map[string]string, 0, len(docs))
	for _, doc := range docs {
		scores := blob.Decode[models.RatingScores](doc.Ratings)
		feedback := blob.Decode[models.RatingFeedback](doc.Feedback)
		rows = append(rows, map[string]string{
			"student_id":    doc.StudentID,
			"participation": strconv.Itoa(scores.Participation),
			"comprehension": strconv.Itoa(scores.Comprehension),
			"homework":      strconv.Itoa(scores.Homework),
			"speaking":      strconv.Itoa(scores.Speaking),
			"listening":     strconv.Itoa(scores.Listening),
			"overall":       strconv.Itoa(scores.Overall),
			"strengths":     blob.Value(feedback.Strengths),
			"improvements":  blob.Value(feedback.Improvements),
			"comments":      blob.Value(feedback.Comments),
			"visible":       strconv.FormatBool(doc.IsVisible),
		})
	}
	return export.Dataset{Title: title, Headers: ratingExportHeaders, Rows: rows}
}
