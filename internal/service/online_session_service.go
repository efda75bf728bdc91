package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-instructor-api/internal/models"
	"github.com/noah-isme/lms-instructor-api/internal/repository"
	"github.com/noah-isme/lms-instructor-api/pkg/blob"
	appErrors "github.com/noah-isme/lms-instructor-api/pkg/errors"
)

type onlineSessionRepository interface {
	FindBySessionID(ctx context.Context, sessionID string) (*models.OnlineSessionDocument, error)
	FindByID(ctx context.Context, id string) (*models.OnlineSessionDocument, error)
	ExistsForSession(ctx context.Context, sessionID string) (bool, error)
	Create(ctx context.Context, doc *models.OnlineSessionDocument) error
	Update(ctx context.Context, id string, fields repository.Fields) error
}

// CreateOnlineSessionRequest attaches meeting metadata to a class session.
type CreateOnlineSessionRequest struct {
	SessionID    string `json:"session_id" validate:"required"`
	InstructorID string `json:"instructor_id" validate:"required"`
	Platform     string `json:"platform" validate:"required,max=50"`
	MeetingURL   string `json:"meeting_url" validate:"required,url"`
	MeetingID    string `json:"meeting_id" validate:"omitempty,max=120"`
}

// UpdateOnlineSessionRequest is a partial update. Attendees replace the whole
// list; recording and content members rewrite their blobs whole.
type UpdateOnlineSessionRequest struct {
	Platform          *string                     `json:"platform" validate:"omitempty,max=50"`
	MeetingURL        *string                     `json:"meeting_url" validate:"omitempty,url"`
	MeetingID         *string                     `json:"meeting_id" validate:"omitempty,max=120"`
	Status            *models.OnlineSessionStatus `json:"status" validate:"omitempty,oneof=scheduled live ended"`
	Attendees         *[]models.Attendee          `json:"attendees" validate:"omitempty,dive"`
	RecordingURL      *string                     `json:"recording_url"`
	RecordingDuration *int                        `json:"recording_duration_seconds" validate:"omitempty,min=0"`
	RecordingReady    *bool                       `json:"recording_available"`
	Chat              *[]models.ChatMessage       `json:"chat"`
	Whiteboard        *string                     `json:"whiteboard"`
}

// OnlineSessionService manages meeting metadata of online class sessions.
type OnlineSessionService struct {
	repo      onlineSessionRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewOnlineSessionService constructs an OnlineSessionService.
func NewOnlineSessionService(repo onlineSessionRepository, validate *validator.Validate, logger *zap.Logger) *OnlineSessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OnlineSessionService{repo: repo, validator: validate, logger: logger}
}

// GetOnlineSession returns the online metadata of a class session.
func (s *OnlineSessionService) GetOnlineSession(ctx context.Context, sessionID string) (*models.OnlineSession, error) {
	doc, err := s.repo.FindBySessionID(ctx, sessionID)
	if err != nil {
		return nil, s.lookupError(err, sessionID)
	}
	online := toOnlineSession(*doc)
	return &online, nil
}

// CreateOnlineSession stores meeting metadata; one per class session.
func (s *OnlineSessionService) CreateOnlineSession(ctx context.Context, req CreateOnlineSessionRequest) (*models.OnlineSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid online session payload")
	}
	exists, err := s.repo.ExistsForSession(ctx, req.SessionID)
	if err != nil {
		s.logger.Error("check online session", zap.String("session_id", req.SessionID), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to check online session")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "online session already exists for class session")
	}
	doc := &models.OnlineSessionDocument{
		SessionID:    req.SessionID,
		InstructorID: req.InstructorID,
		Platform:     req.Platform,
		MeetingURL:   req.MeetingURL,
		MeetingID:    req.MeetingID,
		Status:       models.OnlineScheduled,
		Attendees:    blob.EmptyArray(),
		Recording:    blob.EmptyObject(),
		Content:      blob.EmptyObject(),
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "online session already exists for class session")
		}
		s.logger.Error("create online session", zap.String("session_id", req.SessionID), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to create online session")
	}
	online := toOnlineSession(*doc)
	return &online, nil
}

// UpdateOnlineSession applies a partial update.
func (s *OnlineSessionService) UpdateOnlineSession(ctx context.Context, id string, req UpdateOnlineSessionRequest) (*models.OnlineSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid online session payload")
	}
	fields := repository.Fields{}
	if req.Platform != nil {
		fields["platform"] = *req.Platform
	}
	if req.MeetingURL != nil {
		fields["meeting_url"] = *req.MeetingURL
	}
	if req.MeetingID != nil {
		fields["meeting_id"] = *req.MeetingID
	}
	if req.Status != nil {
		fields["status"] = *req.Status
	}
	if req.Attendees != nil {
		raw, err := blob.EncodeList(*req.Attendees)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to encode attendees")
		}
		fields["attendees"] = raw
	}
	if blob.AnySet(req.RecordingURL != nil, req.RecordingDuration != nil, req.RecordingReady != nil) {
		raw, err := blob.Encode(models.RecordingInfo{URL: req.RecordingURL, DurationSeconds: req.RecordingDuration, Available: req.RecordingReady})
		if err != nil {
			return nil, appErrors.Internal(err, "failed to encode recording")
		}
		fields["recording"] = raw
	}
	if blob.AnySet(req.Chat != nil, req.Whiteboard != nil) {
		raw, err := blob.Encode(models.SessionContent{Chat: req.Chat, Whiteboard: req.Whiteboard})
		if err != nil {
			return nil, appErrors.Internal(err, "failed to encode content")
		}
		fields["content"] = raw
	}

	if err := s.repo.Update(ctx, id, fields); err != nil {
		return nil, s.lookupError(err, id)
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(err, id)
	}
	online := toOnlineSession(*doc)
	return &online, nil
}

// GetOnlineSessionByID returns an online session by its own id.
func (s *OnlineSessionService) GetOnlineSessionByID(ctx context.Context, id string) (*models.OnlineSession, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(err, id)
	}
	online := toOnlineSession(*doc)
	return &online, nil
}

func (s *OnlineSessionService) lookupError(err error, ref string) error {
	if err == sql.ErrNoRows {
		return appErrors.Clone(appErrors.ErrNotFound, "online session not found")
	}
	s.logger.Error("load online session", zap.String("ref", ref), zap.Error(err))
	return appErrors.Internal(err, "failed to load online session")
}
