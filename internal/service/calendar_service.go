package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/lms-instructor-api/internal/models"
	appErrors "github.com/noah-isme/lms-instructor-api/pkg/errors"
)

type calendarSessionSource interface {
	GetInstructorSessions(ctx context.Context, instructorID, date string) ([]models.ClassSession, error)
}

type calendarScheduleSource interface {
	GetInstructorSchedule(ctx context.Context, instructorID, date string) (*models.InstructorSchedule, error)
}

type calendarAssignmentSource interface {
	GetInstructorAssignments(ctx context.Context, instructorID string, status models.AssignmentStatus) ([]models.ClassAssignment, error)
}

// Calendar branch names reported in CalendarOverview.Degraded.
const (
	CalendarBranchSessions    = "sessions"
	CalendarBranchSchedule    = "schedule"
	CalendarBranchAssignments = "assignments"
	CalendarBranchClasses     = "classes"
)

// CalendarService assembles the per-day instructor calendar.
type CalendarService struct {
	sessions    calendarSessionSource
	schedules   calendarScheduleSource
	assignments calendarAssignmentSource
	logger      *zap.Logger
	now         func() time.Time
}

// NewCalendarService constructs a CalendarService.
func NewCalendarService(sessions calendarSessionSource, schedules calendarScheduleSource, assignments calendarAssignmentSource, logger *zap.Logger) *CalendarService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarService{
		sessions:    sessions,
		schedules:   schedules,
		assignments: assignments,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// GetCalendar fetches sessions, schedule, assignments and active classes for a
// day concurrently. A failing branch is logged, left empty and named in
// Degraded; the overview itself only fails when ctx is done. An empty date
// means today (UTC).
func (s *CalendarService) GetCalendar(ctx context.Context, instructorID, date string) (*models.CalendarOverview, error) {
	if date == "" {
		date = s.now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, appErrors.Validation(err, "date must be YYYY-MM-DD")
	}

	overview := &models.CalendarOverview{
		InstructorID: instructorID,
		Date:         date,
		Sessions:     []models.ClassSession{},
		Assignments:  []models.ClassAssignment{},
		Classes:      []models.ClassSummary{},
	}

	var mu sync.Mutex
	degrade := func(branch string, err error) {
		s.logger.Warn("calendar branch degraded", zap.String("branch", branch), zap.String("instructor_id", instructorID), zap.String("date", date), zap.Error(err))
		mu.Lock()
		overview.Degraded = append(overview.Degraded, branch)
		mu.Unlock()
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		sessions, err := s.sessions.GetInstructorSessions(groupCtx, instructorID, date)
		if err != nil {
			degrade(CalendarBranchSessions, err)
			return nil
		}
		overview.Sessions = sessions
		return nil
	})
	group.Go(func() error {
		schedule, err := s.schedules.GetInstructorSchedule(groupCtx, instructorID, date)
		if err != nil {
			if appErr := appErrors.FromError(err); appErr.Code != appErrors.ErrNotFound.Code {
				degrade(CalendarBranchSchedule, err)
			}
			return nil
		}
		overview.Schedule = schedule
		return nil
	})
	group.Go(func() error {
		assignments, err := s.assignments.GetInstructorAssignments(groupCtx, instructorID, "")
		if err != nil {
			degrade(CalendarBranchAssignments, err)
			return nil
		}
		overview.Assignments = assignments
		return nil
	})
	group.Go(func() error {
		active, err := s.assignments.GetInstructorAssignments(groupCtx, instructorID, models.AssignmentActive)
		if err != nil {
			degrade(CalendarBranchClasses, err)
			return nil
		}
		overview.Classes = ClassesFromAssignments(active)
		return nil
	})
	_ = group.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sort.Strings(overview.Degraded)
	return overview, nil
}
