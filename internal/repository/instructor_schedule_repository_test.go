package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-instructor-api/internal/models"
)

func TestInstructorScheduleRepositoryListRange(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewInstructorScheduleRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM instructor_schedules WHERE instructor_id = $1 AND date >= $2 AND date <= $3 ORDER BY date ASC")).
		WithArgs("i-1", "2024-05-01", "2024-05-07").
		WillReturnRows(sqlmock.NewRows([]string{"id", "instructor_id", "date", "time_slots", "created_at", "updated_at"}).
			AddRow("sc-1", "i-1", "2024-05-02", []byte(`[]`), now, now))

	docs, err := repo.ListRange(context.Background(), "i-1", "2024-05-01", "2024-05-07")
	require.NoError(t, err)
	assert.Len(t, docs, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInstructorScheduleRepositoryUpsertKeepsExistingID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewInstructorScheduleRepository(db)

	created := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	slots := types.JSONText(`[{"start_time":"09:00","end_time":"10:00","status":"available"}]`)
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (instructor_id, date) DO UPDATE")).
		WithArgs(sqlmock.AnyArg(), "i-1", "2024-05-01", slots, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("sc-existing", created))

	doc := &models.InstructorScheduleDocument{InstructorID: "i-1", Date: "2024-05-01", TimeSlots: slots}
	require.NoError(t, repo.Upsert(context.Background(), doc))
	assert.Equal(t, "sc-existing", doc.ID)
	assert.Equal(t, created, doc.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}
