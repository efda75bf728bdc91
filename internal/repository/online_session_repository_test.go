package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-instructor-api/internal/models"
)

func TestOnlineSessionRepositoryExistsForSession(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewOnlineSessionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM online_sessions WHERE session_id = $1 LIMIT 1")).
		WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM online_sessions WHERE session_id = $1 LIMIT 1")).
		WithArgs("s-2").
		WillReturnError(sql.ErrNoRows)

	exists, err := repo.ExistsForSession(context.Background(), "s-1")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsForSession(context.Background(), "s-2")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOnlineSessionRepositoryCreateDefaultsBlobs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewOnlineSessionRepository(db)

	mock.ExpectExec("INSERT INTO online_sessions").
		WithArgs(sqlmock.AnyArg(), "s-1", "i-1", "zoom", "https://meet.example/1", "1", models.OnlineScheduled, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	doc := &models.OnlineSessionDocument{SessionID: "s-1", InstructorID: "i-1", Platform: "zoom", MeetingURL: "https://meet.example/1", MeetingID: "1", Status: models.OnlineScheduled}
	require.NoError(t, repo.Create(context.Background(), doc))
	assert.Equal(t, "[]", doc.Attendees.String())
	assert.Equal(t, "{}", doc.Recording.String())
	assert.Equal(t, "{}", doc.Content.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}
