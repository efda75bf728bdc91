package repository

import (
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestBuildUpdateOrdersColumnsAndStampsUpdatedAt(t *testing.T) {
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	query, args, err := buildUpdate("class_sessions", columnSet("status", "actual_times"), "s-1", Fields{
		"status":       "ongoing",
		"actual_times": `{"actual_start_time":"x"}`,
	}, now)
	require.NoError(t, err)
	assert.Equal(t, "UPDATE class_sessions SET actual_times = $1, status = $2, updated_at = $3 WHERE id = $4", query)
	assert.Equal(t, []interface{}{`{"actual_start_time":"x"}`, "ongoing", now, "s-1"}, args)
}

func TestBuildUpdateWithNoFieldsOnlyRestamps(t *testing.T) {
	now := time.Now().UTC()
	query, args, err := buildUpdate("student_ratings", columnSet("ratings"), "r-1", Fields{}, now)
	require.NoError(t, err)
	assert.Equal(t, "UPDATE student_ratings SET updated_at = $1 WHERE id = $2", query)
	assert.Equal(t, []interface{}{now, "r-1"}, args)
}

func TestBuildUpdateRejectsUnknownColumn(t *testing.T) {
	_, _, err := buildUpdate("class_sessions", columnSet("status"), "s-1", Fields{"id": "x"}, time.Now())
	require.Error(t, err)
}
