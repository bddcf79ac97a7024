package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-admin-api/internal/models"
)

func newUsageLogRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestUsageLogRepositoryFinalize(t *testing.T) {
	db, mock, cleanup := newUsageLogRepoMock(t)
	defer cleanup()
	repo := NewUsageLogRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE signup_usage_logs SET registration_status = $2")).
		WithArgs("log-1", models.RegistrationStatusSuccessful, nil, models.RegistrationStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	updated, err := repo.Finalize(context.Background(), "log-1", models.RegistrationStatusSuccessful, nil)
	require.NoError(t, err)
	require.True(t, updated)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUsageLogRepositoryFinalizeTerminalEntry(t *testing.T) {
	db, mock, cleanup := newUsageLogRepoMock(t)
	defer cleanup()
	repo := NewUsageLogRepository(db)

	reason := "invalid signup code"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE signup_usage_logs SET registration_status = $2")).
		WithArgs("log-1", models.RegistrationStatusFailed, reason, models.RegistrationStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 0))

	updated, err := repo.Finalize(context.Background(), "log-1", models.RegistrationStatusFailed, &reason)
	require.NoError(t, err)
	require.False(t, updated)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUsageLogRepositoryListWithFilters(t *testing.T) {
	db, mock, cleanup := newUsageLogRepoMock(t)
	defer cleanup()
	repo := NewUsageLogRepository(db)

	rows := sqlmock.NewRows([]string{
		"id", "batch_id", "user_name", "user_email", "signup_code",
		"registration_status", "failure_reason", "used_at", "batch_name",
	}).AddRow("log-1", "batch-1", "Ana", "ana@example.com", "CODE1234",
		models.RegistrationStatusSuccessful, nil, time.Now(), "Batch 2026")

	mock.ExpectQuery(regexp.QuoteMeta("l.batch_id IN ($1) AND l.registration_status IN ($2)")).
		WithArgs("batch-1", models.RegistrationStatusSuccessful).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("batch-1", models.RegistrationStatusSuccessful).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	filter := models.UsageLogFilter{
		BatchIDs: []string{"batch-1"},
		Statuses: []models.RegistrationStatus{models.RegistrationStatusSuccessful},
	}
	entries, total, err := repo.List(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, 1, total)
	require.Equal(t, "Batch 2026", entries[0].BatchName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUsageLogRepositoryStatsSameClauseAsList(t *testing.T) {
	db, mock, cleanup := newUsageLogRepoMock(t)
	defer cleanup()
	repo := NewUsageLogRepository(db)

	rows := sqlmock.NewRows([]string{"total", "successful", "failed", "pending"}).
		AddRow(10, 6, 3, 1)
	mock.ExpectQuery(regexp.QuoteMeta("l.user_name ILIKE $1 OR l.user_email ILIKE $1 OR l.signup_code ILIKE $1")).
		WithArgs("%ana%").
		WillReturnRows(rows)

	stats, err := repo.Stats(context.Background(), models.UsageLogFilter{Search: "ana"})
	require.NoError(t, err)
	require.Equal(t, 10, stats.Total)
	require.Equal(t, stats.Total, stats.Successful+stats.Failed+stats.Pending)
	require.NoError(t, mock.ExpectationsWereMet())
}
