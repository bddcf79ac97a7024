package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newClassRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestClassRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newClassRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	rows := sqlmock.NewRows([]string{"id", "batch_id", "name", "capacity", "enrolled_count", "created_at", "updated_at"}).
		AddRow("class-1", "batch-1", "Algebra", nil, 12, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM classes WHERE id = $1")).
		WithArgs("class-1").
		WillReturnRows(rows)

	class, err := repo.FindByID(context.Background(), "class-1")
	require.NoError(t, err)
	require.Nil(t, class.Capacity)
	require.Equal(t, 12, class.EnrolledCount)
	require.True(t, class.HasCapacity())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryIncrementEnrollment(t *testing.T) {
	db, mock, cleanup := newClassRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE classes SET enrolled_count = enrolled_count + 1")).
		WithArgs("class-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	admitted, err := repo.IncrementEnrollment(context.Background(), "class-1")
	require.NoError(t, err)
	require.True(t, admitted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryIncrementEnrollmentFull(t *testing.T) {
	db, mock, cleanup := newClassRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE classes SET enrolled_count = enrolled_count + 1")).
		WithArgs("class-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	admitted, err := repo.IncrementEnrollment(context.Background(), "class-1")
	require.NoError(t, err)
	require.False(t, admitted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryDecrementEnrollment(t *testing.T) {
	db, mock, cleanup := newClassRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE classes SET enrolled_count = enrolled_count - 1")).
		WithArgs("class-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.DecrementEnrollment(context.Background(), "class-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
