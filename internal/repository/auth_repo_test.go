package repository

import (
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"treadmill_pacer/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAthleteRepo(t *testing.T) (*AthleteRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewAthleteRepository(db), mock
}

func athleteRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "username", "password_hash", "age"})
}

func TestAthleteCreate(t *testing.T) {
	t.Run("returns new id", func(t *testing.T) {
		repo, mock := newAthleteRepo(t)
		mock.ExpectExec(regexp.QuoteMeta(insertAthleteSQL)).
			WithArgs("alice", "h123", 31).
			WillReturnResult(sqlmock.NewResult(42, 1))

		id, err := repo.Create("alice", "h123", 31)
		require.NoError(t, err)
		assert.Equal(t, 42, id)
	})

	t.Run("duplicate username", func(t *testing.T) {
		repo, mock := newAthleteRepo(t)
		mock.ExpectExec(regexp.QuoteMeta(insertAthleteSQL)).
			WillReturnError(errors.New("UNIQUE constraint failed: athletes.username"))

		id, err := repo.Create("bob", "h", 50)
		assert.ErrorContains(t, err, `insert athlete "bob"`)
		assert.Zero(t, id)
	})

	t.Run("no last insert id", func(t *testing.T) {
		repo, mock := newAthleteRepo(t)
		mock.ExpectExec(regexp.QuoteMeta(insertAthleteSQL)).
			WillReturnResult(sqlmock.NewErrorResult(errors.New("unsupported")))

		_, err := repo.Create("carol", "h", 22)
		assert.ErrorContains(t, err, "last insert id")
	})
}

func TestAthleteLookups(t *testing.T) {
	t.Run("by username", func(t *testing.T) {
		repo, mock := newAthleteRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta(athleteByUsernameSQL)).
			WithArgs("alice").
			WillReturnRows(athleteRows().AddRow(7, "alice", "h123", 31))

		a, err := repo.GetByUsername("alice")
		require.NoError(t, err)
		assert.Equal(t, &models.Athlete{ID: 7, Username: "alice", PasswordHash: "h123", Age: 31}, a)
	})

	t.Run("by id", func(t *testing.T) {
		repo, mock := newAthleteRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta(athleteByIDSQL)).
			WithArgs(3).
			WillReturnRows(athleteRows().AddRow(3, "dan", "hx", 45))

		a, err := repo.GetByID(3)
		require.NoError(t, err)
		require.NotNil(t, a)
		assert.Equal(t, 45, a.Age)
	})

	t.Run("missing is not an error", func(t *testing.T) {
		repo, mock := newAthleteRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta(athleteByUsernameSQL)).WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(regexp.QuoteMeta(athleteByIDSQL)).WillReturnRows(athleteRows())

		a, err := repo.GetByUsername("ghost")
		assert.NoError(t, err)
		assert.Nil(t, a)

		b, err := repo.GetByID(99)
		assert.NoError(t, err)
		assert.Nil(t, b)
	})

	t.Run("query failure is wrapped", func(t *testing.T) {
		repo, mock := newAthleteRepo(t)
		boom := errors.New("disk I/O error")
		mock.ExpectQuery(regexp.QuoteMeta(athleteByIDSQL)).WillReturnError(boom)

		a, err := repo.GetByID(1)
		assert.ErrorIs(t, err, boom)
		assert.Nil(t, a)
	})
}
