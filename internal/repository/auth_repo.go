package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"treadmill_pacer/internal/models"
)

// AthleteRepository stores athlete accounts.
type AthleteRepository struct {
	db *sql.DB
}

func NewAthleteRepository(db *sql.DB) *AthleteRepository {
	return &AthleteRepository{db: db}
}

var _ Authorization = (*AthleteRepository)(nil)

const (
	athleteColumns = `id, username, password_hash, age`

	insertAthleteSQL     = `INSERT INTO athletes (username, password_hash, age) VALUES (?, ?, ?)`
	athleteByUsernameSQL = `SELECT ` + athleteColumns + ` FROM athletes WHERE username = ?`
	athleteByIDSQL       = `SELECT ` + athleteColumns + ` FROM athletes WHERE id = ?`
)

// Create inserts an athlete and returns the new id.
func (r *AthleteRepository) Create(username, passwordHash string, age int) (int, error) {
	res, err := r.db.Exec(insertAthleteSQL, username, passwordHash, age)
	if err != nil {
		return 0, fmt.Errorf("insert athlete %q: %w", username, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id for athlete %q: %w", username, err)
	}
	return int(id), nil
}

// GetByUsername returns (nil, nil) when no athlete has that username.
func (r *AthleteRepository) GetByUsername(username string) (*models.Athlete, error) {
	a, err := r.findOne(athleteByUsernameSQL, username)
	if err != nil {
		return nil, fmt.Errorf("select athlete %q: %w", username, err)
	}
	return a, nil
}

// GetByID returns (nil, nil) when the id is unknown.
func (r *AthleteRepository) GetByID(id int) (*models.Athlete, error) {
	a, err := r.findOne(athleteByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("select athlete %d: %w", id, err)
	}
	return a, nil
}

func (r *AthleteRepository) findOne(query string, arg any) (*models.Athlete, error) {
	a := new(models.Athlete)
	switch err := r.db.QueryRow(query, arg).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.Age); {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, err
	}
	return a, nil
}
