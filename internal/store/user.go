package store

import (
	"database/sql"
	"fmt"

	"taskhero/internal/model"
)

type UserStore struct {
	db DBTX
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// WithTx returns a copy of the store bound to the given transaction.
func (s *UserStore) WithTx(tx *sql.Tx) *UserStore {
	return &UserStore{db: tx}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var username, lastName sql.NullString

	err := scanner.Scan(
		&u.ID, &u.ExternalID, &username, &u.FirstName, &lastName,
		&u.RegisteredAt, &u.Level, &u.Experience, &u.CompletedTasks,
	)
	if err != nil {
		return nil, err
	}

	if username.Valid {
		u.Username = &username.String
	}
	if lastName.Valid {
		u.LastName = &lastName.String
	}
	return &u, nil
}

const userCols = `id, external_id, username, first_name, last_name, registered_at, level, experience, completed_tasks`

func (s *UserStore) Create(externalID int64, username *string, firstName string, lastName *string) (*model.User, error) {
	var uname, lname sql.NullString
	if username != nil {
		uname = sql.NullString{String: *username, Valid: true}
	}
	if lastName != nil {
		lname = sql.NullString{String: *lastName, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO users (external_id, username, first_name, last_name) VALUES (?, ?, ?, ?)`,
		externalID, uname, firstName, lname,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) GetByID(id int64) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByExternalID(externalID int64) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE external_id = ?`, externalID)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by external id: %w", err)
	}
	return u, nil
}

// List returns all users, oldest first. Used by the reminder scheduler.
func (s *UserStore) List() ([]model.User, error) {
	rows, err := s.db.Query(`SELECT ` + userCols + ` FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// UpdateProgress writes the experience/level counters. The level value is
// computed by the progression engine, never here.
func (s *UserStore) UpdateProgress(id int64, level, experience int) error {
	_, err := s.db.Exec(
		`UPDATE users SET level = ?, experience = ? WHERE id = ?`,
		level, experience, id,
	)
	if err != nil {
		return fmt.Errorf("update user progress: %w", err)
	}
	return nil
}

func (s *UserStore) IncrementCompletedTasks(id int64) error {
	_, err := s.db.Exec(
		`UPDATE users SET completed_tasks = completed_tasks + 1 WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("increment completed tasks: %w", err)
	}
	return nil
}
