package store

import (
	"database/sql"
	"fmt"

	"taskhero/internal/model"
)

type CategoryStore struct {
	db DBTX
}

func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

// WithTx returns a copy of the store bound to the given transaction.
func (s *CategoryStore) WithTx(tx *sql.Tx) *CategoryStore {
	return &CategoryStore{db: tx}
}

func scanCategory(scanner interface{ Scan(...any) error }) (*model.Category, error) {
	var c model.Category
	err := scanner.Scan(&c.ID, &c.UserID, &c.Name, &c.Color, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const categoryCols = `id, user_id, name, color, created_at`

func (s *CategoryStore) Create(userID int64, name, color string) (*model.Category, error) {
	result, err := s.db.Exec(
		`INSERT INTO categories (user_id, name, color) VALUES (?, ?, ?)`,
		userID, name, color,
	)
	if err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id, userID)
}

// GetByID is ownership-scoped: another user's category reads as not found.
func (s *CategoryStore) GetByID(id, userID int64) (*model.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryCols+` FROM categories WHERE id = ? AND user_id = ?`, id, userID)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (s *CategoryStore) List(userID int64) ([]model.Category, error) {
	rows, err := s.db.Query(`SELECT `+categoryCols+` FROM categories WHERE user_id = ? ORDER BY name ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

// Update writes the given name and color. Returns nil when the category is
// missing or not owned.
func (s *CategoryStore) Update(id, userID int64, name, color string) (*model.Category, error) {
	result, err := s.db.Exec(
		`UPDATE categories SET name = ?, color = ? WHERE id = ? AND user_id = ?`,
		name, color, id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, nil
	}
	return s.GetByID(id, userID)
}

func (s *CategoryStore) Delete(id, userID int64) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM categories WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete category: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
