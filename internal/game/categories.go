package game

import (
	"context"
	"database/sql"
	"regexp"
	"strings"
	"unicode/utf8"

	"taskhero/internal/model"
	"taskhero/internal/store"
)

const (
	maxCategoryNameLen = 50
	defaultColor       = "#808080"
)

var hexColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// CreateCategory validates and stores a category. An empty color falls back
// to the default gray.
func (s *Service) CreateCategory(ctx context.Context, userID int64, name, color string) (*model.Category, error) {
	name, err := validateCategoryName(name)
	if err != nil {
		return nil, err
	}
	color, err = validateColor(color)
	if err != nil {
		return nil, err
	}
	return s.categories.Create(userID, name, color)
}

func (s *Service) ListCategories(ctx context.Context, userID int64) ([]model.Category, error) {
	return s.categories.List(userID)
}

func (s *Service) GetCategory(ctx context.Context, categoryID, userID int64) (*model.Category, error) {
	return s.categories.GetByID(categoryID, userID)
}

// UpdateCategory applies a partial update; nil fields keep their value.
// Returns nil when the category is missing or not owned.
func (s *Service) UpdateCategory(ctx context.Context, categoryID, userID int64, name, color *string) (*model.Category, error) {
	existing, err := s.categories.GetByID(categoryID, userID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	newName, newColor := existing.Name, existing.Color
	if name != nil {
		newName, err = validateCategoryName(*name)
		if err != nil {
			return nil, err
		}
	}
	if color != nil {
		newColor, err = validateColor(*color)
		if err != nil {
			return nil, err
		}
	}

	return s.categories.Update(categoryID, userID, newName, newColor)
}

// DeleteCategory detaches all referencing tasks, then removes the category.
// Tasks survive with no category; nothing cascades. Returns false when the
// category is missing or not owned.
func (s *Service) DeleteCategory(ctx context.Context, categoryID, userID int64) (bool, error) {
	var deleted bool
	err := store.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		categories := s.categories.WithTx(tx)
		tasks := s.tasks.WithTx(tx)

		existing, err := categories.GetByID(categoryID, userID)
		if err != nil {
			return err
		}
		if existing == nil {
			return nil
		}

		if err := tasks.ClearCategory(categoryID); err != nil {
			return err
		}
		deleted, err = categories.Delete(categoryID, userID)
		return err
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// CategoryStats returns per-category task totals plus a trailing bucket for
// uncategorized tasks (nil Category).
func (s *Service) CategoryStats(ctx context.Context, userID int64) ([]model.CategoryStats, error) {
	categories, err := s.categories.List(userID)
	if err != nil {
		return nil, err
	}

	stats := make([]model.CategoryStats, 0, len(categories)+1)
	for i := range categories {
		c := categories[i]
		tasks, err := s.tasks.List(userID, store.ListFilter{CategoryID: &c.ID})
		if err != nil {
			return nil, err
		}
		stats = append(stats, model.CategoryStats{
			Category:  &c,
			Total:     len(tasks),
			Completed: countDone(tasks),
		})
	}

	uncategorized, err := s.tasks.List(userID, store.ListFilter{Uncategorized: true})
	if err != nil {
		return nil, err
	}
	stats = append(stats, model.CategoryStats{
		Total:     len(uncategorized),
		Completed: countDone(uncategorized),
	})

	return stats, nil
}

func countDone(tasks []model.Task) int {
	count := 0
	for _, t := range tasks {
		if t.Status == model.StatusDone {
			count++
		}
	}
	return count
}

func validateCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", validationErr("name", "must not be empty")
	}
	if utf8.RuneCountInString(name) > maxCategoryNameLen {
		return "", validationErr("name", "must be at most 50 characters")
	}
	return name, nil
}

func validateColor(color string) (string, error) {
	if color == "" {
		return defaultColor, nil
	}
	if !hexColorRe.MatchString(color) {
		return "", validationErr("color", "must be a hex color like #3aa6ff")
	}
	return color, nil
}
