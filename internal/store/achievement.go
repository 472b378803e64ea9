package store

import (
	"database/sql"
	"fmt"

	"taskhero/internal/model"
)

type AchievementStore struct {
	db DBTX
}

func NewAchievementStore(db *sql.DB) *AchievementStore {
	return &AchievementStore{db: db}
}

// WithTx returns a copy of the store bound to the given transaction.
func (s *AchievementStore) WithTx(tx *sql.Tx) *AchievementStore {
	return &AchievementStore{db: tx}
}

func scanAchievement(scanner interface{ Scan(...any) error }) (*model.Achievement, error) {
	var a model.Achievement
	err := scanner.Scan(&a.ID, &a.Name, &a.Description, &a.ConditionType, &a.ConditionValue, &a.XPReward)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

const achievementCols = `id, name, description, condition_type, condition_value, xp_reward`

// List returns every achievement definition in id order, which is the
// evaluation and unlock-reporting order.
func (s *AchievementStore) List() ([]model.Achievement, error) {
	rows, err := s.db.Query(`SELECT ` + achievementCols + ` FROM achievements ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	defer rows.Close()

	var achievements []model.Achievement
	for rows.Next() {
		a, err := scanAchievement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan achievement: %w", err)
		}
		achievements = append(achievements, *a)
	}
	return achievements, rows.Err()
}

// CreateIfAbsent inserts a definition unless one with the same name exists.
// Seeding is matched by name so restarts never duplicate.
func (s *AchievementStore) CreateIfAbsent(name, description, conditionType string, conditionValue, xpReward int) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO achievements (name, description, condition_type, condition_value, xp_reward)
		 VALUES (?, ?, ?, ?, ?)`,
		name, description, conditionType, conditionValue, xpReward,
	)
	if err != nil {
		return fmt.Errorf("seed achievement: %w", err)
	}
	return nil
}

// ListUnlocked returns the user's unlock records, oldest first.
func (s *AchievementStore) ListUnlocked(userID int64) ([]model.UserAchievement, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, achievement_id, unlocked_at FROM user_achievements WHERE user_id = ? ORDER BY unlocked_at ASC, id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list unlocked achievements: %w", err)
	}
	defer rows.Close()

	var unlocked []model.UserAchievement
	for rows.Next() {
		var ua model.UserAchievement
		if err := rows.Scan(&ua.ID, &ua.UserID, &ua.AchievementID, &ua.UnlockedAt); err != nil {
			return nil, fmt.Errorf("scan user achievement: %w", err)
		}
		unlocked = append(unlocked, ua)
	}
	return unlocked, rows.Err()
}

// Unlock records that the user earned the achievement. Returns false when
// the pair already exists: the unique index absorbs check-then-act races, and
// a lost race must grant nothing twice.
func (s *AchievementStore) Unlock(userID, achievementID int64) (bool, error) {
	result, err := s.db.Exec(
		`INSERT OR IGNORE INTO user_achievements (user_id, achievement_id) VALUES (?, ?)`,
		userID, achievementID,
	)
	if err != nil {
		return false, fmt.Errorf("unlock achievement: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
