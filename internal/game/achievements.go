package game

import (
	"context"
	"database/sql"
	"time"

	"taskhero/internal/model"
	"taskhero/internal/store"
)

// defaultAchievements is the seed set, matched by name on startup. The
// names are user-facing and kept as shipped.
var defaultAchievements = []model.Achievement{
	{Name: "Первые шаги", Description: "Выполнить первую задачу", ConditionType: model.ConditionTasksCount, ConditionValue: 1, XPReward: 50},
	{Name: "Продуктивность растет", Description: "Выполнить 10 задач", ConditionType: model.ConditionTasksCount, ConditionValue: 10, XPReward: 100},
	{Name: "Мастер дел", Description: "Выполнить 50 задач", ConditionType: model.ConditionTasksCount, ConditionValue: 50, XPReward: 200},
	{Name: "Уровень 5", Description: "Достичь 5 уровня", ConditionType: model.ConditionLevel, ConditionValue: 5, XPReward: 300},
	{Name: "Приоритеты на месте", Description: "Выполнить 5 важных задач", ConditionType: model.ConditionImportantTasks, ConditionValue: 5, XPReward: 150},
}

// SeedDefaultAchievements inserts the starter definitions, skipping any
// whose name already exists. Safe to run on every startup.
func (s *Service) SeedDefaultAchievements(ctx context.Context) error {
	for _, a := range defaultAchievements {
		if err := s.achievements.CreateIfAbsent(a.Name, a.Description, a.ConditionType, a.ConditionValue, a.XPReward); err != nil {
			return err
		}
	}
	return nil
}

// ListAchievements returns all definitions in evaluation order.
func (s *Service) ListAchievements(ctx context.Context) ([]model.Achievement, error) {
	return s.achievements.List()
}

// UnlockedAchievement pairs a definition with when the user earned it.
type UnlockedAchievement struct {
	model.Achievement
	UnlockedAt time.Time `json:"unlocked_at"`
}

// UserAchievements returns the achievements the user has unlocked, in
// unlock order.
func (s *Service) UserAchievements(ctx context.Context, userID int64) ([]UnlockedAchievement, error) {
	definitions, err := s.achievements.List()
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]model.Achievement, len(definitions))
	for _, a := range definitions {
		byID[a.ID] = a
	}

	records, err := s.achievements.ListUnlocked(userID)
	if err != nil {
		return nil, err
	}

	unlocked := make([]UnlockedAchievement, 0, len(records))
	for _, r := range records {
		a, ok := byID[r.AchievementID]
		if !ok {
			continue
		}
		unlocked = append(unlocked, UnlockedAchievement{Achievement: a, UnlockedAt: r.UnlockedAt})
	}
	return unlocked, nil
}

// CheckAchievements evaluates every definition against the user's current
// state and unlocks any newly satisfied ones, crediting their bonus XP.
// Calling it again with no state change returns an empty slice.
func (s *Service) CheckAchievements(ctx context.Context, userID int64) ([]model.Achievement, error) {
	var unlocked []model.Achievement
	err := store.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		unlocked, _, err = checkAchievements(
			s.users.WithTx(tx), s.tasks.WithTx(tx), s.achievements.WithTx(tx), userID,
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	return unlocked, nil
}

// checkAchievements is the evaluator core, run inside the caller's
// transaction. It returns the newly unlocked definitions in definition
// order and the total bonus XP credited.
func checkAchievements(users *store.UserStore, tasks *store.TaskStore, achievements *store.AchievementStore, userID int64) ([]model.Achievement, int, error) {
	definitions, err := achievements.List()
	if err != nil {
		return nil, 0, err
	}

	records, err := achievements.ListUnlocked(userID)
	if err != nil {
		return nil, 0, err
	}
	have := make(map[int64]bool, len(records))
	for _, r := range records {
		have[r.AchievementID] = true
	}

	var unlocked []model.Achievement
	var bonusXP int
	for _, a := range definitions {
		if have[a.ID] {
			continue
		}

		met, err := conditionMet(users, tasks, userID, a)
		if err != nil {
			return nil, 0, err
		}
		if !met {
			continue
		}

		inserted, err := achievements.Unlock(userID, a.ID)
		if err != nil {
			return nil, 0, err
		}
		if !inserted {
			// Lost a race on the unique pair index: already unlocked,
			// grant nothing twice.
			continue
		}

		if _, err := addExperience(users, userID, a.XPReward); err != nil {
			return nil, 0, err
		}
		bonusXP += a.XPReward
		unlocked = append(unlocked, a)
	}
	return unlocked, bonusXP, nil
}

// conditionMet evaluates one achievement condition. Unknown condition types
// fail closed.
func conditionMet(users *store.UserStore, tasks *store.TaskStore, userID int64, a model.Achievement) (bool, error) {
	switch a.ConditionType {
	case model.ConditionTasksCount:
		count, err := tasks.CountDone(userID, false)
		if err != nil {
			return false, err
		}
		return count >= a.ConditionValue, nil
	case model.ConditionLevel:
		user, err := users.GetByID(userID)
		if err != nil {
			return false, err
		}
		return user != nil && user.Level >= a.ConditionValue, nil
	case model.ConditionImportantTasks:
		count, err := tasks.CountDone(userID, true)
		if err != nil {
			return false, err
		}
		return count >= a.ConditionValue, nil
	default:
		return false, nil
	}
}
