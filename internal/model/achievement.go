package model

import "time"

// Condition types understood by the achievement evaluator. Anything else
// never unlocks.
const (
	ConditionTasksCount     = "tasks_count"
	ConditionLevel          = "level"
	ConditionImportantTasks = "important_tasks"
)

// Achievement is a global definition, seeded once at startup.
type Achievement struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	ConditionType  string `json:"condition_type"`
	ConditionValue int    `json:"condition_value"`
	XPReward       int    `json:"xp_reward"`
}

// UserAchievement records that a user unlocked an achievement. At most one
// row per (user, achievement) pair.
type UserAchievement struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	AchievementID int64     `json:"achievement_id"`
	UnlockedAt    time.Time `json:"unlocked_at"`
}
