package game

import (
	"math"

	"taskhero/internal/model"
)

// defaultXPReward is used when a task carries an unrecognized priority.
const defaultXPReward = 10

// XPReward returns the experience granted for completing a task of the
// given priority.
func XPReward(p model.Priority) int {
	switch p {
	case model.PriorityLow:
		return 5
	case model.PriorityMedium:
		return 10
	case model.PriorityHigh:
		return 20
	case model.PriorityCritical:
		return 30
	default:
		return defaultXPReward
	}
}

// IsImportant reports whether tasks of this priority count toward
// important-task achievements.
func IsImportant(p model.Priority) bool {
	return p == model.PriorityHigh || p == model.PriorityCritical
}

// NextLevelXP returns the experience threshold to advance past the given
// level: floor(100 * level^1.5).
func NextLevelXP(level int) int {
	if level < 1 {
		level = 1
	}
	return int(math.Floor(100 * math.Pow(float64(level), 1.5)))
}
