package model

import "time"

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	default:
		return false
	}
}

type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusCancelled  Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is defined out of s.
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusCancelled
}

type Task struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Priority    Priority   `json:"priority"`
	Status      Status     `json:"status"`
	CategoryID  *int64     `json:"category_id"`
	CreatedAt   time.Time  `json:"created_at"`
	DueDate     *string    `json:"due_date"` // YYYY-MM-DD
	CompletedAt *time.Time `json:"completed_at"`
	XPReward    int        `json:"xp_reward"`
	IsImportant bool       `json:"is_important"`
}
