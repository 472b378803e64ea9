package game

import (
	"context"
	"database/sql"
	"strings"
	"time"
	"unicode/utf8"

	"taskhero/internal/model"
	"taskhero/internal/store"
)

const maxTitleLen = 200

type CreateTaskParams struct {
	Title       string
	Description *string
	Priority    model.Priority
	DueDate     *string
	CategoryID  *int64
}

// CreateTask validates input, freezes the XP reward from the priority table,
// and stores the task in todo.
func (s *Service) CreateTask(ctx context.Context, userID int64, params CreateTaskParams) (*model.Task, error) {
	title, err := validateTitle(params.Title)
	if err != nil {
		return nil, err
	}

	priority := params.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !priority.IsValid() {
		return nil, validationErr("priority", "must be one of low, medium, high, critical")
	}

	if params.DueDate != nil {
		if err := validateDueDate(*params.DueDate); err != nil {
			return nil, err
		}
	}

	if params.CategoryID != nil {
		category, err := s.categories.GetByID(*params.CategoryID, userID)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, validationErr("category_id", "category not found")
		}
	}

	return s.tasks.Create(
		userID, title, params.Description, priority,
		params.DueDate, params.CategoryID,
		XPReward(priority), IsImportant(priority),
	)
}

type UpdateTaskParams struct {
	Title         *string
	Description   *string
	Priority      *model.Priority
	DueDate       *string
	ClearDueDate  bool
	CategoryID    *int64
	ClearCategory bool
}

// UpdateTask applies a partial update. When the priority changes, the XP
// reward and importance flag are recomputed here so they can never drift
// from the priority the task carries.
func (s *Service) UpdateTask(ctx context.Context, taskID, userID int64, params UpdateTaskParams) (*model.Task, error) {
	storeParams := store.UpdateParams{
		Description:   params.Description,
		DueDate:       params.DueDate,
		ClearDueDate:  params.ClearDueDate,
		CategoryID:    params.CategoryID,
		ClearCategory: params.ClearCategory,
	}

	if params.Title != nil {
		title, err := validateTitle(*params.Title)
		if err != nil {
			return nil, err
		}
		storeParams.Title = &title
	}

	if params.Priority != nil {
		if !params.Priority.IsValid() {
			return nil, validationErr("priority", "must be one of low, medium, high, critical")
		}
		xp := XPReward(*params.Priority)
		important := IsImportant(*params.Priority)
		storeParams.Priority = params.Priority
		storeParams.XPReward = &xp
		storeParams.IsImportant = &important
	}

	if params.DueDate != nil {
		if err := validateDueDate(*params.DueDate); err != nil {
			return nil, err
		}
	}

	if params.CategoryID != nil {
		category, err := s.categories.GetByID(*params.CategoryID, userID)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, validationErr("category_id", "category not found")
		}
	}

	return s.tasks.Update(taskID, userID, storeParams)
}

// CompleteResult reports everything the front-end needs to congratulate the
// user without re-deriving any rules.
type CompleteResult struct {
	Task        *model.Task         `json:"task"`
	XPAwarded   int                 `json:"xp_awarded"`
	BonusXP     int                 `json:"bonus_xp"`
	LevelBefore int                 `json:"level_before"`
	LevelAfter  int                 `json:"level_after"`
	LevelUp     bool                `json:"level_up"`
	Unlocked    []model.Achievement `json:"unlocked"`
}

// CompleteTask marks the task done and runs the whole reward sequence
// (credit task XP, bump the completion counter, evaluate achievements and
// credit their bonuses) in one transaction. A failure anywhere rolls the
// entire sequence back. Returns nil when the task is missing, not owned, or
// already in a terminal state.
func (s *Service) CompleteTask(ctx context.Context, taskID, userID int64) (*CompleteResult, error) {
	var result *CompleteResult

	err := store.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		tasks := s.tasks.WithTx(tx)
		users := s.users.WithTx(tx)
		achievements := s.achievements.WithTx(tx)

		task, err := tasks.Complete(taskID, userID, s.now())
		if err != nil {
			return err
		}
		if task == nil {
			return nil
		}

		user, err := users.GetByID(userID)
		if err != nil {
			return err
		}
		if user == nil {
			return nil
		}
		levelBefore := user.Level

		user, err = addExperience(users, userID, task.XPReward)
		if err != nil {
			return err
		}
		if err := users.IncrementCompletedTasks(userID); err != nil {
			return err
		}

		unlocked, bonusXP, err := checkAchievements(users, tasks, achievements, userID)
		if err != nil {
			return err
		}

		levelAfter := user.Level
		if len(unlocked) > 0 {
			// Bonus XP may have pushed the level further.
			user, err = users.GetByID(userID)
			if err != nil {
				return err
			}
			levelAfter = user.Level
		}

		result = &CompleteResult{
			Task:        task,
			XPAwarded:   task.XPReward,
			BonusXP:     bonusXP,
			LevelBefore: levelBefore,
			LevelAfter:  levelAfter,
			LevelUp:     levelAfter > levelBefore,
			Unlocked:    unlocked,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// StartTask moves a task to in_progress. Returns nil for missing, unowned,
// or terminal tasks.
func (s *Service) StartTask(ctx context.Context, taskID, userID int64) (*model.Task, error) {
	return s.tasks.SetStatus(taskID, userID, model.StatusInProgress)
}

// CancelTask moves a task to cancelled. Returns nil for missing, unowned,
// or terminal tasks.
func (s *Service) CancelTask(ctx context.Context, taskID, userID int64) (*model.Task, error) {
	return s.tasks.SetStatus(taskID, userID, model.StatusCancelled)
}

// DeleteTask hard-deletes. Returns false when nothing matched.
func (s *Service) DeleteTask(ctx context.Context, taskID, userID int64) (bool, error) {
	return s.tasks.Delete(taskID, userID)
}

func (s *Service) GetTask(ctx context.Context, taskID, userID int64) (*model.Task, error) {
	return s.tasks.GetByID(taskID, userID)
}

func (s *Service) ListTasks(ctx context.Context, userID int64, filter store.ListFilter) ([]model.Task, error) {
	return s.tasks.List(userID, filter)
}

// OverdueTasks returns open tasks whose due date has passed.
func (s *Service) OverdueTasks(ctx context.Context, userID int64) ([]model.Task, error) {
	return s.tasks.Overdue(userID, s.today())
}

// TasksDueToday returns open tasks due today, highest priority first.
func (s *Service) TasksDueToday(ctx context.Context, userID int64) ([]model.Task, error) {
	return s.tasks.DueToday(userID, s.today())
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", validationErr("title", "must not be empty")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "", validationErr("title", "must be at most 200 characters")
	}
	return title, nil
}

func validateDueDate(s string) error {
	if _, err := time.Parse(time.DateOnly, s); err != nil {
		return validationErr("due_date", "must be a date in YYYY-MM-DD format")
	}
	return nil
}
