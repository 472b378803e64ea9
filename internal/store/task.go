package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"taskhero/internal/model"
)

type TaskStore struct {
	db DBTX
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

// WithTx returns a copy of the store bound to the given transaction.
func (s *TaskStore) WithTx(tx *sql.Tx) *TaskStore {
	return &TaskStore{db: tx}
}

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var description, dueDate sql.NullString
	var categoryID sql.NullInt64
	var completedAt sql.NullTime
	var important int

	err := scanner.Scan(
		&t.ID, &t.UserID, &t.Title, &description, &t.Priority, &t.Status,
		&categoryID, &t.CreatedAt, &dueDate, &completedAt, &t.XPReward, &important,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		t.Description = &description.String
	}
	if dueDate.Valid {
		t.DueDate = &dueDate.String
	}
	if categoryID.Valid {
		t.CategoryID = &categoryID.Int64
	}
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}
	t.IsImportant = important != 0
	return &t, nil
}

const taskCols = `id, user_id, title, description, priority, status, category_id, created_at, due_date, completed_at, xp_reward, is_important`

// priorityRank orders priorities in SQL, critical first when DESC.
const priorityRank = `CASE priority WHEN 'critical' THEN 4 WHEN 'high' THEN 3 WHEN 'medium' THEN 2 WHEN 'low' THEN 1 ELSE 0 END`

func (s *TaskStore) Create(userID int64, title string, description *string, priority model.Priority, dueDate *string, categoryID *int64, xpReward int, isImportant bool) (*model.Task, error) {
	var desc, due sql.NullString
	if description != nil {
		desc = sql.NullString{String: *description, Valid: true}
	}
	if dueDate != nil {
		due = sql.NullString{String: *dueDate, Valid: true}
	}
	var catID sql.NullInt64
	if categoryID != nil {
		catID = sql.NullInt64{Int64: *categoryID, Valid: true}
	}

	var important int
	if isImportant {
		important = 1
	}

	result, err := s.db.Exec(
		`INSERT INTO tasks (user_id, title, description, priority, status, category_id, due_date, xp_reward, is_important)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, title, desc, string(priority), string(model.StatusTodo), catID, due, xpReward, important,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id, userID)
}

// GetByID is ownership-scoped: a task belonging to another user reads as
// not found.
func (s *TaskStore) GetByID(id, userID int64) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ? AND user_id = ?`, id, userID)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// ListFilter narrows List results. Uncategorized selects tasks with no
// category and takes precedence over CategoryID.
type ListFilter struct {
	Statuses      []model.Status
	CategoryID    *int64
	Uncategorized bool
}

// List returns a user's tasks ordered by due date, then priority descending.
func (s *TaskStore) List(userID int64, filter ListFilter) ([]model.Task, error) {
	query := `SELECT ` + taskCols + ` FROM tasks WHERE user_id = ?`
	args := []any{userID}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			placeholders[i] = "?"
			args = append(args, string(st))
		}
		query += ` AND status IN (` + strings.Join(placeholders, ", ") + `)`
	}

	if filter.Uncategorized {
		query += ` AND category_id IS NULL`
	} else if filter.CategoryID != nil {
		query += ` AND category_id = ?`
		args = append(args, *filter.CategoryID)
	}

	query += ` ORDER BY due_date ASC, ` + priorityRank + ` DESC, id ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

// UpdateParams carries a partial task update; nil fields are left untouched.
// XPReward and IsImportant travel together with Priority — the caller
// recomputes them whenever it sets Priority.
type UpdateParams struct {
	Title         *string
	Description   *string
	Priority      *model.Priority
	DueDate       *string
	ClearDueDate  bool
	CategoryID    *int64
	ClearCategory bool
	XPReward      *int
	IsImportant   *bool
}

func (s *TaskStore) Update(id, userID int64, params UpdateParams) (*model.Task, error) {
	var sets []string
	var args []any

	if params.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *params.Title)
	}
	if params.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *params.Description)
	}
	if params.Priority != nil {
		sets = append(sets, "priority = ?")
		args = append(args, string(*params.Priority))
	}
	if params.ClearDueDate {
		sets = append(sets, "due_date = NULL")
	} else if params.DueDate != nil {
		sets = append(sets, "due_date = ?")
		args = append(args, *params.DueDate)
	}
	if params.ClearCategory {
		sets = append(sets, "category_id = NULL")
	} else if params.CategoryID != nil {
		sets = append(sets, "category_id = ?")
		args = append(args, *params.CategoryID)
	}
	if params.XPReward != nil {
		sets = append(sets, "xp_reward = ?")
		args = append(args, *params.XPReward)
	}
	if params.IsImportant != nil {
		var important int
		if *params.IsImportant {
			important = 1
		}
		sets = append(sets, "is_important = ?")
		args = append(args, important)
	}

	if len(sets) == 0 {
		return s.GetByID(id, userID)
	}

	args = append(args, id, userID)
	result, err := s.db.Exec(
		`UPDATE tasks SET `+strings.Join(sets, ", ")+` WHERE id = ? AND user_id = ?`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
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

// Complete marks a task done and stamps completed_at. The status
// precondition makes terminal states sticky: re-completing a done or
// cancelled task reads as not found.
func (s *TaskStore) Complete(id, userID int64, now time.Time) (*model.Task, error) {
	result, err := s.db.Exec(
		`UPDATE tasks SET status = ?, completed_at = ? WHERE id = ? AND user_id = ? AND status IN (?, ?)`,
		string(model.StatusDone), now.UTC(), id, userID,
		string(model.StatusTodo), string(model.StatusInProgress),
	)
	if err != nil {
		return nil, fmt.Errorf("complete task: %w", err)
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

// SetStatus transitions a non-terminal task to the given status.
func (s *TaskStore) SetStatus(id, userID int64, status model.Status) (*model.Task, error) {
	result, err := s.db.Exec(
		`UPDATE tasks SET status = ? WHERE id = ? AND user_id = ? AND status IN (?, ?)`,
		string(status), id, userID,
		string(model.StatusTodo), string(model.StatusInProgress),
	)
	if err != nil {
		return nil, fmt.Errorf("set task status: %w", err)
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

// Delete removes a task. Returns false when the task does not exist or
// belongs to another user.
func (s *TaskStore) Delete(id, userID int64) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM tasks WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// Overdue returns open tasks due strictly before the given day (YYYY-MM-DD).
func (s *TaskStore) Overdue(userID int64, today string) ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks
		 WHERE user_id = ? AND due_date IS NOT NULL AND due_date < ? AND status IN (?, ?)
		 ORDER BY due_date ASC, id ASC`,
		userID, today, string(model.StatusTodo), string(model.StatusInProgress),
	)
	if err != nil {
		return nil, fmt.Errorf("list overdue tasks: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

// DueToday returns open tasks due on the given day, highest priority first.
func (s *TaskStore) DueToday(userID int64, today string) ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks
		 WHERE user_id = ? AND due_date = ? AND status IN (?, ?)
		 ORDER BY `+priorityRank+` DESC, id ASC`,
		userID, today, string(model.StatusTodo), string(model.StatusInProgress),
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks due today: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

// CountDone returns how many of the user's tasks are done, optionally only
// the important ones. Feeds the achievement evaluator.
func (s *TaskStore) CountDone(userID int64, importantOnly bool) (int, error) {
	query := `SELECT COUNT(*) FROM tasks WHERE user_id = ? AND status = ?`
	if importantOnly {
		query += ` AND is_important = 1`
	}

	var count int
	err := s.db.QueryRow(query, userID, string(model.StatusDone)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count done tasks: %w", err)
	}
	return count, nil
}

// ClearCategory detaches all tasks from a category without touching the
// tasks themselves.
func (s *TaskStore) ClearCategory(categoryID int64) error {
	_, err := s.db.Exec(`UPDATE tasks SET category_id = NULL WHERE category_id = ?`, categoryID)
	if err != nil {
		return fmt.Errorf("clear task category: %w", err)
	}
	return nil
}

func collectTasks(rows *sql.Rows) ([]model.Task, error) {
	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}
