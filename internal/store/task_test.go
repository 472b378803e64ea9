package store

import (
	"testing"
	"time"

	"taskhero/internal/model"
)

func setupTaskTestDB(t *testing.T) (*TaskStore, *UserStore) {
	t.Helper()
	db := setupTestDB(t)
	return NewTaskStore(db), NewUserStore(db)
}

func createTaskTestUser(t *testing.T, us *UserStore) int64 {
	t.Helper()
	u, err := us.Create(1001, nil, "Alice", nil)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u.ID
}

func TestTaskCreate(t *testing.T) {
	ts, us := setupTaskTestDB(t)
	userID := createTaskTestUser(t, us)

	due := "2025-06-15"
	task, err := ts.Create(userID, "Ship release", nil, model.PriorityCritical, &due, nil, 30, true)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.ID == 0 {
		t.Error("expected non-zero ID")
	}
	if task.Status != model.StatusTodo {
		t.Errorf("status = %q, want todo", task.Status)
	}
	if task.DueDate == nil || *task.DueDate != due {
		t.Errorf("due_date = %v, want %q", task.DueDate, due)
	}
	if task.XPReward != 30 || !task.IsImportant {
		t.Errorf("reward = %d/%v, want 30/important", task.XPReward, task.IsImportant)
	}
}

func TestTaskComplete(t *testing.T) {
	ts, us := setupTaskTestDB(t)
	userID := createTaskTestUser(t, us)

	task, err := ts.Create(userID, "One", nil, model.PriorityMedium, nil, nil, 10, false)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	done, err := ts.Complete(task.ID, userID, now)
	if err != nil {
		t.Fatalf("complete task: %v", err)
	}
	if done == nil {
		t.Fatal("expected completed task")
	}
	if done.Status != model.StatusDone {
		t.Errorf("status = %q, want done", done.Status)
	}
	if done.CompletedAt == nil || !done.CompletedAt.Equal(now) {
		t.Errorf("completed_at = %v, want %v", done.CompletedAt, now)
	}

	// Already terminal: the precondition rejects a second completion.
	again, err := ts.Complete(task.ID, userID, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("re-complete task: %v", err)
	}
	if again != nil {
		t.Error("expected nil for a task already done")
	}
}

func TestTaskCompleteWrongUser(t *testing.T) {
	ts, us := setupTaskTestDB(t)
	userID := createTaskTestUser(t, us)
	other, err := us.Create(1002, nil, "Bob", nil)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	task, err := ts.Create(userID, "Mine", nil, model.PriorityMedium, nil, nil, 10, false)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	got, err := ts.Complete(task.ID, other.ID, time.Now())
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got != nil {
		t.Error("expected nil when completing another user's task")
	}
}

func TestTaskSetStatusFromTerminal(t *testing.T) {
	ts, us := setupTaskTestDB(t)
	userID := createTaskTestUser(t, us)

	task, err := ts.Create(userID, "One", nil, model.PriorityMedium, nil, nil, 10, false)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if _, err := ts.SetStatus(task.ID, userID, model.StatusCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	got, err := ts.SetStatus(task.ID, userID, model.StatusInProgress)
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if got != nil {
		t.Error("expected nil when transitioning out of a terminal state")
	}
}

func TestTaskUpdatePartial(t *testing.T) {
	ts, us := setupTaskTestDB(t)
	userID := createTaskTestUser(t, us)

	due := "2025-06-20"
	task, err := ts.Create(userID, "Draft", nil, model.PriorityLow, &due, nil, 5, false)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	title := "Final"
	updated, err := ts.Update(task.ID, userID, UpdateParams{Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Final" {
		t.Errorf("title = %q, want Final", updated.Title)
	}
	if updated.Priority != model.PriorityLow {
		t.Errorf("priority = %q, want untouched low", updated.Priority)
	}
	if updated.DueDate == nil || *updated.DueDate != due {
		t.Errorf("due_date = %v, want untouched %q", updated.DueDate, due)
	}

	cleared, err := ts.Update(task.ID, userID, UpdateParams{ClearDueDate: true})
	if err != nil {
		t.Fatalf("clear due date: %v", err)
	}
	if cleared.DueDate != nil {
		t.Errorf("due_date = %v, want nil after clearing", *cleared.DueDate)
	}
}

func TestTaskListOrdering(t *testing.T) {
	ts, us := setupTaskTestDB(t)
	userID := createTaskTestUser(t, us)

	later := "2025-06-20"
	sooner := "2025-06-16"

	lowSoon, err := ts.Create(userID, "low soon", nil, model.PriorityLow, &sooner, nil, 5, false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	critSoon, err := ts.Create(userID, "critical soon", nil, model.PriorityCritical, &sooner, nil, 30, true)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := ts.Create(userID, "later", nil, model.PriorityHigh, &later, nil, 20, true); err != nil {
		t.Fatalf("create: %v", err)
	}

	tasks, err := ts.List(userID, ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("got %d tasks, want 3", len(tasks))
	}
	// Nearest due date first, then priority descending within a day.
	if tasks[0].ID != critSoon.ID || tasks[1].ID != lowSoon.ID {
		t.Errorf("order = [%q %q %q], want critical soon, low soon, later", tasks[0].Title, tasks[1].Title, tasks[2].Title)
	}
}

func TestTaskOverdueAndDueToday(t *testing.T) {
	ts, us := setupTaskTestDB(t)
	userID := createTaskTestUser(t, us)

	today := "2025-06-15"
	yesterday := "2025-06-14"

	late, err := ts.Create(userID, "late", nil, model.PriorityMedium, &yesterday, nil, 10, false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	dueNow, err := ts.Create(userID, "due now", nil, model.PriorityMedium, &today, nil, 10, false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	lateDone, err := ts.Create(userID, "late done", nil, model.PriorityMedium, &yesterday, nil, 10, false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := ts.Complete(lateDone.ID, userID, time.Now()); err != nil {
		t.Fatalf("complete: %v", err)
	}

	overdue, err := ts.Overdue(userID, today)
	if err != nil {
		t.Fatalf("overdue: %v", err)
	}
	if len(overdue) != 1 || overdue[0].ID != late.ID {
		t.Errorf("overdue = %v, want only the open late task", overdue)
	}

	due, err := ts.DueToday(userID, today)
	if err != nil {
		t.Fatalf("due today: %v", err)
	}
	if len(due) != 1 || due[0].ID != dueNow.ID {
		t.Errorf("due today = %v, want only the task due today", due)
	}
}

func TestTaskCountDone(t *testing.T) {
	ts, us := setupTaskTestDB(t)
	userID := createTaskTestUser(t, us)

	important, err := ts.Create(userID, "big", nil, model.PriorityHigh, nil, nil, 20, true)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	minor, err := ts.Create(userID, "small", nil, model.PriorityLow, nil, nil, 5, false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, id := range []int64{important.ID, minor.ID} {
		if _, err := ts.Complete(id, userID, time.Now()); err != nil {
			t.Fatalf("complete: %v", err)
		}
	}

	all, err := ts.CountDone(userID, false)
	if err != nil {
		t.Fatalf("count done: %v", err)
	}
	if all != 2 {
		t.Errorf("count = %d, want 2", all)
	}

	importantOnly, err := ts.CountDone(userID, true)
	if err != nil {
		t.Fatalf("count important: %v", err)
	}
	if importantOnly != 1 {
		t.Errorf("important count = %d, want 1", importantOnly)
	}
}

func TestTaskClearCategory(t *testing.T) {
	db := setupTestDB(t)
	ts := NewTaskStore(db)
	us := NewUserStore(db)
	cs := NewCategoryStore(db)

	userID := createTaskTestUser(t, us)
	category, err := cs.Create(userID, "Work", "#112233")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	task, err := ts.Create(userID, "report", nil, model.PriorityMedium, nil, &category.ID, 10, false)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	if err := ts.ClearCategory(category.ID); err != nil {
		t.Fatalf("clear category: %v", err)
	}

	got, err := ts.GetByID(task.ID, userID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.CategoryID != nil {
		t.Errorf("category_id = %v, want nil", *got.CategoryID)
	}
}
