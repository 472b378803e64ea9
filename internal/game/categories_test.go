package game

import (
	"context"
	"testing"

	"taskhero/internal/model"
)

func TestCreateCategory(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	user := newTestUser(t, svc, 1)

	category, err := svc.CreateCategory(ctx, user.ID, "  Work  ", "")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	if category.Name != "Work" {
		t.Errorf("name = %q, want trimmed %q", category.Name, "Work")
	}
	if category.Color != "#808080" {
		t.Errorf("color = %q, want the default grey", category.Color)
	}

	if _, err := svc.CreateCategory(ctx, user.ID, "", "#112233"); !IsValidation(err) {
		t.Errorf("empty name: got %v, want validation error", err)
	}
	if _, err := svc.CreateCategory(ctx, user.ID, "Health", "green"); !IsValidation(err) {
		t.Errorf("bad color: got %v, want validation error", err)
	}
}

func TestUpdateCategory(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	user := newTestUser(t, svc, 1)

	category, err := svc.CreateCategory(ctx, user.ID, "Work", "#112233")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	name := "Office"
	updated, err := svc.UpdateCategory(ctx, category.ID, user.ID, &name, nil)
	if err != nil {
		t.Fatalf("update category: %v", err)
	}
	if updated.Name != "Office" {
		t.Errorf("name = %q, want Office", updated.Name)
	}
	if updated.Color != "#112233" {
		t.Errorf("color = %q, want untouched #112233", updated.Color)
	}

	other := newTestUser(t, svc, 2)
	if got, err := svc.UpdateCategory(ctx, category.ID, other.ID, &name, nil); err != nil || got != nil {
		t.Errorf("updating another user's category = (%v, %v), want (nil, nil)", got, err)
	}
}

func TestDeleteCategoryDetachesTasks(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	user := newTestUser(t, svc, 1)

	category, err := svc.CreateCategory(ctx, user.ID, "Chores", "")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	task, err := svc.CreateTask(ctx, user.ID, CreateTaskParams{Title: "Dishes", CategoryID: &category.ID})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	deleted, err := svc.DeleteCategory(ctx, category.ID, user.ID)
	if err != nil {
		t.Fatalf("delete category: %v", err)
	}
	if !deleted {
		t.Fatal("expected delete to report true")
	}

	survivor, err := svc.GetTask(ctx, task.ID, user.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if survivor == nil {
		t.Fatal("task should survive its category")
	}
	if survivor.CategoryID != nil {
		t.Errorf("category_id = %v, want nil after category deletion", *survivor.CategoryID)
	}

	deleted, err = svc.DeleteCategory(ctx, category.ID, user.ID)
	if err != nil {
		t.Fatalf("delete missing category: %v", err)
	}
	if deleted {
		t.Error("expected delete of missing category to report false")
	}
}

func TestCategoryStats(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	user := newTestUser(t, svc, 1)

	work, err := svc.CreateCategory(ctx, user.ID, "Work", "")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	mustTask := func(title string, categoryID *int64) *model.Task {
		t.Helper()
		task, err := svc.CreateTask(ctx, user.ID, CreateTaskParams{Title: title, CategoryID: categoryID})
		if err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
		return task
	}

	done := mustTask("report", &work.ID)
	mustTask("review", &work.ID)
	mustTask("errand", nil)
	if _, err := svc.CompleteTask(ctx, done.ID, user.ID); err != nil {
		t.Fatalf("complete task: %v", err)
	}

	stats, err := svc.CategoryStats(ctx, user.ID)
	if err != nil {
		t.Fatalf("category stats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("got %d buckets, want 2 (Work + uncategorized)", len(stats))
	}

	var workStats, looseStats *model.CategoryStats
	for i := range stats {
		if stats[i].Category == nil {
			looseStats = &stats[i]
		} else if stats[i].Category.ID == work.ID {
			workStats = &stats[i]
		}
	}
	if workStats == nil || workStats.Total != 2 || workStats.Completed != 1 {
		t.Errorf("work bucket = %+v, want total 2 completed 1", workStats)
	}
	if looseStats == nil || looseStats.Total != 1 || looseStats.Completed != 0 {
		t.Errorf("uncategorized bucket = %+v, want total 1 completed 0", looseStats)
	}
}

func TestListCategoriesScopedToUser(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	alice := newTestUser(t, svc, 1)
	bob := newTestUser(t, svc, 2)

	if _, err := svc.CreateCategory(ctx, alice.ID, "Hers", ""); err != nil {
		t.Fatalf("create category: %v", err)
	}
	if _, err := svc.CreateCategory(ctx, bob.ID, "His", ""); err != nil {
		t.Fatalf("create category: %v", err)
	}

	categories, err := svc.ListCategories(ctx, alice.ID)
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(categories) != 1 || categories[0].Name != "Hers" {
		t.Errorf("categories = %v, want only the owner's", categories)
	}
}
