package game

import (
	"context"
	"testing"

	"taskhero/internal/model"
)

func seedAchievements(t *testing.T, svc *Service) {
	t.Helper()
	if err := svc.SeedDefaultAchievements(context.Background()); err != nil {
		t.Fatalf("seed achievements: %v", err)
	}
}

func TestSeedDefaultAchievementsIdempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	seedAchievements(t, svc)
	seedAchievements(t, svc)

	definitions, err := svc.ListAchievements(ctx)
	if err != nil {
		t.Fatalf("list achievements: %v", err)
	}
	if len(definitions) != 5 {
		t.Errorf("got %d definitions after double seed, want 5", len(definitions))
	}
}

func TestCheckAchievementsLevel(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	seedAchievements(t, svc)
	user := newTestUser(t, svc, 1)

	// Walk the user to level 5 without completing tasks.
	for level := 1; level < 5; level++ {
		need := NextLevelXP(level)
		current, err := svc.GetUser(ctx, user.ID)
		if err != nil {
			t.Fatalf("get user: %v", err)
		}
		if _, err := svc.AddExperience(ctx, user.ID, need-current.Experience); err != nil {
			t.Fatalf("add experience: %v", err)
		}
	}

	unlocked, err := svc.CheckAchievements(ctx, user.ID)
	if err != nil {
		t.Fatalf("check achievements: %v", err)
	}
	if len(unlocked) != 1 || unlocked[0].Name != "Уровень 5" {
		t.Fatalf("unlocked = %v, want just the level-5 achievement", unlocked)
	}

	// Second pass with no state change grants nothing.
	unlocked, err = svc.CheckAchievements(ctx, user.ID)
	if err != nil {
		t.Fatalf("check achievements: %v", err)
	}
	if len(unlocked) != 0 {
		t.Errorf("second check unlocked %v, want nothing", unlocked)
	}
}

func TestCheckAchievementsImportantTasks(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	seedAchievements(t, svc)
	user := newTestUser(t, svc, 1)

	for i := 0; i < 5; i++ {
		task, err := svc.CreateTask(ctx, user.ID, CreateTaskParams{
			Title:    "Important",
			Priority: model.PriorityHigh,
		})
		if err != nil {
			t.Fatalf("create task: %v", err)
		}
		if _, err := svc.CompleteTask(ctx, task.ID, user.ID); err != nil {
			t.Fatalf("complete task: %v", err)
		}
	}

	achievements, err := svc.UserAchievements(ctx, user.ID)
	if err != nil {
		t.Fatalf("user achievements: %v", err)
	}
	names := make(map[string]bool, len(achievements))
	for _, a := range achievements {
		names[a.Name] = true
		if a.UnlockedAt.IsZero() {
			t.Errorf("%s has zero unlocked_at", a.Name)
		}
	}
	if !names["Первые шаги"] {
		t.Error("expected the first-task achievement")
	}
	if !names["Приоритеты на месте"] {
		t.Error("expected the important-tasks achievement after 5 high-priority completions")
	}
}

func TestCheckAchievementsUnknownConditionSkipped(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	user := newTestUser(t, svc, 1)

	if err := svc.achievements.CreateIfAbsent("Загадка", "?", "phase_of_moon", 1, 500); err != nil {
		t.Fatalf("create achievement: %v", err)
	}

	unlocked, err := svc.CheckAchievements(ctx, user.ID)
	if err != nil {
		t.Fatalf("check achievements: %v", err)
	}
	if len(unlocked) != 0 {
		t.Errorf("unlocked = %v, want nothing for an unrecognized condition", unlocked)
	}
}
