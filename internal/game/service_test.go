package game

import (
	"context"
	"testing"
	"time"

	"taskhero/internal/database"
	"taskhero/internal/model"
)

// testDay is the frozen "today" used by due-date tests.
const testDay = "2025-06-15"

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	svc := NewService(db)
	svc.now = func() time.Time {
		day, _ := time.Parse(time.DateOnly, testDay)
		return day.Add(12 * time.Hour) // midday UTC
	}
	return svc
}

func newTestUser(t *testing.T, svc *Service, externalID int64) *model.User {
	t.Helper()
	user, err := svc.GetOrCreateUser(context.Background(), externalID, nil, "Test", nil)
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return user
}

func TestGetOrCreateUser(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	username := "hero42"
	user, err := svc.GetOrCreateUser(ctx, 42, &username, "Alex", nil)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.ExternalID != 42 {
		t.Errorf("external_id = %d, want 42", user.ExternalID)
	}
	if user.Level != 1 || user.Experience != 0 || user.CompletedTasks != 0 {
		t.Errorf("new user counters = (%d, %d, %d), want (1, 0, 0)",
			user.Level, user.Experience, user.CompletedTasks)
	}

	// Second contact returns the same row, profile unchanged.
	again, err := svc.GetOrCreateUser(ctx, 42, nil, "Somebody Else", nil)
	if err != nil {
		t.Fatalf("get existing user: %v", err)
	}
	if again.ID != user.ID {
		t.Errorf("got user id %d, want %d", again.ID, user.ID)
	}
	if again.FirstName != "Alex" {
		t.Errorf("first name = %q, want %q", again.FirstName, "Alex")
	}
}

func TestGetOrCreateUserValidation(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GetOrCreateUser(context.Background(), 7, nil, "   ", nil)
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
