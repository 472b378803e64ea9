package store

import (
	"testing"
)

func setupPushTestDB(t *testing.T) (*PushStore, *UserStore) {
	t.Helper()
	db := setupTestDB(t)
	return NewPushStore(db), NewUserStore(db)
}

func TestPushSubscriptionUpsert(t *testing.T) {
	ps, us := setupPushTestDB(t)

	user, err := us.Create(1001, nil, "Alice", nil)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	sub, err := ps.CreateSubscription(user.ID, "https://push.example/abc", "p256dh-key", "auth-key")
	if err != nil {
		t.Fatalf("create subscription: %v", err)
	}
	if sub.ID == 0 {
		t.Error("expected non-zero ID")
	}

	// Re-subscribing the same endpoint refreshes keys instead of duplicating.
	again, err := ps.CreateSubscription(user.ID, "https://push.example/abc", "new-p256dh", "new-auth")
	if err != nil {
		t.Fatalf("re-create subscription: %v", err)
	}
	if again.P256dhKey != "new-p256dh" {
		t.Errorf("p256dh = %q, want refreshed key", again.P256dhKey)
	}

	subs, err := ps.ListByUser(user.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(subs) != 1 {
		t.Errorf("got %d subscriptions, want 1", len(subs))
	}
}

func TestPushDeleteByEndpoint(t *testing.T) {
	ps, us := setupPushTestDB(t)

	user, err := us.Create(1001, nil, "Alice", nil)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := ps.CreateSubscription(user.ID, "https://push.example/abc", "k", "a"); err != nil {
		t.Fatalf("create subscription: %v", err)
	}

	if err := ps.DeleteByEndpoint("https://push.example/abc"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	subs, err := ps.ListByUser(user.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(subs) != 0 {
		t.Errorf("got %d subscriptions after delete, want 0", len(subs))
	}
}

func TestMarkReminderSent(t *testing.T) {
	ps, us := setupPushTestDB(t)

	user, err := us.Create(1001, nil, "Alice", nil)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	first, err := ps.MarkReminderSent(user.ID, "daily_digest", "2025-06-15")
	if err != nil {
		t.Fatalf("mark sent: %v", err)
	}
	if !first {
		t.Error("expected first mark of the day to report true")
	}

	second, err := ps.MarkReminderSent(user.ID, "daily_digest", "2025-06-15")
	if err != nil {
		t.Fatalf("second mark: %v", err)
	}
	if second {
		t.Error("expected repeat mark on the same day to report false")
	}

	nextDay, err := ps.MarkReminderSent(user.ID, "daily_digest", "2025-06-16")
	if err != nil {
		t.Fatalf("next day mark: %v", err)
	}
	if !nextDay {
		t.Error("expected a fresh day to report true")
	}
}
