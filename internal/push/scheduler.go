package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"taskhero/internal/game"
	"taskhero/internal/model"
	"taskhero/internal/store"
)

// Scheduler wakes once a minute and, at the configured hour, sends each
// subscribed user a digest of the tasks due that day. The reminder log keeps
// delivery at one digest per user per day, so restarts inside the window do
// not repeat it.
type Scheduler struct {
	mu       sync.RWMutex
	service  *Service
	push     *store.PushStore
	game     *game.Service
	hour     int
	interval time.Duration
	logger   *slog.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewScheduler creates the daily reminder scheduler. hour is the UTC hour
// of day the digest goes out.
func NewScheduler(svc *Service, pushStore *store.PushStore, gameSvc *game.Service, hour int, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		service:  svc,
		push:     pushStore,
		game:     gameSvc,
		hour:     hour,
		interval: 60 * time.Second,
		logger:   logger,
	}
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick(ctx, time.Now().UTC())
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Scheduler) tick(ctx context.Context, now time.Time) {
	if now.Hour() != s.hour {
		return
	}

	users, err := s.game.ListUsers(ctx)
	if err != nil {
		s.logger.Error("list users", "error", err)
		return
	}

	today := now.Format(time.DateOnly)
	for _, u := range users {
		if err := s.sendDigest(ctx, u.ID, today); err != nil {
			s.logger.Error("send daily digest", "user_id", u.ID, "error", err)
		}
	}
}

func (s *Scheduler) sendDigest(ctx context.Context, userID int64, today string) error {
	subs, err := s.push.ListByUser(userID)
	if err != nil {
		return fmt.Errorf("list subscriptions: %w", err)
	}
	if len(subs) == 0 {
		return nil
	}

	due, err := s.game.TasksDueToday(ctx, userID)
	if err != nil {
		return fmt.Errorf("tasks due today: %w", err)
	}
	overdue, err := s.game.OverdueTasks(ctx, userID)
	if err != nil {
		return fmt.Errorf("overdue tasks: %w", err)
	}
	if len(due) == 0 && len(overdue) == 0 {
		return nil
	}

	first, err := s.push.MarkReminderSent(userID, model.ReminderDailyDigest, today)
	if err != nil {
		return fmt.Errorf("mark reminder sent: %w", err)
	}
	if !first {
		return nil
	}

	payload := Payload{
		Title: "Задачи на сегодня",
		Body:  digestBody(due, overdue),
		URL:   "/tasks",
		Tag:   "daily-digest",
	}

	for _, sub := range subs {
		if err := s.service.Send(&sub, payload); err != nil {
			if errors.Is(err, ErrExpired) {
				s.push.DeleteByEndpoint(sub.Endpoint)
			} else {
				s.logger.Error("send digest", "user_id", userID, "error", err)
			}
		}
	}
	return nil
}

func digestBody(due, overdue []model.Task) string {
	var parts []string
	if len(due) > 0 {
		titles := make([]string, 0, len(due))
		for _, t := range due {
			titles = append(titles, t.Title)
		}
		parts = append(parts, fmt.Sprintf("Сегодня: %s", strings.Join(titles, ", ")))
	}
	if len(overdue) > 0 {
		parts = append(parts, fmt.Sprintf("Просрочено: %d", len(overdue)))
	}
	return strings.Join(parts, ". ")
}
