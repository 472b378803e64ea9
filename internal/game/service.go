// Package game implements the progression core: task lifecycle, experience
// and level accounting, and achievement evaluation. Handlers and the
// scheduler call into it; they never apply reward rules themselves.
package game

import (
	"database/sql"
	"time"

	"taskhero/internal/store"
)

type Service struct {
	db           *sql.DB
	users        *store.UserStore
	tasks        *store.TaskStore
	categories   *store.CategoryStore
	achievements *store.AchievementStore

	now func() time.Time
}

func NewService(db *sql.DB) *Service {
	return &Service{
		db:           db,
		users:        store.NewUserStore(db),
		tasks:        store.NewTaskStore(db),
		categories:   store.NewCategoryStore(db),
		achievements: store.NewAchievementStore(db),
		now:          time.Now,
	}
}

// today returns the current day as YYYY-MM-DD in UTC, the format due dates
// are stored in.
func (s *Service) today() string {
	return s.now().UTC().Format(time.DateOnly)
}
