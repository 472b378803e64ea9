package game

import (
	"context"
	"database/sql"

	"taskhero/internal/model"
	"taskhero/internal/store"
)

// AddExperience credits xp to the user and applies the level-up rule.
// Returns nil when the user is unknown.
func (s *Service) AddExperience(ctx context.Context, userID int64, xp int) (*model.User, error) {
	var user *model.User
	err := store.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		user, err = addExperience(s.users.WithTx(tx), userID, xp)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// addExperience is the progression rule proper, run against whatever store
// binding the caller holds (plain or transactional). The level advances at
// most once per call even when the new total overshoots several thresholds;
// catch-up leveling happens over subsequent grants.
func addExperience(users *store.UserStore, userID int64, xp int) (*model.User, error) {
	user, err := users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}

	user.Experience += xp
	if user.Experience >= NextLevelXP(user.Level) {
		user.Level++
	}

	if err := users.UpdateProgress(user.ID, user.Level, user.Experience); err != nil {
		return nil, err
	}
	return user, nil
}

// IncrementCompletedTasks bumps the lifetime completion counter. Returns
// nil when the user is unknown.
func (s *Service) IncrementCompletedTasks(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	if err := s.users.IncrementCompletedTasks(userID); err != nil {
		return nil, err
	}
	user.CompletedTasks++
	return user, nil
}

// Stats returns the user's progression snapshot, or nil when unknown.
func (s *Service) Stats(ctx context.Context, userID int64) (*model.UserStats, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	return &model.UserStats{
		Level:          user.Level,
		Experience:     user.Experience,
		NextLevelXP:    NextLevelXP(user.Level),
		CompletedTasks: user.CompletedTasks,
	}, nil
}
