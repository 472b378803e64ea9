package game

import (
	"context"
	"strings"

	"taskhero/internal/model"
)

// GetOrCreateUser looks a user up by their external platform id, creating
// the row on first contact. Profile fields are only written on creation.
func (s *Service) GetOrCreateUser(ctx context.Context, externalID int64, username *string, firstName string, lastName *string) (*model.User, error) {
	user, err := s.users.GetByExternalID(externalID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	firstName = strings.TrimSpace(firstName)
	if firstName == "" {
		return nil, validationErr("first_name", "must not be empty")
	}

	return s.users.Create(externalID, username, firstName, lastName)
}

// GetUser returns the user or nil when unknown.
func (s *Service) GetUser(ctx context.Context, userID int64) (*model.User, error) {
	return s.users.GetByID(userID)
}

// ListUsers returns every registered user. The reminder scheduler iterates
// this to build daily digests.
func (s *Service) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.users.List()
}
