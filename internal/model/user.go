package model

import "time"

type User struct {
	ID             int64     `json:"id"`
	ExternalID     int64     `json:"external_id"`
	Username       *string   `json:"username"`
	FirstName      string    `json:"first_name"`
	LastName       *string   `json:"last_name"`
	RegisteredAt   time.Time `json:"registered_at"`
	Level          int       `json:"level"`
	Experience     int       `json:"experience"`
	CompletedTasks int       `json:"completed_tasks"`
}

// UserStats is the progression snapshot shown on the stats screen.
type UserStats struct {
	Level          int `json:"level"`
	Experience     int `json:"experience"`
	NextLevelXP    int `json:"next_level_xp"`
	CompletedTasks int `json:"completed_tasks"`
}
