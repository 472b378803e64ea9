package model

import "time"

type Category struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

// CategoryStats counts tasks per category. A nil Category means the
// uncategorized bucket.
type CategoryStats struct {
	Category  *Category `json:"category"`
	Total     int       `json:"total"`
	Completed int       `json:"completed"`
}
