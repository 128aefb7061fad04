package domain

import "time"

// ActivityLog activity_logs table
type ActivityLog struct {
	ActivityID string    `db:"activity_id"`
	UserID     string    `db:"user_id"`
	Action     string    `db:"action"`
	Details    *string   `db:"details"`
	CreatedAt  time.Time `db:"created_at"`
}
