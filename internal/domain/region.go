package domain

import "time"

// Region regions table
type Region struct {
	RegionID    string    `db:"region_id"`
	Name        string    `db:"name"`
	Code        string    `db:"code"` // UNIQUE
	Description *string   `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}
