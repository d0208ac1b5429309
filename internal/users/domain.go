package users

import "time"

// User represents a user account for management.
type User struct {
	ID        int64
	Name      string
	Email     string
	IsActive  bool
	Avatar    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
