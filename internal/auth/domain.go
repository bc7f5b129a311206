package auth

import "time"

// User represents an authenticated user account.
type User struct {
	ID               int64
	TenantID         int64
	Email            string
	Name             string
	PasswordHash     string
	RepresentativeID string
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
