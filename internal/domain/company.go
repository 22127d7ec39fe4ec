package domain

import "time"

// Company represents a tenant that users join via its unique join code.
type Company struct {
	ID        int64
	UniqueID  string
	Name      string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
