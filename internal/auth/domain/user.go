package domain

import "time"

type User struct {
	ID           string
	Email        string  // unique, stored trimmed and lower-cased
	Username     *string // optional display name (nullable)
	PasswordHash string  // argon2 encoded
	IsStaff      bool
	IsSuperuser  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DisplayName returns the username or an empty string when none is set.
func (u User) DisplayName() string {
	if u.Username == nil {
		return ""
	}
	return *u.Username
}
