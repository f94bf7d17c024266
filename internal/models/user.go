package models

import "time"

// User is an account. Registered learners are active; guest accounts are
// inactive shadow accounts derived from a browser session.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	IsActive     bool
	IsGuest      bool
	ExpiresAt    *time.Time
	LastLogin    *time.Time
	CreatedAt    time.Time
}

// IsExpired reports whether a guest account has outlived its lifetime.
// Registered accounts never expire.
func (u *User) IsExpired(now time.Time) bool {
	if !u.IsGuest || u.ExpiresAt == nil {
		return false
	}
	return now.After(*u.ExpiresAt)
}

// DisplayName returns the name used in greetings and logs.
func (u *User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Username
}
