package models

import "time"

// Profile is a learner's profile: grade, accumulated points and badges.
type Profile struct {
	ID               int64
	UserID           int64
	Classe           string
	PhotoProfil      *string
	Points           int
	Badges           []string
	DateCreation     time.Time
	DateModification time.Time

	// User is populated by queries that join the owning account.
	User *User
}

// ProfileUpdate holds the self-service changes a learner may make.
// Nil fields are left untouched.
type ProfileUpdate struct {
	Classe      *string
	PhotoProfil *string
	FirstName   *string
	LastName    *string
	Email       *string
}
