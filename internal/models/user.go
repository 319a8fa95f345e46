package models

import (
	"time"
)

type User struct {
	ID                string
	Email             string
	PasswordHash      string // empty for OAuth-only users
	Name              string
	Image             string
	Bio               string
	Location          string
	IsAdmin           bool
	TokenKey          string // Per-user secret for composite session signing
	TOTPSecret        string // empty unless MFA is enrolled
	MFAEnabled        bool
	LastLogin         *time.Time
	PasswordChangedAt *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Identity is the redacted projection of a User handed to callers after a
// successful sign-in. It never carries the password hash or token key.
type Identity struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Image   string `json:"image,omitempty"`
	IsAdmin bool   `json:"is_admin"`
}

func (u *User) Identity() Identity {
	return Identity{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Image:   u.Image,
		IsAdmin: u.IsAdmin,
	}
}
