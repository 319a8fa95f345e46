package models

import "time"

// LoginEvent is one row of a user's append-only login history.
type LoginEvent struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	Method    string    `json:"method"` // "credentials" or provider name
	CreatedAt time.Time `json:"created_at"`
}
