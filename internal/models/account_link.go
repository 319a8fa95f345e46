package models

import "time"

// AccountLink ties a local user to a third-party identity provider account.
// The (Provider, ProviderAccountID) pair is unique across the table.
type AccountLink struct {
	ID                string
	UserID            string
	Provider          string // "google"
	ProviderAccountID string // subject claim from the provider
	CreatedAt         time.Time
}
