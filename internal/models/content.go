package models

import "time"

// Certification is an orderable credential entry shown on the public site.
type Certification struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Issuer        string     `json:"issuer"`
	CredentialURL string     `json:"credential_url,omitempty"`
	IssuedAt      *time.Time `json:"issued_at,omitempty"`
	Order         int        `json:"order"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Experience is an orderable work-history entry.
type Experience struct {
	ID        string     `json:"id"`
	Role      string     `json:"role"`
	Company   string     `json:"company"`
	Summary   string     `json:"summary"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Order     int        `json:"order"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ServiceItem is an orderable offered-service entry.
type ServiceItem struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Icon        string    `json:"icon,omitempty"`
	Order       int       `json:"order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
