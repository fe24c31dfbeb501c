package company

import "time"

// Company is a tenant. Username is its unique login handle.
type Company struct {
	ID        string
	Name      string
	Username  string
	Address   *string
	LogoURL   *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
