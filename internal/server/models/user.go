// Package models holds the persisted entities of the authentication service.
package models

import "time"

// User is an identity inside a tenant. A nil TenantID marks the platform
// super-admin partition.
type User struct {
	ID             string
	TenantID       *string
	Email          string
	Mobile         string
	PasswordHash   string
	MobileVerified bool
	Metadata       UserMetadata
	CreatedAt      time.Time
}

// UserMetadata is stored as JSON next to the user row.
type UserMetadata struct {
	Role string `json:"role,omitempty"`
	Name string `json:"name,omitempty"`
}

// IsSuperAdmin reports whether the user lives outside any tenant.
func (u *User) IsSuperAdmin() bool {
	return u.TenantID == nil
}
