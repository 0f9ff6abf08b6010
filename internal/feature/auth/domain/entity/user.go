// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// User represents a registered gym member account.
// Records are created once and never updated or deleted.
type User struct {
	// ID is assigned by the store, starting at 1 and never reused.
	ID uint `gorm:"primaryKey" json:"id"`

	// Email is unique across all users and compared by exact match.
	Email string `gorm:"uniqueIndex;size:255;not null" json:"email"`

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string `gorm:"size:255;not null" json:"passwordHash"`

	// FirstName and LastName are optional at the store level.
	FirstName *string `gorm:"size:100" json:"firstName"`
	LastName  *string `gorm:"size:100" json:"lastName"`

	// IsActive is set at creation and never flipped.
	IsActive bool `gorm:"not null" json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt equals CreatedAt: no operation modifies a user after creation.
	UpdatedAt time.Time `json:"updatedAt"`
}

// DisplayName returns the user's first name, falling back to the email address.
func (u *User) DisplayName() string {
	if u.FirstName != nil && *u.FirstName != "" {
		return *u.FirstName
	}
	return u.Email
}

// Clone returns a deep copy of the user, including the name pointers.
func (u *User) Clone() *User {
	c := *u
	if u.FirstName != nil {
		first := *u.FirstName
		c.FirstName = &first
	}
	if u.LastName != nil {
		last := *u.LastName
		c.LastName = &last
	}
	return &c
}
