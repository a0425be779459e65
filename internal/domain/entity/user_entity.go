package entity

import (
	"time"
)

// Role is the authorization level of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is the aggregate root for the credential store.
// PasswordHash holds a bcrypt hash, never the plain password.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	IsVerified   bool
	Role         Role
	AvatarURL    *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether u holds the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// UserSnapshot is a read-only copy of a User handed out by authentication.
// It carries no password hash and is safe to cache.
type UserSnapshot struct {
	ID         int64     `json:"id"`
	Email      string    `json:"email"`
	IsVerified bool      `json:"is_verified"`
	Role       Role      `json:"role"`
	AvatarURL  *string   `json:"avatar_url"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Snapshot copies the public fields of u.
func (u *User) Snapshot() UserSnapshot {
	var avatar *string
	if u.AvatarURL != nil {
		v := *u.AvatarURL
		avatar = &v
	}
	return UserSnapshot{
		ID:         u.ID,
		Email:      u.Email,
		IsVerified: u.IsVerified,
		Role:       u.Role,
		AvatarURL:  avatar,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
