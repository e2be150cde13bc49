package models

import "time"

// Role values stored on accounts
const (
	RoleUser  = "User"
	RoleAdmin = "Admin"
)

// Address represents a shipping address owned by an account
type Address struct {
	ID          int64  `db:"id" json:"id"`
	UserID      int64  `db:"user_id" json:"user_id"`
	Name        string `db:"name" json:"name" validate:"max=100"`
	AddressLine string `db:"address_line" json:"address_line" validate:"required"`
	City        string `db:"city" json:"city" validate:"required,max=100"`
	Zip         string `db:"zip" json:"zip" validate:"max=20"`
	Phone       string `db:"phone" json:"phone" validate:"max=40"`
	IsDefault   bool   `db:"is_default" json:"is_default"`
}

// User represents a registered account
type User struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"` // "User" or "Admin"
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// IsAdmin reports whether the account carries the admin role
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
