// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// UserType is the role assigned to a user account.
type UserType string

const (
	UserTypeUser  UserType = "USER"
	UserTypeAdmin UserType = "ADMIN"
)

// Valid reports whether the value is one of the known roles.
func (t UserType) Valid() bool {
	return t == UserTypeUser || t == UserTypeAdmin
}

// User represents an account in the Elfatih application.
type User struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	Username  string   `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email     string   `gorm:"uniqueIndex;size:255;not null" json:"email"`
	FullName  string   `gorm:"size:100;not null" json:"full_name"`
	Phone     *string  `gorm:"uniqueIndex;size:20" json:"phone"`
	Password  string   `gorm:"not null" json:"-"`
	UserType  UserType `gorm:"size:10;not null;default:USER" json:"user_type"`
	IsActive  bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.UserType == UserTypeAdmin
}

// UserStats aggregates account counts for the admin dashboard.
type UserStats struct {
	TotalUsers    int64 `json:"total_users"`
	ActiveUsers   int64 `json:"active_users"`
	InactiveUsers int64 `json:"inactive_users"`
	AdminUsers    int64 `json:"admin_users"`
	RegularUsers  int64 `json:"regular_users"`
}
