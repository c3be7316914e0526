package model

import (
	"time"
)

// User is a registered account. Code is the public 10-digit identifier
// shown in the certified-persons registry and typed in as the candidate
// code when starting an exam session.
type User struct {
	ID           int64     `json:"id"`
	PersonalID   string    `json:"personal_id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Code         string    `json:"code"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// RegisterRequest is the payload for user registration.
type RegisterRequest struct {
	PersonalID string `json:"personal_id" binding:"required,len=11,numeric"`
	FirstName  string `json:"first_name" binding:"required,max=100"`
	LastName   string `json:"last_name" binding:"required,max=100"`
	Phone      string `json:"phone" binding:"required,max=32"`
	Email      string `json:"email" binding:"required,email,max=255"`
	Password   string `json:"password" binding:"required,min=6,max=72"`
}

// LoginRequest is the payload for email+password login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

// UserOut is the public profile shape. IsFounder marks the configured
// founder account whose admin rights cannot be revoked.
type UserOut struct {
	ID         int64     `json:"id"`
	PersonalID string    `json:"personal_id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Phone      string    `json:"phone"`
	Email      string    `json:"email"`
	Code       string    `json:"code"`
	IsAdmin    bool      `json:"is_admin"`
	IsFounder  bool      `json:"is_founder"`
	CreatedAt  time.Time `json:"created_at"`
}

// UpdateUserRequest is the admin payload for editing a user.
type UpdateUserRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=100"`
	LastName  *string `json:"last_name" binding:"omitempty,max=100"`
	Phone     *string `json:"phone" binding:"omitempty,max=32"`
	Email     *string `json:"email" binding:"omitempty,email,max=255"`
}

// SetAdminRequest toggles a user's admin flag.
type SetAdminRequest struct {
	IsAdmin bool `json:"is_admin"`
}
