package auth

import (
	"errors"
	"time"
)

// User is a device owner. Credentials and sessions are managed elsewhere;
// Switchboard only needs identity to gate device access.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Auth errors.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already exists")
	ErrInvalidUser  = errors.New("invalid user")
	ErrTokenInvalid = errors.New("invalid token")
)
