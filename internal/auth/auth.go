package auth

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("username or email already exists")
	ErrSessionInvalid     = errors.New("invalid or expired session")
	ErrForbidden          = errors.New("insufficient permissions")
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User is an account on the system. PasswordHash never leaves this package.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	FullName     string
	Role         Role
	Department   string
	IsActive     bool
	LastLogin    *time.Time
	CreatedBy    *uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

// Session ties an issued token to a user. TokenHash is the SHA-256 of the
// raw token, so a leaked sessions table cannot be replayed.
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	IPAddress string
	UserAgent string
	CreatedAt time.Time
}
