package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const sessionTTL = 24 * time.Hour

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=auth
type Repository interface {
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	UpdateUser(ctx context.Context, u *User) error
	ListUsers(ctx context.Context) ([]*User, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error

	CreateSession(ctx context.Context, s *Session) error
	GetSession(ctx context.Context, tokenHash string) (*Session, error)
	DeleteSession(ctx context.Context, tokenHash string) error
	DeleteExpiredSessions(ctx context.Context, before time.Time) error
}

// Claims is the JWT payload issued on login.
type Claims struct {
	Username   string `json:"username"`
	Role       Role   `json:"role"`
	Department string `json:"department,omitempty"`
	jwt.RegisteredClaims
}

type Service struct {
	repo   Repository
	secret []byte
	now    func() time.Time
}

func NewService(repo Repository, secret string) *Service {
	return &Service{
		repo:   repo,
		secret: []byte(secret),
		now:    time.Now,
	}
}

// LoginResult carries the signed token together with the authenticated user.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *User
}

// Login checks credentials, issues a signed token and persists a session row
// for it. Inactive users are rejected the same way as unknown ones.
func (s *Service) Login(ctx context.Context, username, password, ipAddress, userAgent string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	if !u.IsActive {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.now().UTC()
	expiresAt := now.Add(sessionTTL)

	claims := Claims{
		Username:   u.Username,
		Role:       u.Role,
		Department: u.Department,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("signing token: %w", err)
	}

	session := &Session{
		UserID:    u.ID,
		TokenHash: hashToken(token),
		ExpiresAt: expiresAt,
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("persisting session: %w", err)
	}

	if err := s.repo.TouchLastLogin(ctx, u.ID, now); err != nil {
		return nil, fmt.Errorf("recording last login: %w", err)
	}

	u.LastLogin = &now

	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: u}, nil
}

// Authenticate verifies the token signature and checks that its session row
// still exists and is unexpired.
func (s *Service) Authenticate(ctx context.Context, token string) (*User, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}

		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return nil, ErrSessionInvalid
	}

	session, err := s.repo.GetSession(ctx, hashToken(token))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrSessionInvalid
		}

		return nil, err
	}

	if !session.ExpiresAt.After(s.now()) {
		return nil, ErrSessionInvalid
	}

	u, err := s.repo.GetUser(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrSessionInvalid
		}

		return nil, err
	}

	if !u.IsActive {
		return nil, ErrSessionInvalid
	}

	return u, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	return s.repo.DeleteSession(ctx, hashToken(token))
}

type RegisterParams struct {
	Username   string
	Email      string
	Password   string
	FullName   string
	Role       Role
	Department string
}

// Register creates a user account. Only admins may call it.
func (s *Service) Register(ctx context.Context, actor *User, params RegisterParams) (*User, error) {
	if actor == nil || actor.Role != RoleAdmin {
		return nil, ErrForbidden
	}

	if params.Username == "" || params.Email == "" || params.Password == "" || params.FullName == "" {
		return nil, fmt.Errorf("username, email, password and full name are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &User{
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: string(hash),
		FullName:     params.FullName,
		Role:         params.Role,
		Department:   params.Department,
		IsActive:     true,
		CreatedBy:    &actor.ID,
	}
	if u.Role == "" {
		u.Role = RoleUser
	}

	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

// ListUsers returns all accounts. Only admins may call it.
func (s *Service) ListUsers(ctx context.Context, actor *User) ([]*User, error) {
	if actor == nil || actor.Role != RoleAdmin {
		return nil, ErrForbidden
	}

	return s.repo.ListUsers(ctx)
}

type UpdateUserParams struct {
	Username   string
	Email      string
	FullName   string
	Role       Role
	Department string
	IsActive   bool
}

// UpdateUser replaces the mutable account fields. Only admins may call it.
func (s *Service) UpdateUser(ctx context.Context, actor *User, id uuid.UUID, params UpdateUserParams) (*User, error) {
	if actor == nil || actor.Role != RoleAdmin {
		return nil, ErrForbidden
	}

	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	u.Username = params.Username
	u.Email = params.Email
	u.FullName = params.FullName
	u.Role = params.Role
	u.Department = params.Department
	u.IsActive = params.IsActive

	if err := s.repo.UpdateUser(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

// PruneSessions drops expired session rows.
func (s *Service) PruneSessions(ctx context.Context) error {
	return s.repo.DeleteExpiredSessions(ctx, s.now().UTC())
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
