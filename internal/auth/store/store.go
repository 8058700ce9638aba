package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mecdoors/siteledger/internal/auth"
)

// Store persists users and sessions in PostgreSQL.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectUserColumns = `
	id, username, email, password_hash, full_name, role,
	COALESCE(department, ''), is_active, last_login, created_by, created_at, updated_at
`

func scanUser(s scanner) (*auth.User, error) {
	var u auth.User

	var roleStr string

	if err := s.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName, &roleStr,
		&u.Department, &u.IsActive, &u.LastLogin, &u.CreatedBy, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}

	u.Role = auth.Role(roleStr)

	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (s *Store) CreateUser(ctx context.Context, u *auth.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, full_name, role, department, is_active, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		u.Username, u.Email, u.PasswordHash, u.FullName, u.Role, u.Department,
		u.IsActive, u.CreatedBy,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return auth.ErrUserExists
		}

		return fmt.Errorf("creating user: %w", err)
	}

	return nil
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	query := `SELECT ` + selectUserColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auth.ErrNotFound
		}

		return nil, fmt.Errorf("getting user: %w", err)
	}

	return u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*auth.User, error) {
	query := `SELECT ` + selectUserColumns + ` FROM users WHERE username = $1`

	u, err := scanUser(s.db.QueryRowContext(ctx, query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auth.ErrNotFound
		}

		return nil, fmt.Errorf("getting user by username: %w", err)
	}

	return u, nil
}

func (s *Store) UpdateUser(ctx context.Context, u *auth.User) error {
	query := `
		UPDATE users SET
			username = $1, email = $2, full_name = $3, role = $4,
			department = $5, is_active = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		u.Username, u.Email, u.FullName, u.Role, u.Department, u.IsActive, u.ID,
	).Scan(&u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return auth.ErrNotFound
		}

		if isUniqueViolation(err) {
			return auth.ErrUserExists
		}

		return fmt.Errorf("updating user: %w", err)
	}

	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]*auth.User, error) {
	query := `SELECT ` + selectUserColumns + ` FROM users ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []*auth.User

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}

		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating user rows: %w", err)
	}

	return users, nil
}

func (s *Store) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if _, err := s.db.ExecContext(ctx,
		"UPDATE users SET last_login = $1 WHERE id = $2", at, id,
	); err != nil {
		return fmt.Errorf("updating last login: %w", err)
	}

	return nil
}

func (s *Store) CreateSession(ctx context.Context, sess *auth.Session) error {
	query := `
		INSERT INTO user_sessions (user_id, token_hash, expires_at, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		sess.UserID, sess.TokenHash, sess.ExpiresAt, sess.IPAddress, sess.UserAgent,
	).Scan(&sess.ID, &sess.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}

	return nil
}

func (s *Store) GetSession(ctx context.Context, tokenHash string) (*auth.Session, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, COALESCE(ip_address, ''),
			COALESCE(user_agent, ''), created_at
		FROM user_sessions WHERE token_hash = $1
	`

	var sess auth.Session

	err := s.db.QueryRowContext(ctx, query, tokenHash).Scan(
		&sess.ID, &sess.UserID, &sess.TokenHash, &sess.ExpiresAt,
		&sess.IPAddress, &sess.UserAgent, &sess.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auth.ErrNotFound
		}

		return nil, fmt.Errorf("getting session: %w", err)
	}

	return &sess, nil
}

func (s *Store) DeleteSession(ctx context.Context, tokenHash string) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM user_sessions WHERE token_hash = $1", tokenHash,
	); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}

	return nil
}

func (s *Store) DeleteExpiredSessions(ctx context.Context, before time.Time) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM user_sessions WHERE expires_at <= $1", before,
	); err != nil {
		return fmt.Errorf("deleting expired sessions: %w", err)
	}

	return nil
}
