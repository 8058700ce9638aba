package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mecdoors/siteledger/internal/client"
)

// Store persists clients in PostgreSQL with contacts in a JSONB column.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectClientColumns = `
	c.id, c.name, c.type, COALESCE(c.phone, ''), COALESCE(c.email, ''),
	COALESCE(c.address, ''), c.contacts, c.created_by, c.created_at, c.updated_at
`

func scanClient(s scanner) (*client.Client, error) {
	var c client.Client

	var typeStr string

	var contacts []byte

	if err := s.Scan(
		&c.ID, &c.Name, &typeStr, &c.Phone, &c.Email, &c.Address,
		&contacts, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}

	c.Type = client.Type(typeStr)

	if len(contacts) > 0 {
		if err := json.Unmarshal(contacts, &c.Contacts); err != nil {
			return nil, fmt.Errorf("unmarshaling contacts: %w", err)
		}
	}

	return &c, nil
}

func marshalContacts(c *client.Client) ([]byte, error) {
	contacts := c.Contacts
	if contacts == nil {
		contacts = []client.Contact{}
	}

	raw, err := json.Marshal(contacts)
	if err != nil {
		return nil, fmt.Errorf("marshaling contacts: %w", err)
	}

	return raw, nil
}

func (s *Store) CreateClient(ctx context.Context, c *client.Client) error {
	contacts, err := marshalContacts(c)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO clients (name, type, phone, email, address, contacts, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err = s.db.QueryRowContext(ctx, query,
		c.Name, c.Type, c.Phone, c.Email, c.Address, contacts, c.CreatedBy,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}

	return nil
}

func (s *Store) GetClient(ctx context.Context, id uuid.UUID) (*client.Client, error) {
	query := `SELECT ` + selectClientColumns + ` FROM clients c WHERE c.id = $1`

	c, err := scanClient(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, client.ErrNotFound
		}

		return nil, fmt.Errorf("getting client: %w", err)
	}

	return c, nil
}

func (s *Store) ListClients(ctx context.Context, filter client.ListFilter) ([]*client.Client, error) {
	query := `SELECT ` + selectClientColumns + ` FROM clients c WHERE 1=1`

	var args []any

	argIdx := 1

	if filter.Type != nil {
		query += fmt.Sprintf(" AND c.type = $%d", argIdx)

		args = append(args, *filter.Type)
		argIdx++
	}

	if filter.Search != "" {
		query += fmt.Sprintf(" AND c.name ILIKE $%d", argIdx)

		args = append(args, "%"+filter.Search+"%")
		argIdx++
	}

	query += " ORDER BY c.name ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}
	defer rows.Close()

	var clients []*client.Client

	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning client: %w", err)
		}

		clients = append(clients, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating client rows: %w", err)
	}

	return clients, nil
}

func (s *Store) UpdateClient(ctx context.Context, c *client.Client) error {
	contacts, err := marshalContacts(c)
	if err != nil {
		return err
	}

	query := `
		UPDATE clients SET
			name = $1, type = $2, phone = $3, email = $4, address = $5,
			contacts = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at
	`

	err = s.db.QueryRowContext(ctx, query,
		c.Name, c.Type, c.Phone, c.Email, c.Address, contacts, c.ID,
	).Scan(&c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return client.ErrNotFound
		}

		return fmt.Errorf("updating client: %w", err)
	}

	return nil
}

func (s *Store) DeleteClient(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM clients WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting client: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return client.ErrNotFound
	}

	return nil
}
