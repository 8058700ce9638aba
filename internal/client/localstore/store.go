// Package localstore is the embedded SQLite adapter for clients. It mirrors
// the PostgreSQL store behind the same Repository contract.
package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mecdoors/siteledger/internal/client"
)

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
	id, name, type, phone, email, address, contacts, created_by, created_at, updated_at
`

func scanClient(s scanner) (*client.Client, error) {
	var c client.Client

	var typeStr string

	var phone, email, address, createdBy sql.NullString

	var contacts []byte

	if err := s.Scan(
		&c.ID, &c.Name, &typeStr, &phone, &email, &address,
		&contacts, &createdBy, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}

	c.Type = client.Type(typeStr)
	c.Phone = phone.String
	c.Email = email.String
	c.Address = address.String

	if createdBy.Valid {
		id, err := uuid.Parse(createdBy.String)
		if err != nil {
			return nil, fmt.Errorf("parsing created_by: %w", err)
		}

		c.CreatedBy = &id
	}

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

func createdByValue(c *client.Client) any {
	if c.CreatedBy == nil {
		return nil
	}

	return c.CreatedBy.String()
}

func (s *Store) CreateClient(ctx context.Context, c *client.Client) error {
	contacts, err := marshalContacts(c)
	if err != nil {
		return err
	}

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = &now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO clients (id, name, type, phone, email, address, contacts, created_by, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		c.ID, c.Name, c.Type, c.Phone, c.Email, c.Address,
		contacts, createdByValue(c), c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}

	return nil
}

func (s *Store) GetClient(ctx context.Context, id uuid.UUID) (*client.Client, error) {
	query := `SELECT ` + selectClientColumns + ` FROM clients WHERE id = ?`

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
	query := `SELECT ` + selectClientColumns + ` FROM clients WHERE 1=1`

	var args []any

	if filter.Type != nil {
		query += " AND type = ?"

		args = append(args, string(*filter.Type))
	}

	if filter.Search != "" {
		query += " AND name LIKE ?"

		args = append(args, "%"+strings.TrimSpace(filter.Search)+"%")
	}

	query += " ORDER BY name ASC"

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

	now := time.Now().UTC()

	res, err := s.db.ExecContext(ctx, `
		UPDATE clients SET
			name = ?, type = ?, phone = ?, email = ?, address = ?,
			contacts = ?, updated_at = ?
		WHERE id = ?`,
		c.Name, c.Type, c.Phone, c.Email, c.Address, contacts, now, c.ID,
	)
	if err != nil {
		return fmt.Errorf("updating client: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return client.ErrNotFound
	}

	c.UpdatedAt = &now

	return nil
}

func (s *Store) DeleteClient(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM clients WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting client: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return client.ErrNotFound
	}

	return nil
}
