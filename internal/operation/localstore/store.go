// Package localstore is the embedded SQLite adapter for operations, used when
// siteledger runs without the API server. It implements the same Repository
// contract as the PostgreSQL store so the services never know the difference.
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

	"github.com/mecdoors/siteledger/internal/operation"
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

const selectOperationColumns = `
	id, code, name, client_id, items, deductions, guarantee_checks,
	guarantee_letters, warranty_certificates, received_payments,
	total_amount, total_received, overall_execution_percentage, status,
	created_by, created_at, updated_at
`

func scanOperation(s scanner) (*operation.Operation, error) {
	var op operation.Operation

	var statusStr string

	var createdBy sql.NullString

	var items, deductions, checks, letters, warranties, payments []byte

	if err := s.Scan(
		&op.ID, &op.Code, &op.Name, &op.ClientID,
		&items, &deductions, &checks, &letters, &warranties, &payments,
		&op.TotalAmount, &op.TotalReceived, &op.OverallExecutionPercentage, &statusStr,
		&createdBy, &op.CreatedAt, &op.UpdatedAt,
	); err != nil {
		return nil, err
	}

	op.Status = operation.Status(statusStr)

	if createdBy.Valid {
		id, err := uuid.Parse(createdBy.String)
		if err != nil {
			return nil, fmt.Errorf("parsing created_by: %w", err)
		}

		op.CreatedBy = &id
	}

	for _, col := range []struct {
		raw  []byte
		dest any
	}{
		{items, &op.Items},
		{deductions, &op.Deductions},
		{checks, &op.GuaranteeChecks},
		{letters, &op.GuaranteeLetters},
		{warranties, &op.WarrantyCertificates},
		{payments, &op.ReceivedPayments},
	} {
		if len(col.raw) == 0 {
			continue
		}

		if err := json.Unmarshal(col.raw, col.dest); err != nil {
			return nil, fmt.Errorf("unmarshaling operation children: %w", err)
		}
	}

	return &op, nil
}

func marshalChildren(op *operation.Operation) (items, deductions, checks, letters, warranties, payments []byte, err error) {
	for _, col := range []struct {
		src  any
		dest *[]byte
	}{
		{op.Items, &items},
		{op.Deductions, &deductions},
		{op.GuaranteeChecks, &checks},
		{op.GuaranteeLetters, &letters},
		{op.WarrantyCertificates, &warranties},
		{op.ReceivedPayments, &payments},
	} {
		if *col.dest, err = json.Marshal(col.src); err != nil {
			return nil, nil, nil, nil, nil, nil, fmt.Errorf("marshaling operation children: %w", err)
		}
	}

	return items, deductions, checks, letters, warranties, payments, nil
}

func createdByValue(op *operation.Operation) any {
	if op.CreatedBy == nil {
		return nil
	}

	return op.CreatedBy.String()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint")
}

func (s *Store) CreateOperation(ctx context.Context, op *operation.Operation) error {
	items, deductions, checks, letters, warranties, payments, err := marshalChildren(op)
	if err != nil {
		return err
	}

	if op.ID == uuid.Nil {
		op.ID = uuid.New()
	}

	now := time.Now().UTC()
	op.CreatedAt = now
	op.UpdatedAt = &now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO operations (
			id, code, name, client_id, items, deductions, guarantee_checks,
			guarantee_letters, warranty_certificates, received_payments,
			total_amount, total_received, overall_execution_percentage,
			status, created_by, created_at, updated_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		op.ID, op.Code, op.Name, op.ClientID,
		items, deductions, checks, letters, warranties, payments,
		op.TotalAmount, op.TotalReceived, op.OverallExecutionPercentage,
		op.Status, createdByValue(op), op.CreatedAt, op.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return operation.ErrCodeExists
		}

		return fmt.Errorf("creating operation: %w", err)
	}

	return nil
}

func (s *Store) GetOperation(ctx context.Context, id uuid.UUID) (*operation.Operation, error) {
	query := `SELECT ` + selectOperationColumns + ` FROM operations WHERE id = ?`

	op, err := scanOperation(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, operation.ErrNotFound
		}

		return nil, fmt.Errorf("getting operation: %w", err)
	}

	return op, nil
}

func (s *Store) ListOperations(ctx context.Context, filter operation.ListFilter) ([]*operation.Operation, int, error) {
	where := " WHERE 1=1"

	var args []any

	if filter.ClientID != nil {
		where += " AND client_id = ?"

		args = append(args, *filter.ClientID)
	}

	if filter.Status != nil {
		where += " AND status = ?"

		args = append(args, string(*filter.Status))
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM operations"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting operations: %w", err)
	}

	query := `SELECT ` + selectOperationColumns + ` FROM operations` + where +
		" ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing operations: %w", err)
	}
	defer rows.Close()

	var ops []*operation.Operation

	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning operation: %w", err)
		}

		ops = append(ops, op)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating operation rows: %w", err)
	}

	return ops, total, nil
}

func (s *Store) UpdateOperation(ctx context.Context, op *operation.Operation) error {
	items, deductions, checks, letters, warranties, payments, err := marshalChildren(op)
	if err != nil {
		return err
	}

	now := time.Now().UTC()

	res, err := s.db.ExecContext(ctx, `
		UPDATE operations SET
			code = ?, name = ?, client_id = ?, items = ?, deductions = ?,
			guarantee_checks = ?, guarantee_letters = ?, warranty_certificates = ?,
			received_payments = ?, total_amount = ?, total_received = ?,
			overall_execution_percentage = ?, status = ?, updated_at = ?
		WHERE id = ?`,
		op.Code, op.Name, op.ClientID,
		items, deductions, checks, letters, warranties, payments,
		op.TotalAmount, op.TotalReceived, op.OverallExecutionPercentage,
		op.Status, now, op.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return operation.ErrCodeExists
		}

		return fmt.Errorf("updating operation: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return operation.ErrNotFound
	}

	op.UpdatedAt = &now

	return nil
}

func (s *Store) DeleteOperation(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM operations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting operation: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return operation.ErrNotFound
	}

	return nil
}
