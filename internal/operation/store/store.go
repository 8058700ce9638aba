package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mecdoors/siteledger/internal/operation"
)

const pgUniqueViolation = "23505"

// Store persists operations in PostgreSQL. Child collections live in JSONB
// columns alongside the row, mirroring how the records are owned by value.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectOperationColumns = `
	o.id, o.code, o.name, o.client_id, o.items, o.deductions, o.guarantee_checks,
	o.guarantee_letters, o.warranty_certificates, o.received_payments,
	o.total_amount, o.total_received, o.overall_execution_percentage, o.status,
	o.created_by, o.created_at, o.updated_at
`

// scanOperation reads an operation row and unmarshals the JSONB children.
// Expected column order matches selectOperationColumns.
func scanOperation(s scanner) (*operation.Operation, error) {
	var op operation.Operation

	var statusStr string

	var items, deductions, checks, letters, warranties, payments []byte

	if err := s.Scan(
		&op.ID, &op.Code, &op.Name, &op.ClientID,
		&items, &deductions, &checks, &letters, &warranties, &payments,
		&op.TotalAmount, &op.TotalReceived, &op.OverallExecutionPercentage, &statusStr,
		&op.CreatedBy, &op.CreatedAt, &op.UpdatedAt,
	); err != nil {
		return nil, err
	}

	op.Status = operation.Status(statusStr)

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

type childDocs struct {
	items, deductions, checks, letters, warranties, payments []byte
}

func marshalChildren(op *operation.Operation) (childDocs, error) {
	var docs childDocs

	var err error

	for _, col := range []struct {
		src  any
		dest *[]byte
	}{
		{emptySlice(op.Items), &docs.items},
		{emptySlice(op.Deductions), &docs.deductions},
		{emptySlice(op.GuaranteeChecks), &docs.checks},
		{emptySlice(op.GuaranteeLetters), &docs.letters},
		{emptySlice(op.WarrantyCertificates), &docs.warranties},
		{emptySlice(op.ReceivedPayments), &docs.payments},
	} {
		*col.dest, err = json.Marshal(col.src)
		if err != nil {
			return childDocs{}, fmt.Errorf("marshaling operation children: %w", err)
		}
	}

	return docs, nil
}

// emptySlice keeps JSON columns as [] instead of null for nil slices.
func emptySlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}

	return s
}

func (s *Store) CreateOperation(ctx context.Context, op *operation.Operation) error {
	docs, err := marshalChildren(op)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO operations (
			code, name, client_id, items, deductions, guarantee_checks,
			guarantee_letters, warranty_certificates, received_payments,
			total_amount, total_received, overall_execution_percentage,
			status, created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err = s.db.QueryRowContext(ctx, query,
		op.Code, op.Name, op.ClientID,
		docs.items, docs.deductions, docs.checks, docs.letters, docs.warranties, docs.payments,
		op.TotalAmount, op.TotalReceived, op.OverallExecutionPercentage,
		op.Status, op.CreatedBy,
	).Scan(&op.ID, &op.CreatedAt, &op.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return operation.ErrCodeExists
		}

		return fmt.Errorf("creating operation: %w", err)
	}

	return nil
}

func (s *Store) GetOperation(ctx context.Context, id uuid.UUID) (*operation.Operation, error) {
	query := `SELECT ` + selectOperationColumns + ` FROM operations o WHERE o.id = $1`

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

	argIdx := 1

	if filter.ClientID != nil {
		where += fmt.Sprintf(" AND o.client_id = $%d", argIdx)

		args = append(args, *filter.ClientID)
		argIdx++
	}

	if filter.Status != nil {
		where += fmt.Sprintf(" AND o.status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM operations o"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting operations: %w", err)
	}

	query := `SELECT ` + selectOperationColumns + ` FROM operations o` + where +
		fmt.Sprintf(" ORDER BY o.created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
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
	docs, err := marshalChildren(op)
	if err != nil {
		return err
	}

	query := `
		UPDATE operations SET
			code = $1, name = $2, client_id = $3, items = $4, deductions = $5,
			guarantee_checks = $6, guarantee_letters = $7, warranty_certificates = $8,
			received_payments = $9, total_amount = $10, total_received = $11,
			overall_execution_percentage = $12, status = $13, updated_at = NOW()
		WHERE id = $14
		RETURNING updated_at
	`

	err = s.db.QueryRowContext(ctx, query,
		op.Code, op.Name, op.ClientID,
		docs.items, docs.deductions, docs.checks, docs.letters, docs.warranties, docs.payments,
		op.TotalAmount, op.TotalReceived, op.OverallExecutionPercentage,
		op.Status, op.ID,
	).Scan(&op.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return operation.ErrNotFound
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return operation.ErrCodeExists
		}

		return fmt.Errorf("updating operation: %w", err)
	}

	return nil
}

func (s *Store) DeleteOperation(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM operations WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting operation: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return operation.ErrNotFound
	}

	return nil
}
