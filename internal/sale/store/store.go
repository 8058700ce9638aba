package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mecdoors/siteledger/internal/sale"
)

// Store persists sales opportunities in PostgreSQL.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectOpportunityColumns = `
	so.id, so.title, COALESCE(so.description, ''), so.client_id,
	COALESCE(c.name, ''), COALESCE(so.potential_client_name, ''),
	so.potential_client_contact, so.estimated_value, so.probability, so.stage,
	COALESCE(so.source, ''), so.assigned_to, COALESCE(u.full_name, ''),
	so.expected_close_date, so.actual_close_date, COALESCE(so.notes, ''),
	so.status, so.created_by, so.created_at, so.updated_at
`

const opportunityJoins = `
	FROM sales_opportunities so
	LEFT JOIN clients c ON so.client_id = c.id
	LEFT JOIN users u ON so.assigned_to = u.id
`

func scanOpportunity(s scanner) (*sale.Opportunity, error) {
	var o sale.Opportunity

	var stageStr, statusStr string

	var contact []byte

	if err := s.Scan(
		&o.ID, &o.Title, &o.Description, &o.ClientID,
		&o.ClientName, &o.PotentialClientName,
		&contact, &o.EstimatedValue, &o.Probability, &stageStr,
		&o.Source, &o.AssignedTo, &o.AssignedToName,
		&o.ExpectedCloseDate, &o.ActualCloseDate, &o.Notes,
		&statusStr, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		return nil, err
	}

	o.Stage = sale.Stage(stageStr)
	o.Status = sale.Status(statusStr)

	if len(contact) > 0 {
		if err := json.Unmarshal(contact, &o.PotentialClientContact); err != nil {
			return nil, fmt.Errorf("unmarshaling potential client contact: %w", err)
		}
	}

	return &o, nil
}

func (s *Store) CreateOpportunity(ctx context.Context, o *sale.Opportunity) error {
	contact, err := json.Marshal(o.PotentialClientContact)
	if err != nil {
		return fmt.Errorf("marshaling potential client contact: %w", err)
	}

	query := `
		INSERT INTO sales_opportunities (
			title, description, client_id, potential_client_name,
			potential_client_contact, estimated_value, probability, stage,
			source, assigned_to, expected_close_date, notes, status,
			created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err = s.db.QueryRowContext(ctx, query,
		o.Title, o.Description, o.ClientID, o.PotentialClientName,
		contact, o.EstimatedValue, o.Probability, o.Stage,
		o.Source, o.AssignedTo, o.ExpectedCloseDate, o.Notes, o.Status,
		o.CreatedBy,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating opportunity: %w", err)
	}

	return nil
}

func (s *Store) GetOpportunity(ctx context.Context, id uuid.UUID) (*sale.Opportunity, error) {
	query := `SELECT ` + selectOpportunityColumns + opportunityJoins + ` WHERE so.id = $1`

	o, err := scanOpportunity(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sale.ErrNotFound
		}

		return nil, fmt.Errorf("getting opportunity: %w", err)
	}

	return o, nil
}

func (s *Store) ListOpportunities(ctx context.Context, filter sale.ListFilter) ([]*sale.Opportunity, int, error) {
	where := " WHERE 1=1"

	var args []any

	argIdx := 1

	if filter.Status != nil {
		where += fmt.Sprintf(" AND so.status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.Stage != nil {
		where += fmt.Sprintf(" AND so.stage = $%d", argIdx)

		args = append(args, *filter.Stage)
		argIdx++
	}

	if filter.AssignedTo != nil {
		where += fmt.Sprintf(" AND so.assigned_to = $%d", argIdx)

		args = append(args, *filter.AssignedTo)
		argIdx++
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sales_opportunities so"+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting opportunities: %w", err)
	}

	query := `SELECT ` + selectOpportunityColumns + opportunityJoins + where +
		fmt.Sprintf(" ORDER BY so.created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing opportunities: %w", err)
	}
	defer rows.Close()

	var opportunities []*sale.Opportunity

	for rows.Next() {
		o, err := scanOpportunity(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning opportunity: %w", err)
		}

		opportunities = append(opportunities, o)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating opportunity rows: %w", err)
	}

	return opportunities, total, nil
}

func (s *Store) UpdateOpportunity(ctx context.Context, o *sale.Opportunity) error {
	contact, err := json.Marshal(o.PotentialClientContact)
	if err != nil {
		return fmt.Errorf("marshaling potential client contact: %w", err)
	}

	query := `
		UPDATE sales_opportunities SET
			title = $1, description = $2, client_id = $3, potential_client_name = $4,
			potential_client_contact = $5, estimated_value = $6, probability = $7,
			stage = $8, source = $9, assigned_to = $10, expected_close_date = $11,
			actual_close_date = $12, notes = $13, status = $14, updated_at = NOW()
		WHERE id = $15
		RETURNING updated_at
	`

	err = s.db.QueryRowContext(ctx, query,
		o.Title, o.Description, o.ClientID, o.PotentialClientName,
		contact, o.EstimatedValue, o.Probability,
		o.Stage, o.Source, o.AssignedTo, o.ExpectedCloseDate,
		o.ActualCloseDate, o.Notes, o.Status, o.ID,
	).Scan(&o.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sale.ErrNotFound
		}

		return fmt.Errorf("updating opportunity: %w", err)
	}

	return nil
}

// ArchiveOpportunity copies the live row into archived_opportunities with the
// loss details and removes it, all in one transaction.
func (s *Store) ArchiveOpportunity(ctx context.Context, id uuid.UUID, params sale.ArchiveParams) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		title          string
		clientName     sql.NullString
		estimatedValue int64
		original       []byte
	)

	err = tx.QueryRowContext(ctx, `
		SELECT title, potential_client_name, estimated_value, row_to_json(so)
		FROM sales_opportunities so WHERE id = $1`, id,
	).Scan(&title, &clientName, &estimatedValue, &original)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sale.ErrNotFound
		}

		return fmt.Errorf("loading opportunity for archive: %w", err)
	}

	if !clientName.Valid || clientName.String == "" {
		clientName = sql.NullString{String: "Unknown", Valid: true}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO archived_opportunities (
			original_opportunity_id, title, client_name, estimated_value,
			reason_lost, detailed_reason, competitor, lessons_learned,
			archived_by, original_data, archived_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())`,
		id, title, clientName.String, estimatedValue,
		params.ReasonLost, params.DetailedReason, params.Competitor,
		params.LessonsLearned, params.ArchivedBy, original,
	)
	if err != nil {
		return fmt.Errorf("inserting archived opportunity: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM sales_opportunities WHERE id = $1", id); err != nil {
		return fmt.Errorf("deleting archived opportunity: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing archive: %w", err)
	}

	return nil
}

func (s *Store) ListArchived(ctx context.Context, page, limit int) ([]*sale.ArchivedOpportunity, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM archived_opportunities").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting archived opportunities: %w", err)
	}

	query := `
		SELECT ao.id, ao.original_opportunity_id, ao.title, ao.client_name,
			ao.estimated_value, COALESCE(ao.reason_lost, ''),
			COALESCE(ao.detailed_reason, ''), COALESCE(ao.competitor, ''),
			COALESCE(ao.lessons_learned, ''), ao.archived_by,
			COALESCE(u.full_name, ''), ao.archived_at, ao.original_data
		FROM archived_opportunities ao
		LEFT JOIN users u ON ao.archived_by = u.id
		ORDER BY ao.archived_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.db.QueryContext(ctx, query, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("listing archived opportunities: %w", err)
	}
	defer rows.Close()

	var archived []*sale.ArchivedOpportunity

	for rows.Next() {
		var a sale.ArchivedOpportunity

		if err := rows.Scan(
			&a.ID, &a.OriginalOpportunityID, &a.Title, &a.ClientName,
			&a.EstimatedValue, &a.ReasonLost, &a.DetailedReason, &a.Competitor,
			&a.LessonsLearned, &a.ArchivedBy, &a.ArchivedByName, &a.ArchivedAt,
			(*[]byte)(&a.OriginalData),
		); err != nil {
			return nil, 0, fmt.Errorf("scanning archived opportunity: %w", err)
		}

		archived = append(archived, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating archived opportunity rows: %w", err)
	}

	return archived, total, nil
}
