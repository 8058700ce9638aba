// Package export produces and restores full-database backups and renders the
// comprehensive report as CSV.
package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/mecdoors/siteledger/internal/client"
	"github.com/mecdoors/siteledger/internal/operation"
	"github.com/mecdoors/siteledger/internal/report"
	"github.com/mecdoors/siteledger/internal/sale"
)

// BackupVersion is written into every snapshot and checked on import.
const BackupVersion = "2.0"

const snapshotPageSize = 500

// DefaultCurrency labels money columns in the CSV output.
const DefaultCurrency = "EGP"

type OperationStore interface {
	ListOperations(ctx context.Context, filter operation.ListFilter) ([]*operation.Operation, int, error)
	CreateOperation(ctx context.Context, op *operation.Operation) error
}

type ClientStore interface {
	ListClients(ctx context.Context, filter client.ListFilter) ([]*client.Client, error)
	CreateClient(ctx context.Context, c *client.Client) error
}

type SaleStore interface {
	ListOpportunities(ctx context.Context, filter sale.ListFilter) ([]*sale.Opportunity, int, error)
	CreateOpportunity(ctx context.Context, o *sale.Opportunity) error
}

type Service struct {
	operations OperationStore
	clients    ClientStore
	sales      SaleStore
	reports    *report.Service
	now        func() time.Time
}

func NewService(operations OperationStore, clients ClientStore, sales SaleStore, reports *report.Service) *Service {
	return &Service{
		operations: operations,
		clients:    clients,
		sales:      sales,
		reports:    reports,
		now:        time.Now,
	}
}

// Backup is the full-database snapshot written by the JSON export.
type Backup struct {
	Operations []*operation.Operation `json:"operations"`
	Clients    []*client.Client       `json:"clients"`
	Sales      []*sale.Opportunity    `json:"sales"`
	ExportDate time.Time              `json:"exportDate"`
	Version    string                 `json:"version"`
}

// Snapshot collects every operation, client and sales opportunity.
func (s *Service) Snapshot(ctx context.Context) (*Backup, error) {
	backup := &Backup{
		ExportDate: s.now().UTC(),
		Version:    BackupVersion,
	}

	for page := 1; ; page++ {
		ops, total, err := s.operations.ListOperations(ctx, operation.ListFilter{Page: page, Limit: snapshotPageSize})
		if err != nil {
			return nil, fmt.Errorf("listing operations: %w", err)
		}

		backup.Operations = append(backup.Operations, ops...)

		if len(ops) == 0 || len(backup.Operations) >= total {
			break
		}
	}

	clients, err := s.clients.ListClients(ctx, client.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}

	backup.Clients = clients

	for page := 1; ; page++ {
		sales, total, err := s.sales.ListOpportunities(ctx, sale.ListFilter{Page: page, Limit: snapshotPageSize})
		if err != nil {
			return nil, fmt.Errorf("listing opportunities: %w", err)
		}

		backup.Sales = append(backup.Sales, sales...)

		if len(sales) == 0 || len(backup.Sales) >= total {
			break
		}
	}

	return backup, nil
}

// WriteJSON streams the snapshot to w.
func (s *Service) WriteJSON(ctx context.Context, w io.Writer) error {
	backup, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(backup); err != nil {
		return fmt.Errorf("encoding backup: %w", err)
	}

	return nil
}

// ImportStats reports what a restore created.
type ImportStats struct {
	Clients    int `json:"clients"`
	Operations int `json:"operations"`
	Sales      int `json:"sales"`
}

// Import restores a snapshot. Clients are created first so operations can
// reference them. Rows that collide with existing unique keys fail the
// import; restores are meant for empty databases.
func (s *Service) Import(ctx context.Context, r io.Reader) (*ImportStats, error) {
	var backup Backup

	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return nil, fmt.Errorf("decoding backup: %w", err)
	}

	if backup.Version != BackupVersion {
		return nil, fmt.Errorf("unsupported backup version %q", backup.Version)
	}

	stats := &ImportStats{}

	for _, c := range backup.Clients {
		if err := s.clients.CreateClient(ctx, c); err != nil {
			return nil, fmt.Errorf("restoring client %q: %w", c.Name, err)
		}

		stats.Clients++
	}

	for _, op := range backup.Operations {
		if err := s.operations.CreateOperation(ctx, op); err != nil {
			return nil, fmt.Errorf("restoring operation %q: %w", op.Code, err)
		}

		stats.Operations++
	}

	for _, o := range backup.Sales {
		if err := s.sales.CreateOpportunity(ctx, o); err != nil {
			return nil, fmt.Errorf("restoring opportunity %q: %w", o.Title, err)
		}

		stats.Sales++
	}

	return stats, nil
}

var csvHeader = []string{
	"Code", "Name", "Client", "Contract Total", "Executed Total",
	"Deductions", "Net Amount", "Received", "Net Due",
	"Execution %", "Status", "Created",
}

// WriteCSV renders the comprehensive report for the given window as CSV.
func (s *Service) WriteCSV(ctx context.Context, w io.Writer, filter report.ComprehensiveFilter) error {
	rep, err := s.reports.Comprehensive(ctx, filter)
	if err != nil {
		return err
	}

	clientNames := make(map[string]string, len(rep.ClientStats))
	for _, cs := range rep.ClientStats {
		clientNames[cs.ClientID.String()] = cs.ClientName
	}

	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, row := range rep.Operations {
		op := row.Operation
		sum := row.Summary

		record := []string{
			op.Code,
			op.Name,
			clientNames[op.ClientID.String()],
			FormatMoney(sum.ContractTotal, DefaultCurrency),
			FormatMoney(sum.ExecutedTotal, DefaultCurrency),
			FormatMoney(sum.TotalDeductions, DefaultCurrency),
			FormatMoney(sum.NetAmount, DefaultCurrency),
			FormatMoney(sum.TotalReceived, DefaultCurrency),
			FormatMoney(sum.NetDue, DefaultCurrency),
			strconv.FormatFloat(sum.ExecutionPct, 'f', 1, 64),
			string(sum.Status),
			FormatDate(op.CreatedAt),
		}

		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}

	return nil
}
