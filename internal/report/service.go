// Package report derives aggregate figures across operations and clients.
// Every financial number here is recomputed from the underlying documents;
// the cached columns on the operation rows are never trusted.
package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mecdoors/siteledger/internal/client"
	"github.com/mecdoors/siteledger/internal/operation"
)

const reportPageSize = 500

// OperationSource is the slice of operation.Repository the reports need.
type OperationSource interface {
	ListOperations(ctx context.Context, filter operation.ListFilter) ([]*operation.Operation, int, error)
}

// ClientSource is the slice of client.Repository the reports need.
type ClientSource interface {
	ListClients(ctx context.Context, filter client.ListFilter) ([]*client.Client, error)
}

type Service struct {
	operations OperationSource
	clients    ClientSource
	now        func() time.Time
}

func NewService(operations OperationSource, clients ClientSource) *Service {
	return &Service{
		operations: operations,
		clients:    clients,
		now:        time.Now,
	}
}

// DashboardStats is the front-page snapshot of the whole portfolio.
type DashboardStats struct {
	TotalOperations       int    `json:"totalOperations"`
	InProgress            int    `json:"inProgress"`
	Completed             int    `json:"completed"`
	TotalAmount           int64  `json:"totalAmount"`
	TotalReceived         int64  `json:"totalReceived"`
	TotalDeductions       int64  `json:"totalDeductions"`
	TotalNetAmount        int64  `json:"totalNetAmount"`
	OutstandingGuarantees int    `json:"outstandingGuarantees"`
	ActiveWarranties      int    `json:"activeWarranties"`
	TotalClients          int    `json:"totalClients"`
}

func (s *Service) Dashboard(ctx context.Context) (*DashboardStats, error) {
	ops, err := s.allOperations(ctx, operation.ListFilter{})
	if err != nil {
		return nil, err
	}

	clients, err := s.clients.ListClients(ctx, client.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}

	stats := &DashboardStats{
		TotalOperations: len(ops),
		TotalClients:    len(clients),
	}

	for _, op := range ops {
		sum := operation.Summarize(op)

		if sum.Status == operation.StatusInProgress {
			stats.InProgress++
		} else {
			stats.Completed++
		}

		stats.TotalAmount += sum.ContractTotal
		stats.TotalReceived += sum.TotalReceived
		stats.TotalDeductions += sum.TotalDeductions
		stats.TotalNetAmount += sum.NetAmount

		for _, gc := range op.GuaranteeChecks {
			if !gc.IsReturned {
				stats.OutstandingGuarantees++
			}
		}

		for _, gl := range op.GuaranteeLetters {
			if !gl.IsReturned {
				stats.OutstandingGuarantees++
			}
		}

		for _, w := range op.WarrantyCertificates {
			if w.IsActive {
				stats.ActiveWarranties++
			}
		}
	}

	return stats, nil
}

// ComprehensiveFilter narrows the comprehensive report by creation window
// and client.
type ComprehensiveFilter struct {
	Start    *time.Time
	End      *time.Time
	ClientID *uuid.UUID
}

// OperationRow is one operation in the comprehensive report with its figures
// recomputed.
type OperationRow struct {
	Operation *operation.Operation `json:"operation"`
	Summary   operation.Summary    `json:"summary"`
}

// ClientAggregate groups operation totals under one client.
type ClientAggregate struct {
	ClientID        uuid.UUID   `json:"clientId"`
	ClientName      string      `json:"clientName"`
	ClientType      client.Type `json:"clientType"`
	OperationsCount int         `json:"operationsCount"`
	TotalAmount     int64       `json:"totalAmount"`
	TotalReceived   int64       `json:"totalReceived"`
}

// ComprehensiveReport is the full portfolio breakdown for a window.
type ComprehensiveReport struct {
	Operations  []OperationRow    `json:"operations"`
	Summary     PortfolioSummary  `json:"summary"`
	ClientStats []ClientAggregate `json:"clientStats"`
}

// PortfolioSummary aggregates the window's operations.
type PortfolioSummary struct {
	TotalOperations int     `json:"totalOperations"`
	InProgress      int     `json:"inProgress"`
	Completed       int     `json:"completed"`
	TotalAmount     int64   `json:"totalAmount"`
	TotalReceived   int64   `json:"totalReceived"`
	AvgExecution    float64 `json:"avgExecution"`
}

func (s *Service) Comprehensive(ctx context.Context, filter ComprehensiveFilter) (*ComprehensiveReport, error) {
	listFilter := operation.ListFilter{ClientID: filter.ClientID}

	ops, err := s.allOperations(ctx, listFilter)
	if err != nil {
		return nil, err
	}

	ops = filterByWindow(ops, filter.Start, filter.End)

	clients, err := s.clients.ListClients(ctx, client.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}

	clientsByID := make(map[uuid.UUID]*client.Client, len(clients))
	for _, c := range clients {
		clientsByID[c.ID] = c
	}

	report := &ComprehensiveReport{
		Operations: make([]OperationRow, 0, len(ops)),
	}

	aggregates := make(map[uuid.UUID]*ClientAggregate)

	var execTotal float64

	for _, op := range ops {
		sum := operation.Summarize(op)
		report.Operations = append(report.Operations, OperationRow{Operation: op, Summary: sum})

		report.Summary.TotalOperations++

		if sum.Status == operation.StatusInProgress {
			report.Summary.InProgress++
		} else {
			report.Summary.Completed++
		}

		report.Summary.TotalAmount += sum.ContractTotal
		report.Summary.TotalReceived += sum.TotalReceived
		execTotal += sum.ExecutionPct

		agg, ok := aggregates[op.ClientID]
		if !ok {
			agg = &ClientAggregate{ClientID: op.ClientID}
			if c, known := clientsByID[op.ClientID]; known {
				agg.ClientName = c.Name
				agg.ClientType = c.Type
			}

			aggregates[op.ClientID] = agg
		}

		agg.OperationsCount++
		agg.TotalAmount += sum.ContractTotal
		agg.TotalReceived += sum.TotalReceived
	}

	if report.Summary.TotalOperations > 0 {
		report.Summary.AvgExecution = execTotal / float64(report.Summary.TotalOperations)
	}

	report.ClientStats = make([]ClientAggregate, 0, len(aggregates))
	for _, agg := range aggregates {
		report.ClientStats = append(report.ClientStats, *agg)
	}

	sort.Slice(report.ClientStats, func(i, j int) bool {
		return report.ClientStats[i].TotalAmount > report.ClientStats[j].TotalAmount
	})

	return report, nil
}

// Period selects the lookback window of the financial report.
type Period string

const (
	PeriodAll     Period = "all"
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
)

func (p Period) lookback() (time.Duration, error) {
	switch p {
	case PeriodWeek:
		return 7 * 24 * time.Hour, nil
	case PeriodMonth:
		return 30 * 24 * time.Hour, nil
	case PeriodQuarter:
		return 90 * 24 * time.Hour, nil
	case PeriodYear:
		return 365 * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("unknown report period %q", string(p))
	}
}

// OperationStats aggregates operations created within the period into one
// portfolio summary. PeriodAll covers everything.
func (s *Service) OperationStats(ctx context.Context, period Period) (*PortfolioSummary, error) {
	var start *time.Time

	if period != "" && period != PeriodAll {
		lookback, err := period.lookback()
		if err != nil {
			return nil, err
		}

		cutoff := s.now().Add(-lookback)
		start = &cutoff
	}

	ops, err := s.allOperations(ctx, operation.ListFilter{})
	if err != nil {
		return nil, err
	}

	ops = filterByWindow(ops, start, nil)

	summary := &PortfolioSummary{}

	var execTotal float64

	for _, op := range ops {
		sum := operation.Summarize(op)

		summary.TotalOperations++

		if sum.Status == operation.StatusInProgress {
			summary.InProgress++
		} else {
			summary.Completed++
		}

		summary.TotalAmount += sum.ContractTotal
		summary.TotalReceived += sum.TotalReceived
		execTotal += sum.ExecutionPct
	}

	if summary.TotalOperations > 0 {
		summary.AvgExecution = execTotal / float64(summary.TotalOperations)
	}

	return summary, nil
}

// FinancialBucket is one time slice of the financial report. Buckets are days
// except for the year period, which uses months.
type FinancialBucket struct {
	Period          time.Time `json:"period"`
	OperationsCount int       `json:"operationsCount"`
	TotalAmount     int64     `json:"totalAmount"`
	TotalReceived   int64     `json:"totalReceived"`
	AvgExecution    float64   `json:"avgExecution"`
}

func (s *Service) Financial(ctx context.Context, period Period) ([]FinancialBucket, error) {
	lookback, err := period.lookback()
	if err != nil {
		return nil, err
	}

	ops, err := s.allOperations(ctx, operation.ListFilter{})
	if err != nil {
		return nil, err
	}

	cutoff := s.now().Add(-lookback)

	type bucketAcc struct {
		FinancialBucket
		execTotal float64
	}

	buckets := make(map[time.Time]*bucketAcc)

	for _, op := range ops {
		if op.CreatedAt.Before(cutoff) {
			continue
		}

		key := truncateToBucket(op.CreatedAt, period)

		acc, ok := buckets[key]
		if !ok {
			acc = &bucketAcc{FinancialBucket: FinancialBucket{Period: key}}
			buckets[key] = acc
		}

		sum := operation.Summarize(op)
		acc.OperationsCount++
		acc.TotalAmount += sum.ContractTotal
		acc.TotalReceived += sum.TotalReceived
		acc.execTotal += sum.ExecutionPct
	}

	out := make([]FinancialBucket, 0, len(buckets))

	for _, acc := range buckets {
		if acc.OperationsCount > 0 {
			acc.AvgExecution = acc.execTotal / float64(acc.OperationsCount)
		}

		out = append(out, acc.FinancialBucket)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Period.After(out[j].Period) })

	return out, nil
}

// allOperations pages through the source until every row is loaded, so the
// reports stay correct past the first page.
func (s *Service) allOperations(ctx context.Context, filter operation.ListFilter) ([]*operation.Operation, error) {
	filter.Limit = reportPageSize

	var all []*operation.Operation

	for page := 1; ; page++ {
		filter.Page = page

		ops, total, err := s.operations.ListOperations(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("listing operations: %w", err)
		}

		all = append(all, ops...)

		if len(ops) == 0 || len(all) >= total {
			return all, nil
		}
	}
}

func filterByWindow(ops []*operation.Operation, start, end *time.Time) []*operation.Operation {
	if start == nil && end == nil {
		return ops
	}

	out := ops[:0]

	for _, op := range ops {
		if start != nil && op.CreatedAt.Before(*start) {
			continue
		}

		if end != nil && op.CreatedAt.After(*end) {
			continue
		}

		out = append(out, op)
	}

	return out
}

func truncateToBucket(t time.Time, period Period) time.Time {
	t = t.UTC()

	if period == PeriodYear {
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}

	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
