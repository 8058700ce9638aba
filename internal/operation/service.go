package operation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=operation
type Repository interface {
	CreateOperation(ctx context.Context, op *Operation) error
	GetOperation(ctx context.Context, id uuid.UUID) (*Operation, error)
	UpdateOperation(ctx context.Context, op *Operation) error
	DeleteOperation(ctx context.Context, id uuid.UUID) error
	ListOperations(ctx context.Context, filter ListFilter) ([]*Operation, int, error)
}

// ListFilter narrows and pages ListOperations. Page is 1-based.
type ListFilter struct {
	ClientID *uuid.UUID
	Status   *Status
	Page     int
	Limit    int
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Code       string // generated from the names when empty
	Name       string
	ClientID   uuid.UUID
	ClientName string
	CreatedBy  *uuid.UUID
	Items      []ItemParams
}

type ItemParams struct {
	Description         string
	Amount              int64
	ContractNumber      string
	ContractDate        *time.Time
	ExecutionPercentage float64
}

type DeductionParams struct {
	Name     string
	Type     DeductionType
	Value    float64
	IsActive bool
}

type PaymentParams struct {
	Type        PaymentType
	Amount      int64
	Date        time.Time
	CheckNumber string
	Bank        string
	ReceiptDate *time.Time
	Notes       string
}

type GuaranteeCheckParams struct {
	CheckNumber   string
	Amount        int64
	CheckDate     time.Time
	DeliveryDate  time.Time
	ExpiryDate    time.Time
	Bank          string
	RelatedTo     RelatedTo
	RelatedItemID *uuid.UUID
}

type GuaranteeLetterParams struct {
	Bank          string
	LetterDate    time.Time
	LetterNumber  string
	Amount        int64
	DueDate       time.Time
	RelatedTo     RelatedTo
	RelatedItemID *uuid.UUID
	Notes         string
}

type RenewalParams struct {
	RenewalDate time.Time
	NewDueDate  time.Time
	Notes       string
}

type WarrantyParams struct {
	CertificateNumber    string
	IssueDate            time.Time
	StartDate            time.Time
	EndDate              time.Time
	WarrantyPeriodMonths int
	Description          string
	RelatedTo            RelatedTo
	RelatedItemID        *uuid.UUID
	Notes                string
}

// Create builds a new operation with its initial line items, derives every
// financial figure and persists it. At least one item is required.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Operation, error) {
	if len(params.Items) == 0 {
		return nil, fmt.Errorf("operation needs at least one item: %w", ErrInvalidInput)
	}

	code := params.Code
	if code == "" {
		code = NewOperationCode(params.ClientName, params.Name, time.Now())
	}

	op := &Operation{
		Code:      code,
		Name:      params.Name,
		ClientID:  params.ClientID,
		CreatedBy: params.CreatedBy,
	}

	now := time.Now()
	for i, p := range params.Items {
		op.Items = append(op.Items, LineItem{
			ID:                  uuid.New(),
			Code:                ItemCode(code, i),
			Description:         p.Description,
			Amount:              p.Amount,
			ContractNumber:      p.ContractNumber,
			ContractDate:        p.ContractDate,
			ExecutionPercentage: p.ExecutionPercentage,
			AddedAt:             now,
		})
	}

	if err := s.refresh(op); err != nil {
		return nil, err
	}

	if err := s.repo.CreateOperation(ctx, op); err != nil {
		return nil, err
	}

	return op, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Operation, error) {
	return s.repo.GetOperation(ctx, id)
}

// List returns a page of operations plus the total match count.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Operation, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}

	return s.repo.ListOperations(ctx, filter)
}

// Update replaces the operation's mutable fields wholesale and re-derives the
// cached figures before persisting. The incoming status and totals are
// ignored; the engine is the only authority for them.
func (s *Service) Update(ctx context.Context, op *Operation) error {
	if err := s.refresh(op); err != nil {
		return err
	}

	return s.repo.UpdateOperation(ctx, op)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteOperation(ctx, id)
}

// Summary re-derives the full financial summary for one operation.
func (s *Service) Summary(ctx context.Context, id uuid.UUID) (Summary, error) {
	op, err := s.repo.GetOperation(ctx, id)
	if err != nil {
		return Summary{}, err
	}

	return Summarize(op), nil
}

func (s *Service) AddItem(ctx context.Context, opID uuid.UUID, params ItemParams) (*Operation, error) {
	return s.mutate(ctx, opID, func(op *Operation) error {
		op.Items = append(op.Items, LineItem{
			ID:                  uuid.New(),
			Code:                ItemCode(op.Code, len(op.Items)),
			Description:         params.Description,
			Amount:              params.Amount,
			ContractNumber:      params.ContractNumber,
			ContractDate:        params.ContractDate,
			ExecutionPercentage: params.ExecutionPercentage,
			AddedAt:             time.Now(),
		})

		return nil
	})
}

// RemoveItem deletes a line item and renumbers the remaining codes so they
// stay contiguous.
func (s *Service) RemoveItem(ctx context.Context, opID, itemID uuid.UUID) (*Operation, error) {
	return s.mutate(ctx, opID, func(op *Operation) error {
		idx := itemIndex(op.Items, itemID)
		if idx < 0 {
			return fmt.Errorf("item %s: %w", itemID, ErrNotFound)
		}

		op.Items = append(op.Items[:idx], op.Items[idx+1:]...)
		RenumberItems(op.Code, op.Items)

		return nil
	})
}

func (s *Service) SetItemExecution(ctx context.Context, opID, itemID uuid.UUID, pct float64) (*Operation, error) {
	return s.mutate(ctx, opID, func(op *Operation) error {
		idx := itemIndex(op.Items, itemID)
		if idx < 0 {
			return fmt.Errorf("item %s: %w", itemID, ErrNotFound)
		}

		op.Items[idx].ExecutionPercentage = pct

		return nil
	})
}

func (s *Service) AddDeduction(ctx context.Context, opID uuid.UUID, params DeductionParams) (*Operation, error) {
	return s.mutate(ctx, opID, func(op *Operation) error {
		op.Deductions = append(op.Deductions, Deduction{
			ID:       uuid.New(),
			Name:     params.Name,
			Type:     params.Type,
			Value:    params.Value,
			IsActive: params.IsActive,
		})

		return nil
	})
}

func (s *Service) SetDeductionActive(ctx context.Context, opID, deductionID uuid.UUID, active bool) (*Operation, error) {
	return s.mutate(ctx, opID, func(op *Operation) error {
		for i := range op.Deductions {
			if op.Deductions[i].ID == deductionID {
				op.Deductions[i].IsActive = active
				return nil
			}
		}

		return fmt.Errorf("deduction %s: %w", deductionID, ErrNotFound)
	})
}

func (s *Service) AddPayment(ctx context.Context, opID uuid.UUID, params PaymentParams) (*Operation, error) {
	return s.mutate(ctx, opID, func(op *Operation) error {
		op.ReceivedPayments = append(op.ReceivedPayments, ReceivedPayment{
			ID:          uuid.New(),
			Type:        params.Type,
			Amount:      params.Amount,
			Date:        params.Date,
			CheckNumber: params.CheckNumber,
			Bank:        params.Bank,
			ReceiptDate: params.ReceiptDate,
			Notes:       params.Notes,
		})

		return nil
	})
}

func (s *Service) AddGuaranteeCheck(ctx context.Context, opID uuid.UUID, params GuaranteeCheckParams) (*Operation, error) {
	return s.mutate(ctx, opID, func(op *Operation) error {
		op.GuaranteeChecks = append(op.GuaranteeChecks, GuaranteeCheck{
			ID:            uuid.New(),
			CheckNumber:   params.CheckNumber,
			Amount:        params.Amount,
			CheckDate:     params.CheckDate,
			DeliveryDate:  params.DeliveryDate,
			ExpiryDate:    params.ExpiryDate,
			Bank:          params.Bank,
			RelatedTo:     params.RelatedTo,
			RelatedItemID: params.RelatedItemID,
		})

		return nil
	})
}

func (s *Service) ReturnGuaranteeCheck(ctx context.Context, opID, checkID uuid.UUID, returnDate time.Time) (*Operation, error) {
	return s.mutate(ctx, opID, func(op *Operation) error {
		for i := range op.GuaranteeChecks {
			if op.GuaranteeChecks[i].ID == checkID {
				op.GuaranteeChecks[i].IsReturned = true
				op.GuaranteeChecks[i].ReturnDate = &returnDate

				return nil
			}
		}

		return fmt.Errorf("guarantee check %s: %w", checkID, ErrNotFound)
	})
}

func (s *Service) AddGuaranteeLetter(ctx context.Context, opID uuid.UUID, params GuaranteeLetterParams) (*Operation, error) {
	return s.mutate(ctx, opID, func(op *Operation) error {
		op.GuaranteeLetters = append(op.GuaranteeLetters, GuaranteeLetter{
			ID:            uuid.New(),
			Bank:          params.Bank,
			LetterDate:    params.LetterDate,
			LetterNumber:  params.LetterNumber,
			Amount:        params.Amount,
			DueDate:       params.DueDate,
			RelatedTo:     params.RelatedTo,
			RelatedItemID: params.RelatedItemID,
			Notes:         params.Notes,
		})

		return nil
	})
}

// RenewGuaranteeLetter appends a renewal and moves the letter's due date.
func (s *Service) RenewGuaranteeLetter(ctx context.Context, opID, letterID uuid.UUID, params RenewalParams) (*Operation, error) {
	return s.mutate(ctx, opID, func(op *Operation) error {
		for i := range op.GuaranteeLetters {
			if op.GuaranteeLetters[i].ID != letterID {
				continue
			}

			op.GuaranteeLetters[i].Renewals = append(op.GuaranteeLetters[i].Renewals, LetterRenewal{
				ID:          uuid.New(),
				RenewalDate: params.RenewalDate,
				NewDueDate:  params.NewDueDate,
				Notes:       params.Notes,
			})
			op.GuaranteeLetters[i].DueDate = params.NewDueDate

			return nil
		}

		return fmt.Errorf("guarantee letter %s: %w", letterID, ErrNotFound)
	})
}

func (s *Service) ReturnGuaranteeLetter(ctx context.Context, opID, letterID uuid.UUID, returnDate time.Time) (*Operation, error) {
	return s.mutate(ctx, opID, func(op *Operation) error {
		for i := range op.GuaranteeLetters {
			if op.GuaranteeLetters[i].ID == letterID {
				op.GuaranteeLetters[i].IsReturned = true
				op.GuaranteeLetters[i].ReturnDate = &returnDate

				return nil
			}
		}

		return fmt.Errorf("guarantee letter %s: %w", letterID, ErrNotFound)
	})
}

func (s *Service) AddWarranty(ctx context.Context, opID uuid.UUID, params WarrantyParams) (*Operation, error) {
	return s.mutate(ctx, opID, func(op *Operation) error {
		op.WarrantyCertificates = append(op.WarrantyCertificates, WarrantyCertificate{
			ID:                   uuid.New(),
			CertificateNumber:    params.CertificateNumber,
			IssueDate:            params.IssueDate,
			StartDate:            params.StartDate,
			EndDate:              params.EndDate,
			WarrantyPeriodMonths: params.WarrantyPeriodMonths,
			Description:          params.Description,
			RelatedTo:            params.RelatedTo,
			RelatedItemID:        params.RelatedItemID,
			IsActive:             true,
			Notes:                params.Notes,
		})

		return nil
	})
}

// mutate loads the operation, applies the change, re-derives the cached
// figures and persists the result in one update. Derived fields are never
// written without being recomputed in the same call.
func (s *Service) mutate(ctx context.Context, opID uuid.UUID, apply func(*Operation) error) (*Operation, error) {
	op, err := s.repo.GetOperation(ctx, opID)
	if err != nil {
		return nil, err
	}

	if err := apply(op); err != nil {
		return nil, err
	}

	if err := s.refresh(op); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateOperation(ctx, op); err != nil {
		return nil, fmt.Errorf("updating operation %s: %w", opID, err)
	}

	return op, nil
}

// refresh validates the operation and rewrites its cached derived fields from
// a fresh Summary.
func (s *Service) refresh(op *Operation) error {
	if err := Validate(op); err != nil {
		return err
	}

	sum := Summarize(op)
	op.TotalAmount = sum.ContractTotal
	op.TotalReceived = sum.TotalReceived
	op.OverallExecutionPercentage = sum.ExecutionPct
	op.Status = sum.Status

	return nil
}

func itemIndex(items []LineItem, id uuid.UUID) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}

	return -1
}
