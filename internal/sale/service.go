package sale

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=sale
type Repository interface {
	CreateOpportunity(ctx context.Context, o *Opportunity) error
	GetOpportunity(ctx context.Context, id uuid.UUID) (*Opportunity, error)
	UpdateOpportunity(ctx context.Context, o *Opportunity) error
	ListOpportunities(ctx context.Context, filter ListFilter) ([]*Opportunity, int, error)
	// ArchiveOpportunity snapshots the live row into the archive and deletes
	// it, atomically.
	ArchiveOpportunity(ctx context.Context, id uuid.UUID, params ArchiveParams) error
	ListArchived(ctx context.Context, page, limit int) ([]*ArchivedOpportunity, int, error)
}

type ListFilter struct {
	Status     *Status
	Stage      *Stage
	AssignedTo *uuid.UUID
	Page       int
	Limit      int
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Title                  string
	Description            string
	ClientID               *uuid.UUID
	PotentialClientName    string
	PotentialClientContact ContactInfo
	EstimatedValue         int64
	Probability            int
	Stage                  Stage
	Source                 string
	AssignedTo             *uuid.UUID
	ExpectedCloseDate      *time.Time
	Notes                  string
	CreatedBy              *uuid.UUID
}

// ArchiveParams records why an opportunity was lost.
type ArchiveParams struct {
	ReasonLost     string
	DetailedReason string
	Competitor     string
	LessonsLearned string
	ArchivedBy     *uuid.UUID
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Opportunity, error) {
	if params.Title == "" {
		return nil, fmt.Errorf("opportunity title is required")
	}

	if err := validateProbability(params.Probability); err != nil {
		return nil, err
	}

	o := &Opportunity{
		Title:                  params.Title,
		Description:            params.Description,
		ClientID:               params.ClientID,
		PotentialClientName:    params.PotentialClientName,
		PotentialClientContact: params.PotentialClientContact,
		EstimatedValue:         params.EstimatedValue,
		Probability:            params.Probability,
		Stage:                  params.Stage,
		Source:                 params.Source,
		AssignedTo:             params.AssignedTo,
		ExpectedCloseDate:      params.ExpectedCloseDate,
		Notes:                  params.Notes,
		Status:                 StatusActive,
		CreatedBy:              params.CreatedBy,
	}
	if o.Stage == "" {
		o.Stage = StageLead
	}

	if err := s.repo.CreateOpportunity(ctx, o); err != nil {
		return nil, err
	}

	return o, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Opportunity, error) {
	return s.repo.GetOpportunity(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Opportunity, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}

	return s.repo.ListOpportunities(ctx, filter)
}

func (s *Service) Update(ctx context.Context, o *Opportunity) error {
	if o.Title == "" {
		return fmt.Errorf("opportunity title is required")
	}

	if err := validateProbability(o.Probability); err != nil {
		return err
	}

	return s.repo.UpdateOpportunity(ctx, o)
}

func (s *Service) Archive(ctx context.Context, id uuid.UUID, params ArchiveParams) error {
	return s.repo.ArchiveOpportunity(ctx, id, params)
}

func (s *Service) ListArchived(ctx context.Context, page, limit int) ([]*ArchivedOpportunity, int, error) {
	if limit <= 0 {
		limit = 50
	}

	if page <= 0 {
		page = 1
	}

	return s.repo.ListArchived(ctx, page, limit)
}

func validateProbability(p int) error {
	if p < 0 || p > 100 {
		return fmt.Errorf("probability must be between 0 and 100, got %d", p)
	}

	return nil
}
