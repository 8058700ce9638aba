package client

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=client
type Repository interface {
	CreateClient(ctx context.Context, c *Client) error
	GetClient(ctx context.Context, id uuid.UUID) (*Client, error)
	UpdateClient(ctx context.Context, c *Client) error
	DeleteClient(ctx context.Context, id uuid.UUID) error
	ListClients(ctx context.Context, filter ListFilter) ([]*Client, error)
}

// ListFilter narrows ListClients. Search matches the client name.
type ListFilter struct {
	Type   *Type
	Search string
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Name      string
	Type      Type
	Phone     string
	Email     string
	Address   string
	Contacts  []Contact
	CreatedBy *uuid.UUID
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Client, error) {
	if params.Name == "" {
		return nil, fmt.Errorf("client name is required")
	}

	contacts := params.Contacts
	for i := range contacts {
		if contacts[i].ID == uuid.Nil {
			contacts[i].ID = uuid.New()
		}
	}

	if err := validateContacts(contacts); err != nil {
		return nil, err
	}

	c := &Client{
		Name:      params.Name,
		Type:      params.Type,
		Phone:     params.Phone,
		Email:     params.Email,
		Address:   params.Address,
		Contacts:  contacts,
		CreatedBy: params.CreatedBy,
	}
	if c.Type == "" {
		c.Type = TypeOwner
	}

	if err := s.repo.CreateClient(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Client, error) {
	return s.repo.GetClient(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Client, error) {
	return s.repo.ListClients(ctx, filter)
}

func (s *Service) Update(ctx context.Context, c *Client) error {
	if err := validateContacts(c.Contacts); err != nil {
		return err
	}

	for i := range c.Contacts {
		if c.Contacts[i].ID == uuid.Nil {
			c.Contacts[i].ID = uuid.New()
		}
	}

	return s.repo.UpdateClient(ctx, c)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteClient(ctx, id)
}

func validateContacts(contacts []Contact) error {
	mains := 0
	for _, c := range contacts {
		if c.IsMainContact {
			mains++
		}
	}

	if mains > 1 {
		return fmt.Errorf("client can have at most one main contact, got %d", mains)
	}

	return nil
}
