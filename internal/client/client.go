package client

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("client not found")

// Type is the client's role in the contracting chain.
type Type string

const (
	TypeOwner          Type = "owner"
	TypeMainContractor Type = "main_contractor"
	TypeConsultant     Type = "consultant"
)

// Department groups a contact inside the client's organisation.
type Department string

const (
	DepartmentAccounts    Department = "accounts"
	DepartmentEngineering Department = "engineering"
	DepartmentManagement  Department = "management"
	DepartmentOther       Department = "other"
)

// Client is a contracting party. Contacts are owned by value and stored as a
// JSON document with the row.
type Client struct {
	ID        uuid.UUID
	Name      string
	Type      Type
	Phone     string
	Email     string
	Address   string
	Contacts  []Contact
	CreatedBy *uuid.UUID
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// Contact is a person at the client. At most one contact per client carries
// IsMainContact.
type Contact struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Position      string     `json:"position"`
	Department    Department `json:"department"`
	Phone         string     `json:"phone,omitempty"`
	Email         string     `json:"email,omitempty"`
	IsMainContact bool       `json:"isMainContact"`
}
