package sale

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("opportunity not found")

// Stage is the pipeline position of an opportunity.
type Stage string

const (
	StageLead        Stage = "lead"
	StageQualified   Stage = "qualified"
	StageProposal    Stage = "proposal"
	StageNegotiation Stage = "negotiation"
	StageWon         Stage = "won"
	StageLost        Stage = "lost"
)

// Status is the lifecycle state of an opportunity.
type Status string

const (
	StatusActive Status = "active"
	StatusWon    Status = "won"
	StatusLost   Status = "lost"
)

// ContactInfo identifies the prospect's contact before they become a client.
type ContactInfo struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// Opportunity is a potential project being pursued. EstimatedValue is in
// minor currency units. ClientName and AssignedToName are read-side joins,
// never written.
type Opportunity struct {
	ID                     uuid.UUID
	Title                  string
	Description            string
	ClientID               *uuid.UUID
	ClientName             string
	PotentialClientName    string
	PotentialClientContact ContactInfo
	EstimatedValue         int64
	Probability            int
	Stage                  Stage
	Source                 string
	AssignedTo             *uuid.UUID
	AssignedToName         string
	ExpectedCloseDate      *time.Time
	ActualCloseDate        *time.Time
	Notes                  string
	Status                 Status
	CreatedBy              *uuid.UUID
	CreatedAt              time.Time
	UpdatedAt              *time.Time
}

// ArchivedOpportunity is the loss record kept after an opportunity is
// archived. OriginalData holds the full opportunity row as it was at
// archive time.
type ArchivedOpportunity struct {
	ID                    uuid.UUID
	OriginalOpportunityID uuid.UUID
	Title                 string
	ClientName            string
	EstimatedValue        int64
	ReasonLost            string
	DetailedReason        string
	Competitor            string
	LessonsLearned        string
	ArchivedBy            *uuid.UUID
	ArchivedByName        string
	ArchivedAt            time.Time
	OriginalData          json.RawMessage
}
