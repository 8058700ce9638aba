package sale

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/mecdoors/siteledger/internal/sale"
)

type opportunityResponse struct {
	ID                     uuid.UUID        `json:"id"`
	Title                  string           `json:"title"`
	Description            string           `json:"description,omitempty"`
	ClientID               *uuid.UUID       `json:"clientId,omitempty"`
	ClientName             string           `json:"clientName,omitempty"`
	PotentialClientName    string           `json:"potentialClientName,omitempty"`
	PotentialClientContact sale.ContactInfo `json:"potentialClientContact"`
	EstimatedValue         int64            `json:"estimatedValue"`
	Probability            int              `json:"probability"`
	Stage                  sale.Stage       `json:"stage"`
	Source                 string           `json:"source,omitempty"`
	AssignedTo             *uuid.UUID       `json:"assignedTo,omitempty"`
	AssignedToName         string           `json:"assignedToName,omitempty"`
	ExpectedCloseDate      *time.Time       `json:"expectedCloseDate,omitempty"`
	ActualCloseDate        *time.Time       `json:"actualCloseDate,omitempty"`
	Notes                  string           `json:"notes,omitempty"`
	Status                 sale.Status      `json:"status"`
	CreatedBy              *uuid.UUID       `json:"createdBy,omitempty"`
	CreatedAt              time.Time        `json:"createdAt"`
	UpdatedAt              *time.Time       `json:"updatedAt,omitempty"`
}

func toResponse(o *sale.Opportunity) opportunityResponse {
	return opportunityResponse{
		ID:                     o.ID,
		Title:                  o.Title,
		Description:            o.Description,
		ClientID:               o.ClientID,
		ClientName:             o.ClientName,
		PotentialClientName:    o.PotentialClientName,
		PotentialClientContact: o.PotentialClientContact,
		EstimatedValue:         o.EstimatedValue,
		Probability:            o.Probability,
		Stage:                  o.Stage,
		Source:                 o.Source,
		AssignedTo:             o.AssignedTo,
		AssignedToName:         o.AssignedToName,
		ExpectedCloseDate:      o.ExpectedCloseDate,
		ActualCloseDate:        o.ActualCloseDate,
		Notes:                  o.Notes,
		Status:                 o.Status,
		CreatedBy:              o.CreatedBy,
		CreatedAt:              o.CreatedAt,
		UpdatedAt:              o.UpdatedAt,
	}
}

type listResponse struct {
	Opportunities []opportunityResponse `json:"opportunities"`
	Total         int                   `json:"total"`
	Page          int                   `json:"page"`
	Limit         int                   `json:"limit"`
}

func toListResponse(opps []*sale.Opportunity, total, page, limit int) listResponse {
	resp := listResponse{
		Opportunities: make([]opportunityResponse, len(opps)),
		Total:         total,
		Page:          page,
		Limit:         limit,
	}

	for i, o := range opps {
		resp.Opportunities[i] = toResponse(o)
	}

	return resp
}

type archivedResponse struct {
	ID                    uuid.UUID       `json:"id"`
	OriginalOpportunityID uuid.UUID       `json:"originalOpportunityId"`
	Title                 string          `json:"title"`
	ClientName            string          `json:"clientName"`
	EstimatedValue        int64           `json:"estimatedValue"`
	ReasonLost            string          `json:"reasonLost,omitempty"`
	DetailedReason        string          `json:"detailedReason,omitempty"`
	Competitor            string          `json:"competitor,omitempty"`
	LessonsLearned        string          `json:"lessonsLearned,omitempty"`
	ArchivedBy            *uuid.UUID      `json:"archivedBy,omitempty"`
	ArchivedByName        string          `json:"archivedByName,omitempty"`
	ArchivedAt            time.Time       `json:"archivedAt"`
	OriginalData          json.RawMessage `json:"originalData,omitempty"`
}

type archivedListResponse struct {
	Archived []archivedResponse `json:"archived"`
	Total    int                `json:"total"`
	Page     int                `json:"page"`
	Limit    int                `json:"limit"`
}

func toArchivedListResponse(archived []*sale.ArchivedOpportunity, total, page, limit int) archivedListResponse {
	resp := archivedListResponse{
		Archived: make([]archivedResponse, len(archived)),
		Total:    total,
		Page:     page,
		Limit:    limit,
	}

	for i, a := range archived {
		resp.Archived[i] = archivedResponse{
			ID:                    a.ID,
			OriginalOpportunityID: a.OriginalOpportunityID,
			Title:                 a.Title,
			ClientName:            a.ClientName,
			EstimatedValue:        a.EstimatedValue,
			ReasonLost:            a.ReasonLost,
			DetailedReason:        a.DetailedReason,
			Competitor:            a.Competitor,
			LessonsLearned:        a.LessonsLearned,
			ArchivedBy:            a.ArchivedBy,
			ArchivedByName:        a.ArchivedByName,
			ArchivedAt:            a.ArchivedAt,
			OriginalData:          a.OriginalData,
		}
	}

	return resp
}
