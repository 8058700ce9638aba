package client

import (
	"time"

	"github.com/google/uuid"

	"github.com/mecdoors/siteledger/internal/client"
)

type clientResponse struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	Type      client.Type      `json:"type"`
	Phone     string           `json:"phone,omitempty"`
	Email     string           `json:"email,omitempty"`
	Address   string           `json:"address,omitempty"`
	Contacts  []client.Contact `json:"contacts"`
	CreatedBy *uuid.UUID       `json:"createdBy,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt *time.Time       `json:"updatedAt,omitempty"`
}

func toResponse(c *client.Client) clientResponse {
	resp := clientResponse{
		ID:        c.ID,
		Name:      c.Name,
		Type:      c.Type,
		Phone:     c.Phone,
		Email:     c.Email,
		Address:   c.Address,
		Contacts:  c.Contacts,
		CreatedBy: c.CreatedBy,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}

	if resp.Contacts == nil {
		resp.Contacts = []client.Contact{}
	}

	return resp
}

func toResponseList(clients []*client.Client) []clientResponse {
	resp := make([]clientResponse, len(clients))
	for i, c := range clients {
		resp[i] = toResponse(c)
	}

	return resp
}
