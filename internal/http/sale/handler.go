package sale

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	httpauth "github.com/mecdoors/siteledger/internal/http/auth"
	"github.com/mecdoors/siteledger/internal/sale"
)

type Handler struct {
	svc *sale.Service
}

func NewHandler(svc *sale.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/opportunities", h.create)
	r.Get("/opportunities", h.list)
	r.Get("/opportunities/{id}", h.get)
	r.Put("/opportunities/{id}", h.update)
	r.Post("/opportunities/{id}/archive", h.archive)
	r.Get("/archived", h.listArchived)
}

type createRequest struct {
	Title                  string           `json:"title"`
	Description            string           `json:"description"`
	ClientID               *uuid.UUID       `json:"clientId"`
	PotentialClientName    string           `json:"potentialClientName"`
	PotentialClientContact sale.ContactInfo `json:"potentialClientContact"`
	EstimatedValue         int64            `json:"estimatedValue"`
	Probability            int              `json:"probability"`
	Stage                  sale.Stage       `json:"stage"`
	Source                 string           `json:"source"`
	AssignedTo             *uuid.UUID       `json:"assignedTo"`
	ExpectedCloseDate      *time.Time       `json:"expectedCloseDate"`
	Notes                  string           `json:"notes"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	params := sale.CreateParams{
		Title:                  req.Title,
		Description:            req.Description,
		ClientID:               req.ClientID,
		PotentialClientName:    req.PotentialClientName,
		PotentialClientContact: req.PotentialClientContact,
		EstimatedValue:         req.EstimatedValue,
		Probability:            req.Probability,
		Stage:                  req.Stage,
		Source:                 req.Source,
		AssignedTo:             req.AssignedTo,
		ExpectedCloseDate:      req.ExpectedCloseDate,
		Notes:                  req.Notes,
	}

	if u := httpauth.CurrentUser(r.Context()); u != nil {
		params.CreatedBy = &u.ID
	}

	o, err := h.svc.Create(r.Context(), params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(o))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := sale.ListFilter{}

	q := r.URL.Query()

	if s := q.Get("status"); s != "" {
		filter.Status = new(sale.Status(s))
	}

	if s := q.Get("stage"); s != "" {
		filter.Stage = new(sale.Stage(s))
	}

	if s := q.Get("assigned_to"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			http.Error(w, "invalid assigned_to", http.StatusBadRequest)
			return
		}

		filter.AssignedTo = &id
	}

	filter.Page, filter.Limit = pagination(r)

	opps, total, err := h.svc.List(r.Context(), filter)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toListResponse(opps, total, filter.Page, filter.Limit))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	o, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, sale.ErrNotFound) {
			http.Error(w, "opportunity not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusOK, toResponse(o))
}

type updateRequest struct {
	Title                  *string           `json:"title,omitempty"`
	Description            *string           `json:"description,omitempty"`
	ClientID               *uuid.UUID        `json:"clientId,omitempty"`
	PotentialClientName    *string           `json:"potentialClientName,omitempty"`
	PotentialClientContact *sale.ContactInfo `json:"potentialClientContact,omitempty"`
	EstimatedValue         *int64            `json:"estimatedValue,omitempty"`
	Probability            *int              `json:"probability,omitempty"`
	Stage                  *sale.Stage       `json:"stage,omitempty"`
	Source                 *string           `json:"source,omitempty"`
	AssignedTo             *uuid.UUID        `json:"assignedTo,omitempty"`
	ExpectedCloseDate      *time.Time        `json:"expectedCloseDate,omitempty"`
	ActualCloseDate        *time.Time        `json:"actualCloseDate,omitempty"`
	Notes                  *string           `json:"notes,omitempty"`
	Status                 *sale.Status      `json:"status,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	o, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, sale.ErrNotFound) {
			http.Error(w, "opportunity not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	applyUpdate(o, req)

	if err := h.svc.Update(r.Context(), o); err != nil {
		if errors.Is(err, sale.ErrNotFound) {
			http.Error(w, "opportunity not found", http.StatusNotFound)
			return
		}

		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	writeJSON(w, http.StatusOK, toResponse(o))
}

func applyUpdate(o *sale.Opportunity, req updateRequest) {
	if req.Title != nil {
		o.Title = *req.Title
	}

	if req.Description != nil {
		o.Description = *req.Description
	}

	if req.ClientID != nil {
		o.ClientID = req.ClientID
	}

	if req.PotentialClientName != nil {
		o.PotentialClientName = *req.PotentialClientName
	}

	if req.PotentialClientContact != nil {
		o.PotentialClientContact = *req.PotentialClientContact
	}

	if req.EstimatedValue != nil {
		o.EstimatedValue = *req.EstimatedValue
	}

	if req.Probability != nil {
		o.Probability = *req.Probability
	}

	if req.Stage != nil {
		o.Stage = *req.Stage
	}

	if req.Source != nil {
		o.Source = *req.Source
	}

	if req.AssignedTo != nil {
		o.AssignedTo = req.AssignedTo
	}

	if req.ExpectedCloseDate != nil {
		o.ExpectedCloseDate = req.ExpectedCloseDate
	}

	if req.ActualCloseDate != nil {
		o.ActualCloseDate = req.ActualCloseDate
	}

	if req.Notes != nil {
		o.Notes = *req.Notes
	}

	if req.Status != nil {
		o.Status = *req.Status
	}
}

type archiveRequest struct {
	ReasonLost     string `json:"reasonLost"`
	DetailedReason string `json:"detailedReason"`
	Competitor     string `json:"competitor"`
	LessonsLearned string `json:"lessonsLearned"`
}

func (h *Handler) archive(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req archiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	params := sale.ArchiveParams{
		ReasonLost:     req.ReasonLost,
		DetailedReason: req.DetailedReason,
		Competitor:     req.Competitor,
		LessonsLearned: req.LessonsLearned,
	}

	if u := httpauth.CurrentUser(r.Context()); u != nil {
		params.ArchivedBy = &u.ID
	}

	if err := h.svc.Archive(r.Context(), id, params); err != nil {
		if errors.Is(err, sale.ErrNotFound) {
			http.Error(w, "opportunity not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listArchived(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r)

	archived, total, err := h.svc.ListArchived(r.Context(), page, limit)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toArchivedListResponse(archived, total, page, limit))
}

func pagination(r *http.Request) (page, limit int) {
	page, limit = 1, 50

	if s := r.URL.Query().Get("page"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			page = n
		}
	}

	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}

	return page, limit
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
