package operation

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
	"github.com/mecdoors/siteledger/internal/operation"
	"github.com/mecdoors/siteledger/internal/report"
)

type Handler struct {
	svc     *operation.Service
	reports *report.Service
}

func NewHandler(svc *operation.Service, reports *report.Service) *Handler {
	return &Handler{svc: svc, reports: reports}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/stats/summary", h.stats)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Get("/{id}/summary", h.summary)

	r.Post("/{id}/items", h.addItem)
	r.Delete("/{id}/items/{itemID}", h.removeItem)
	r.Patch("/{id}/items/{itemID}/execution", h.setItemExecution)

	r.Post("/{id}/deductions", h.addDeduction)
	r.Patch("/{id}/deductions/{dedID}", h.setDeductionActive)

	r.Post("/{id}/payments", h.addPayment)

	r.Post("/{id}/guarantee-checks", h.addGuaranteeCheck)
	r.Patch("/{id}/guarantee-checks/{gcID}/return", h.returnGuaranteeCheck)

	r.Post("/{id}/guarantee-letters", h.addGuaranteeLetter)
	r.Post("/{id}/guarantee-letters/{glID}/renewals", h.renewGuaranteeLetter)
	r.Patch("/{id}/guarantee-letters/{glID}/return", h.returnGuaranteeLetter)

	r.Post("/{id}/warranties", h.addWarranty)
}

type itemRequest struct {
	Description         string     `json:"description"`
	Amount              int64      `json:"amount"`
	ContractNumber      string     `json:"contractNumber"`
	ContractDate        *time.Time `json:"contractDate"`
	ExecutionPercentage float64    `json:"executionPercentage"`
}

func (r itemRequest) toParams() operation.ItemParams {
	return operation.ItemParams{
		Description:         r.Description,
		Amount:              r.Amount,
		ContractNumber:      r.ContractNumber,
		ContractDate:        r.ContractDate,
		ExecutionPercentage: r.ExecutionPercentage,
	}
}

type createRequest struct {
	Code       string        `json:"code"`
	Name       string        `json:"name"`
	ClientID   uuid.UUID     `json:"clientId"`
	ClientName string        `json:"clientName"`
	Items      []itemRequest `json:"items"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	params := operation.CreateParams{
		Code:       req.Code,
		Name:       req.Name,
		ClientID:   req.ClientID,
		ClientName: req.ClientName,
		Items:      make([]operation.ItemParams, len(req.Items)),
	}
	for i, it := range req.Items {
		params.Items[i] = it.toParams()
	}

	if u := httpauth.CurrentUser(r.Context()); u != nil {
		params.CreatedBy = &u.ID
	}

	op, err := h.svc.Create(r.Context(), params)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(op))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := operation.ListFilter{}

	q := r.URL.Query()

	if s := q.Get("client_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			http.Error(w, "invalid client_id", http.StatusBadRequest)
			return
		}

		filter.ClientID = &id
	}

	if s := q.Get("status"); s != "" {
		filter.Status = new(operation.Status(s))
	}

	if s := q.Get("page"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			filter.Page = n
		}
	}

	if s := q.Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			filter.Limit = n
		}
	}

	ops, total, err := h.svc.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}

	if filter.Limit <= 0 {
		filter.Limit = 50
	}

	writeJSON(w, http.StatusOK, toListResponse(ops, total, filter.Page, filter.Limit))
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	period := report.Period(r.URL.Query().Get("period"))
	if period == "" {
		period = report.PeriodAll
	}

	stats, err := h.reports.OperationStats(r.Context(), period)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	op, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(op))
}

type updateRequest struct {
	Name     *string    `json:"name,omitempty"`
	ClientID *uuid.UUID `json:"clientId,omitempty"`
	Code     *string    `json:"code,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	op, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if req.Name != nil {
		op.Name = *req.Name
	}

	if req.ClientID != nil {
		op.ClientID = *req.ClientID
	}

	if req.Code != nil {
		op.Code = *req.Code
	}

	if err := h.svc.Update(r.Context(), op); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(op))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	sum, err := h.svc.Summary(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSummaryResponse(sum))
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	op, err := h.svc.AddItem(r.Context(), id, req.toParams())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(op))
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	itemID, ok := parseID(w, r, "itemID")
	if !ok {
		return
	}

	op, err := h.svc.RemoveItem(r.Context(), id, itemID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(op))
}

type executionRequest struct {
	ExecutionPercentage float64 `json:"executionPercentage"`
}

func (h *Handler) setItemExecution(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	itemID, ok := parseID(w, r, "itemID")
	if !ok {
		return
	}

	var req executionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	op, err := h.svc.SetItemExecution(r.Context(), id, itemID, req.ExecutionPercentage)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(op))
}

type deductionRequest struct {
	Name     string                  `json:"name"`
	Type     operation.DeductionType `json:"type"`
	Value    float64                 `json:"value"`
	IsActive bool                    `json:"isActive"`
}

func (h *Handler) addDeduction(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var req deductionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	op, err := h.svc.AddDeduction(r.Context(), id, operation.DeductionParams{
		Name:     req.Name,
		Type:     req.Type,
		Value:    req.Value,
		IsActive: req.IsActive,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(op))
}

type deductionActiveRequest struct {
	IsActive bool `json:"isActive"`
}

func (h *Handler) setDeductionActive(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	dedID, ok := parseID(w, r, "dedID")
	if !ok {
		return
	}

	var req deductionActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	op, err := h.svc.SetDeductionActive(r.Context(), id, dedID, req.IsActive)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(op))
}

type paymentRequest struct {
	Type        operation.PaymentType `json:"type"`
	Amount      int64                 `json:"amount"`
	Date        time.Time             `json:"date"`
	CheckNumber string                `json:"checkNumber"`
	Bank        string                `json:"bank"`
	ReceiptDate *time.Time            `json:"receiptDate"`
	Notes       string                `json:"notes"`
}

func (h *Handler) addPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	op, err := h.svc.AddPayment(r.Context(), id, operation.PaymentParams{
		Type:        req.Type,
		Amount:      req.Amount,
		Date:        req.Date,
		CheckNumber: req.CheckNumber,
		Bank:        req.Bank,
		ReceiptDate: req.ReceiptDate,
		Notes:       req.Notes,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(op))
}

type guaranteeCheckRequest struct {
	CheckNumber   string              `json:"checkNumber"`
	Amount        int64               `json:"amount"`
	CheckDate     time.Time           `json:"checkDate"`
	DeliveryDate  time.Time           `json:"deliveryDate"`
	ExpiryDate    time.Time           `json:"expiryDate"`
	Bank          string              `json:"bank"`
	RelatedTo     operation.RelatedTo `json:"relatedTo"`
	RelatedItemID *uuid.UUID          `json:"relatedItemId"`
}

func (h *Handler) addGuaranteeCheck(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var req guaranteeCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	op, err := h.svc.AddGuaranteeCheck(r.Context(), id, operation.GuaranteeCheckParams{
		CheckNumber:   req.CheckNumber,
		Amount:        req.Amount,
		CheckDate:     req.CheckDate,
		DeliveryDate:  req.DeliveryDate,
		ExpiryDate:    req.ExpiryDate,
		Bank:          req.Bank,
		RelatedTo:     req.RelatedTo,
		RelatedItemID: req.RelatedItemID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(op))
}

type returnRequest struct {
	ReturnDate time.Time `json:"returnDate"`
}

func (r returnRequest) date() time.Time {
	if r.ReturnDate.IsZero() {
		return time.Now().UTC()
	}

	return r.ReturnDate
}

func (h *Handler) returnGuaranteeCheck(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	gcID, ok := parseID(w, r, "gcID")
	if !ok {
		return
	}

	var req returnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	op, err := h.svc.ReturnGuaranteeCheck(r.Context(), id, gcID, req.date())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(op))
}

type guaranteeLetterRequest struct {
	Bank          string              `json:"bank"`
	LetterDate    time.Time           `json:"letterDate"`
	LetterNumber  string              `json:"letterNumber"`
	Amount        int64               `json:"amount"`
	DueDate       time.Time           `json:"dueDate"`
	RelatedTo     operation.RelatedTo `json:"relatedTo"`
	RelatedItemID *uuid.UUID          `json:"relatedItemId"`
	Notes         string              `json:"notes"`
}

func (h *Handler) addGuaranteeLetter(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var req guaranteeLetterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	op, err := h.svc.AddGuaranteeLetter(r.Context(), id, operation.GuaranteeLetterParams{
		Bank:          req.Bank,
		LetterDate:    req.LetterDate,
		LetterNumber:  req.LetterNumber,
		Amount:        req.Amount,
		DueDate:       req.DueDate,
		RelatedTo:     req.RelatedTo,
		RelatedItemID: req.RelatedItemID,
		Notes:         req.Notes,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(op))
}

type renewalRequest struct {
	RenewalDate time.Time `json:"renewalDate"`
	NewDueDate  time.Time `json:"newDueDate"`
	Notes       string    `json:"notes"`
}

func (h *Handler) renewGuaranteeLetter(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	glID, ok := parseID(w, r, "glID")
	if !ok {
		return
	}

	var req renewalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	op, err := h.svc.RenewGuaranteeLetter(r.Context(), id, glID, operation.RenewalParams{
		RenewalDate: req.RenewalDate,
		NewDueDate:  req.NewDueDate,
		Notes:       req.Notes,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(op))
}

func (h *Handler) returnGuaranteeLetter(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	glID, ok := parseID(w, r, "glID")
	if !ok {
		return
	}

	var req returnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	op, err := h.svc.ReturnGuaranteeLetter(r.Context(), id, glID, req.date())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(op))
}

type warrantyRequest struct {
	CertificateNumber    string              `json:"certificateNumber"`
	IssueDate            time.Time           `json:"issueDate"`
	StartDate            time.Time           `json:"startDate"`
	EndDate              time.Time           `json:"endDate"`
	WarrantyPeriodMonths int                 `json:"warrantyPeriodMonths"`
	Description          string              `json:"description"`
	RelatedTo            operation.RelatedTo `json:"relatedTo"`
	RelatedItemID        *uuid.UUID          `json:"relatedItemId"`
	Notes                string              `json:"notes"`
}

func (h *Handler) addWarranty(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var req warrantyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	op, err := h.svc.AddWarranty(r.Context(), id, operation.WarrantyParams{
		CertificateNumber:    req.CertificateNumber,
		IssueDate:            req.IssueDate,
		StartDate:            req.StartDate,
		EndDate:              req.EndDate,
		WarrantyPeriodMonths: req.WarrantyPeriodMonths,
		Description:          req.Description,
		RelatedTo:            req.RelatedTo,
		RelatedItemID:        req.RelatedItemID,
		Notes:                req.Notes,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(op))
}

func parseID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		http.Error(w, "invalid "+param, http.StatusBadRequest)
		return uuid.Nil, false
	}

	return id, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, operation.ErrNotFound):
		http.Error(w, "operation not found", http.StatusNotFound)
	case errors.Is(err, operation.ErrCodeExists):
		http.Error(w, "operation code already exists", http.StatusConflict)
	case errors.Is(err, operation.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
