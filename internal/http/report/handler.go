package report

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mecdoors/siteledger/internal/operation"
	"github.com/mecdoors/siteledger/internal/report"
)

type Handler struct {
	svc *report.Service
}

func NewHandler(svc *report.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/dashboard", h.dashboard)
	r.Get("/comprehensive", h.comprehensive)
	r.Get("/financial", h.financial)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Dashboard(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

type summaryResponse struct {
	ContractTotal   int64            `json:"contractTotal"`
	ExecutedTotal   int64            `json:"executedTotal"`
	TotalDeductions int64            `json:"totalDeductions"`
	NetAmount       int64            `json:"netAmount"`
	TotalReceived   int64            `json:"totalReceived"`
	NetDue          int64            `json:"netDue"`
	ExecutionPct    float64          `json:"executionPct"`
	Status          operation.Status `json:"status"`
}

func toSummaryResponse(sum operation.Summary) summaryResponse {
	return summaryResponse{
		ContractTotal:   sum.ContractTotal,
		ExecutedTotal:   sum.ExecutedTotal,
		TotalDeductions: sum.TotalDeductions,
		NetAmount:       sum.NetAmount,
		TotalReceived:   sum.TotalReceived,
		NetDue:          sum.NetDue,
		ExecutionPct:    sum.ExecutionPct,
		Status:          sum.Status,
	}
}

type operationSummaryRow struct {
	ID        uuid.UUID       `json:"id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	ClientID  uuid.UUID       `json:"clientId"`
	CreatedAt time.Time       `json:"createdAt"`
	Summary   summaryResponse `json:"summary"`
}

type comprehensiveResponse struct {
	Operations  []operationSummaryRow    `json:"operations"`
	Summary     report.PortfolioSummary  `json:"summary"`
	ClientStats []report.ClientAggregate `json:"clientStats"`
}

func (h *Handler) comprehensive(w http.ResponseWriter, r *http.Request) {
	filter := report.ComprehensiveFilter{}

	q := r.URL.Query()

	if s := q.Get("start_date"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			http.Error(w, "invalid start_date", http.StatusBadRequest)
			return
		}

		filter.Start = &t
	}

	if s := q.Get("end_date"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			http.Error(w, "invalid end_date", http.StatusBadRequest)
			return
		}

		filter.End = &t
	}

	if s := q.Get("client_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			http.Error(w, "invalid client_id", http.StatusBadRequest)
			return
		}

		filter.ClientID = &id
	}

	rep, err := h.svc.Comprehensive(r.Context(), filter)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := comprehensiveResponse{
		Operations:  make([]operationSummaryRow, len(rep.Operations)),
		Summary:     rep.Summary,
		ClientStats: rep.ClientStats,
	}

	for i, row := range rep.Operations {
		resp.Operations[i] = operationSummaryRow{
			ID:        row.Operation.ID,
			Code:      row.Operation.Code,
			Name:      row.Operation.Name,
			ClientID:  row.Operation.ClientID,
			CreatedAt: row.Operation.CreatedAt,
			Summary:   toSummaryResponse(row.Summary),
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) financial(w http.ResponseWriter, r *http.Request) {
	period := report.Period(r.URL.Query().Get("period"))
	if period == "" {
		period = report.PeriodMonth
	}

	buckets, err := h.svc.Financial(r.Context(), period)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, buckets)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
