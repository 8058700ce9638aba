package operation

import (
	"time"

	"github.com/google/uuid"

	"github.com/mecdoors/siteledger/internal/operation"
)

type operationResponse struct {
	ID                         uuid.UUID                       `json:"id"`
	Code                       string                          `json:"code"`
	Name                       string                          `json:"name"`
	ClientID                   uuid.UUID                       `json:"clientId"`
	Items                      []operation.LineItem            `json:"items"`
	Deductions                 []operation.Deduction           `json:"deductions"`
	GuaranteeChecks            []operation.GuaranteeCheck      `json:"guaranteeChecks"`
	GuaranteeLetters           []operation.GuaranteeLetter     `json:"guaranteeLetters"`
	WarrantyCertificates       []operation.WarrantyCertificate `json:"warrantyCertificates"`
	ReceivedPayments           []operation.ReceivedPayment     `json:"receivedPayments"`
	TotalAmount                int64                           `json:"totalAmount"`
	TotalReceived              int64                           `json:"totalReceived"`
	OverallExecutionPercentage float64                         `json:"overallExecutionPercentage"`
	Status                     operation.Status                `json:"status"`
	CreatedBy                  *uuid.UUID                      `json:"createdBy,omitempty"`
	CreatedAt                  time.Time                       `json:"createdAt"`
	UpdatedAt                  *time.Time                      `json:"updatedAt,omitempty"`
}

func toResponse(op *operation.Operation) operationResponse {
	resp := operationResponse{
		ID:                         op.ID,
		Code:                       op.Code,
		Name:                       op.Name,
		ClientID:                   op.ClientID,
		Items:                      op.Items,
		Deductions:                 op.Deductions,
		GuaranteeChecks:            op.GuaranteeChecks,
		GuaranteeLetters:           op.GuaranteeLetters,
		WarrantyCertificates:       op.WarrantyCertificates,
		ReceivedPayments:           op.ReceivedPayments,
		TotalAmount:                op.TotalAmount,
		TotalReceived:              op.TotalReceived,
		OverallExecutionPercentage: op.OverallExecutionPercentage,
		Status:                     op.Status,
		CreatedBy:                  op.CreatedBy,
		CreatedAt:                  op.CreatedAt,
		UpdatedAt:                  op.UpdatedAt,
	}

	// Collections render as [] rather than null.
	if resp.Items == nil {
		resp.Items = []operation.LineItem{}
	}

	if resp.Deductions == nil {
		resp.Deductions = []operation.Deduction{}
	}

	if resp.GuaranteeChecks == nil {
		resp.GuaranteeChecks = []operation.GuaranteeCheck{}
	}

	if resp.GuaranteeLetters == nil {
		resp.GuaranteeLetters = []operation.GuaranteeLetter{}
	}

	if resp.WarrantyCertificates == nil {
		resp.WarrantyCertificates = []operation.WarrantyCertificate{}
	}

	if resp.ReceivedPayments == nil {
		resp.ReceivedPayments = []operation.ReceivedPayment{}
	}

	return resp
}

type listResponse struct {
	Operations []operationResponse `json:"operations"`
	Total      int                 `json:"total"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
}

func toListResponse(ops []*operation.Operation, total, page, limit int) listResponse {
	resp := listResponse{
		Operations: make([]operationResponse, len(ops)),
		Total:      total,
		Page:       page,
		Limit:      limit,
	}

	for i, op := range ops {
		resp.Operations[i] = toResponse(op)
	}

	return resp
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
