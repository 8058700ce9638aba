package localstore

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mecdoors/siteledger/internal/client"
	clientlocal "github.com/mecdoors/siteledger/internal/client/localstore"
	"github.com/mecdoors/siteledger/internal/database"
	"github.com/mecdoors/siteledger/internal/migrate"
	"github.com/mecdoors/siteledger/internal/operation"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.NewSQLite(filepath.Join(t.TempDir(), "siteledger.db"))
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	require.NoError(t, migrate.Migrate(db, migrate.DriverSQLite))

	return db
}

func seedClient(t *testing.T, db *sql.DB) uuid.UUID {
	t.Helper()

	c := &client.Client{
		Name: "Gateway Mall",
		Type: client.TypeMainContractor,
	}
	require.NoError(t, clientlocal.New(db).CreateClient(context.Background(), c))

	return c.ID
}

func buildOperation(clientID uuid.UUID) *operation.Operation {
	itemID := uuid.New()
	contractDate := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	op := &operation.Operation{
		Code:     "MEC-GAT-4821",
		Name:     "Gateway Mall Doors",
		ClientID: clientID,
		Items: []operation.LineItem{
			{
				ID:                  itemID,
				Code:                "MEC-GAT-4821-001",
				Description:         "Main entrance doors",
				Amount:              100_000,
				ContractNumber:      "CN-17",
				ContractDate:        &contractDate,
				ExecutionPercentage: 100,
				AddedAt:             contractDate,
			},
		},
		Deductions: []operation.Deduction{
			{ID: uuid.New(), Name: "Retention", Type: operation.DeductionPercentage, Value: 10, IsActive: true},
		},
		ReceivedPayments: []operation.ReceivedPayment{
			{ID: uuid.New(), Type: operation.PaymentCash, Amount: 50_000, Date: contractDate},
		},
		GuaranteeChecks: []operation.GuaranteeCheck{
			{
				ID:          uuid.New(),
				CheckNumber: "774512",
				Amount:      10_000,
				CheckDate:   contractDate,
				Bank:        "CIB",
				RelatedTo:   operation.RelatedToOperation,
			},
		},
		GuaranteeLetters: []operation.GuaranteeLetter{
			{
				ID:           uuid.New(),
				Bank:         "NBE",
				LetterDate:   contractDate,
				LetterNumber: "LG-204",
				Amount:       5_000,
				DueDate:      contractDate.AddDate(1, 0, 0),
				RelatedTo:    operation.RelatedToOperation,
			},
		},
		WarrantyCertificates: []operation.WarrantyCertificate{
			{
				ID:                   uuid.New(),
				CertificateNumber:    "WC-9",
				IssueDate:            contractDate,
				StartDate:            contractDate,
				EndDate:              contractDate.AddDate(1, 0, 0),
				WarrantyPeriodMonths: 12,
				RelatedTo:            operation.RelatedToOperation,
				IsActive:             true,
			},
		},
	}

	sum := operation.Summarize(op)
	op.TotalAmount = sum.ContractTotal
	op.TotalReceived = sum.TotalReceived
	op.OverallExecutionPercentage = sum.ExecutionPct
	op.Status = sum.Status

	return op
}

func TestStore_CreateGetOperation(t *testing.T) {
	db := setupDB(t)
	store := New(db)
	clientID := seedClient(t, db)

	op := buildOperation(clientID)
	require.NoError(t, store.CreateOperation(context.Background(), op))
	require.NotEqual(t, uuid.Nil, op.ID)

	got, err := store.GetOperation(context.Background(), op.ID)
	require.NoError(t, err)

	assert.Equal(t, op.Code, got.Code)
	assert.Equal(t, op.Name, got.Name)
	assert.Equal(t, clientID, got.ClientID)
	assert.Equal(t, op.Items, got.Items)
	assert.Equal(t, op.Deductions, got.Deductions)
	assert.Equal(t, op.ReceivedPayments, got.ReceivedPayments)
	assert.Equal(t, op.GuaranteeChecks, got.GuaranteeChecks)
	assert.Equal(t, op.GuaranteeLetters, got.GuaranteeLetters)
	assert.Equal(t, op.WarrantyCertificates, got.WarrantyCertificates)
	assert.Equal(t, int64(100_000), got.TotalAmount)
	assert.Equal(t, int64(50_000), got.TotalReceived)
	assert.Equal(t, float64(100), got.OverallExecutionPercentage)
	assert.Equal(t, operation.StatusPartialPayment, got.Status)
}

func TestStore_CreateOperation_DuplicateCode(t *testing.T) {
	db := setupDB(t)
	store := New(db)
	clientID := seedClient(t, db)

	require.NoError(t, store.CreateOperation(context.Background(), buildOperation(clientID)))

	err := store.CreateOperation(context.Background(), buildOperation(clientID))
	assert.ErrorIs(t, err, operation.ErrCodeExists)
}

func TestStore_GetOperation_NotFound(t *testing.T) {
	db := setupDB(t)
	store := New(db)

	_, err := store.GetOperation(context.Background(), uuid.New())
	assert.ErrorIs(t, err, operation.ErrNotFound)
}

func TestStore_ListOperations(t *testing.T) {
	db := setupDB(t)
	store := New(db)
	clientID := seedClient(t, db)

	first := buildOperation(clientID)
	require.NoError(t, store.CreateOperation(context.Background(), first))

	second := buildOperation(clientID)
	second.Code = "MEC-GAT-9002"
	second.ReceivedPayments = nil
	second.TotalReceived = 0
	second.Items[0].ExecutionPercentage = 40
	second.Status = operation.StatusInProgress
	require.NoError(t, store.CreateOperation(context.Background(), second))

	tests := []struct {
		name      string
		filter    operation.ListFilter
		wantTotal int
		wantCodes []string
	}{
		{
			name:      "All",
			filter:    operation.ListFilter{Page: 1, Limit: 10},
			wantTotal: 2,
			wantCodes: []string{"MEC-GAT-4821", "MEC-GAT-9002"},
		},
		{
			name:      "ByStatus",
			filter:    operation.ListFilter{Status: new(operation.StatusInProgress), Page: 1, Limit: 10},
			wantTotal: 1,
			wantCodes: []string{"MEC-GAT-9002"},
		},
		{
			name:      "ByClient",
			filter:    operation.ListFilter{ClientID: &clientID, Page: 1, Limit: 10},
			wantTotal: 2,
			wantCodes: []string{"MEC-GAT-4821", "MEC-GAT-9002"},
		},
		{
			name:      "UnknownClient",
			filter:    operation.ListFilter{ClientID: new(uuid.New()), Page: 1, Limit: 10},
			wantTotal: 0,
			wantCodes: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ops, total, err := store.ListOperations(context.Background(), tt.filter)
			require.NoError(t, err)

			assert.Equal(t, tt.wantTotal, total)

			codes := make([]string, len(ops))
			for i, op := range ops {
				codes[i] = op.Code
			}

			assert.ElementsMatch(t, tt.wantCodes, codes)
		})
	}
}

func TestStore_UpdateOperation(t *testing.T) {
	db := setupDB(t)
	store := New(db)
	clientID := seedClient(t, db)

	op := buildOperation(clientID)
	require.NoError(t, store.CreateOperation(context.Background(), op))

	op.Name = "Gateway Mall Doors Phase 2"
	op.ReceivedPayments = append(op.ReceivedPayments, operation.ReceivedPayment{
		ID:     uuid.New(),
		Type:   operation.PaymentCheck,
		Amount: 40_000,
		Date:   time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	})

	sum := operation.Summarize(op)
	op.TotalReceived = sum.TotalReceived
	op.Status = sum.Status

	require.NoError(t, store.UpdateOperation(context.Background(), op))

	got, err := store.GetOperation(context.Background(), op.ID)
	require.NoError(t, err)

	assert.Equal(t, "Gateway Mall Doors Phase 2", got.Name)
	assert.Len(t, got.ReceivedPayments, 2)
	assert.Equal(t, int64(90_000), got.TotalReceived)
	assert.Equal(t, operation.StatusFullPayment, got.Status)
	require.NotNil(t, got.UpdatedAt)
}

func TestStore_UpdateOperation_NotFound(t *testing.T) {
	db := setupDB(t)
	store := New(db)

	op := buildOperation(uuid.New())
	op.ID = uuid.New()

	err := store.UpdateOperation(context.Background(), op)
	assert.ErrorIs(t, err, operation.ErrNotFound)
}

func TestStore_DeleteOperation(t *testing.T) {
	db := setupDB(t)
	store := New(db)
	clientID := seedClient(t, db)

	op := buildOperation(clientID)
	require.NoError(t, store.CreateOperation(context.Background(), op))

	require.NoError(t, store.DeleteOperation(context.Background(), op.ID))

	_, err := store.GetOperation(context.Background(), op.ID)
	assert.ErrorIs(t, err, operation.ErrNotFound)

	err = store.DeleteOperation(context.Background(), op.ID)
	assert.ErrorIs(t, err, operation.ErrNotFound)
}
