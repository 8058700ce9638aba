package report_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mecdoors/siteledger/internal/client"
	"github.com/mecdoors/siteledger/internal/operation"
	"github.com/mecdoors/siteledger/internal/report"
)

func portfolioFixture(clientID uuid.UUID) []*operation.Operation {
	now := time.Now().UTC()

	return []*operation.Operation{
		{
			ID:       uuid.New(),
			Code:     "MEC-GAT-0001",
			ClientID: clientID,
			Items: []operation.LineItem{
				{ID: uuid.New(), Amount: 100_000, ExecutionPercentage: 100},
			},
			Deductions: []operation.Deduction{
				{ID: uuid.New(), Type: operation.DeductionPercentage, Value: 10, IsActive: true},
			},
			ReceivedPayments: []operation.ReceivedPayment{
				{ID: uuid.New(), Type: operation.PaymentCash, Amount: 50_000, Date: now},
			},
			GuaranteeChecks: []operation.GuaranteeCheck{
				{ID: uuid.New(), Amount: 10_000},
				{ID: uuid.New(), Amount: 5_000, IsReturned: true},
			},
			WarrantyCertificates: []operation.WarrantyCertificate{
				{ID: uuid.New(), IsActive: true},
			},
			CreatedAt: now,
		},
		{
			ID:       uuid.New(),
			Code:     "MEC-DOR-0002",
			ClientID: clientID,
			Items: []operation.LineItem{
				{ID: uuid.New(), Amount: 200_000, ExecutionPercentage: 50},
			},
			GuaranteeLetters: []operation.GuaranteeLetter{
				{ID: uuid.New(), Amount: 20_000},
			},
			CreatedAt: now,
		},
	}
}

func TestService_Dashboard(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ops := operation.NewMockRepository(ctrl)
	clients := client.NewMockRepository(ctrl)

	clientID := uuid.New()
	fixture := portfolioFixture(clientID)

	ops.EXPECT().
		ListOperations(gomock.Any(), gomock.Any()).
		Return(fixture, len(fixture), nil)
	clients.EXPECT().
		ListClients(gomock.Any(), client.ListFilter{}).
		Return([]*client.Client{{ID: clientID, Name: "New Cairo Developments"}}, nil)

	svc := report.NewService(ops, clients)
	stats, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalOperations)
	assert.Equal(t, 1, stats.InProgress)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, int64(300_000), stats.TotalAmount)
	assert.Equal(t, int64(50_000), stats.TotalReceived)
	assert.Equal(t, int64(10_000), stats.TotalDeductions)
	// 100k executed - 10k deduction on the first, 100k executed on the second.
	assert.Equal(t, int64(190_000), stats.TotalNetAmount)
	// One unreturned check plus one unreturned letter.
	assert.Equal(t, 2, stats.OutstandingGuarantees)
	assert.Equal(t, 1, stats.ActiveWarranties)
	assert.Equal(t, 1, stats.TotalClients)
}

func TestService_Comprehensive(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ops := operation.NewMockRepository(ctrl)
	clients := client.NewMockRepository(ctrl)

	clientID := uuid.New()
	fixture := portfolioFixture(clientID)

	ops.EXPECT().
		ListOperations(gomock.Any(), gomock.Any()).
		Return(fixture, len(fixture), nil)
	clients.EXPECT().
		ListClients(gomock.Any(), client.ListFilter{}).
		Return([]*client.Client{{ID: clientID, Name: "New Cairo Developments", Type: client.TypeOwner}}, nil)

	svc := report.NewService(ops, clients)
	got, err := svc.Comprehensive(context.Background(), report.ComprehensiveFilter{})
	require.NoError(t, err)

	require.Len(t, got.Operations, 2)
	assert.Equal(t, int64(300_000), got.Summary.TotalAmount)
	assert.InDelta(t, 75.0, got.Summary.AvgExecution, 0.001)

	require.Len(t, got.ClientStats, 1)
	assert.Equal(t, "New Cairo Developments", got.ClientStats[0].ClientName)
	assert.Equal(t, 2, got.ClientStats[0].OperationsCount)
	assert.Equal(t, int64(300_000), got.ClientStats[0].TotalAmount)
}

func TestService_Comprehensive_WindowFilter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ops := operation.NewMockRepository(ctrl)
	clients := client.NewMockRepository(ctrl)

	clientID := uuid.New()
	fixture := portfolioFixture(clientID)
	fixture[1].CreatedAt = time.Now().UTC().AddDate(-1, 0, 0)

	ops.EXPECT().
		ListOperations(gomock.Any(), gomock.Any()).
		Return(fixture, len(fixture), nil)
	clients.EXPECT().
		ListClients(gomock.Any(), client.ListFilter{}).
		Return(nil, nil)

	start := time.Now().UTC().AddDate(0, -1, 0)
	svc := report.NewService(ops, clients)
	got, err := svc.Comprehensive(context.Background(), report.ComprehensiveFilter{Start: &start})
	require.NoError(t, err)

	assert.Len(t, got.Operations, 1)
	assert.Equal(t, "MEC-GAT-0001", got.Operations[0].Operation.Code)
}

func TestService_Financial(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ops := operation.NewMockRepository(ctrl)
	clients := client.NewMockRepository(ctrl)

	clientID := uuid.New()
	fixture := portfolioFixture(clientID)
	// Outside the month lookback; must be excluded.
	fixture[1].CreatedAt = time.Now().UTC().AddDate(0, -6, 0)

	ops.EXPECT().
		ListOperations(gomock.Any(), gomock.Any()).
		Return(fixture, len(fixture), nil)

	svc := report.NewService(ops, clients)
	buckets, err := svc.Financial(context.Background(), report.PeriodMonth)
	require.NoError(t, err)

	require.Len(t, buckets, 1)
	assert.Equal(t, 1, buckets[0].OperationsCount)
	assert.Equal(t, int64(100_000), buckets[0].TotalAmount)
}

func TestService_OperationStats(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ops := operation.NewMockRepository(ctrl)
	clients := client.NewMockRepository(ctrl)

	fixture := portfolioFixture(uuid.New())
	ops.EXPECT().
		ListOperations(gomock.Any(), gomock.Any()).
		Return(fixture, len(fixture), nil)

	svc := report.NewService(ops, clients)
	stats, err := svc.OperationStats(context.Background(), report.PeriodAll)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalOperations)
	assert.Equal(t, int64(300_000), stats.TotalAmount)
	assert.InDelta(t, 75.0, stats.AvgExecution, 0.001)
}

func TestService_Financial_UnknownPeriod(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := report.NewService(operation.NewMockRepository(ctrl), client.NewMockRepository(ctrl))

	_, err := svc.Financial(context.Background(), report.Period("decade"))
	assert.Error(t, err)
}
