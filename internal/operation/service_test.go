package operation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mecdoors/siteledger/internal/operation"
)

func TestService_Create(t *testing.T) {
	type testCase struct {
		name      string
		params    operation.CreateParams
		setupMock func(m *operation.MockRepository)
		wantErr   error
		check     func(t *testing.T, op *operation.Operation)
	}

	clientID := uuid.New()

	tests := []testCase{
		{
			name: "Success",
			params: operation.CreateParams{
				Code:     "MEC-GAT-0001",
				Name:     "Gate Installation",
				ClientID: clientID,
				Items: []operation.ItemParams{
					{Description: "Main gate", Amount: 60000, ExecutionPercentage: 100},
					{Description: "Side gate", Amount: 40000, ExecutionPercentage: 50},
				},
			},
			setupMock: func(m *operation.MockRepository) {
				m.EXPECT().
					CreateOperation(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, op *operation.Operation) error {
						op.ID = uuid.New()
						op.CreatedAt = time.Now()
						return nil
					})
			},
			check: func(t *testing.T, op *operation.Operation) {
				assert.Equal(t, int64(100000), op.TotalAmount)
				assert.InDelta(t, 80.0, op.OverallExecutionPercentage, 0.0001)
				assert.Equal(t, operation.StatusInProgress, op.Status)
				require.Len(t, op.Items, 2)
				assert.Equal(t, "MEC-GAT-0001-001", op.Items[0].Code)
				assert.Equal(t, "MEC-GAT-0001-002", op.Items[1].Code)
			},
		},
		{
			name: "GeneratesCodeWhenEmpty",
			params: operation.CreateParams{
				Name:       "Gate Installation",
				ClientID:   clientID,
				ClientName: "Mec Doors",
				Items: []operation.ItemParams{
					{Description: "Main gate", Amount: 60000},
				},
			},
			setupMock: func(m *operation.MockRepository) {
				m.EXPECT().CreateOperation(gomock.Any(), gomock.Any()).Return(nil)
			},
			check: func(t *testing.T, op *operation.Operation) {
				assert.Regexp(t, `^MEC-GAT-\d{4}$`, op.Code)
			},
		},
		{
			name: "NoItems",
			params: operation.CreateParams{
				Code:     "MEC-GAT-0001",
				Name:     "Gate Installation",
				ClientID: clientID,
			},
			wantErr: operation.ErrInvalidInput,
		},
		{
			name: "InvalidExecutionPercentage",
			params: operation.CreateParams{
				Code:     "MEC-GAT-0001",
				Name:     "Gate Installation",
				ClientID: clientID,
				Items: []operation.ItemParams{
					{Description: "Main gate", Amount: 60000, ExecutionPercentage: 120},
				},
			},
			wantErr: operation.ErrInvalidInput,
		},
		{
			name: "DuplicateCode",
			params: operation.CreateParams{
				Code:     "MEC-GAT-0001",
				Name:     "Gate Installation",
				ClientID: clientID,
				Items: []operation.ItemParams{
					{Description: "Main gate", Amount: 60000},
				},
			},
			setupMock: func(m *operation.MockRepository) {
				m.EXPECT().
					CreateOperation(gomock.Any(), gomock.Any()).
					Return(operation.ErrCodeExists)
			},
			wantErr: operation.ErrCodeExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := operation.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := operation.NewService(repo)
			got, err := svc.Create(context.Background(), tt.params)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)

			if tt.check != nil {
				tt.check(t, got)
			}
		})
	}
}

// storedOp returns a persisted-looking operation the mocks can hand back.
func storedOp() *operation.Operation {
	opID := uuid.New()
	op := &operation.Operation{
		ID:       opID,
		Code:     "MEC-GAT-0001",
		Name:     "Gate Installation",
		ClientID: uuid.New(),
		Items: []operation.LineItem{
			{ID: uuid.New(), Code: "MEC-GAT-0001-001", Amount: 60000, ExecutionPercentage: 100},
			{ID: uuid.New(), Code: "MEC-GAT-0001-002", Amount: 40000, ExecutionPercentage: 50},
		},
		CreatedAt: time.Now(),
	}

	return op
}

// expectMutation wires the load-then-update pair every mutation performs and
// captures the persisted operation.
func expectMutation(m *operation.MockRepository, op *operation.Operation, saved **operation.Operation) {
	m.EXPECT().GetOperation(gomock.Any(), op.ID).Return(op, nil)
	m.EXPECT().
		UpdateOperation(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, updated *operation.Operation) error {
			*saved = updated
			return nil
		})
}

func TestService_SetItemExecution_RefreshesDerivedFields(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := operation.NewMockRepository(ctrl)
	svc := operation.NewService(repo)

	op := storedOp()
	op.ReceivedPayments = []operation.ReceivedPayment{
		{ID: uuid.New(), Type: operation.PaymentCash, Amount: 30000, Date: time.Now()},
	}
	op.Deductions = []operation.Deduction{
		{ID: uuid.New(), Name: "retention", Type: operation.DeductionPercentage, Value: 10, IsActive: true},
	}

	var saved *operation.Operation

	expectMutation(repo, op, &saved)

	got, err := svc.SetItemExecution(context.Background(), op.ID, op.Items[1].ID, 100)
	require.NoError(t, err)
	require.NotNil(t, saved)

	// paid = 300.00 received + 100.00 deduction of a fully executed 1000.00.
	assert.InDelta(t, 100.0, saved.OverallExecutionPercentage, 0.0001)
	assert.Equal(t, operation.StatusPartialPayment, saved.Status)
	assert.Equal(t, got, saved)
}

func TestService_SetItemExecution_RejectsOutOfRange(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := operation.NewMockRepository(ctrl)
	svc := operation.NewService(repo)

	op := storedOp()
	repo.EXPECT().GetOperation(gomock.Any(), op.ID).Return(op, nil)

	_, err := svc.SetItemExecution(context.Background(), op.ID, op.Items[0].ID, 150)
	assert.ErrorIs(t, err, operation.ErrInvalidInput)
}

func TestService_RemoveItem_RenumbersCodes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := operation.NewMockRepository(ctrl)
	svc := operation.NewService(repo)

	op := storedOp()
	op.Items = append(op.Items, operation.LineItem{
		ID: uuid.New(), Code: "MEC-GAT-0001-003", Amount: 10000, Description: "third",
	})

	var saved *operation.Operation

	expectMutation(repo, op, &saved)

	removed := op.Items[1].ID
	_, err := svc.RemoveItem(context.Background(), op.ID, removed)
	require.NoError(t, err)
	require.Len(t, saved.Items, 2)
	assert.Equal(t, "MEC-GAT-0001-001", saved.Items[0].Code)
	assert.Equal(t, "MEC-GAT-0001-002", saved.Items[1].Code)
	assert.Equal(t, "third", saved.Items[1].Description)
	assert.Equal(t, int64(70000), saved.TotalAmount)
}

func TestService_RemoveItem_UnknownItem(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := operation.NewMockRepository(ctrl)
	svc := operation.NewService(repo)

	op := storedOp()
	repo.EXPECT().GetOperation(gomock.Any(), op.ID).Return(op, nil)

	_, err := svc.RemoveItem(context.Background(), op.ID, uuid.New())
	assert.ErrorIs(t, err, operation.ErrNotFound)
}

func TestService_AddPayment_UpdatesTotalsAndStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := operation.NewMockRepository(ctrl)
	svc := operation.NewService(repo)

	op := storedOp()
	op.Items[1].ExecutionPercentage = 100 // fully executed, nothing paid yet

	var saved *operation.Operation

	expectMutation(repo, op, &saved)

	_, err := svc.AddPayment(context.Background(), op.ID, operation.PaymentParams{
		Type:   operation.PaymentCash,
		Amount: 100000,
		Date:   time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100000), saved.TotalReceived)
	assert.Equal(t, operation.StatusFullPayment, saved.Status)
}

func TestService_AddPayment_UnreceiptedCheckStillCounts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := operation.NewMockRepository(ctrl)
	svc := operation.NewService(repo)

	op := storedOp()

	var saved *operation.Operation

	expectMutation(repo, op, &saved)

	_, err := svc.AddPayment(context.Background(), op.ID, operation.PaymentParams{
		Type:        operation.PaymentCheck,
		Amount:      25000,
		Date:        time.Now(),
		CheckNumber: "774411",
		Bank:        "CIB",
		// No receipt date: the check has not cleared.
	})
	require.NoError(t, err)
	assert.Equal(t, int64(25000), saved.TotalReceived)
}

func TestService_SetDeductionActive(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := operation.NewMockRepository(ctrl)
	svc := operation.NewService(repo)

	op := storedOp()
	dedID := uuid.New()
	op.Deductions = []operation.Deduction{
		{ID: dedID, Name: "penalty", Type: operation.DeductionFixed, Value: 5000, IsActive: true},
	}

	var saved *operation.Operation

	expectMutation(repo, op, &saved)

	_, err := svc.SetDeductionActive(context.Background(), op.ID, dedID, false)
	require.NoError(t, err)
	assert.False(t, saved.Deductions[0].IsActive)
}

func TestService_RenewGuaranteeLetter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := operation.NewMockRepository(ctrl)
	svc := operation.NewService(repo)

	op := storedOp()
	letterID := uuid.New()
	oldDue := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	op.GuaranteeLetters = []operation.GuaranteeLetter{
		{ID: letterID, Bank: "NBE", LetterNumber: "LG-9", Amount: 20000, DueDate: oldDue, RelatedTo: operation.RelatedToOperation},
	}

	var saved *operation.Operation

	expectMutation(repo, op, &saved)

	newDue := oldDue.AddDate(1, 0, 0)
	_, err := svc.RenewGuaranteeLetter(context.Background(), op.ID, letterID, operation.RenewalParams{
		RenewalDate: time.Now(),
		NewDueDate:  newDue,
	})
	require.NoError(t, err)
	require.Len(t, saved.GuaranteeLetters[0].Renewals, 1)
	assert.Equal(t, newDue, saved.GuaranteeLetters[0].DueDate)
}

func TestService_List_DefaultsPagination(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := operation.NewMockRepository(ctrl)
	svc := operation.NewService(repo)

	repo.EXPECT().
		ListOperations(gomock.Any(), operation.ListFilter{Page: 1, Limit: 50}).
		Return([]*operation.Operation{storedOp()}, 1, nil)

	ops, total, err := svc.List(context.Background(), operation.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, ops, 1)
	assert.Equal(t, 1, total)
}

func TestService_Get_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := operation.NewMockRepository(ctrl)
	svc := operation.NewService(repo)

	id := uuid.New()
	repo.EXPECT().GetOperation(gomock.Any(), id).Return(nil, operation.ErrNotFound)

	_, err := svc.Get(context.Background(), id)
	assert.ErrorIs(t, err, operation.ErrNotFound)
}

func TestService_Summary(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := operation.NewMockRepository(ctrl)
	svc := operation.NewService(repo)

	op := storedOp()
	repo.EXPECT().GetOperation(gomock.Any(), op.ID).Return(op, nil)

	sum, err := svc.Summary(context.Background(), op.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), sum.ContractTotal)
	assert.Equal(t, int64(80000), sum.ExecutedTotal)
}

func TestService_Update_RepoError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := operation.NewMockRepository(ctrl)
	svc := operation.NewService(repo)

	op := storedOp()
	repo.EXPECT().UpdateOperation(gomock.Any(), op).Return(errors.New("db error"))

	err := svc.Update(context.Background(), op)
	assert.Error(t, err)
}
