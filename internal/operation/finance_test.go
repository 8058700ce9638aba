package operation_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mecdoors/siteledger/internal/operation"
)

func item(amount int64, execPct float64) operation.LineItem {
	return operation.LineItem{Amount: amount, ExecutionPercentage: execPct}
}

func TestExecutedTotal(t *testing.T) {
	tests := []struct {
		name  string
		items []operation.LineItem
		want  int64
	}{
		{name: "Empty", items: nil, want: 0},
		{name: "FullyExecuted", items: []operation.LineItem{item(60000, 100)}, want: 60000},
		{name: "PartiallyExecuted", items: []operation.LineItem{item(40000, 50)}, want: 20000},
		{name: "Mixed", items: []operation.LineItem{item(60000, 100), item(40000, 50)}, want: 80000},
		{name: "ZeroPercent", items: []operation.LineItem{item(100000, 0)}, want: 0},
		{name: "RoundsToMinorUnit", items: []operation.LineItem{item(100, 33.333)}, want: 33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, operation.ExecutedTotal(tt.items))
		})
	}
}

func TestContractTotal(t *testing.T) {
	items := []operation.LineItem{item(60000, 100), item(40000, 0)}
	assert.Equal(t, int64(100000), operation.ContractTotal(items))
	assert.Equal(t, int64(0), operation.ContractTotal(nil))
}

func TestTotalDeductions(t *testing.T) {
	tests := []struct {
		name       string
		executed   int64
		deductions []operation.Deduction
		want       int64
	}{
		{
			name:     "PercentageAppliesToExecutedTotal",
			executed: 80000,
			deductions: []operation.Deduction{
				{Type: operation.DeductionPercentage, Value: 10, IsActive: true},
			},
			want: 8000,
		},
		{
			name:     "FixedContributesDirectly",
			executed: 80000,
			deductions: []operation.Deduction{
				{Type: operation.DeductionFixed, Value: 2500, IsActive: true},
			},
			want: 2500,
		},
		{
			name:     "InactiveIgnored",
			executed: 80000,
			deductions: []operation.Deduction{
				{Type: operation.DeductionPercentage, Value: 10, IsActive: false},
				{Type: operation.DeductionFixed, Value: 2500, IsActive: false},
			},
			want: 0,
		},
		{
			name:     "MixedActiveAndInactive",
			executed: 80000,
			deductions: []operation.Deduction{
				{Type: operation.DeductionPercentage, Value: 5, IsActive: true},
				{Type: operation.DeductionFixed, Value: 1000, IsActive: true},
				{Type: operation.DeductionPercentage, Value: 50, IsActive: false},
			},
			want: 5000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, operation.TotalDeductions(tt.executed, tt.deductions))
		})
	}
}

// The deduction base is the executed total, regardless of the contract total.
func TestTotalDeductions_BasisIndependentOfContract(t *testing.T) {
	deductions := []operation.Deduction{
		{Type: operation.DeductionPercentage, Value: 10, IsActive: true},
	}

	// Same executed total from very different contract totals.
	small := []operation.LineItem{item(50000, 100)}
	large := []operation.LineItem{item(500000, 10)}

	require.Equal(t, operation.ExecutedTotal(small), operation.ExecutedTotal(large))
	assert.Equal(t,
		operation.TotalDeductions(operation.ExecutedTotal(small), deductions),
		operation.TotalDeductions(operation.ExecutedTotal(large), deductions),
	)
}

func TestNetAmount(t *testing.T) {
	items := []operation.LineItem{item(60000, 100), item(40000, 50)}

	t.Run("ActiveDeductionsSubtracted", func(t *testing.T) {
		deductions := []operation.Deduction{
			{Type: operation.DeductionPercentage, Value: 10, IsActive: true},
		}
		assert.Equal(t, int64(72000), operation.NetAmount(items, deductions))
	})

	t.Run("AllInactiveEqualsExecutedTotal", func(t *testing.T) {
		deductions := []operation.Deduction{
			{Type: operation.DeductionPercentage, Value: 10, IsActive: false},
			{Type: operation.DeductionFixed, Value: 99999, IsActive: false},
		}
		assert.Equal(t, operation.ExecutedTotal(items), operation.NetAmount(items, deductions))
	})

	t.Run("MayGoNegative", func(t *testing.T) {
		deductions := []operation.Deduction{
			{Type: operation.DeductionFixed, Value: 200000, IsActive: true},
		}
		assert.Equal(t, int64(-120000), operation.NetAmount(items, deductions))
	})
}

func TestOverallExecutionPercentage(t *testing.T) {
	t.Run("NoItemsIsZeroNotNaN", func(t *testing.T) {
		got := operation.OverallExecutionPercentage(nil)
		assert.Equal(t, float64(0), got)
	})

	t.Run("ZeroValueItemsIsZero", func(t *testing.T) {
		got := operation.OverallExecutionPercentage([]operation.LineItem{item(0, 100)})
		assert.Equal(t, float64(0), got)
	})

	t.Run("WeightedByAmount", func(t *testing.T) {
		got := operation.OverallExecutionPercentage([]operation.LineItem{
			item(60000, 100),
			item(40000, 50),
		})
		assert.InDelta(t, 80.0, got, 0.0001)
	})
}

func TestComputeStatus_InProgressDominates(t *testing.T) {
	// Any execution below 100% is in_progress, no matter what was paid.
	op := &operation.Operation{
		Items: []operation.LineItem{item(100000, 99)},
		ReceivedPayments: []operation.ReceivedPayment{
			{Type: operation.PaymentCash, Amount: 500000},
		},
	}

	assert.Equal(t, operation.StatusInProgress, operation.ComputeStatus(op))
}

func TestComputeStatus_EmptyOperation(t *testing.T) {
	op := &operation.Operation{}
	assert.Equal(t, operation.StatusInProgress, operation.ComputeStatus(op))
}

func TestComputeStatus_PaymentBoundaries(t *testing.T) {
	// Contract total 1000.00 units, fully executed.
	items := []operation.LineItem{item(100000, 100)}

	tests := []struct {
		name string
		paid int64
		want operation.Status
	}{
		{name: "ExactSettlement", paid: 100000, want: operation.StatusFullPayment},
		{name: "OneUnitUnderWithinTolerance", paid: 99999, want: operation.StatusFullPayment},
		{name: "OneUnitOverWithinTolerance", paid: 100001, want: operation.StatusFullPayment},
		{name: "TwoUnitsOverIsOverpaid", paid: 100002, want: operation.StatusOverpaid},
		{name: "HalfPaidIsPartial", paid: 50000, want: operation.StatusPartialPayment},
		{name: "NothingPaidIsCompleted", paid: 0, want: operation.StatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := &operation.Operation{Items: items}
			if tt.paid > 0 {
				op.ReceivedPayments = []operation.ReceivedPayment{
					{Type: operation.PaymentCash, Amount: tt.paid},
				}
			}

			assert.Equal(t, tt.want, operation.ComputeStatus(op))
		})
	}
}

func TestComputeStatus_DeductionsCountAsPaid(t *testing.T) {
	// Fully executed 1000.00, 10% deduction, 900.00 received: the deduction
	// closes the remaining obligation, so this is a full settlement.
	op := &operation.Operation{
		Items: []operation.LineItem{item(100000, 100)},
		Deductions: []operation.Deduction{
			{Type: operation.DeductionPercentage, Value: 10, IsActive: true},
		},
		ReceivedPayments: []operation.ReceivedPayment{
			{Type: operation.PaymentCash, Amount: 90000},
		},
	}

	assert.Equal(t, operation.StatusFullPayment, operation.ComputeStatus(op))
}

func TestComputeStatus_Idempotent(t *testing.T) {
	op := &operation.Operation{
		Items: []operation.LineItem{item(100000, 100)},
		ReceivedPayments: []operation.ReceivedPayment{
			{Type: operation.PaymentCash, Amount: 30000},
		},
	}

	first := operation.ComputeStatus(op)
	second := operation.ComputeStatus(op)
	assert.Equal(t, first, second)
}

func TestSummarize_EndToEnd(t *testing.T) {
	// Two items (600.00 at 100%, 400.00 at 50%), one active 10% deduction,
	// one cash payment of 300.00.
	op := &operation.Operation{
		Items: []operation.LineItem{
			item(60000, 100),
			item(40000, 50),
		},
		Deductions: []operation.Deduction{
			{Name: "retention", Type: operation.DeductionPercentage, Value: 10, IsActive: true},
		},
		ReceivedPayments: []operation.ReceivedPayment{
			{Type: operation.PaymentCash, Amount: 30000},
		},
	}

	s := operation.Summarize(op)
	assert.Equal(t, int64(100000), s.ContractTotal)
	assert.Equal(t, int64(80000), s.ExecutedTotal)
	assert.Equal(t, int64(8000), s.TotalDeductions)
	assert.Equal(t, int64(72000), s.NetAmount)
	assert.Equal(t, int64(30000), s.TotalReceived)
	assert.Equal(t, int64(42000), s.NetDue)
	assert.InDelta(t, 80.0, s.ExecutionPct, 0.0001)
	assert.Equal(t, operation.StatusInProgress, s.Status)

	// Raising the second item to 100% completes the operation; paid =
	// 300.00 received + 100.00 deduction = 400.00 of 1000.00.
	op.Items[1].ExecutionPercentage = 100

	s = operation.Summarize(op)
	assert.Equal(t, int64(100000), s.ExecutedTotal)
	assert.Equal(t, int64(10000), s.TotalDeductions)
	assert.InDelta(t, 100.0, s.ExecutionPct, 0.0001)
	assert.Equal(t, operation.StatusPartialPayment, s.Status)
}

func TestSummarize_DoesNotMutateInput(t *testing.T) {
	op := &operation.Operation{
		Items:  []operation.LineItem{item(100000, 100)},
		Status: operation.StatusInProgress, // stale cache on purpose
	}

	_ = operation.Summarize(op)

	assert.Equal(t, operation.StatusInProgress, op.Status)
	assert.Equal(t, int64(0), op.TotalAmount)
}

func TestItemCode(t *testing.T) {
	assert.Equal(t, "OP-001", operation.ItemCode("OP", 0))
	assert.Equal(t, "OP-012", operation.ItemCode("OP", 11))
	assert.Equal(t, "MEC-GAT-4821-003", operation.ItemCode("MEC-GAT-4821", 2))
}

func TestRenumberItems(t *testing.T) {
	items := []operation.LineItem{
		{Code: "OP-001", Description: "first"},
		{Code: "OP-002", Description: "second"},
		{Code: "OP-003", Description: "third"},
	}

	// Remove the middle item; the tail must be renumbered, not left as OP-003.
	items = append(items[:1], items[2:]...)
	operation.RenumberItems("OP", items)

	require.Len(t, items, 2)
	assert.Equal(t, "OP-001", items[0].Code)
	assert.Equal(t, "OP-002", items[1].Code)
	assert.Equal(t, "third", items[1].Description)
}

func TestNewOperationCode(t *testing.T) {
	now := time.UnixMilli(1700000004821)

	code := operation.NewOperationCode("Mec Doors Co", "Gate Installation", now)
	assert.Equal(t, "MEC-GAT-4821", code)

	short := operation.NewOperationCode("Al Mokawloon", "X", now)
	assert.Equal(t, "AL-X-4821", short)
}

func TestValidate(t *testing.T) {
	valid := func() *operation.Operation {
		return &operation.Operation{
			Items: []operation.LineItem{item(100000, 50)},
			Deductions: []operation.Deduction{
				{Name: "retention", Type: operation.DeductionPercentage, Value: 5, IsActive: true},
			},
			ReceivedPayments: []operation.ReceivedPayment{
				{Type: operation.PaymentCash, Amount: 1000},
			},
		}
	}

	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, operation.Validate(valid()))
	})

	t.Run("NegativeItemAmount", func(t *testing.T) {
		op := valid()
		op.Items[0].Amount = -1
		assert.ErrorIs(t, operation.Validate(op), operation.ErrInvalidInput)
	})

	t.Run("ExecutionPercentageAbove100", func(t *testing.T) {
		op := valid()
		op.Items[0].ExecutionPercentage = 100.5
		assert.ErrorIs(t, operation.Validate(op), operation.ErrInvalidInput)
	})

	t.Run("NegativeExecutionPercentage", func(t *testing.T) {
		op := valid()
		op.Items[0].ExecutionPercentage = -1
		assert.ErrorIs(t, operation.Validate(op), operation.ErrInvalidInput)
	})

	t.Run("NonFiniteDeduction", func(t *testing.T) {
		op := valid()
		op.Deductions[0].Value = math.NaN()
		assert.ErrorIs(t, operation.Validate(op), operation.ErrInvalidInput)
	})

	t.Run("PercentageDeductionAbove100", func(t *testing.T) {
		op := valid()
		op.Deductions[0].Value = 101
		assert.ErrorIs(t, operation.Validate(op), operation.ErrInvalidInput)
	})

	t.Run("NegativePaymentAmount", func(t *testing.T) {
		op := valid()
		op.ReceivedPayments[0].Amount = -5
		assert.ErrorIs(t, operation.Validate(op), operation.ErrInvalidInput)
	})
}
