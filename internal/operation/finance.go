package operation

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// paymentEpsilon is the tolerance, in minor units, used when classifying a
// completed operation's payment state. Percentage math rounds to whole minor
// units, so totals can land one unit off an exact settlement.
const paymentEpsilon = 1

// ItemExecuted returns the earned portion of a line item's face value,
// rounded to whole minor units.
func ItemExecuted(it LineItem) int64 {
	return int64(math.Round(float64(it.Amount) * it.ExecutionPercentage / 100))
}

// ExecutedTotal sums the executed value of all items. Empty input yields 0.
func ExecutedTotal(items []LineItem) int64 {
	var total int64
	for _, it := range items {
		total += ItemExecuted(it)
	}

	return total
}

// ContractTotal sums the face value of all items, ignoring execution.
func ContractTotal(items []LineItem) int64 {
	var total int64
	for _, it := range items {
		total += it.Amount
	}

	return total
}

// TotalDeductions computes the sum of active deductions against the executed
// total. Percentage deductions apply to the executed total, never the full
// contract total; inactive deductions contribute nothing.
func TotalDeductions(executed int64, deductions []Deduction) int64 {
	var total int64

	for _, d := range deductions {
		if !d.IsActive {
			continue
		}

		switch d.Type {
		case DeductionPercentage:
			total += int64(math.Round(float64(executed) * d.Value / 100))
		case DeductionFixed:
			total += int64(math.Round(d.Value))
		}
	}

	return total
}

// TotalReceived sums all recorded payments. Checks count from the moment they
// are recorded, whether or not a receipt date is set.
func TotalReceived(payments []ReceivedPayment) int64 {
	var total int64
	for _, p := range payments {
		total += p.Amount
	}

	return total
}

// NetAmount is the executed total minus active deductions. It may be negative
// when fixed deductions exceed the executed value; callers must handle that.
func NetAmount(items []LineItem, deductions []Deduction) int64 {
	executed := ExecutedTotal(items)
	return executed - TotalDeductions(executed, deductions)
}

// NetDue is what remains payable after deductions and received payments.
func NetDue(items []LineItem, deductions []Deduction, payments []ReceivedPayment) int64 {
	return NetAmount(items, deductions) - TotalReceived(payments)
}

// OverallExecutionPercentage is the executed share of the contract total, in
// [0, 100]. An operation with no items, or items summing to zero, is 0%,
// never NaN.
func OverallExecutionPercentage(items []LineItem) float64 {
	contract := ContractTotal(items)
	if contract <= 0 {
		return 0
	}

	return float64(ExecutedTotal(items)) / float64(contract) * 100
}

// Summary bundles every derived financial figure for an operation. All money
// fields are minor currency units.
type Summary struct {
	ContractTotal   int64
	ExecutedTotal   int64
	TotalDeductions int64
	NetAmount       int64
	TotalReceived   int64
	NetDue          int64
	ExecutionPct    float64
	Status          Status
}

// Summarize recomputes all derived figures from the operation's current items,
// deductions and payments. It never reads the cached fields and never mutates
// its input.
func Summarize(op *Operation) Summary {
	executed := ExecutedTotal(op.Items)
	deductions := TotalDeductions(executed, op.Deductions)
	received := TotalReceived(op.ReceivedPayments)
	contract := ContractTotal(op.Items)

	s := Summary{
		ContractTotal:   contract,
		ExecutedTotal:   executed,
		TotalDeductions: deductions,
		NetAmount:       executed - deductions,
		TotalReceived:   received,
		NetDue:          executed - deductions - received,
		ExecutionPct:    OverallExecutionPercentage(op.Items),
	}
	s.Status = classify(s)

	return s
}

// ComputeStatus derives the operation's lifecycle status from its current
// state. The classification is recomputed fresh on every call; there is no
// persisted state machine.
func ComputeStatus(op *Operation) Status {
	return Summarize(op).Status
}

// classify applies the status decision procedure. The branch order matters:
// overpaid is checked before exact settlement, which is checked before
// partial, which is checked before none.
func classify(s Summary) Status {
	if s.ExecutionPct < 100 {
		return StatusInProgress
	}

	// Deductions count as paid: they reduce the payer's remaining
	// obligation even though no cash moved.
	totalPaid := s.TotalReceived + s.TotalDeductions

	switch {
	case totalPaid > s.ContractTotal+paymentEpsilon:
		return StatusOverpaid
	case abs64(totalPaid-s.ContractTotal) <= paymentEpsilon:
		return StatusFullPayment
	case totalPaid > 0:
		return StatusPartialPayment
	default:
		return StatusCompleted
	}
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}

	return v
}

// ItemCode builds a line item code from the operation code and the item's
// zero-based position: OP-001, OP-002, ... Item codes stay contiguous, so
// removing an item renumbers everything after it.
func ItemCode(operationCode string, index int) string {
	return fmt.Sprintf("%s-%03d", operationCode, index+1)
}

// RenumberItems rewrites every item code to match its current position.
func RenumberItems(operationCode string, items []LineItem) {
	for i := range items {
		items[i].Code = ItemCode(operationCode, i)
	}
}

// NewOperationCode derives a human-readable operation code from the client
// and operation names plus a timestamp suffix, e.g. "MEC-GAT-4821".
func NewOperationCode(clientName, operationName string, now time.Time) string {
	millis := fmt.Sprintf("%d", now.UnixMilli())

	return fmt.Sprintf("%s-%s-%s",
		codePrefix(clientName),
		codePrefix(operationName),
		millis[len(millis)-4:],
	)
}

func codePrefix(name string) string {
	word, _, _ := strings.Cut(strings.TrimSpace(name), " ")
	if len(word) > 3 {
		word = word[:3]
	}

	return strings.ToUpper(word)
}
