package operation

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput marks numeric input the calculations cannot be trusted on:
// negative amounts, percentages outside [0, 100], non-finite values.
var ErrInvalidInput = errors.New("invalid input")

// Validate checks every numeric field the derivation engine depends on.
// The calculation functions themselves stay permissive; services call this
// before recomputing and persisting derived figures.
func Validate(op *Operation) error {
	for _, it := range op.Items {
		if it.Amount < 0 {
			return fmt.Errorf("item %s: amount %d is negative: %w", it.Code, it.Amount, ErrInvalidInput)
		}

		if err := validPercentage(it.ExecutionPercentage); err != nil {
			return fmt.Errorf("item %s: execution percentage: %w", it.Code, err)
		}
	}

	for _, d := range op.Deductions {
		if math.IsNaN(d.Value) || math.IsInf(d.Value, 0) {
			return fmt.Errorf("deduction %q: value is not finite: %w", d.Name, ErrInvalidInput)
		}

		if d.Value < 0 {
			return fmt.Errorf("deduction %q: value %v is negative: %w", d.Name, d.Value, ErrInvalidInput)
		}

		if d.Type != DeductionPercentage && d.Type != DeductionFixed {
			return fmt.Errorf("deduction %q: unknown type %q: %w", d.Name, d.Type, ErrInvalidInput)
		}

		if d.Type == DeductionPercentage && d.Value > 100 {
			return fmt.Errorf("deduction %q: percentage %v exceeds 100: %w", d.Name, d.Value, ErrInvalidInput)
		}
	}

	for _, p := range op.ReceivedPayments {
		if p.Amount < 0 {
			return fmt.Errorf("payment %s: amount %d is negative: %w", p.ID, p.Amount, ErrInvalidInput)
		}

		if p.Type != PaymentCash && p.Type != PaymentCheck {
			return fmt.Errorf("payment %s: unknown type %q: %w", p.ID, p.Type, ErrInvalidInput)
		}
	}

	return nil
}

func validPercentage(pct float64) error {
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return fmt.Errorf("%v is not finite: %w", pct, ErrInvalidInput)
	}

	if pct < 0 || pct > 100 {
		return fmt.Errorf("%v is outside [0, 100]: %w", pct, ErrInvalidInput)
	}

	return nil
}
