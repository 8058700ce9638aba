package view

import (
	"context"
	"fmt"
	"time"
)

const dbTimeout = 5 * time.Second

// FormatAmount formats an amount stored in minor units into a human-readable string.
func FormatAmount(minor int64) string {
	return fmt.Sprintf("%.2f", float64(minor)/100.0)
}

// FormatDate formats a time.Time into DD/MM/YYYY.
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// FormatPct formats an execution percentage.
func FormatPct(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}
