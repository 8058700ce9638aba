package export

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatMoney renders a minor-unit amount as a grouped decimal with the
// currency code, e.g. "1,234.56 EGP".
func FormatMoney(minor int64, currency string) string {
	return printer.Sprintf("%.2f %s", float64(minor)/100.0, currency)
}

// FormatDate renders a date as DD/MM/YYYY.
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}
