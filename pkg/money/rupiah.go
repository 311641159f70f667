package money

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.Indonesian)

// Rupiah formats an amount in whole rupiah, e.g. 45000 -> "Rp 45.000"
func Rupiah(amount int64) string {
	if amount < 0 {
		return "-Rp " + printer.Sprintf("%d", -amount)
	}
	return "Rp " + printer.Sprintf("%d", amount)
}
