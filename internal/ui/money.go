package ui

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var moneyPrinter = message.NewPrinter(language.English)

// Money formats an amount with two decimals and thousands separators.
func Money(v float64) string {
	return moneyPrinter.Sprintf("$%.2f", v)
}

// Percent formats a 0..100 progress value.
func Percent(v float64) string {
	return moneyPrinter.Sprintf("%.0f%%", v)
}
