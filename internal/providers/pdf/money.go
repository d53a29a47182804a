package pdf

import (
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var indianEnglish = language.MustParse("en-IN")

// FormatMoney prints whole rupees with Indian digit grouping.
func FormatMoney(units int64) string {
	if units < 0 {
		return "-" + FormatMoney(-units)
	}
	return "Rs. " + message.NewPrinter(indianEnglish).Sprintf("%d", units)
}

// FormatRate prints a percentage without trailing zeros.
func FormatRate(rate float64) string {
	return strconv.FormatFloat(rate, 'f', -1, 64)
}
