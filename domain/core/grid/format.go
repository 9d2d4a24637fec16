package grid

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var displayPrinter = message.NewPrinter(language.English)

// FormatForDisplay rounds value to precision decimal places and inserts
// thousands separators, e.g. 1234.5 at precision 1 is "1,234.5".
// Ties round away from zero, so 2.5 at precision 0 is "3".
// A negative precision is treated as 0.
func FormatForDisplay(value float64, precision int) string {
	if precision < 0 {
		precision = 0
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		value = 0
	}
	value = roundHalfAway(value, precision)
	return displayPrinter.Sprint(number.Decimal(value,
		number.MinFractionDigits(precision),
		number.MaxFractionDigits(precision),
	))
}

// roundHalfAway rounds to precision decimal places. number.Decimal alone
// would round ties to even.
func roundHalfAway(value float64, precision int) float64 {
	p := math.Pow10(precision)
	rounded := math.Round(value*p) / p
	if math.IsNaN(rounded) || math.IsInf(rounded, 0) {
		return value
	}
	if rounded == 0 {
		// drop the sign of -0
		return 0
	}
	return rounded
}

// ParseInput reads a value typed into a cell. Thousands separators and
// surrounding whitespace are ignored; anything else that is not a finite
// number reads as 0.
func ParseInput(text string) float64 {
	cleaned := strings.TrimSpace(strings.ReplaceAll(text, ",", ""))
	if cleaned == "" {
		return 0
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
