// Package money renders Ariary amounts for display.
package money

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.MustParse("fr-MG"))

// FormatAriary rounds to whole Ariary and groups thousands with dots: 1234567 -> "1.234.567 Ar".
func FormatAriary(d decimal.Decimal) string {
	grouped := printer.Sprintf("%d", d.Round(0).IntPart())
	// the French locale groups with a (narrow) no-break space
	dotted := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '.'
		}
		return r
	}, grouped)
	return dotted + " Ar"
}
