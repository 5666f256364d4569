// Package money formats whole-unit integer amounts as localized
// currency strings. Amounts carry no fractional part (e.g. whole CLP).
package money

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders integer amounts for a single locale
type Formatter struct {
	printer *message.Printer
	symbol  string
}

// NewFormatter creates a formatter for the given BCP 47 locale tag and
// currency symbol. An unparseable tag falls back to Spanish.
func NewFormatter(locale, symbol string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Spanish
	}
	return &Formatter{
		printer: message.NewPrinter(tag),
		symbol:  symbol,
	}
}

// Format renders n with locale digit grouping, e.g. 2500 -> "$2.500"
// under es-CL
func (f *Formatter) Format(n int64) string {
	return f.printer.Sprintf("%s%v", f.symbol, number.Decimal(n))
}
