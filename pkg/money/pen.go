// Package money formatea montos en soles (PEN) con las convenciones de es-PE.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	printer = message.NewPrinter(language.MustParse("es-PE"))
	pen     = currency.MustParseISO("PEN")
)

// FormatPEN devuelve el monto con símbolo de moneda y dos decimales, ej: "S/ 79.90".
func FormatPEN(amount decimal.Decimal) string {
	f, _ := amount.Round(2).Float64()
	return printer.Sprint(currency.Symbol(pen.Amount(f)))
}
