package settings

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Money formats amounts for one localization.
type Money struct {
	printer *message.Printer
	symbol  string
}

// NewMoney builds a formatter. Unknown languages fall back to English and a
// missing symbol falls back to the currency code.
func NewMoney(loc Localization) *Money {
	tag, err := language.Parse(loc.Language)
	if err != nil || loc.Language == "" {
		tag = language.English
	}

	symbol := strings.TrimSpace(loc.CurrencySymbol)
	if symbol == "" && loc.Currency != "" {
		symbol = strings.ToUpper(loc.Currency) + " "
	}
	return &Money{printer: message.NewPrinter(tag), symbol: symbol}
}

// Format renders amount with two decimals and locale grouping.
func (m *Money) Format(amount decimal.Decimal) string {
	value, _ := amount.Round(2).Float64()
	sign := ""
	if value < 0 {
		sign = "-"
		value = -value
	}
	return sign + m.symbol + m.printer.Sprint(number.Decimal(value, number.Scale(2)))
}
