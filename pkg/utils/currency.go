package utils

import (
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// MoneyFormatter renders amounts with the locale's grouping followed by the
// ISO currency code, e.g. "12.500,00 EUR" for German.
type MoneyFormatter struct {
	unit    currency.Unit
	printer *message.Printer
}

func NewMoneyFormatter(code, lang string) *MoneyFormatter {
	unit, err := currency.ParseISO(code)
	if err != nil {
		unit = currency.EUR
	}
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	return &MoneyFormatter{unit: unit, printer: message.NewPrinter(tag)}
}

func (f *MoneyFormatter) Format(amount float64) string {
	return f.printer.Sprint(number.Decimal(amount, number.Scale(2))) + " " + f.unit.String()
}

// FormatOptional returns "" for a missing amount.
func (f *MoneyFormatter) FormatOptional(amount *float64) string {
	if amount == nil {
		return ""
	}
	return f.Format(*amount)
}
