// Package currency holds the static table of supported currencies and the
// functions that render amounts for display.
package currency

import (
	"math"
	"sort"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Currency describes how amounts in one ISO 4217 currency are displayed.
type Currency struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
	Locale string `json:"locale"`
	Name   string `json:"name"`
}

// DefaultCode is used when nothing else is configured.
const DefaultCode = "PHP"

var table = map[string]Currency{
	"PHP": {Code: "PHP", Symbol: "₱", Locale: "en-PH", Name: "Philippine Peso"},
	"USD": {Code: "USD", Symbol: "$", Locale: "en-US", Name: "US Dollar"},
	"EUR": {Code: "EUR", Symbol: "€", Locale: "en-150", Name: "Euro"},
	"JPY": {Code: "JPY", Symbol: "¥", Locale: "ja-JP", Name: "Japanese Yen"},
	"GBP": {Code: "GBP", Symbol: "£", Locale: "en-GB", Name: "British Pound"},
	"AUD": {Code: "AUD", Symbol: "A$", Locale: "en-AU", Name: "Australian Dollar"},
	"CAD": {Code: "CAD", Symbol: "C$", Locale: "en-CA", Name: "Canadian Dollar"},
	"CNY": {Code: "CNY", Symbol: "¥", Locale: "zh-CN", Name: "Chinese Yuan"},
	"INR": {Code: "INR", Symbol: "₹", Locale: "en-IN", Name: "Indian Rupee"},
	"KRW": {Code: "KRW", Symbol: "₩", Locale: "ko-KR", Name: "South Korean Won"},
}

// Lookup returns the currency registered for code.
func Lookup(code string) (Currency, bool) {
	c, ok := table[code]
	return c, ok
}

// Default returns the fallback currency.
func Default() Currency {
	return table[DefaultCode]
}

// Available lists every supported currency ordered by code.
func Available() []Currency {
	out := make([]Currency, 0, len(table))
	for _, c := range table {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Options controls amount rendering.
type Options struct {
	HideSymbol bool
	Decimals   int
}

// DefaultOptions shows the symbol with two decimals.
func DefaultOptions() Options {
	return Options{Decimals: 2}
}

// Format renders amount with a fixed number of decimals and no grouping,
// e.g. "₱1234.50".
func Format(c Currency, amount float64, opts Options) string {
	s := strconv.FormatFloat(math.Abs(amount), 'f', opts.Decimals, 64)
	return withSymbol(c, s, amount < 0, opts)
}

// FormatGrouped renders amount with the digit grouping and decimal separator
// of the currency's locale, e.g. "$1,234.50" for USD.
func FormatGrouped(c Currency, amount float64, opts Options) string {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		tag = language.English
	}
	p := message.NewPrinter(tag)
	s := p.Sprint(number.Decimal(math.Abs(amount), number.Scale(opts.Decimals)))
	return withSymbol(c, s, amount < 0, opts)
}

// withSymbol puts the sign ahead of the symbol, e.g. "-₱5.00"
func withSymbol(c Currency, digits string, negative bool, opts Options) string {
	if !opts.HideSymbol {
		digits = c.Symbol + digits
	}
	if negative {
		digits = "-" + digits
	}
	return digits
}
