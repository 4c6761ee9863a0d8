// Package currency renders USD amounts in other currencies using a fixed
// rate table. It is presentation only and never feeds back into pricing.
package currency

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Base is the unit every computation runs in.
const Base = "USD"

// Currency is one entry of the rate table. Rate is units per USD.
type Currency struct {
	Code   string          `json:"code"`
	Symbol string          `json:"symbol"`
	Rate   decimal.Decimal `json:"rate"`
}

var table = map[string]Currency{
	"USD": {Code: "USD", Symbol: "$", Rate: decimal.NewFromInt(1)},
	"EUR": {Code: "EUR", Symbol: "€", Rate: decimal.RequireFromString("0.92")},
	"GBP": {Code: "GBP", Symbol: "£", Rate: decimal.RequireFromString("0.79")},
	"CAD": {Code: "CAD", Symbol: "CA$", Rate: decimal.RequireFromString("1.36")},
	"AUD": {Code: "AUD", Symbol: "A$", Rate: decimal.RequireFromString("1.52")},
	"INR": {Code: "INR", Symbol: "₹", Rate: decimal.RequireFromString("83.1")},
	"BRL": {Code: "BRL", Symbol: "R$", Rate: decimal.RequireFromString("4.97")},
	"JPY": {Code: "JPY", Symbol: "¥", Rate: decimal.RequireFromString("149.5")},
}

// Lookup returns the currency for code. Unknown codes return USD and false.
func Lookup(code string) (Currency, bool) {
	c, ok := table[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return table[Base], false
	}
	return c, true
}

// Codes returns the supported codes.
func Codes() []string {
	return []string{"USD", "EUR", "GBP", "CAD", "AUD", "INR", "BRL", "JPY"}
}

// Convert returns usd expressed in code, rounded half away from zero to
// whole units. Non-finite amounts convert to zero.
func Convert(usd float64, code string) decimal.Decimal {
	if math.IsNaN(usd) || math.IsInf(usd, 0) {
		return decimal.Zero
	}
	c, _ := Lookup(code)
	return decimal.NewFromFloat(usd).Mul(c.Rate).Round(0)
}

// Format renders usd in code with its symbol and thousands separators.
func Format(usd float64, code string) string {
	c, _ := Lookup(code)
	return c.Symbol + group(Convert(usd, c.Code).IntPart())
}

func group(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	s := strconv.FormatInt(n, 10)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(s) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(s[:lead])
	for i := lead; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// Display is a price range rendered in one currency.
type Display struct {
	Currency Currency `json:"currency"`
	Minimum  string   `json:"minimum"`
	Average  string   `json:"average"`
	Maximum  string   `json:"maximum"`
}

// Range renders a USD min/avg/max range in code.
func Range(minimum, average, maximum int64, code string) Display {
	c, _ := Lookup(code)
	return Display{
		Currency: c,
		Minimum:  Format(float64(minimum), c.Code),
		Average:  Format(float64(average), c.Code),
		Maximum:  Format(float64(maximum), c.Code),
	}
}
