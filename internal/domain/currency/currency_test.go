package currency_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/okian/ratecard/internal/domain/currency"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	c, ok := currency.Lookup(" eur ")
	assert.True(t, ok)
	assert.Equal(t, "€", c.Symbol)

	c, ok = currency.Lookup("XYZ")
	assert.False(t, ok)
	assert.Equal(t, currency.Base, c.Code)

	for _, code := range currency.Codes() {
		_, ok := currency.Lookup(code)
		assert.True(t, ok, code)
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		usd  float64
		code string
		want string
	}{
		{usd: 632, code: "USD", want: "$632"},
		{usd: 632, code: "EUR", want: "€581"},
		{usd: 1_234_567, code: "usd", want: "$1,234,567"},
		{usd: 1000, code: "JPY", want: "¥149,500"},
		{usd: 50, code: "nope", want: "$50"},
		{usd: 0, code: "GBP", want: "£0"},
	}
	for _, tt := range tests {
		t.Run(tt.code+"/"+tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, currency.Format(tt.usd, tt.code))
		})
	}
}

func TestRange(t *testing.T) {
	d := currency.Range(506, 632, 758, "GBP")
	assert.Equal(t, "GBP", d.Currency.Code)
	assert.Equal(t, "£400", d.Minimum)
	assert.Equal(t, "£499", d.Average)
	assert.Equal(t, "£599", d.Maximum)
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name string
		usd  float64
		code string
		want string
	}{
		{name: "exact", usd: 632, code: "EUR", want: "581"},
		{name: "half rounds up", usd: 50, code: "GBP", want: "40"},
		{name: "binary-unfriendly rate", usd: 250, code: "INR", want: "20775"},
		{name: "half of a yen", usd: 1, code: "JPY", want: "150"},
		{name: "unknown code is usd", usd: 12.5, code: "XXX", want: "13"},
		{name: "nan", usd: math.NaN(), code: "EUR", want: "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, currency.Convert(tt.usd, tt.code).String())
		})
	}
}

func TestRateJSON(t *testing.T) {
	c, _ := currency.Lookup("EUR")
	b, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":"EUR","symbol":"€","rate":"0.92"}`, string(b))
}
