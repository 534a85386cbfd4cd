package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSubtotal(t *testing.T) {
	assert.True(t, d("25.50").Equal(Subtotal(d("12.75"), 2)))
	assert.True(t, d("0").Equal(Subtotal(d("9.99"), 0)))
}

func TestTotal_Empty(t *testing.T) {
	assert.True(t, decimal.Zero.Equal(Total(nil)))
	assert.True(t, decimal.Zero.Equal(Total([]LineItem{})))
}

func TestTotal_SumsSubtotals(t *testing.T) {
	items := []LineItem{
		{SKU: "a", Subtotal: d("10.00")},
		{SKU: "b", Subtotal: d("0.01")},
		{SKU: "c", Subtotal: d("89.99")},
	}
	assert.True(t, d("100").Equal(Total(items)))
}

func TestTax_ExtractsInclusiveRate(t *testing.T) {
	// A tax-inclusive total of 120 contains exactly 20 of tax at 20%.
	assert.True(t, d("20").Equal(Tax(d("120"))))
	assert.True(t, decimal.Zero.Equal(Tax(decimal.Zero)))
}

func TestTax_RoundsToExpectedCents(t *testing.T) {
	// total=20 -> tax = 20 - 20/1.2 = 3.33...
	got := Tax(d("20")).Round(2)
	assert.True(t, d("3.33").Equal(got), "got %s", got)
}
