package cart

import "github.com/shopspring/decimal"

// taxDivisor extracts the tax component from a tax-inclusive total at a
// fixed 20% rate: tax = total - total/1.2.
var taxDivisor = decimal.RequireFromString("1.2")

// Subtotal returns the unit price multiplied by the quantity.
func Subtotal(price decimal.Decimal, qty int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(qty)))
}

// Total sums the subtotals of all items. An empty list yields zero.
func Total(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal)
	}
	return total
}

// Tax returns the tax portion of a tax-inclusive total. The 20% rate is a
// business constant of the shop, not configuration.
func Tax(total decimal.Decimal) decimal.Decimal {
	return total.Sub(total.Div(taxDivisor))
}
