package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when the catalogue has no product for a SKU.
var ErrNotFound = errors.New("product not found")

// ErrOutOfStock is returned when a product exists but has no stock left.
// It surfaces with the same HTTP status as ErrNotFound but stays a
// distinct error so callers can tell the two cases apart.
var ErrOutOfStock = errors.New("out of stock")

// Product is the subset of catalogue data the cart needs to price a line item.
type Product struct {
	SKU     string
	Name    string
	Price   decimal.Decimal
	InStock int
}

// Lookup resolves a SKU against the product catalogue. Implementations
// return ErrNotFound when the SKU is unknown.
type Lookup interface {
	GetProduct(ctx context.Context, sku string) (*Product, error)
}
