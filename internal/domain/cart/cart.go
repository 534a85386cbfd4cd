// Package cart holds the cart aggregate, its pricing rules, and the
// mutation service that orchestrates cart operations against the record
// store and the product catalogue.
package cart

import (
	"context"

	"github.com/shopspring/decimal"
)

// ShipSKU is the reserved SKU for the synthetic shipping line item.
// A cart holds at most one shipping line and its quantity is always 1.
const ShipSKU = "SHIP"

// LineItem is one priced product line within a cart. Subtotal is always
// Price * Qty; it is recomputed on every mutation, never trusted from input.
// The JSON field names are the cart service wire format and must not change.
type LineItem struct {
	SKU      string          `json:"sku"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Qty      int             `json:"qty"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// Cart is the aggregate of line items plus derived totals for one cart id.
// Items keep first-insertion order: quantity updates do not reorder, and
// removal preserves the relative order of the remaining items.
type Cart struct {
	ID    string          `json:"id"`
	Items []LineItem      `json:"items"`
	Total decimal.Decimal `json:"total"`
	Tax   decimal.Decimal `json:"tax"`
}

// New returns an empty cart for the given id, the implicit state every
// cart starts from on its first add.
func New(id string) *Cart {
	return &Cart{
		ID:    id,
		Items: []LineItem{},
		Total: decimal.Zero,
		Tax:   decimal.Zero,
	}
}

// findItem returns the index of the item with the given SKU, or -1.
func (c *Cart) findItem(sku string) int {
	for i := range c.Items {
		if c.Items[i].SKU == sku {
			return i
		}
	}
	return -1
}

// recompute refreshes the derived Total and Tax fields from the items.
func (c *Cart) recompute() {
	c.Total = Total(c.Items)
	c.Tax = Tax(c.Total)
}

// Store defines persistence operations for cart records. Every Put fully
// replaces the record and resets its expiry; there are no partial-field
// updates. Get and Rename return ErrNotFound when no record exists.
type Store interface {
	Get(ctx context.Context, id string) (*Cart, error)
	Put(ctx context.Context, id string, c *Cart) error
	Delete(ctx context.Context, id string) (bool, error)
	Rename(ctx context.Context, fromID, toID string) (*Cart, error)
}

// MetricsSink receives item-quantity increments on successful adds.
type MetricsSink interface {
	ItemsAdded(ctx context.Context, qty int)
}
