package cart

import (
	"context"
	"slices"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/roboshop/cart-service/internal/domain/product"
)

// Sentinel errors for cart operations.
var (
	// ErrNotFound is returned when no record exists for a cart id.
	ErrNotFound = errors.New("cart not found")
	// ErrItemNotFound is returned when a SKU is not present in the cart.
	ErrItemNotFound = errors.New("not in cart")
	// ErrInvalidQuantity is returned for out-of-range quantities: AddItem
	// requires qty > 0, UpdateQuantity requires qty >= 0.
	ErrInvalidQuantity = errors.New("invalid quantity")
	// ErrInvalidShipping is returned when the shipping request is missing
	// required fields.
	ErrInvalidShipping = errors.New("shipping data missing")
)

// ShippingRequest holds the input for SetShipping. Distance is accepted
// and validated but not used in the cost yet; it is reserved for future
// rate computation.
type ShippingRequest struct {
	Distance decimal.Decimal
	Cost     decimal.Decimal
	Location string
}

// Service is the cart mutation engine. Every operation reads the full
// record, applies the change, recomputes total and tax, and writes the
// record back with a refreshed expiry. There is no per-cart lock: two
// concurrent operations on the same id interleave their read-modify-write
// cycles and the second write wins. That weak consistency is accepted for
// session carts.
type Service struct {
	store    Store
	products product.Lookup
	metrics  MetricsSink
}

// NewService creates a cart Service with the required collaborators.
func NewService(store Store, products product.Lookup, metrics MetricsSink) *Service {
	return &Service{
		store:    store,
		products: products,
		metrics:  metrics,
	}
}

// Get returns the cart for the given id, or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*Cart, error) {
	return s.store.Get(ctx, id)
}

// Delete removes the cart record and reports whether one existed.
// Deleting an absent cart is not an error.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	return s.store.Delete(ctx, id)
}

// Rename moves the full cart record from one id to another. The content is
// unchanged, so no recomputation happens; only the location and expiry move.
func (s *Service) Rename(ctx context.Context, fromID, toID string) (*Cart, error) {
	return s.store.Rename(ctx, fromID, toID)
}

// AddItem adds qty units of a SKU to the cart, creating the cart when it
// does not exist yet. The product is resolved through the catalogue on
// every call: when the SKU is already in the cart its quantity grows by
// qty and its unit price is refreshed from the latest lookup, otherwise a
// new line is appended at the end. On success the item counter is
// incremented by qty.
func (s *Service) AddItem(ctx context.Context, id, sku string, qty int) (*Cart, error) {
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}

	p, err := s.products.GetProduct(ctx, sku)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, product.ErrNotFound
		}
		return nil, errors.Wrap(err, "lookup product")
	}
	if p.InStock == 0 {
		return nil, product.ErrOutOfStock
	}

	// Implicit creation: the first add for an id starts from an empty cart.
	c, err := s.store.Get(ctx, id)
	switch {
	case errors.Is(err, ErrNotFound):
		c = New(id)
	case err != nil:
		return nil, errors.Wrap(err, "get cart")
	}

	if i := c.findItem(sku); i >= 0 {
		c.Items[i].Qty += qty
		c.Items[i].Name = p.Name
		c.Items[i].Price = p.Price
		c.Items[i].Subtotal = Subtotal(p.Price, c.Items[i].Qty)
	} else {
		c.Items = append(c.Items, LineItem{
			SKU:      sku,
			Name:     p.Name,
			Price:    p.Price,
			Qty:      qty,
			Subtotal: Subtotal(p.Price, qty),
		})
	}
	c.recompute()

	if err := s.store.Put(ctx, id, c); err != nil {
		return nil, errors.Wrap(err, "put cart")
	}

	s.metrics.ItemsAdded(ctx, qty)
	return c, nil
}

// UpdateQuantity sets the quantity of an existing line item, recomputing
// its subtotal from the already-stored unit price. A qty of 0 removes the
// line entirely; this is the designated removal path. The remaining items
// keep their original relative order.
func (s *Service) UpdateQuantity(ctx context.Context, id, sku string, qty int) (*Cart, error) {
	if qty < 0 {
		return nil, ErrInvalidQuantity
	}

	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	i := c.findItem(sku)
	if i < 0 {
		return nil, ErrItemNotFound
	}

	if qty == 0 {
		c.Items = slices.Delete(c.Items, i, i+1)
	} else {
		c.Items[i].Qty = qty
		c.Items[i].Subtotal = Subtotal(c.Items[i].Price, qty)
	}
	c.recompute()

	if err := s.store.Put(ctx, id, c); err != nil {
		return nil, errors.Wrap(err, "put cart")
	}
	return c, nil
}

// SetShipping builds or replaces the single shipping line item with
// quantity 1 and the given cost. A second call replaces the previous
// shipping line in place, keeping its position in the item list.
func (s *Service) SetShipping(ctx context.Context, id string, req ShippingRequest) (*Cart, error) {
	if req.Location == "" {
		return nil, ErrInvalidShipping
	}

	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	item := LineItem{
		SKU:      ShipSKU,
		Name:     "shipping to " + req.Location,
		Price:    req.Cost,
		Qty:      1,
		Subtotal: req.Cost,
	}
	if i := c.findItem(ShipSKU); i >= 0 {
		c.Items[i] = item
	} else {
		c.Items = append(c.Items, item)
	}
	c.recompute()

	if err := s.store.Put(ctx, id, c); err != nil {
		return nil, errors.Wrap(err, "put cart")
	}
	return c, nil
}
