// Package metrics binds the cart's metric capabilities to OpenTelemetry
// instruments.
package metrics

import (
	"context"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/metric"

	"github.com/roboshop/cart-service/internal/domain/cart"
)

var _ cart.MetricsSink = (*ItemsCounter)(nil)

// ItemsCounter implements cart.MetricsSink with a monotonic counter of the
// total quantity added across all carts.
type ItemsCounter struct {
	counter metric.Int64Counter
}

// NewItemsCounter registers the items_added counter on the given meter.
func NewItemsCounter(meter metric.Meter) (*ItemsCounter, error) {
	counter, err := meter.Int64Counter("items_added",
		metric.WithDescription("running count of items added to cart"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create items_added counter")
	}
	return &ItemsCounter{counter: counter}, nil
}

// ItemsAdded records qty items added to a cart.
func (c *ItemsCounter) ItemsAdded(ctx context.Context, qty int) {
	c.counter.Add(ctx, int64(qty))
}
