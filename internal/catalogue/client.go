// Package catalogue provides the HTTP client for the product catalogue
// service, which the cart consumes only through the product.Lookup contract.
package catalogue

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/roboshop/cart-service/internal/domain/product"
)

var _ product.Lookup = (*Client)(nil)

// Client resolves SKUs against the catalogue's GET /product/{sku} endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a catalogue client for the given base URL. Outgoing
// requests are traced via otelhttp; the client timeout is a safety net on
// top of whatever deadline the caller's context carries.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   10 * time.Second,
		},
	}
}

// productResponse is the catalogue wire format for a single product.
type productResponse struct {
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price"`
	InStock int             `json:"instock"`
}

// GetProduct fetches one product by SKU. A catalogue 404 becomes
// product.ErrNotFound; any other non-200 status is an error.
func (c *Client) GetProduct(ctx context.Context, sku string) (*product.Product, error) {
	u := c.baseURL + "/product/" + url.PathEscape(sku)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "catalogue request")
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, product.ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, errors.Errorf("catalogue: unexpected status %d", resp.StatusCode)
	}

	var pr productResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, errors.Wrap(err, "decode product")
	}

	return &product.Product{
		SKU:     sku,
		Name:    pr.Name,
		Price:   pr.Price,
		InStock: pr.InStock,
	}, nil
}
