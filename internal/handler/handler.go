// Package handler maps HTTP requests onto cart service operations. It is a
// thin layer: parsing and response encoding live here, all cart semantics
// live in the domain service.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/roboshop/cart-service/internal/domain/cart"
	"github.com/roboshop/cart-service/internal/domain/product"
)

// Pinger reports store connectivity for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the cart HTTP API.
type Handler struct {
	service *cart.Service
	store   Pinger
}

// NewHandler constructs a Handler around the cart service.
func NewHandler(service *cart.Service, store Pinger) *Handler {
	return &Handler{
		service: service,
		store:   store,
	}
}

// Register mounts all cart routes on the given mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /cart/{id}", h.GetCart)
	mux.HandleFunc("DELETE /cart/{id}", h.DeleteCart)
	mux.HandleFunc("GET /rename/{from}/{to}", h.RenameCart)
	mux.HandleFunc("GET /add/{id}/{sku}/{qty}", h.AddItem)
	mux.HandleFunc("GET /update/{id}/{sku}/{qty}", h.UpdateQuantity)
	mux.HandleFunc("POST /shipping/{id}", h.SetShipping)
}

// Health reports overall app health plus store connectivity, in the shape
// monitoring has always scraped: {"app":"OK","redis":<bool>}.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("app")
	e.Str("OK")
	e.FieldStart("redis")
	e.Bool(h.store.Ping(ctx) == nil)
	e.ObjEnd()

	writeJSON(w, http.StatusOK, e.Bytes())
}

// statusFor maps domain errors onto HTTP status codes. Anything unmapped is
// a collaborator failure and surfaces as 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrInvalidShipping):
		return http.StatusBadRequest
	case errors.Is(err, cart.ErrNotFound),
		errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, product.ErrOutOfStock):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes a plain-text error body. Internal failures are logged
// with their cause but reported to the client as a generic message.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		zctx.From(r.Context()).Error("cart operation failed", zap.Error(err))
		msg = "internal server error"
	}
	http.Error(w, msg, status)
}

func respondCart(w http.ResponseWriter, c *cart.Cart) {
	writeJSON(w, http.StatusOK, encodeCart(c))
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// encodeCart renders the cart wire format. Monetary fields are written as
// raw JSON numbers straight from their decimal representation, so no
// float64 round-trip can distort them.
func encodeCart(c *cart.Cart) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("id")
	e.Str(c.ID)
	e.FieldStart("items")
	e.ArrStart()
	for _, item := range c.Items {
		e.ObjStart()
		e.FieldStart("sku")
		e.Str(item.SKU)
		e.FieldStart("name")
		e.Str(item.Name)
		e.FieldStart("price")
		e.Num(jx.Num(item.Price.String()))
		e.FieldStart("qty")
		e.Int(item.Qty)
		e.FieldStart("subtotal")
		e.Num(jx.Num(item.Subtotal.String()))
		e.ObjEnd()
	}
	e.ArrEnd()
	e.FieldStart("total")
	e.Num(jx.Num(c.Total.String()))
	e.FieldStart("tax")
	e.Num(jx.Num(c.Tax.String()))
	e.ObjEnd()
	return e.Bytes()
}
