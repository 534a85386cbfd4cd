package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/roboshop/cart-service/internal/domain/cart"
)

// GetCart returns the cart as JSON, or 404 when absent.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondCart(w, c)
}

// DeleteCart removes the cart. Deleting an absent cart is not an error:
// the response distinguishes the two cases by body, not by status.
func (h *Handler) DeleteCart(w http.ResponseWriter, r *http.Request) {
	existed, err := h.service.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	if existed {
		_, _ = w.Write([]byte("OK"))
	} else {
		_, _ = w.Write([]byte("cart not found"))
	}
}

// RenameCart moves the full record to a new id and returns the moved cart.
func (h *Handler) RenameCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Rename(r.Context(), r.PathValue("from"), r.PathValue("to"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondCart(w, c)
}

// AddItem adds qty units of a SKU to the cart, creating it when needed.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	qty, err := strconv.Atoi(r.PathValue("qty"))
	if err != nil || qty < 1 {
		http.Error(w, "quantity must be a number > 0", http.StatusBadRequest)
		return
	}

	c, err := h.service.AddItem(r.Context(), r.PathValue("id"), r.PathValue("sku"), qty)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondCart(w, c)
}

// UpdateQuantity sets an item's quantity; zero removes the item.
func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	qty, err := strconv.Atoi(r.PathValue("qty"))
	if err != nil || qty < 0 {
		http.Error(w, "invalid quantity", http.StatusBadRequest)
		return
	}

	c, err := h.service.UpdateQuantity(r.Context(), r.PathValue("id"), r.PathValue("sku"), qty)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondCart(w, c)
}

// shippingBody is the request body for SetShipping. Pointer fields make
// missing keys distinguishable from zero values.
type shippingBody struct {
	Distance *decimal.Decimal `json:"distance"`
	Cost     *decimal.Decimal `json:"cost"`
	Location *string          `json:"location"`
}

// SetShipping attaches or replaces the shipping line item.
func (h *Handler) SetShipping(w http.ResponseWriter, r *http.Request) {
	var body shippingBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil ||
		body.Distance == nil || body.Cost == nil || body.Location == nil || *body.Location == "" {
		http.Error(w, "shipping data missing", http.StatusBadRequest)
		return
	}

	c, err := h.service.SetShipping(r.Context(), r.PathValue("id"), cart.ShippingRequest{
		Distance: *body.Distance,
		Cost:     *body.Cost,
		Location: *body.Location,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondCart(w, c)
}
