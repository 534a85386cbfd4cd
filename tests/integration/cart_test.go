//go:build integration

package integration

import (
	"io"
	"net/http"
	"strings"
	"testing"
)

// Products served by the wiremock catalogue stub (see stubs/mappings).
const (
	skuWatson = "Watson" // 200.99, in stock
	skuK9     = "K9"     // 99.99, out of stock
)

func TestGetCart_Missing(t *testing.T) {
	resp := doGet(t, "/cart/integ-missing")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestAddItem_FullLifecycle(t *testing.T) {
	cartID := "integ-lifecycle"

	// First add implicitly creates the cart.
	resp := doGet(t, "/add/"+cartID+"/"+skuWatson+"/2")
	cart := decodeJSON[cartResponse](t, resp)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add: expected 200, got %d", resp.StatusCode)
	}
	if len(cart.Items) != 1 || cart.Items[0].Qty != 2 {
		t.Fatalf("unexpected items: %+v", cart.Items)
	}
	if !approxEqual(cart.Total, 401.98) {
		t.Errorf("total: got %v, want 401.98", cart.Total)
	}
	if !approxEqual(cart.Tax, cart.Total-cart.Total/1.2) {
		t.Errorf("tax: got %v for total %v", cart.Tax, cart.Total)
	}

	// Adding the same SKU merges into one line.
	resp = doGet(t, "/add/"+cartID+"/"+skuWatson+"/3")
	cart = decodeJSON[cartResponse](t, resp)
	resp.Body.Close()

	if len(cart.Items) != 1 || cart.Items[0].Qty != 5 {
		t.Fatalf("merge: unexpected items: %+v", cart.Items)
	}
	if !approxEqual(cart.Items[0].Subtotal, 1004.95) {
		t.Errorf("merged subtotal: got %v, want 1004.95", cart.Items[0].Subtotal)
	}

	// Shipping attaches the single SHIP line.
	resp = doPost(t, "/shipping/"+cartID, shippingRequest{Distance: 100, Cost: 4.99, Location: "Oslo"})
	cart = decodeJSON[cartResponse](t, resp)
	resp.Body.Close()

	if len(cart.Items) != 2 || cart.Items[1].SKU != "SHIP" {
		t.Fatalf("shipping: unexpected items: %+v", cart.Items)
	}
	if cart.Items[1].Name != "shipping to Oslo" {
		t.Errorf("shipping name: got %q", cart.Items[1].Name)
	}

	// Rename moves the record.
	resp = doGet(t, "/rename/"+cartID+"/"+cartID+"-renamed")
	cart = decodeJSON[cartResponse](t, resp)
	resp.Body.Close()

	if cart.ID != cartID+"-renamed" {
		t.Errorf("rename: got id %q", cart.ID)
	}

	resp = doGet(t, "/cart/"+cartID)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("old id still present: %d", resp.StatusCode)
	}

	// Update to zero removes the product line, leaving only shipping.
	resp = doGet(t, "/update/"+cartID+"-renamed/"+skuWatson+"/0")
	cart = decodeJSON[cartResponse](t, resp)
	resp.Body.Close()

	if len(cart.Items) != 1 || cart.Items[0].SKU != "SHIP" {
		t.Fatalf("remove: unexpected items: %+v", cart.Items)
	}

	// Delete reports the literal token, then "cart not found".
	resp = doDelete(t, "/cart/"+cartID+"-renamed")
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "OK" {
		t.Errorf("delete: got body %q, want OK", body)
	}

	resp = doDelete(t, "/cart/"+cartID+"-renamed")
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "cart not found" {
		t.Errorf("second delete: got body %q", body)
	}
}

func TestAddItem_Validation(t *testing.T) {
	for _, tt := range []struct {
		path       string
		wantStatus int
		wantBody   string
	}{
		{"/add/integ-val/" + skuWatson + "/0", http.StatusBadRequest, "quantity must be a number > 0"},
		{"/add/integ-val/" + skuWatson + "/abc", http.StatusBadRequest, "quantity must be a number > 0"},
		{"/add/integ-val/NOSUCH/1", http.StatusNotFound, "product not found"},
		{"/add/integ-val/" + skuK9 + "/1", http.StatusNotFound, "out of stock"},
	} {
		resp := doGet(t, tt.path)
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != tt.wantStatus {
			t.Errorf("%s: got status %d, want %d", tt.path, resp.StatusCode, tt.wantStatus)
		}
		if got := strings.TrimSpace(string(body)); got != tt.wantBody {
			t.Errorf("%s: got body %q, want %q", tt.path, got, tt.wantBody)
		}

		resp = doGet(t, "/cart/integ-val")
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("%s: failed add must not create a cart", tt.path)
		}
	}
}

func TestSetShipping_MissingFields(t *testing.T) {
	resp := doGet(t, "/add/integ-ship/"+skuWatson+"/1")
	resp.Body.Close()

	resp = doPost(t, "/shipping/integ-ship", map[string]any{"cost": 4.99})
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if got := strings.TrimSpace(string(body)); got != "shipping data missing" {
		t.Errorf("got body %q", got)
	}
}
