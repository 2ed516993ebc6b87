package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rl1809/storefront/internal/core/service"
)

type CartItemHTTPRequest struct {
	CourseID  string `json:"courseId"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type QuantityHTTPRequest struct {
	Quantity int `json:"quantity"`
}

const idempotencyHeader = "Idempotency-Key"

func (h *HTTPHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req CartItemHTTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	cart, err := h.carts.AddItem(r.Context(), caller(r).UserID, service.AddItemRequest{
		CourseID:  req.CourseID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *HTTPHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.carts.GetCart(r.Context(), caller(r).UserID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *HTTPHandler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req QuantityHTTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	cart, err := h.carts.UpdateItemQuantity(r.Context(), caller(r).UserID, chi.URLParam(r, "itemId"), req.Quantity)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *HTTPHandler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	cart, err := h.carts.RemoveItem(r.Context(), caller(r).UserID, chi.URLParam(r, "itemId"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *HTTPHandler) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	var req CartItemHTTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	wishlist, err := h.wishlists.AddToWishlist(r.Context(), caller(r).UserID, req.CourseID, req.ProductID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wishlist)
}

func (h *HTTPHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	wishlist, err := h.wishlists.GetWishlist(r.Context(), caller(r).UserID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wishlist)
}

func (h *HTTPHandler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	wishlist, err := h.wishlists.RemoveFromWishlist(r.Context(), caller(r).UserID, chi.URLParam(r, "itemId"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wishlist)
}

func (h *HTTPHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	result, err := h.checkout.Checkout(r.Context(), caller(r).UserID, r.Header.Get(idempotencyHeader))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

