package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type RegisterHTTPRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginHTTPRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type PaymentStatusHTTPRequest struct {
	PaymentStatus string `json:"paymentStatus"`
}

func (h *HTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterHTTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginHTTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *HTTPHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Profile(r.Context(), caller(r).UserID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *HTTPHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAllOrders(r.Context(), caller(r))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *HTTPHandler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListMyOrders(r.Context(), caller(r))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *HTTPHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetOrder(r.Context(), caller(r), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *HTTPHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	var req PaymentStatusHTTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	order, err := h.orders.UpdatePaymentStatus(r.Context(), caller(r), chi.URLParam(r, "id"), req.PaymentStatus)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *HTTPHandler) GetBill(w http.ResponseWriter, r *http.Request) {
	bill, err := h.orders.GetBill(r.Context(), caller(r), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bill)
}
