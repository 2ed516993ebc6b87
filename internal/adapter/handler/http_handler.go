package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
	"github.com/rl1809/storefront/internal/port"
)

const maxBodyBytes = 1 << 20

type HTTPHandler struct {
	users     *service.UserService
	catalog   *service.CatalogService
	carts     *service.CartService
	wishlists *service.WishlistService
	checkout  *service.CheckoutService
	orders    *service.OrderService
	tokens    port.TokenVerifier
}

type Services struct {
	Users     *service.UserService
	Catalog   *service.CatalogService
	Carts     *service.CartService
	Wishlists *service.WishlistService
	Checkout  *service.CheckoutService
	Orders    *service.OrderService
}

type ErrorResponse struct {
	Error   domain.Kind `json:"error"`
	Message string      `json:"message"`
}

func NewHTTPHandler(svc Services, tokens port.TokenVerifier) *HTTPHandler {
	return &HTTPHandler{
		users:     svc.Users,
		catalog:   svc.Catalog,
		carts:     svc.Carts,
		wishlists: svc.Wishlists,
		checkout:  svc.Checkout,
		orders:    svc.Orders,
		tokens:    tokens,
	}
}

func (h *HTTPHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/", h.Register)
			r.Post("/login", h.Login)
			r.With(h.authenticate).Get("/me", h.Profile)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Get("/{id}", h.GetProduct)
			r.Group(func(r chi.Router) {
				r.Use(h.authenticate, h.storedRole, requireAdmin)
				r.Post("/", h.CreateProduct)
				r.Put("/{id}", h.UpdateProduct)
				r.Delete("/{id}", h.DeleteProduct)
			})
		})

		r.Route("/courses", func(r chi.Router) {
			r.Get("/", h.ListCourses)
			r.Get("/{id}", h.GetCourse)
			r.Group(func(r chi.Router) {
				r.Use(h.authenticate, h.storedRole, requireAdmin)
				r.Post("/", h.CreateCourse)
				r.Put("/{id}", h.UpdateCourse)
				r.Delete("/{id}", h.DeleteCourse)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(h.authenticate)

			r.Post("/cart", h.AddToCart)
			r.Get("/cart", h.GetCart)
			r.Put("/cart/{itemId}", h.UpdateCartItem)
			r.Delete("/cart/{itemId}", h.RemoveCartItem)

			r.Post("/wishlist", h.AddToWishlist)
			r.Get("/wishlist", h.GetWishlist)
			r.Delete("/wishlist/{itemId}", h.RemoveFromWishlist)

			r.Post("/checkout", h.Checkout)

			r.Group(func(r chi.Router) {
				r.Use(h.storedRole)
				r.Get("/orders", h.ListOrders)
				r.Get("/orders/my", h.ListMyOrders)
				r.Get("/orders/{id}", h.GetOrder)
				r.Put("/orders/{id}", h.UpdateOrder)
				r.Get("/orders/{id}/bill", h.GetBill)
			})
		})
	})

	return r
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, domain.KindInvalidInput, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, kind domain.Kind, msg string) {
	writeJSON(w, status, ErrorResponse{Error: kind, Message: msg})
}

// respondErr maps a service error to a status code. Unknown errors are
// logged and reported without detail.
func respondErr(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.KindOf(err)
	status := httpStatus(kind)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
		writeError(w, status, domain.KindStorageFailure, "internal error")
		return
	}
	writeError(w, status, kind, err.Error())
}

func httpStatus(kind domain.Kind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindDuplicateRequest, domain.KindCheckoutInProgress:
		return http.StatusConflict
	case domain.KindStorageFailure:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
