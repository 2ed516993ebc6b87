package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
)

type ProductHTTPRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Quantity    *int             `json:"quantity"`
}

type CourseHTTPRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Instructor  *string          `json:"instructor"`
	Price       *decimal.Decimal `json:"price"`
	Duration    *string          `json:"duration"`
}

type MessageResponse struct {
	Message string `json:"msg"`
}

func pageParams(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return page, limit
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	products, err := h.catalog.ListProducts(r.Context(), page, limit)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *HTTPHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *HTTPHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductHTTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Price == nil || req.Quantity == nil {
		writeError(w, http.StatusBadRequest, domain.KindInvalidInput, "price and quantity are required")
		return
	}

	product, err := h.catalog.CreateProduct(r.Context(), service.ProductInput{
		Name:        deref(req.Name),
		Description: deref(req.Description),
		Price:       *req.Price,
		Stock:       *req.Quantity,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (h *HTTPHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductHTTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.catalog.UpdateProduct(r.Context(), chi.URLParam(r, "id"), service.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Quantity,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *HTTPHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "product removed"})
}

func (h *HTTPHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	courses, err := h.catalog.ListCourses(r.Context(), page, limit)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, courses)
}

func (h *HTTPHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	course, err := h.catalog.GetCourse(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

func (h *HTTPHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var req CourseHTTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Price == nil {
		writeError(w, http.StatusBadRequest, domain.KindInvalidInput, "price is required")
		return
	}

	course, err := h.catalog.CreateCourse(r.Context(), service.CourseInput{
		Title:        deref(req.Title),
		Description:  deref(req.Description),
		InstructorID: deref(req.Instructor),
		Price:        *req.Price,
		Duration:     deref(req.Duration),
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, course)
}

func (h *HTTPHandler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	var req CourseHTTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	course, err := h.catalog.UpdateCourse(r.Context(), chi.URLParam(r, "id"), service.CoursePatch{
		Title:        req.Title,
		Description:  req.Description,
		InstructorID: req.Instructor,
		Price:        req.Price,
		Duration:     req.Duration,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

func (h *HTTPHandler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteCourse(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "course removed"})
}
