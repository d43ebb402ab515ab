package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Team-WishU/wishu-backend/internal/repository"
	"github.com/Team-WishU/wishu-backend/internal/service"
	"github.com/Team-WishU/wishu-backend/pkg/httputil"
	"github.com/Team-WishU/wishu-backend/pkg/middleware"
	"github.com/Team-WishU/wishu-backend/pkg/validator"
)

// defaultProductLimit caps unbounded catalog listings.
const defaultProductLimit = 50

// ProductHandler handles HTTP requests for the product catalog and wishes.
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{service: svc, logger: logger}
}

// CreateProductRequest is the JSON request body for sharing a product.
type CreateProductRequest struct {
	Title      string   `json:"title" validate:"required,min=1,max=200"`
	Brand      string   `json:"brand" validate:"omitempty,max=100"`
	Price      int64    `json:"price" validate:"required,min=0"`
	Category   string   `json:"category" validate:"required,min=1,max=50"`
	Tags       []string `json:"tags" validate:"omitempty,max=10,dive,min=1,max=30"`
	ImageURL   string   `json:"imageUrl" validate:"required,url"`
	ProductURL string   `json:"productUrl" validate:"omitempty,url"`
}

// Create handles POST /api/v1/products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.UserIDFromContext(r.Context())

	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	product, err := h.service.Create(r.Context(), callerID, service.CreateProductInput{
		Title:      req.Title,
		Brand:      req.Brand,
		Price:      req.Price,
		Category:   req.Category,
		Tags:       req.Tags,
		ImageURL:   req.ImageURL,
		ProductURL: req.ProductURL,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: product})
}

// List handles GET /api/v1/products?category=&tag=&limit=
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repository.ProductFilter{Limit: defaultProductLimit}

	if category := r.URL.Query().Get("category"); category != "" {
		filter.Category = &category
	}
	if tag := r.URL.Query().Get("tag"); tag != "" {
		filter.Tag = &tag
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 200 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "limit must be between 1 and 200"},
			})
			return
		}
		filter.Limit = limit
	}

	products, err := h.service.List(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: products})
}

// GetByID handles GET /api/v1/products/{id}
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")

	product, err := h.service.GetByID(r.Context(), productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// Delete handles DELETE /api/v1/products/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.UserIDFromContext(r.Context())
	productID := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), callerID, productID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: map[string]string{"id": productID, "status": "deleted"},
	})
}

// Wish handles POST /api/v1/products/{id}/wish
func (h *ProductHandler) Wish(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.UserIDFromContext(r.Context())
	productID := chi.URLParam(r, "id")

	if err := h.service.Wish(r.Context(), callerID, productID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{
		Data: map[string]string{"productId": productID, "status": "wished"},
	})
}

// Unwish handles DELETE /api/v1/products/{id}/wish
func (h *ProductHandler) Unwish(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.UserIDFromContext(r.Context())
	productID := chi.URLParam(r, "id")

	if err := h.service.Unwish(r.Context(), callerID, productID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: map[string]string{"productId": productID, "status": "unwished"},
	})
}

// MyWishes handles GET /api/v1/products/wishes/me
func (h *ProductHandler) MyWishes(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.UserIDFromContext(r.Context())

	products, err := h.service.MyWishes(r.Context(), callerID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: products})
}
