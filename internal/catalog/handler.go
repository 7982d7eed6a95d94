package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/minimarket-pos/internal/domain"
	"github.com/joao-fontenele/minimarket-pos/internal/views"
)

// Store is the catalog persistence used by Handler. *Repository implements it.
type Store interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	CreateProduct(ctx context.Context, p *domain.Product) error
	UpdateProduct(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, name string) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id int64, name string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

type Handler struct {
	store  Store
	logger *slog.Logger
}

func NewHandler(store Store, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: logger,
	}
}

type productRequest struct {
	Name     *string          `json:"name"`
	Price    *decimal.Decimal `json:"price"`
	Category *string          `json:"category"`
	ImageURL *string          `json:"image_url"`
	Stock    *int             `json:"stock"`
}

func (h *Handler) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.ListProducts(r.Context())
	if err != nil {
		h.writeStoreError(w, err, "failed to list products")
		return
	}

	h.logger.Info("products listed", "count", len(products))
	h.writeJSON(w, http.StatusOK, views.NewProducts(products))
}

func (h *Handler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	product, err := h.store.GetProduct(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, err, "failed to get product", "product_id", id)
		return
	}

	h.writeJSON(w, http.StatusOK, views.NewProduct(*product))
}

func (h *Handler) HandleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == nil || req.Price == nil || req.Category == nil {
		h.writeError(w, http.StatusBadRequest, "missing required fields: name, price, category")
		return
	}

	product := &domain.Product{
		Name:     *req.Name,
		Price:    *req.Price,
		Category: *req.Category,
	}
	if req.ImageURL != nil {
		product.ImageURL = *req.ImageURL
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}

	if err := h.store.CreateProduct(r.Context(), product); err != nil {
		h.writeStoreError(w, err, "failed to create product")
		return
	}

	h.logger.Info("product created", "product_id", product.ID, "name", product.Name)
	h.writeJSON(w, http.StatusCreated, views.NewProduct(*product))
}

func (h *Handler) HandleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.store.UpdateProduct(r.Context(), id, domain.ProductPatch{
		Name:     req.Name,
		Price:    req.Price,
		Category: req.Category,
		ImageURL: req.ImageURL,
		Stock:    req.Stock,
	})
	if err != nil {
		h.writeStoreError(w, err, "failed to update product", "product_id", id)
		return
	}

	h.logger.Info("product updated", "product_id", id)
	h.writeJSON(w, http.StatusOK, views.NewProduct(*product))
}

func (h *Handler) HandleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteProduct(r.Context(), id); err != nil {
		h.writeStoreError(w, err, "failed to delete product", "product_id", id)
		return
	}

	h.logger.Info("product deleted", "product_id", id)
	h.writeJSON(w, http.StatusOK, map[string]string{"msg": "Product deleted successfully"})
}

type categoryRequest struct {
	Name *string `json:"name"`
}

func (h *Handler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategories(r.Context())
	if err != nil {
		h.writeStoreError(w, err, "failed to list categories")
		return
	}

	h.logger.Info("categories listed", "count", len(categories))
	h.writeJSON(w, http.StatusOK, views.NewCategories(categories))
}

func (h *Handler) HandleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == nil {
		h.writeError(w, http.StatusBadRequest, "missing category name")
		return
	}

	category, err := h.store.CreateCategory(r.Context(), *req.Name)
	if err != nil {
		h.writeStoreError(w, err, "failed to create category")
		return
	}

	h.logger.Info("category created", "category_id", category.ID, "name", category.Name)
	h.writeJSON(w, http.StatusCreated, views.NewCategory(*category))
}

func (h *Handler) HandleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == nil {
		h.writeError(w, http.StatusBadRequest, "missing category name")
		return
	}

	category, err := h.store.UpdateCategory(r.Context(), id, *req.Name)
	if err != nil {
		h.writeStoreError(w, err, "failed to update category", "category_id", id)
		return
	}

	h.logger.Info("category renamed", "category_id", id, "name", category.Name)
	h.writeJSON(w, http.StatusOK, views.NewCategory(*category))
}

func (h *Handler) HandleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteCategory(r.Context(), id); err != nil {
		h.writeStoreError(w, err, "failed to delete category", "category_id", id)
		return
	}

	h.logger.Info("category deleted", "category_id", id)
	h.writeJSON(w, http.StatusOK, map[string]string{"msg": "Category deleted successfully"})
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// writeStoreError maps domain error kinds to status codes and logs anything
// else as an internal failure.
func (h *Handler) writeStoreError(w http.ResponseWriter, err error, logMsg string, args ...any) {
	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		h.writeError(w, statusFor(err), domainErr.Msg)
		return
	}

	h.logger.Error(logMsg, append([]any{"error", err}, args...)...)
	h.writeError(w, http.StatusInternalServerError, "internal server error")
}

// statusFor returns the HTTP status for a domain error kind.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
