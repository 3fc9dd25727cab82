package transport

import (
	"net/http"

	"storefront-catalog/internal/domain"
	"storefront-catalog/internal/middleware"
	"storefront-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateProductRequest represents the product creation payload
type CreateProductRequest struct {
	Title         string           `json:"title" validate:"required,max=255"`
	GrossPrice    decimal.Decimal  `json:"gross_price"`
	DiscountPrice *decimal.Decimal `json:"discount_price"`
	Description   *string          `json:"description"`
	Images        []string         `json:"images" validate:"max=20"`
	Active        *bool            `json:"active"`
	CategoryIDs   []uuid.UUID      `json:"category_ids"`
}

// UpdateProductRequest represents a partial product update. Absent fields are
// left unchanged; images and category_ids replace the stored lists when sent.
type UpdateProductRequest struct {
	Title          *string          `json:"title" validate:"omitempty,max=255"`
	GrossPrice     *decimal.Decimal `json:"gross_price"`
	DiscountPrice  *decimal.Decimal `json:"discount_price"`
	RemoveDiscount bool             `json:"remove_discount"`
	Description    *string          `json:"description"`
	Images         *[]string        `json:"images" validate:"omitempty,max=20"`
	Active         *bool            `json:"active"`
	CategoryIDs    *[]uuid.UUID     `json:"category_ids"`
}

// SetProductCategoriesRequest replaces a product's categories. An empty list
// detaches them all.
type SetProductCategoriesRequest struct {
	CategoryIDs []uuid.UUID `json:"category_ids" validate:"required"`
}

// ProductHandler handles HTTP requests for products
type ProductHandler struct {
	products service.ProductService
	logger   *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(products service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{products: products, logger: logger}
}

// RegisterPublicRoutes registers the storefront product routes
func (h *ProductHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/products", h.listPublic)
	r.Get("/products/{id}", h.getPublic)
}

// RegisterAdminRoutes registers the product management routes
func (h *ProductHandler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.listAdmin)
		r.Get("/all", h.ListAll)
		r.Post("/", h.Create)
		r.Get("/{id}", h.getAdmin)
		r.Put("/{id}", h.Update)
		r.Put("/{id}/toggle-status", h.ToggleStatus)
		r.Put("/{id}/categories", h.SetCategories)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *ProductHandler) listPublic(w http.ResponseWriter, r *http.Request) { h.list(w, r, false) }
func (h *ProductHandler) listAdmin(w http.ResponseWriter, r *http.Request)  { h.list(w, r, true) }
func (h *ProductHandler) getPublic(w http.ResponseWriter, r *http.Request)  { h.get(w, r, false) }
func (h *ProductHandler) getAdmin(w http.ResponseWriter, r *http.Request)   { h.get(w, r, true) }

func (h *ProductHandler) list(w http.ResponseWriter, r *http.Request, includeInactive bool) {
	filter, errs := productFilter(r, includeInactive)
	if len(errs) > 0 {
		middleware.RespondWithValidationErrors(w, errs)
		return
	}

	page, err := h.products.List(r.Context(), filter)
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, page)
}

// ListAll returns every product, unpaginated, for the admin pickers
func (h *ProductHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListAll(r.Context(), true)
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) get(w http.ResponseWriter, r *http.Request, includeInactive bool) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	product, err := h.products.Get(r.Context(), id, includeInactive)
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Create handles product creation
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	product, err := h.products.Create(r.Context(), service.ProductInput{
		Title:         req.Title,
		GrossPrice:    req.GrossPrice,
		DiscountPrice: req.DiscountPrice,
		Description:   req.Description,
		Images:        req.Images,
		Active:        req.Active,
		CategoryIDs:   req.CategoryIDs,
	})
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// Update handles partial product updates
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	patch := domain.ProductPatch{
		Title:          req.Title,
		GrossPrice:     req.GrossPrice,
		DiscountPrice:  req.DiscountPrice,
		RemoveDiscount: req.RemoveDiscount,
		Description:    req.Description,
		Active:         req.Active,
	}
	if req.Images != nil {
		patch.Images = *req.Images
		patch.ReplaceImages = true
	}
	var categoryIDs []uuid.UUID
	if req.CategoryIDs != nil {
		categoryIDs = append([]uuid.UUID{}, *req.CategoryIDs...)
	}

	product, err := h.products.Update(r.Context(), id, patch, categoryIDs)
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	h.logger.Info("Product updated", zap.String("product_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// SetCategories replaces the product's category set
func (h *ProductHandler) SetCategories(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	var req SetProductCategoriesRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	product, err := h.products.SetCategories(r.Context(), id, req.CategoryIDs)
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	h.logger.Info("Product categories replaced",
		zap.String("product_id", id.String()),
		zap.Int("categories", len(req.CategoryIDs)),
	)
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// ToggleStatus flips the product's active flag
func (h *ProductHandler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	product, err := h.products.ToggleActive(r.Context(), id)
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Delete removes a product and its stored images
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	if err := h.products.Delete(r.Context(), id); err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}
