package transport

import (
	"net/http"

	"storefront-catalog/internal/middleware"
	"storefront-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CreateCategoryRequest represents the category creation payload
type CreateCategoryRequest struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Description *string `json:"description"`
	Color       string  `json:"color" validate:"omitempty,hexcolor"`
	Active      *bool   `json:"active"`
}

// UpdateCategoryRequest represents a partial category update
type UpdateCategoryRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=255"`
	Description *string `json:"description"`
	Color       *string `json:"color" validate:"omitempty,hexcolor"`
	Active      *bool   `json:"active"`
}

// CategoryHandler handles HTTP requests for categories
type CategoryHandler struct {
	categories service.CategoryService
	logger     *zap.Logger
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categories service.CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{categories: categories, logger: logger}
}

// RegisterPublicRoutes registers the storefront category routes
func (h *CategoryHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/categories", h.listPublic)
}

// RegisterAdminRoutes registers the category management routes
func (h *CategoryHandler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.listAdmin)
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Put("/{id}/toggle-status", h.ToggleStatus)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *CategoryHandler) listPublic(w http.ResponseWriter, r *http.Request) { h.list(w, r, false) }
func (h *CategoryHandler) listAdmin(w http.ResponseWriter, r *http.Request)  { h.list(w, r, true) }

func (h *CategoryHandler) list(w http.ResponseWriter, r *http.Request, includeInactive bool) {
	categories, err := h.categories.List(r.Context(), includeInactive)
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

// Create handles category creation
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Category validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	category, err := h.categories.Create(r.Context(), service.CategoryInput{
		Title:       req.Title,
		Description: req.Description,
		Color:       req.Color,
		Active:      req.Active,
	})
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	h.logger.Info("Category created", zap.String("category_id", category.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, category)
}

// Update handles partial category updates
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateCategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Category validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	category, err := h.categories.Update(r.Context(), id, service.CategoryPatch{
		Title:       req.Title,
		Description: req.Description,
		Color:       req.Color,
		Active:      req.Active,
	})
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, category)
}

// ToggleStatus flips the category's active flag
func (h *CategoryHandler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	category, err := h.categories.ToggleActive(r.Context(), id)
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, category)
}

// Delete removes a category and its product links
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	if err := h.categories.Delete(r.Context(), id); err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	h.logger.Info("Category deleted", zap.String("category_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}
