package transport

import (
	"net/http"

	"storefront-catalog/internal/domain"
	"storefront-catalog/internal/middleware"
	"storefront-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MemberRequest places a product inside a collection
type MemberRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Position  int       `json:"position" validate:"gte=0"`
}

// CreateCollectionRequest represents the collection creation payload
type CreateCollectionRequest struct {
	Title   string          `json:"title" validate:"required,max=255"`
	Active  *bool           `json:"active"`
	Members []MemberRequest `json:"members" validate:"dive"`
}

// UpdateCollectionRequest represents a partial collection update. A members
// list, even an empty one, replaces the whole membership.
type UpdateCollectionRequest struct {
	Title   *string          `json:"title" validate:"omitempty,max=255"`
	Active  *bool            `json:"active"`
	Members *[]MemberRequest `json:"members" validate:"omitempty,dive"`
}

// CollectionOrderRequest assigns a display position to one collection
type CollectionOrderRequest struct {
	ID       uuid.UUID `json:"id" validate:"required"`
	Position int       `json:"position" validate:"gte=0"`
}

// ReorderCollectionsRequest represents a batch reorder
type ReorderCollectionsRequest struct {
	Collections []CollectionOrderRequest `json:"collections" validate:"required,min=1,dive"`
}

// MoveMemberRequest represents a member position change
type MoveMemberRequest struct {
	Position int `json:"position" validate:"gte=1"`
}

// CollectionHandler handles HTTP requests for collections
type CollectionHandler struct {
	collections service.CollectionService
	logger      *zap.Logger
}

// NewCollectionHandler creates a new CollectionHandler
func NewCollectionHandler(collections service.CollectionService, logger *zap.Logger) *CollectionHandler {
	return &CollectionHandler{collections: collections, logger: logger}
}

// RegisterPublicRoutes registers the storefront collection routes
func (h *CollectionHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/collections", h.listPublic)
}

// RegisterAdminRoutes registers the collection management routes
func (h *CollectionHandler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/collections", func(r chi.Router) {
		r.Get("/", h.listAdmin)
		r.Post("/", h.Create)
		r.Put("/reorder", h.Reorder)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Put("/{id}/toggle-status", h.ToggleStatus)
		r.Put("/{id}/members/{productId}/position", h.MoveMember)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *CollectionHandler) listPublic(w http.ResponseWriter, r *http.Request) { h.list(w, r, false) }
func (h *CollectionHandler) listAdmin(w http.ResponseWriter, r *http.Request)  { h.list(w, r, true) }

func (h *CollectionHandler) list(w http.ResponseWriter, r *http.Request, includeInactive bool) {
	collections, err := h.collections.List(r.Context(), includeInactive)
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, collections)
}

// Get returns one collection with all of its members
func (h *CollectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	collection, err := h.collections.Get(r.Context(), id)
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, collection)
}

// Create handles collection creation
func (h *CollectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCollectionRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Collection validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	collection, err := h.collections.Create(r.Context(), service.CollectionInput{
		Title:   req.Title,
		Active:  req.Active,
		Members: memberInputs(req.Members),
	})
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	h.logger.Info("Collection created", zap.String("collection_id", collection.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, collection)
}

// Update handles partial collection updates
func (h *CollectionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateCollectionRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Collection validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	patch := service.CollectionPatch{Title: req.Title, Active: req.Active}
	if req.Members != nil {
		patch.Members = memberInputs(*req.Members)
	}

	collection, err := h.collections.Update(r.Context(), id, patch)
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	h.logger.Info("Collection updated", zap.String("collection_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, collection)
}

// ToggleStatus flips the collection's active flag
func (h *CollectionHandler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	collection, err := h.collections.ToggleActive(r.Context(), id)
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, collection)
}

// Delete removes a collection and its memberships
func (h *CollectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	if err := h.collections.Delete(r.Context(), id); err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	h.logger.Info("Collection deleted", zap.String("collection_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

// Reorder applies a batch of collection positions atomically
func (h *CollectionHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req ReorderCollectionsRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Reorder validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	orders := make([]domain.CollectionOrder, len(req.Collections))
	for i, c := range req.Collections {
		orders[i] = domain.CollectionOrder{ID: c.ID, Position: c.Position}
	}

	if err := h.collections.Reorder(r.Context(), orders); err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	h.logger.Info("Collections reordered", zap.Int("count", len(orders)))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "collections reordered"})
}

// MoveMember moves one product to a new position inside a collection
func (h *CollectionHandler) MoveMember(w http.ResponseWriter, r *http.Request) {
	collectionID, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	productID, ok := urlID(w, r, "productId")
	if !ok {
		return
	}

	var req MoveMemberRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	if err := h.collections.MoveMember(r.Context(), collectionID, productID, req.Position); err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	collection, err := h.collections.Get(r.Context(), collectionID)
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, collection)
}

func memberInputs(members []MemberRequest) []domain.MemberInput {
	out := make([]domain.MemberInput, len(members))
	for i, m := range members {
		out[i] = domain.MemberInput{ProductID: m.ProductID, Position: m.Position}
	}
	return out
}
