package transport

import (
	"net/http"
	"strconv"
	"strings"

	"storefront-catalog/internal/domain"
	"storefront-catalog/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// urlID parses a UUID path parameter, answering 400 when it is malformed.
func urlID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		middleware.RespondWithValidationErrors(w, []domain.ValidationError{{Field: name, Message: "Must be a UUID"}})
		return uuid.Nil, false
	}
	return id, true
}

// productFilter reads q, page, limit, collectionId and categoryIds from the
// query string.
func productFilter(r *http.Request, includeInactive bool) (domain.ProductFilter, []domain.ValidationError) {
	q := r.URL.Query()
	filter := domain.ProductFilter{
		Query:           strings.TrimSpace(q.Get("q")),
		IncludeInactive: includeInactive,
	}
	var errs []domain.ValidationError

	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			errs = append(errs, domain.ValidationError{Field: "page", Message: "Must be a positive integer"})
		}
		filter.Page = page
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			errs = append(errs, domain.ValidationError{Field: "limit", Message: "Must be a positive integer"})
		}
		filter.PageSize = limit
	}
	if raw := q.Get("collectionId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			errs = append(errs, domain.ValidationError{Field: "collectionId", Message: "Must be a UUID"})
		} else {
			filter.CollectionID = &id
		}
	}
	if raw := q.Get("categoryIds"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := uuid.Parse(part)
			if err != nil {
				errs = append(errs, domain.ValidationError{Field: "categoryIds", Message: "Must be a comma separated list of UUIDs"})
				break
			}
			filter.CategoryIDs = append(filter.CategoryIDs, id)
		}
	}

	filter.Normalize()
	return filter, errs
}
