package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"storefront-catalog/internal/domain"
	"storefront-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCategoryRouter(svc *mockCategoryService) http.Handler {
	h := NewCategoryHandler(svc, zap.NewNop())
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		h.RegisterPublicRoutes(r)
		r.Route("/admin", h.RegisterAdminRoutes)
	})
	return r
}

func TestCategoryHandler_CreateAndList(t *testing.T) {
	svc := newMockCategoryService()
	router := newCategoryRouter(svc)

	w := doJSON(t, router, "POST", "/api/admin/categories", `{"title":"Earrings","color":"#ff00aa"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created domain.Category
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "#ff00aa", created.Color)

	w = doJSON(t, router, "POST", "/api/admin/categories", `{"title":"Rings"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, domain.DefaultCategoryColor, created.Color)

	_, err := svc.ToggleActive(context.Background(), created.ID)
	require.NoError(t, err)

	w = doJSON(t, router, "GET", "/api/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var public []domain.Category
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &public))
	assert.Len(t, public, 1)

	w = doJSON(t, router, "GET", "/api/admin/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var all []domain.Category
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all, 2)
}

func TestCategoryHandler_RejectsBadColor(t *testing.T) {
	router := newCategoryRouter(newMockCategoryService())

	tests := []struct {
		name string
		body string
	}{
		{"named color", `{"title":"Rings","color":"red"}`},
		{"missing hash", `{"title":"Rings","color":"ff00aa"}`},
		{"too long", `{"title":"Rings","color":"#ff00aa00aa"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, "POST", "/api/admin/categories", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, []string{"color"}, validationFields(t, w))
		})
	}
}

func TestCategoryHandler_UpdateToggleDelete(t *testing.T) {
	svc := newMockCategoryService()
	c, err := svc.Create(context.Background(), service.CategoryInput{Title: "Rings"})
	require.NoError(t, err)
	router := newCategoryRouter(svc)
	path := "/api/admin/categories/" + c.ID.String()

	w := doJSON(t, router, "PUT", path, `{"color":"#abc"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.lastPatch.Color)
	assert.Equal(t, "#abc", *svc.lastPatch.Color)
	assert.Nil(t, svc.lastPatch.Title)

	w = doJSON(t, router, "PUT", path+"/toggle-status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, c.Active)

	w = doJSON(t, router, "DELETE", path, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, "PUT", path, `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
