package transport

import (
	"context"
	"time"

	"storefront-catalog/internal/domain"
	"storefront-catalog/internal/repository"
	"storefront-catalog/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Mock services for handler tests

type mockProductService struct {
	products    map[uuid.UUID]*domain.Product
	lastFilter  domain.ProductFilter
	lastPatch   domain.ProductPatch
	lastCatIDs  []uuid.UUID
	lastInput   service.ProductInput
	createError error
}

func newMockProductService() *mockProductService {
	return &mockProductService{products: make(map[uuid.UUID]*domain.Product)}
}

func (m *mockProductService) add(title string, active bool) *domain.Product {
	p := &domain.Product{ID: uuid.New(), Title: title, Active: active, Images: []string{}}
	m.products[p.ID] = p
	return p
}

func (m *mockProductService) List(ctx context.Context, filter domain.ProductFilter) (*domain.ProductPage, error) {
	m.lastFilter = filter
	items := []*domain.Product{}
	for _, p := range m.products {
		if filter.IncludeInactive || p.Active {
			items = append(items, p)
		}
	}
	return &domain.ProductPage{Items: items, Total: len(items), Page: filter.Page, PageSize: filter.PageSize}, nil
}

func (m *mockProductService) ListAll(ctx context.Context, includeInactive bool) ([]*domain.Product, error) {
	page, _ := m.List(ctx, domain.ProductFilter{IncludeInactive: includeInactive})
	return page.Items, nil
}

func (m *mockProductService) Get(ctx context.Context, id uuid.UUID, includeInactive bool) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok || (!includeInactive && !p.Active) {
		return nil, repository.ErrProductNotFound
	}
	return p, nil
}

func (m *mockProductService) Create(ctx context.Context, in service.ProductInput) (*domain.Product, error) {
	m.lastInput = in
	if m.createError != nil {
		return nil, m.createError
	}
	p := &domain.Product{ID: uuid.New(), Title: in.Title, GrossPrice: in.GrossPrice, Active: true, Images: in.Images}
	if in.DiscountPrice != nil {
		p.DiscountPrice = decimal.NewNullDecimal(*in.DiscountPrice)
	}
	p.Reprice()
	m.products[p.ID] = p
	return p, nil
}

func (m *mockProductService) Update(ctx context.Context, id uuid.UUID, patch domain.ProductPatch, categoryIDs []uuid.UUID) (*domain.Product, error) {
	m.lastPatch = patch
	m.lastCatIDs = categoryIDs
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	patch.Apply(p)
	return p, nil
}

func (m *mockProductService) SetCategories(ctx context.Context, id uuid.UUID, categoryIDs []uuid.UUID) (*domain.Product, error) {
	m.lastCatIDs = categoryIDs
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return p, nil
}

func (m *mockProductService) ToggleActive(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	p.Active = !p.Active
	return p, nil
}

func (m *mockProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

type mockCollectionService struct {
	collections map[uuid.UUID]*domain.Collection
	lastPatch   service.CollectionPatch
	lastInput   service.CollectionInput
	reordered   []domain.CollectionOrder
	moves       []int
	publicList  []*domain.Collection
}

func newMockCollectionService() *mockCollectionService {
	return &mockCollectionService{collections: make(map[uuid.UUID]*domain.Collection)}
}

func (m *mockCollectionService) List(ctx context.Context, includeInactive bool) ([]*domain.Collection, error) {
	if !includeInactive {
		return m.publicList, nil
	}
	out := []*domain.Collection{}
	for _, c := range m.collections {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockCollectionService) Get(ctx context.Context, id uuid.UUID) (*domain.Collection, error) {
	c, ok := m.collections[id]
	if !ok {
		return nil, repository.ErrCollectionNotFound
	}
	return c, nil
}

func (m *mockCollectionService) Create(ctx context.Context, in service.CollectionInput) (*domain.Collection, error) {
	m.lastInput = in
	c := &domain.Collection{ID: uuid.New(), Title: in.Title, Active: true, Position: len(m.collections) + 1}
	m.collections[c.ID] = c
	return c, nil
}

func (m *mockCollectionService) Update(ctx context.Context, id uuid.UUID, patch service.CollectionPatch) (*domain.Collection, error) {
	m.lastPatch = patch
	c, ok := m.collections[id]
	if !ok {
		return nil, repository.ErrCollectionNotFound
	}
	if patch.Title != nil {
		c.Title = *patch.Title
	}
	return c, nil
}

func (m *mockCollectionService) ToggleActive(ctx context.Context, id uuid.UUID) (*domain.Collection, error) {
	c, ok := m.collections[id]
	if !ok {
		return nil, repository.ErrCollectionNotFound
	}
	c.Active = !c.Active
	return c, nil
}

func (m *mockCollectionService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.collections[id]; !ok {
		return repository.ErrCollectionNotFound
	}
	delete(m.collections, id)
	return nil
}

func (m *mockCollectionService) Reorder(ctx context.Context, orders []domain.CollectionOrder) error {
	for _, o := range orders {
		if _, ok := m.collections[o.ID]; !ok {
			return repository.ErrCollectionNotFound
		}
	}
	m.reordered = orders
	return nil
}

func (m *mockCollectionService) MoveMember(ctx context.Context, collectionID, productID uuid.UUID, position int) error {
	if _, ok := m.collections[collectionID]; !ok {
		return repository.ErrCollectionNotFound
	}
	m.moves = append(m.moves, position)
	return nil
}

type mockCategoryService struct {
	categories map[uuid.UUID]*domain.Category
	lastPatch  service.CategoryPatch
}

func newMockCategoryService() *mockCategoryService {
	return &mockCategoryService{categories: make(map[uuid.UUID]*domain.Category)}
}

func (m *mockCategoryService) List(ctx context.Context, includeInactive bool) ([]*domain.Category, error) {
	out := []*domain.Category{}
	for _, c := range m.categories {
		if includeInactive || c.Active {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCategoryService) Create(ctx context.Context, in service.CategoryInput) (*domain.Category, error) {
	color := in.Color
	if color == "" {
		color = domain.DefaultCategoryColor
	}
	c := &domain.Category{ID: uuid.New(), Title: in.Title, Color: color, Active: true}
	m.categories[c.ID] = c
	return c, nil
}

func (m *mockCategoryService) Update(ctx context.Context, id uuid.UUID, patch service.CategoryPatch) (*domain.Category, error) {
	m.lastPatch = patch
	c, ok := m.categories[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	if patch.Color != nil {
		c.Color = *patch.Color
	}
	return c, nil
}

func (m *mockCategoryService) ToggleActive(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	c, ok := m.categories[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	c.Active = !c.Active
	return c, nil
}

func (m *mockCategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.categories[id]; !ok {
		return repository.ErrCategoryNotFound
	}
	delete(m.categories, id)
	return nil
}

// Mock repositories backing the real admin auth and settings services

type mockSessionRepository struct {
	sessions map[string]*domain.AdminSession
}

func newMockSessionRepository() *mockSessionRepository {
	return &mockSessionRepository{sessions: make(map[string]*domain.AdminSession)}
}

func (m *mockSessionRepository) Create(ctx context.Context, session *domain.AdminSession) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	m.sessions[session.Token] = session
	return nil
}

func (m *mockSessionRepository) FindByToken(ctx context.Context, token string) (*domain.AdminSession, error) {
	s, ok := m.sessions[token]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	return s, nil
}

func (m *mockSessionRepository) IsValid(ctx context.Context, token string, now time.Time) (bool, error) {
	s, ok := m.sessions[token]
	if !ok || !s.Active {
		return false, nil
	}
	if s.Expired(now) {
		s.Active = false
		return false, nil
	}
	return true, nil
}

func (m *mockSessionRepository) Invalidate(ctx context.Context, token string) error {
	s, ok := m.sessions[token]
	if !ok {
		return repository.ErrSessionNotFound
	}
	s.Active = false
	return nil
}

type mockSettingRepository struct {
	values map[string]string
}

func newMockSettingRepository() *mockSettingRepository {
	return &mockSettingRepository{values: make(map[string]string)}
}

func (m *mockSettingRepository) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *mockSettingRepository) Set(ctx context.Context, key, value string, description *string) error {
	m.values[key] = value
	return nil
}

func serviceCollectionInput(title string) service.CollectionInput {
	return service.CollectionInput{Title: title}
}
