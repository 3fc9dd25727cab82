package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"storefront-catalog/internal/domain"
	"storefront-catalog/internal/repository"

	"github.com/google/uuid"
)

// Mock repositories for testing

type mockProductRepository struct {
	mu         sync.Mutex
	products   map[uuid.UUID]*domain.Product
	categories map[uuid.UUID][]uuid.UUID
	deleted    []uuid.UUID
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{
		products:   make(map[uuid.UUID]*domain.Product),
		categories: make(map[uuid.UUID][]uuid.UUID),
	}
}

func cloneProduct(p *domain.Product) *domain.Product {
	c := *p
	c.Images = append([]string{}, p.Images...)
	return &c
}

func (m *mockProductRepository) List(ctx context.Context, filter domain.ProductFilter) (*domain.ProductPage, error) {
	all, _ := m.ListAll(ctx, filter.IncludeInactive)
	return &domain.ProductPage{Items: all, Total: len(all), Page: filter.Page, PageSize: filter.PageSize}, nil
}

func (m *mockProductRepository) ListAll(ctx context.Context, includeInactive bool) ([]*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Product{}
	for _, p := range m.products {
		if includeInactive || p.Active {
			out = append(out, cloneProduct(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return cloneProduct(p), nil
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product, categoryIDs []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	product.Reprice()
	m.products[product.ID] = cloneProduct(product)
	if categoryIDs != nil {
		m.categories[product.ID] = categoryIDs
	}
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product, categoryIDs []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[product.ID]; !ok {
		return repository.ErrProductNotFound
	}
	product.Reprice()
	m.products[product.ID] = cloneProduct(product)
	if categoryIDs != nil {
		m.categories[product.ID] = categoryIDs
	}
	return nil
}

func (m *mockProductRepository) ToggleActive(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	p.Active = !p.Active
	return cloneProduct(p), nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockObjectStore struct {
	removed [][]string
	err     error
}

func (m *mockObjectStore) Remove(ctx context.Context, keys []string) error {
	m.removed = append(m.removed, keys)
	return m.err
}

type mockCollectionRepository struct {
	collections map[uuid.UUID]*domain.Collection
	members     map[uuid.UUID][]domain.MemberInput
	reordered   []domain.CollectionOrder
	moved       int
	nextPos     int
}

func newMockCollectionRepository() *mockCollectionRepository {
	return &mockCollectionRepository{
		collections: make(map[uuid.UUID]*domain.Collection),
		members:     make(map[uuid.UUID][]domain.MemberInput),
	}
}

func (m *mockCollectionRepository) List(ctx context.Context, includeInactive bool) ([]*domain.Collection, error) {
	out := []*domain.Collection{}
	for _, c := range m.collections {
		if includeInactive || c.Active {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCollectionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Collection, error) {
	c, ok := m.collections[id]
	if !ok {
		return nil, repository.ErrCollectionNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockCollectionRepository) Create(ctx context.Context, c *domain.Collection, members []domain.MemberInput) error {
	normalized, err := domain.NormalizeMembers(members)
	if err != nil {
		return err
	}
	m.nextPos++
	c.ID = uuid.New()
	c.Position = m.nextPos
	cp := *c
	m.collections[c.ID] = &cp
	m.members[c.ID] = normalized
	return nil
}

func (m *mockCollectionRepository) Update(ctx context.Context, c *domain.Collection, members []domain.MemberInput) error {
	if _, ok := m.collections[c.ID]; !ok {
		return repository.ErrCollectionNotFound
	}
	cp := *c
	m.collections[c.ID] = &cp
	if members != nil {
		normalized, err := domain.NormalizeMembers(members)
		if err != nil {
			return err
		}
		m.members[c.ID] = normalized
	}
	return nil
}

func (m *mockCollectionRepository) ToggleActive(ctx context.Context, id uuid.UUID) (*domain.Collection, error) {
	c, ok := m.collections[id]
	if !ok {
		return nil, repository.ErrCollectionNotFound
	}
	c.Active = !c.Active
	return c, nil
}

func (m *mockCollectionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.collections[id]; !ok {
		return repository.ErrCollectionNotFound
	}
	delete(m.collections, id)
	delete(m.members, id)
	return nil
}

func (m *mockCollectionRepository) Reorder(ctx context.Context, orders []domain.CollectionOrder) error {
	m.reordered = orders
	return nil
}

func (m *mockCollectionRepository) MoveMember(ctx context.Context, collectionID, productID uuid.UUID, newPosition int) error {
	m.moved++
	return nil
}

type mockCategoryRepository struct {
	categories map[uuid.UUID]*domain.Category
	// products, when set, receives ReplaceProductCategories writes
	products *mockProductRepository
}

func newMockCategoryRepository() *mockCategoryRepository {
	return &mockCategoryRepository{categories: make(map[uuid.UUID]*domain.Category)}
}

func (m *mockCategoryRepository) List(ctx context.Context, includeInactive bool) ([]*domain.Category, error) {
	out := []*domain.Category{}
	for _, c := range m.categories {
		if includeInactive || c.Active {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	c, ok := m.categories[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockCategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	c.ID = uuid.New()
	cp := *c
	m.categories[c.ID] = &cp
	return nil
}

func (m *mockCategoryRepository) Update(ctx context.Context, c *domain.Category) error {
	if _, ok := m.categories[c.ID]; !ok {
		return repository.ErrCategoryNotFound
	}
	cp := *c
	m.categories[c.ID] = &cp
	return nil
}

func (m *mockCategoryRepository) ToggleActive(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	c, ok := m.categories[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	c.Active = !c.Active
	return c, nil
}

func (m *mockCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.categories[id]; !ok {
		return repository.ErrCategoryNotFound
	}
	delete(m.categories, id)
	return nil
}

func (m *mockCategoryRepository) ReplaceProductCategories(ctx context.Context, productID uuid.UUID, categoryIDs []uuid.UUID) error {
	if m.products == nil {
		return nil
	}
	for _, id := range categoryIDs {
		if _, ok := m.categories[id]; !ok {
			return domain.ErrInvalidReference
		}
	}
	m.products.mu.Lock()
	defer m.products.mu.Unlock()
	if _, ok := m.products.products[productID]; !ok {
		return repository.ErrProductNotFound
	}
	m.products.categories[productID] = append([]uuid.UUID{}, categoryIDs...)
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

type mockSessionRepository struct {
	sessions map[string]*domain.AdminSession
}

func newMockSessionRepository() *mockSessionRepository {
	return &mockSessionRepository{sessions: make(map[string]*domain.AdminSession)}
}

func (m *mockSessionRepository) Create(ctx context.Context, session *domain.AdminSession) error {
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
