package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"go-clothing-store/src/services/catalog"
	"go-clothing-store/src/services/identifier"
)

// MockProductRepository is an in-memory catalog.ProductRepository for tests.
type MockProductRepository struct {
	mu       sync.RWMutex
	products []catalog.Product

	// Err, when set, is returned by every operation.
	Err error

	FindCalls   int
	UpdateCalls int
}

func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{}
}

func (m *MockProductRepository) Insert(_ context.Context, product *catalog.Product) (identifier.ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return identifier.ID{}, m.Err
	}
	stored := *product
	stored.ID = identifier.New()
	m.products = append(m.products, stored)
	return stored.ID, nil
}

func (m *MockProductRepository) FindByID(_ context.Context, id identifier.ID) (*catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.FindCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	for _, product := range m.products {
		if product.ID == id {
			found := product
			return &found, nil
		}
	}
	return nil, nil
}

func (m *MockProductRepository) List(_ context.Context) ([]catalog.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}
	products := make([]catalog.Product, len(m.products))
	copy(products, m.products)
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	return products, nil
}

func (m *MockProductRepository) Update(_ context.Context, id identifier.ID, update catalog.ProductUpdate, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdateCalls++
	if m.Err != nil {
		return false, m.Err
	}
	for i := range m.products {
		product := &m.products[i]
		if product.ID != id {
			continue
		}
		if update.Title != nil {
			product.Title = *update.Title
		}
		if update.Description != nil {
			product.Description = update.Description
		}
		if update.Price != nil {
			product.Price = *update.Price
		}
		if update.Category != nil {
			product.Category = update.Category
		}
		if update.ImageURL != nil {
			product.ImageURL = update.ImageURL
		}
		if update.InStock != nil {
			product.InStock = *update.InStock
		}
		product.UpdatedAt = at
		return true, nil
	}
	return false, nil
}

func (m *MockProductRepository) Delete(_ context.Context, id identifier.ID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return false, m.Err
	}
	for i, product := range m.products {
		if product.ID == id {
			m.products = append(m.products[:i], m.products[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *MockProductRepository) SeedProduct(_ context.Context, product catalog.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	for _, existing := range m.products {
		if existing.Title == product.Title {
			return nil
		}
	}
	product.ID = identifier.New()
	m.products = append(m.products, product)
	return nil
}
