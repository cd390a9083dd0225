package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"go-clothing-store/src/services/identifier"
	"go-clothing-store/src/services/order/domain"
)

// MockOrderStore is an in-memory domain.OrderStore for tests. It keeps
// documents in insertion order and mirrors the Mongo repository semantics.
type MockOrderStore struct {
	mu     sync.RWMutex
	orders []domain.Order

	// Err, when set, is returned by every operation.
	Err error

	// For tracking calls in tests
	InsertCalls   int
	MarkPaidCalls []identifier.ID
}

func NewMockOrderStore() *MockOrderStore {
	return &MockOrderStore{}
}

// Seed stores order as-is, minting an ID when it has none. It bypasses the
// ledger so tests can place orders at arbitrary timestamps or statuses.
func (m *MockOrderStore) Seed(order domain.Order) identifier.ID {
	m.mu.Lock()
	defer m.mu.Unlock()

	if order.ID.IsZero() {
		order.ID = identifier.New()
	}
	m.orders = append(m.orders, cloneOrder(order))
	return order.ID
}

func (m *MockOrderStore) Insert(_ context.Context, order *domain.Order) (identifier.ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.InsertCalls++
	if m.Err != nil {
		return identifier.ID{}, m.Err
	}

	stored := cloneOrder(*order)
	stored.ID = identifier.New()
	m.orders = append(m.orders, stored)
	return stored.ID, nil
}

func (m *MockOrderStore) FindByID(_ context.Context, id identifier.ID) (*domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}
	for _, order := range m.orders {
		if order.ID == id {
			found := cloneOrder(order)
			return &found, nil
		}
	}
	return nil, nil
}

func (m *MockOrderStore) List(_ context.Context) ([]domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}
	orders := make([]domain.Order, len(m.orders))
	for i, order := range m.orders {
		orders[i] = cloneOrder(order)
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (m *MockOrderStore) MarkPaid(_ context.Context, id identifier.ID, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.MarkPaidCalls = append(m.MarkPaidCalls, id)
	if m.Err != nil {
		return false, m.Err
	}
	for i := range m.orders {
		if m.orders[i].ID == id {
			paidAt := at
			m.orders[i].Status = domain.StatusPaid
			m.orders[i].PaidAt = &paidAt
			m.orders[i].UpdatedAt = at
			return true, nil
		}
	}
	return false, nil
}

func (m *MockOrderStore) SummarizeByStatus(_ context.Context, start, end time.Time) ([]domain.StatusTotal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}

	var totals []domain.StatusTotal
	index := make(map[domain.Status]int)
	for _, order := range m.orders {
		if order.CreatedAt.Before(start) || !order.CreatedAt.Before(end) {
			continue
		}
		i, ok := index[order.Status]
		if !ok {
			i = len(totals)
			index[order.Status] = i
			totals = append(totals, domain.StatusTotal{Status: order.Status})
		}
		totals[i].Count++
		totals[i].Revenue += order.Subtotal
	}
	return totals, nil
}

func cloneOrder(order domain.Order) domain.Order {
	order.Items = append([]domain.OrderItem(nil), order.Items...)
	if order.PaidAt != nil {
		paidAt := *order.PaidAt
		order.PaidAt = &paidAt
	}
	return order
}
