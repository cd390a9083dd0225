package mocks

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go-clothing-store/src/services/events"
)

// MockEventStore is an in-memory events.EventStore for tests.
type MockEventStore struct {
	mu     sync.Mutex
	events []events.StoredEvent
	nextID int

	// Err, when set, is returned by every operation.
	Err error
}

func NewMockEventStore() *MockEventStore {
	return &MockEventStore{}
}

func (m *MockEventStore) StoreEventForReplay(_ context.Context, topic, orderID string, eventData []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.nextID++
	m.events = append(m.events, events.StoredEvent{
		ID:        "evt-" + strconv.Itoa(m.nextID),
		OrderID:   orderID,
		Topic:     topic,
		EventData: eventData,
		CreatedAt: time.Now().UTC(),
		Status:    events.EventStatusPending,
	})
	return nil
}

func (m *MockEventStore) GetUnreplayedEvents(_ context.Context, limit int64) ([]events.StoredEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	var pending []events.StoredEvent
	for _, evt := range m.events {
		if evt.Replayed {
			continue
		}
		if evt.Status != events.EventStatusPending && evt.Status != events.EventStatusFailed {
			continue
		}
		pending = append(pending, evt)
		if int64(len(pending)) == limit {
			break
		}
	}
	return pending, nil
}

func (m *MockEventStore) MarkEventAsReplaying(_ context.Context, eventID string) error {
	return m.update(eventID, func(evt *events.StoredEvent) {
		evt.Status = events.EventStatusReplaying
	})
}

func (m *MockEventStore) MarkEventAsCompleted(_ context.Context, eventID string) error {
	return m.update(eventID, func(evt *events.StoredEvent) {
		now := time.Now().UTC()
		evt.Status = events.EventStatusCompleted
		evt.Replayed = true
		evt.ReplayedAt = &now
	})
}

func (m *MockEventStore) MarkEventAsFailed(_ context.Context, eventID string) error {
	return m.update(eventID, func(evt *events.StoredEvent) {
		evt.Status = events.EventStatusFailed
	})
}

// Events returns a snapshot of everything stored.
func (m *MockEventStore) Events() []events.StoredEvent {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := make([]events.StoredEvent, len(m.events))
	copy(snapshot, m.events)
	return snapshot
}

func (m *MockEventStore) update(eventID string, apply func(*events.StoredEvent)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	for i := range m.events {
		if m.events[i].ID == eventID {
			apply(&m.events[i])
			return nil
		}
	}
	return nil
}
