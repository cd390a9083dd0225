package domain_test

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-clothing-store/src/infrastructure/log"
	"go-clothing-store/src/services/events"
	"go-clothing-store/src/services/identifier"
	"go-clothing-store/src/services/order/domain"
	"go-clothing-store/src/services/order/domain/persistence/mocks"
)

// --- Test doubles ---

type dispatchedEvent struct {
	Topic   string
	OrderID string
	Event   events.Event
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []dispatchedEvent
}

func (r *recordingDispatcher) Dispatch(_ context.Context, topic, orderID string, event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, dispatchedEvent{Topic: topic, OrderID: orderID, Event: event})
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// --- Helpers ---

func newTestService(store domain.OrderStore) (domain.OrderService, *fakeClock, *recordingDispatcher) {
	clock := &fakeClock{now: time.Date(2024, time.February, 10, 12, 30, 15, 123456789, time.UTC)}
	dispatcher := &recordingDispatcher{}
	svc := domain.NewOrderService(
		log.NewLoggerWithOutput(io.Discard, log.InfoLevel),
		store,
		domain.WithClock(clock.Now),
		domain.WithDispatcher(dispatcher),
	)
	return svc, clock, dispatcher
}

func sampleInput() domain.CreateOrderInput {
	return domain.CreateOrderInput{
		CustomerName:    "Ada Lovelace",
		CustomerEmail:   "ada@example.com",
		ShippingAddress: "12 Analytical St",
		Items: []domain.OrderItem{
			{ProductID: "65f1a2b3c4d5e6f708192a3b", Title: "Linen Shirt", Price: 19.99, Quantity: 2},
			{ProductID: "65f1a2b3c4d5e6f708192a3c", Title: "Socks", Price: 5.005, Quantity: 1},
		},
	}
}

// --- Tests ---

func TestSubtotal(t *testing.T) {
	tests := []struct {
		name  string
		items []domain.OrderItem
		want  float64
	}{
		{
			name: "rounding boundary rounds half up",
			items: []domain.OrderItem{
				{Price: 19.99, Quantity: 2},
				{Price: 5.005, Quantity: 1},
			},
			want: 44.99,
		},
		{
			name:  "binary float artefacts do not leak",
			items: []domain.OrderItem{{Price: 0.1, Quantity: 3}},
			want:  0.3,
		},
		{
			name:  "half cent below binary representation still rounds up",
			items: []domain.OrderItem{{Price: 2.675, Quantity: 1}},
			want:  2.68,
		},
		{
			name:  "zero priced items",
			items: []domain.OrderItem{{Price: 0, Quantity: 5}},
			want:  0,
		},
		{
			name: "no items",
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.Subtotal(tt.items))
		})
	}
}

func TestCreateOrder_Defaults(t *testing.T) {
	store := mocks.NewMockOrderStore()
	svc, clock, dispatcher := newTestService(store)

	order, err := svc.CreateOrder(context.Background(), sampleInput())
	require.NoError(t, err)

	assert.False(t, order.ID.IsZero())
	assert.Equal(t, domain.StatusPending, order.Status)
	assert.Equal(t, domain.PaymentMethodQR, order.PaymentMethod)
	assert.Equal(t, 44.99, order.Subtotal)
	assert.Nil(t, order.PaidAt)

	wantTime := clock.now.Truncate(time.Millisecond)
	assert.Equal(t, wantTime, order.CreatedAt)
	assert.Equal(t, order.CreatedAt, order.UpdatedAt)
	assert.Equal(t, time.UTC, order.CreatedAt.Location())

	stored, err := store.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, *order, *stored)

	require.Len(t, dispatcher.events, 1)
	assert.Equal(t, events.OrderCreated, dispatcher.events[0].Topic)
	assert.Equal(t, order.ID.Hex(), dispatcher.events[0].OrderID)
}

func TestCreateOrder_NoDeduplication(t *testing.T) {
	store := mocks.NewMockOrderStore()
	svc, _, _ := newTestService(store)

	first, err := svc.CreateOrder(context.Background(), sampleInput())
	require.NoError(t, err)
	second, err := svc.CreateOrder(context.Background(), sampleInput())
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 2, store.InsertCalls)
}

func TestCreateOrder_EmptyItemsAccepted(t *testing.T) {
	svc, _, _ := newTestService(mocks.NewMockOrderStore())

	input := sampleInput()
	input.Items = nil

	order, err := svc.CreateOrder(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 0.0, order.Subtotal)
	assert.Empty(t, order.Items)
}

func TestCreateOrder_StoreFailure(t *testing.T) {
	storeErr := errors.New("connection refused")
	store := mocks.NewMockOrderStore()
	store.Err = storeErr
	svc, _, dispatcher := newTestService(store)

	order, err := svc.CreateOrder(context.Background(), sampleInput())
	require.Error(t, err)
	assert.ErrorIs(t, err, storeErr)
	assert.Nil(t, order)
	assert.Empty(t, dispatcher.events)
}

func TestMarkPaid_DoublePaymentIsNoOpSafe(t *testing.T) {
	store := mocks.NewMockOrderStore()
	svc, clock, dispatcher := newTestService(store)

	order, err := svc.CreateOrder(context.Background(), sampleInput())
	require.NoError(t, err)

	clock.Advance(time.Minute)
	require.NoError(t, svc.MarkPaid(context.Background(), order.ID.Hex()))

	firstPaid, err := store.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.NotNil(t, firstPaid.PaidAt)
	assert.Equal(t, domain.StatusPaid, firstPaid.Status)

	// Repeated confirmations are not guarded: they succeed and move the timestamps.
	clock.Advance(time.Minute)
	require.NoError(t, svc.MarkPaid(context.Background(), order.ID.Hex()))

	secondPaid, err := store.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, secondPaid.Status)
	assert.True(t, secondPaid.PaidAt.After(*firstPaid.PaidAt))
	assert.Equal(t, *secondPaid.PaidAt, secondPaid.UpdatedAt)
	assert.Equal(t, order.CreatedAt, secondPaid.CreatedAt)

	paidEvents := 0
	for _, evt := range dispatcher.events {
		if evt.Topic == events.OrderPaid {
			paidEvents++
		}
	}
	assert.Equal(t, 2, paidEvents)
}

func TestMarkPaid_InvalidVersusNotFound(t *testing.T) {
	store := mocks.NewMockOrderStore()
	svc, _, _ := newTestService(store)

	err := svc.MarkPaid(context.Background(), "not-an-id")
	require.Error(t, err)
	assert.ErrorIs(t, err, identifier.ErrInvalidIdentifier)
	assert.NotErrorIs(t, err, domain.ErrOrderNotFound)
	assert.Empty(t, store.MarkPaidCalls)

	err = svc.MarkPaid(context.Background(), identifier.New().Hex())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	assert.NotErrorIs(t, err, identifier.ErrInvalidIdentifier)
	assert.Len(t, store.MarkPaidCalls, 1)
}

func TestMarkPaid_StoreFailure(t *testing.T) {
	storeErr := errors.New("timeout")
	store := mocks.NewMockOrderStore()
	store.Err = storeErr
	svc, _, dispatcher := newTestService(store)

	err := svc.MarkPaid(context.Background(), identifier.New().Hex())
	require.Error(t, err)
	assert.ErrorIs(t, err, storeErr)
	assert.NotErrorIs(t, err, domain.ErrOrderNotFound)
	assert.Empty(t, dispatcher.events)
}

func TestMarkPaid_CancelledOrderIsOverwritten(t *testing.T) {
	store := mocks.NewMockOrderStore()
	svc, _, _ := newTestService(store)

	id := store.Seed(domain.Order{Status: domain.StatusCancelled, CreatedAt: time.Now().UTC()})

	require.NoError(t, svc.MarkPaid(context.Background(), id.Hex()))

	stored, err := store.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, stored.Status)
}

func TestListOrders_NewestFirstWithStableTies(t *testing.T) {
	store := mocks.NewMockOrderStore()
	svc, _, _ := newTestService(store)

	base := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
	oldest := store.Seed(domain.Order{CustomerName: "oldest", CreatedAt: base})
	tieFirst := store.Seed(domain.Order{CustomerName: "tie-first", CreatedAt: base.Add(time.Hour)})
	newest := store.Seed(domain.Order{CustomerName: "newest", CreatedAt: base.Add(2 * time.Hour)})
	tieSecond := store.Seed(domain.Order{CustomerName: "tie-second", CreatedAt: base.Add(time.Hour)})

	orders, err := svc.ListOrders(context.Background())
	require.NoError(t, err)

	got := make([]identifier.ID, len(orders))
	for i, order := range orders {
		got[i] = order.ID
	}
	assert.Equal(t, []identifier.ID{newest, tieFirst, tieSecond, oldest}, got)
}

func TestListOrders_Empty(t *testing.T) {
	svc, _, _ := newTestService(mocks.NewMockOrderStore())

	orders, err := svc.ListOrders(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}

func TestGetOrder(t *testing.T) {
	store := mocks.NewMockOrderStore()
	svc, _, _ := newTestService(store)

	created, err := svc.CreateOrder(context.Background(), sampleInput())
	require.NoError(t, err)

	found, err := svc.GetOrder(context.Background(), created.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = svc.GetOrder(context.Background(), "xyz")
	assert.ErrorIs(t, err, identifier.ErrInvalidIdentifier)

	_, err = svc.GetOrder(context.Background(), identifier.New().Hex())
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}
