package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"

	"go-clothing-store/src/infrastructure/log"
	"go-clothing-store/src/services/events"
	"go-clothing-store/src/services/identifier"
)

type OrderService interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error)
	MarkPaid(ctx context.Context, rawOrderID string) error
	ListOrders(ctx context.Context) ([]Order, error)
	GetOrder(ctx context.Context, rawOrderID string) (*Order, error)
}

// EventDispatcher publishes order events without failing the caller.
type EventDispatcher interface {
	Dispatch(ctx context.Context, topic, orderID string, event events.Event)
}

type CreateOrderInput struct {
	CustomerName    string
	CustomerEmail   string
	ShippingAddress string
	Items           []OrderItem
}

type orderService struct {
	logger     log.Logger
	store      OrderStore
	dispatcher EventDispatcher
	now        func() time.Time
}

type Option func(*orderService)

// WithClock replaces the wall clock used for order timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *orderService) {
		s.now = now
	}
}

// WithDispatcher enables order event publishing.
func WithDispatcher(dispatcher EventDispatcher) Option {
	return func(s *orderService) {
		s.dispatcher = dispatcher
	}
}

func NewOrderService(logger log.Logger, store OrderStore, opts ...Option) OrderService {
	s := &orderService{
		logger: logger,
		store:  store,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// timestamp is UTC truncated to the store's millisecond precision.
func (s *orderService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// CreateOrder prices the items and persists a new pending order. Identical
// inputs create distinct orders.
func (s *orderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error) {
	now := s.timestamp()

	items := make([]OrderItem, len(input.Items))
	copy(items, input.Items)

	order := &Order{
		CustomerName:    input.CustomerName,
		CustomerEmail:   input.CustomerEmail,
		ShippingAddress: input.ShippingAddress,
		Items:           items,
		Subtotal:        Subtotal(items),
		Status:          StatusPending,
		PaymentMethod:   PaymentMethodQR,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	id, err := s.store.Insert(ctx, order)
	if err != nil {
		s.logger.Exception(ctx, "Failed to persist order", err)
		return nil, errors.Wrap(err, "insert order")
	}
	order.ID = id

	s.logger.InfoWithExtra(ctx, "Order created", map[string]any{
		"OrderId":  id.Hex(),
		"Subtotal": order.Subtotal,
		"Items":    len(order.Items),
	})

	s.dispatch(ctx, events.OrderCreated, id.Hex(), orderCreatedEvent(order))
	return order, nil
}

// MarkPaid moves an order to paid. It does not guard against repeated
// confirmations: a paid order is marked paid again and its timestamps move.
func (s *orderService) MarkPaid(ctx context.Context, rawOrderID string) error {
	id, err := identifier.Parse(rawOrderID)
	if err != nil {
		return err
	}

	now := s.timestamp()
	matched, err := s.store.MarkPaid(ctx, id, now)
	if err != nil {
		s.logger.Exception(ctx, "Failed to mark order paid: "+id.Hex(), err)
		return errors.Wrap(err, "mark order paid")
	}
	if !matched {
		return errors.Wrap(ErrOrderNotFound, id.Hex())
	}

	s.logger.Info(ctx, fmt.Sprintf("Order %s marked as paid", id.Hex()))

	s.dispatch(ctx, events.OrderPaid, id.Hex(), &events.OrderPaidEvent{
		OrderID:   id.Hex(),
		Status:    string(StatusPaid),
		PaidAt:    now,
		Version:   1,
		TimeStamp: now,
	})
	return nil
}

func (s *orderService) ListOrders(ctx context.Context) ([]Order, error) {
	orders, err := s.store.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	if orders == nil {
		orders = []Order{}
	}
	return orders, nil
}

func (s *orderService) GetOrder(ctx context.Context, rawOrderID string) (*Order, error) {
	id, err := identifier.Parse(rawOrderID)
	if err != nil {
		return nil, err
	}

	order, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "find order")
	}
	if order == nil {
		return nil, errors.Wrap(ErrOrderNotFound, id.Hex())
	}
	return order, nil
}

func (s *orderService) dispatch(ctx context.Context, topic, orderID string, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Dispatch(ctx, topic, orderID, event)
}

func orderCreatedEvent(order *Order) *events.OrderCreatedEvent {
	items := make([]events.OrderItem, len(order.Items))
	for i, item := range order.Items {
		items[i] = events.OrderItem{
			ProductID: item.ProductID,
			Title:     item.Title,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}
	return &events.OrderCreatedEvent{
		OrderID:       order.ID.Hex(),
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		Items:         items,
		Subtotal:      order.Subtotal,
		Status:        string(order.Status),
		Version:       1,
		TimeStamp:     order.CreatedAt,
	}
}
