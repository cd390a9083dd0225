package handlers

import (
	"context"
	"encoding/json"
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
	"go-clothing-store/src/services/notification"
	"go-clothing-store/src/services/order/domain"
	"go-clothing-store/src/services/order/domain/persistence/mocks"
)

type published struct {
	Topic string
	Body  []byte
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []published
}

func (p *fakePublisher) Publish(topic string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, published{Topic: topic, Body: body})
	return nil
}

type fakeNotifier struct {
	requests []notification.NotificationRequest
	err      error
}

func (n *fakeNotifier) SendNotification(_ context.Context, request notification.NotificationRequest) error {
	n.requests = append(n.requests, request)
	return n.err
}

func (n *fakeNotifier) SendMultiChannelNotification(ctx context.Context, request notification.NotificationRequest, channels []notification.NotificationChannel) error {
	for _, channel := range channels {
		request.Channel = channel
		if err := n.SendNotification(ctx, request); err != nil {
			return err
		}
	}
	return nil
}

func discardLogger() log.Logger {
	return log.NewLoggerWithOutput(io.Discard, log.InfoLevel)
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestOrderCreatedEventHandler(t *testing.T) {
	validEvent := events.OrderCreatedEvent{
		OrderID:       identifier.New().Hex(),
		CustomerName:  "Ada",
		CustomerEmail: "ada@example.com",
		Items:         []events.OrderItem{{ProductID: "p1", Title: "Shirt", Price: 19.99, Quantity: 2}},
		Subtotal:      39.98,
		Status:        string(domain.StatusPending),
		Version:       1,
		TimeStamp:     time.Now(),
	}

	tests := []struct {
		name        string
		body        []byte
		notifyErr   error
		wantNotify  int
		wantDLQ     bool
		wantMessage string
	}{
		{
			name:        "sends confirmation",
			body:        mustJSON(t, validEvent),
			wantNotify:  1,
			wantMessage: "subtotal 39.98",
		},
		{
			name:    "malformed body goes to DLQ",
			body:    []byte("{not json"),
			wantDLQ: true,
		},
		{
			name:    "invalid event goes to DLQ",
			body:    mustJSON(t, events.OrderCreatedEvent{CustomerEmail: "ada@example.com"}),
			wantDLQ: true,
		},
		{
			name:       "notification failure goes to DLQ",
			body:       mustJSON(t, validEvent),
			notifyErr:  errors.New("smtp down"),
			wantNotify: 1,
			wantDLQ:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			publisher := &fakePublisher{}
			notifier := &fakeNotifier{err: tt.notifyErr}
			handler := NewOrderCreatedEventHandler(notifier, publisher, discardLogger())

			handler.Handle(context.Background(), tt.body)

			require.Len(t, notifier.requests, tt.wantNotify)
			if tt.wantNotify > 0 {
				assert.Equal(t, "ada@example.com", notifier.requests[0].Recipient)
				assert.Equal(t, notification.ChannelEmail, notifier.requests[0].Channel)
			}
			if tt.wantMessage != "" {
				assert.Contains(t, notifier.requests[0].Message, tt.wantMessage)
			}
			if tt.wantDLQ {
				require.Len(t, publisher.messages, 1)
				assert.Equal(t, "order.created.dlq", publisher.messages[0].Topic)
				assert.Equal(t, tt.body, publisher.messages[0].Body)
			} else {
				assert.Empty(t, publisher.messages)
			}
		})
	}
}

func TestOrderPaidEventHandler(t *testing.T) {
	store := mocks.NewMockOrderStore()
	orderID := store.Seed(domain.Order{
		CustomerName:    "Ada",
		CustomerEmail:   "ada@example.com",
		ShippingAddress: "12 Analytical St",
		Subtotal:        44.99,
		Status:          domain.StatusPaid,
	})

	paid := func(id string) []byte {
		return mustJSON(t, events.OrderPaidEvent{
			OrderID:   id,
			Status:    string(domain.StatusPaid),
			PaidAt:    time.Now(),
			Version:   1,
			TimeStamp: time.Now(),
		})
	}

	t.Run("sends receipt to the stored customer", func(t *testing.T) {
		publisher := &fakePublisher{}
		notifier := &fakeNotifier{}
		NewOrderPaidEventHandler(store, notifier, publisher, discardLogger()).
			Handle(context.Background(), paid(orderID.Hex()))

		require.Len(t, notifier.requests, 1)
		assert.Equal(t, "ada@example.com", notifier.requests[0].Recipient)
		assert.Equal(t, notification.MessageTypePaymentReceipt, notifier.requests[0].MessageType)
		assert.Contains(t, notifier.requests[0].Message, "44.99")
		assert.Empty(t, publisher.messages)
	})

	t.Run("unknown order is skipped", func(t *testing.T) {
		publisher := &fakePublisher{}
		notifier := &fakeNotifier{}
		NewOrderPaidEventHandler(store, notifier, publisher, discardLogger()).
			Handle(context.Background(), paid(identifier.New().Hex()))

		assert.Empty(t, notifier.requests)
		assert.Empty(t, publisher.messages)
	})

	t.Run("malformed order id goes to DLQ", func(t *testing.T) {
		publisher := &fakePublisher{}
		NewOrderPaidEventHandler(store, &fakeNotifier{}, publisher, discardLogger()).
			Handle(context.Background(), paid("not-an-id"))

		require.Len(t, publisher.messages, 1)
		assert.Equal(t, "order.paid.dlq", publisher.messages[0].Topic)
	})

	t.Run("store failure goes to DLQ", func(t *testing.T) {
		failing := mocks.NewMockOrderStore()
		failing.Err = errors.New("timeout")
		publisher := &fakePublisher{}
		NewOrderPaidEventHandler(failing, &fakeNotifier{}, publisher, discardLogger()).
			Handle(context.Background(), paid(orderID.Hex()))

		require.Len(t, publisher.messages, 1)
		assert.Equal(t, "order.paid.dlq", publisher.messages[0].Topic)
	})
}
