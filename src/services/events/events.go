package events

import (
	"time"

	"github.com/go-faster/errors"
)

const (
	// Event types, also used as routing keys and queue names
	OrderCreated = "order.created"
	OrderPaid    = "order.paid"

	// Event status enums for order_events collection
	EventStatusPending   = "pending"   // Event is waiting to be processed
	EventStatusFailed    = "failed"    // Event processing failed, needs replay
	EventStatusCompleted = "completed" // Event was successfully processed
	EventStatusReplaying = "replaying" // Event is currently being replayed
)

// Topics lists every routing key the broker must declare a queue for.
var Topics = []string{OrderCreated, OrderPaid}

// DLQTopic is the routing key, and queue name, that failed messages of topic
// are parked under.
func DLQTopic(topic string) string {
	return topic + ".dlq"
}

// Event is a payload that can check its own required fields before publishing.
type Event interface {
	Validate() error
}

type OrderItem struct {
	ProductID string  `json:"product_id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type OrderCreatedEvent struct {
	OrderID       string      `json:"orderId"`
	CustomerName  string      `json:"customerName"`
	CustomerEmail string      `json:"customerEmail"`
	Items         []OrderItem `json:"items"`
	Subtotal      float64     `json:"subtotal"`
	Status        string      `json:"status"`
	Version       int         `json:"version"`
	TimeStamp     time.Time   `json:"timestamp"`
}

func (e *OrderCreatedEvent) Validate() error {
	if e.OrderID == "" || e.Status == "" {
		return errors.New("missing required fields in OrderCreatedEvent")
	}
	return nil
}

type OrderPaidEvent struct {
	OrderID   string    `json:"orderId"`
	Status    string    `json:"status"`
	PaidAt    time.Time `json:"paidAt"`
	Version   int       `json:"version"`
	TimeStamp time.Time `json:"timestamp"`
}

func (e *OrderPaidEvent) Validate() error {
	if e.OrderID == "" || e.Status == "" || e.PaidAt.IsZero() {
		return errors.New("missing required fields in OrderPaidEvent")
	}
	return nil
}
