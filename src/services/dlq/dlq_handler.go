package dlq

import (
	"context"
	"encoding/json"

	"go-clothing-store/src/infrastructure/log"
	"go-clothing-store/src/services/events"
)

// DLQHandler stores dead-lettered events so they can be replayed later.
type DLQHandler struct {
	eventStore events.EventStore
	logger     log.Logger
}

func NewDLQHandler(eventStore events.EventStore, logger log.Logger) *DLQHandler {
	return &DLQHandler{
		eventStore: eventStore,
		logger:     logger,
	}
}

// ForTopic returns the consumer for topic's DLQ. Replay republishes the
// stored body under topic itself.
func (d *DLQHandler) ForTopic(topic string) events.EventHandler {
	return events.EventHandlerFunc(func(ctx context.Context, msgBody []byte) {
		d.handle(ctx, topic, msgBody)
	})
}

func (d *DLQHandler) handle(ctx context.Context, topic string, msgBody []byte) {
	d.logger.Info(ctx, "Processing "+topic+" DLQ event")

	// Both order events carry the id under "orderId".
	var envelope struct {
		OrderID string `json:"orderId"`
	}
	orderID := "unknown"
	if err := json.Unmarshal(msgBody, &envelope); err == nil && envelope.OrderID != "" {
		orderID = envelope.OrderID
	}

	if err := d.eventStore.StoreEventForReplay(ctx, topic, orderID, msgBody); err != nil {
		d.logger.Exception(ctx, "Failed to store "+topic+" DLQ event for replay", err)
		return
	}
	d.logger.Info(ctx, topic+" DLQ event stored for replay, orderID: "+orderID)
}
