package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"go-clothing-store/src/infrastructure/log"
	"go-clothing-store/src/services/events"
	"go-clothing-store/src/services/notification"
)

// OrderCreatedEventHandler sends the customer an order confirmation.
type OrderCreatedEventHandler struct {
	notificationService notification.NotificationService
	publisher           events.Publisher
	logger              log.Logger
}

func NewOrderCreatedEventHandler(
	notificationService notification.NotificationService,
	publisher events.Publisher,
	logger log.Logger,
) *OrderCreatedEventHandler {
	return &OrderCreatedEventHandler{
		notificationService: notificationService,
		publisher:           publisher,
		logger:              logger,
	}
}

func (h *OrderCreatedEventHandler) Handle(ctx context.Context, msgBody []byte) {
	var event events.OrderCreatedEvent
	if err := json.Unmarshal(msgBody, &event); err != nil {
		h.logger.Exception(ctx, "Failed to unmarshal OrderCreated event", err)
		sendToDLQ(ctx, h.publisher, h.logger, events.OrderCreated, msgBody)
		return
	}
	if err := event.Validate(); err != nil {
		h.logger.Exception(ctx, "Invalid OrderCreated event", err)
		sendToDLQ(ctx, h.publisher, h.logger, events.OrderCreated, msgBody)
		return
	}

	request := notification.NotificationRequest{
		OrderID: event.OrderID,
		Message: fmt.Sprintf("Thank you %s! We received your order %s (%d items, subtotal %.2f). Scan the QR code to pay.",
			event.CustomerName, event.OrderID, len(event.Items), event.Subtotal),
		Recipient:   event.CustomerEmail,
		MessageType: notification.MessageTypeConfirmation,
	}
	err := h.notificationService.SendMultiChannelNotification(ctx, request,
		[]notification.NotificationChannel{notification.ChannelEmail})
	if err != nil {
		h.logger.Exception(ctx, "Failed to send order confirmation for order: "+event.OrderID, err)
		sendToDLQ(ctx, h.publisher, h.logger, events.OrderCreated, msgBody)
		return
	}

	h.logger.Info(ctx, "Order confirmation sent for order: "+event.OrderID)
}
