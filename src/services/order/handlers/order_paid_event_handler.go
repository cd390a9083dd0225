package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"go-clothing-store/src/infrastructure/log"
	"go-clothing-store/src/services/events"
	"go-clothing-store/src/services/identifier"
	"go-clothing-store/src/services/notification"
	"go-clothing-store/src/services/order/domain"
)

// OrderPaidEventHandler sends the customer a payment receipt. The paid event
// carries no contact details, so the order is read back from the store.
type OrderPaidEventHandler struct {
	orders              domain.OrderStore
	notificationService notification.NotificationService
	publisher           events.Publisher
	logger              log.Logger
}

func NewOrderPaidEventHandler(
	orders domain.OrderStore,
	notificationService notification.NotificationService,
	publisher events.Publisher,
	logger log.Logger,
) *OrderPaidEventHandler {
	return &OrderPaidEventHandler{
		orders:              orders,
		notificationService: notificationService,
		publisher:           publisher,
		logger:              logger,
	}
}

func (h *OrderPaidEventHandler) Handle(ctx context.Context, msgBody []byte) {
	var event events.OrderPaidEvent
	if err := json.Unmarshal(msgBody, &event); err != nil {
		h.logger.Exception(ctx, "Failed to unmarshal OrderPaid event", err)
		sendToDLQ(ctx, h.publisher, h.logger, events.OrderPaid, msgBody)
		return
	}
	if err := event.Validate(); err != nil {
		h.logger.Exception(ctx, "Invalid OrderPaid event", err)
		sendToDLQ(ctx, h.publisher, h.logger, events.OrderPaid, msgBody)
		return
	}

	id, err := identifier.Parse(event.OrderID)
	if err != nil {
		h.logger.Exception(ctx, "OrderPaid event has a malformed order id", err)
		sendToDLQ(ctx, h.publisher, h.logger, events.OrderPaid, msgBody)
		return
	}

	order, err := h.orders.FindByID(ctx, id)
	if err != nil {
		h.logger.Exception(ctx, "Failed to load order for payment receipt: "+event.OrderID, err)
		sendToDLQ(ctx, h.publisher, h.logger, events.OrderPaid, msgBody)
		return
	}
	if order == nil {
		h.logger.Warn(ctx, "Order not found for payment receipt, skipping: "+event.OrderID)
		return
	}

	request := notification.NotificationRequest{
		OrderID: event.OrderID,
		Message: fmt.Sprintf("Hi %s, we received your payment of %.2f for order %s. It will ship to %s.",
			order.CustomerName, order.Subtotal, event.OrderID, order.ShippingAddress),
		Recipient:   order.CustomerEmail,
		MessageType: notification.MessageTypePaymentReceipt,
	}
	err = h.notificationService.SendMultiChannelNotification(ctx, request,
		[]notification.NotificationChannel{notification.ChannelEmail})
	if err != nil {
		h.logger.Exception(ctx, "Failed to send payment receipt for order: "+event.OrderID, err)
		sendToDLQ(ctx, h.publisher, h.logger, events.OrderPaid, msgBody)
		return
	}

	h.logger.Info(ctx, "Payment receipt sent for order: "+event.OrderID)
}
