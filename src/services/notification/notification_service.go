package notification

import (
	"context"

	"github.com/go-faster/errors"

	"go-clothing-store/src/infrastructure/log"
)

// NotificationChannel represents different notification delivery methods
type NotificationChannel string

const (
	ChannelEmail NotificationChannel = "email"
	ChannelSMS   NotificationChannel = "sms"
	ChannelPush  NotificationChannel = "push"
)

const (
	MessageTypeConfirmation   = "confirmation"
	MessageTypePaymentReceipt = "payment_receipt"
)

// NotificationRequest represents a notification to be sent
type NotificationRequest struct {
	OrderID     string              `json:"orderId"`
	Message     string              `json:"message"`
	Channel     NotificationChannel `json:"channel"`
	Recipient   string              `json:"recipient"`
	MessageType string              `json:"messageType"`
}

// NotificationService defines the interface for sending notifications
type NotificationService interface {
	SendNotification(ctx context.Context, request NotificationRequest) error
	SendMultiChannelNotification(ctx context.Context, request NotificationRequest, channels []NotificationChannel) error
}

// NotificationServiceImpl delivers notifications by writing them to the log.
type NotificationServiceImpl struct {
	logger log.Logger
}

func NewNotificationService(logger log.Logger) NotificationService {
	return &NotificationServiceImpl{
		logger: logger,
	}
}

// SendNotification sends a notification through the specified channel
func (n *NotificationServiceImpl) SendNotification(ctx context.Context, request NotificationRequest) error {
	switch request.Channel {
	case ChannelEmail, ChannelSMS, ChannelPush:
	default:
		return errors.Errorf("unknown notification channel %q", request.Channel)
	}
	if request.Recipient == "" {
		return errors.Errorf("%s notification for order %s has no recipient", request.Channel, request.OrderID)
	}

	n.logger.InfoWithExtra(ctx, subject(request.MessageType), map[string]any{
		"Channel":   string(request.Channel),
		"OrderId":   request.OrderID,
		"Recipient": request.Recipient,
		"Body":      request.Message,
	})
	return nil
}

// SendMultiChannelNotification tries every channel and returns the first failure.
func (n *NotificationServiceImpl) SendMultiChannelNotification(ctx context.Context, request NotificationRequest, channels []NotificationChannel) error {
	var firstErr error
	for _, channel := range channels {
		request.Channel = channel
		if err := n.SendNotification(ctx, request); err != nil {
			n.logger.Exception(ctx, "Failed to send notification via "+string(channel), err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func subject(messageType string) string {
	switch messageType {
	case MessageTypeConfirmation:
		return "Order Confirmation"
	case MessageTypePaymentReceipt:
		return "Payment Received"
	default:
		return "Order Update"
	}
}
