package handlers

import (
	"context"

	"go-clothing-store/src/infrastructure/log"
	"go-clothing-store/src/services/events"
)

// sendToDLQ parks body on the topic's DLQ; the dlq consumer stores it for replay.
func sendToDLQ(ctx context.Context, publisher events.Publisher, logger log.Logger, topic string, body []byte) {
	if err := publisher.Publish(events.DLQTopic(topic), body); err != nil {
		logger.Exception(ctx, "Failed to send event to DLQ", err)
	}
}
