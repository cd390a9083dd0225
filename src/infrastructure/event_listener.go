package infrastructure

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"go-clothing-store/src/infrastructure/log"
	"go-clothing-store/src/services/events"
)

// Consumer opens a delivery stream for a queue.
type Consumer interface {
	Consume(queueName string) (<-chan amqp.Delivery, error)
}

type EventListener struct {
	consumer   Consumer
	logger     log.Logger
	handlers   map[string]events.EventHandler
	maxRetries int
	retryDelay time.Duration
}

func NewEventListener(consumer Consumer, logger log.Logger) *EventListener {
	return &EventListener{
		consumer:   consumer,
		logger:     logger,
		handlers:   make(map[string]events.EventHandler),
		maxRetries: 5,
		retryDelay: 2 * time.Second,
	}
}

// RegisterHandler registers an event handler for the queue named eventType
func (el *EventListener) RegisterHandler(eventType string, handler events.EventHandler) {
	el.handlers[eventType] = handler
}

// StartListening consumes every registered queue until ctx is cancelled.
func (el *EventListener) StartListening(ctx context.Context) error {
	var wg sync.WaitGroup

	for eventType, handler := range el.handlers {
		wg.Add(1)
		go func(evtType string, h events.EventHandler) {
			defer wg.Done()
			el.listenToQueue(ctx, evtType, h)
		}(eventType, handler)
	}

	wg.Wait()
	return nil
}

// listenToQueue consumes queueName, reconnecting with exponential backoff
// when the consumer fails or its channel closes. maxRetries bounds
// consecutive failures; a successful Consume resets the count and delay.
func (el *EventListener) listenToQueue(ctx context.Context, queueName string, handler events.EventHandler) {
	retryDelay := el.retryDelay
	failures := 0

	el.logger.Info(ctx, "Starting to listen for events on queue: "+queueName)

	for {
		msgs, err := el.consumer.Consume(queueName)
		if err != nil {
			failures++
			el.logger.Exception(ctx, fmt.Sprintf("Failed to start consuming queue: %s (attempt %d/%d)", queueName, failures, el.maxRetries), err)
			if failures >= el.maxRetries {
				el.logger.Exception(ctx, "Max retries reached for queue: "+queueName+", giving up", err)
				return
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(retryDelay):
			}
			retryDelay *= 2
			continue
		}

		failures = 0
		retryDelay = el.retryDelay
		el.logger.Info(ctx, "Successfully started consuming queue: "+queueName)
		if !el.process(ctx, queueName, msgs, handler) {
			return
		}
	}
}

// process handles deliveries until ctx ends (false) or msgs closes (true).
func (el *EventListener) process(ctx context.Context, queueName string, msgs <-chan amqp.Delivery, handler events.EventHandler) bool {
	for {
		select {
		case <-ctx.Done():
			el.logger.Info(ctx, "Stopping event listener for queue: "+queueName)
			return false
		case msg, ok := <-msgs:
			if !ok {
				el.logger.Warn(ctx, "Message channel closed for queue: "+queueName+", attempting to reconnect...")
				return true
			}
			go func(d amqp.Delivery) {
				handler.Handle(ctx, d.Body)
				if err := d.Ack(false); err != nil {
					el.logger.Warn(ctx, "Failed to ack message on queue "+queueName+": "+err.Error())
				}
			}(msg)
		}
	}
}
