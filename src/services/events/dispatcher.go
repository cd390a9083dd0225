package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/sony/gobreaker"

	"go-clothing-store/src/infrastructure/log"
)

// Publisher sends a message body to a topic on the broker.
type Publisher interface {
	Publish(topic string, body []byte) error
}

// StoredEvent is an event kept in the order_events collection for replay.
type StoredEvent struct {
	ID         string
	OrderID    string
	Topic      string
	EventData  []byte
	CreatedAt  time.Time
	Replayed   bool
	ReplayedAt *time.Time
	Status     string
}

// EventStore keeps events that could not be published so they can be replayed.
type EventStore interface {
	StoreEventForReplay(ctx context.Context, topic, orderID string, eventData []byte) error
	GetUnreplayedEvents(ctx context.Context, limit int64) ([]StoredEvent, error)
	MarkEventAsReplaying(ctx context.Context, eventID string) error
	MarkEventAsCompleted(ctx context.Context, eventID string) error
	MarkEventAsFailed(ctx context.Context, eventID string) error
}

// Dispatcher publishes domain events on a best-effort basis. Publishing goes
// through a circuit breaker; anything that cannot be published is written to
// the event store for a later replay. Dispatch never fails the caller.
type Dispatcher struct {
	logger     log.Logger
	publisher  Publisher
	store      EventStore
	breaker    *gobreaker.CircuitBreaker
	retryDelay time.Duration
}

// NewDispatcher creates a Dispatcher. publisher may be nil when the broker is
// not configured, in which case every event goes straight to the store.
func NewDispatcher(logger log.Logger, publisher Publisher, store EventStore) *Dispatcher {
	d := &Dispatcher{
		logger:     logger,
		publisher:  publisher,
		store:      store,
		retryDelay: time.Second,
	}
	d.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "EventPublisher",
		MaxRequests: 3,
		Interval:    5 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WarnWithExtra(context.Background(), "Circuit breaker state changed", map[string]any{
				"Name": name,
				"From": from.String(),
				"To":   to.String(),
			})
		},
	})
	return d
}

// Dispatch validates, marshals and publishes event under topic.
func (d *Dispatcher) Dispatch(ctx context.Context, topic, orderID string, event Event) {
	if err := event.Validate(); err != nil {
		d.logger.Exception(ctx, fmt.Sprintf("%s event validation failed for order %s", topic, orderID), err)
		return
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		d.logger.Exception(ctx, fmt.Sprintf("failed to marshal %s event for order %s", topic, orderID), err)
		return
	}

	if err := d.publish(topic, eventJSON); err != nil {
		d.logger.Exception(ctx, fmt.Sprintf("failed to publish %s event for order %s, storing for replay", topic, orderID), err)
		d.storeForReplay(ctx, topic, orderID, eventJSON)
		return
	}

	d.logger.Info(ctx, fmt.Sprintf("%s event published successfully for order: %s", topic, orderID))
}

func (d *Dispatcher) publish(topic string, body []byte) error {
	if d.publisher == nil {
		return errors.New("event publisher is not configured")
	}
	_, err := d.breaker.Execute(func() (interface{}, error) {
		return nil, d.publisher.Publish(topic, body)
	})
	return err
}

func (d *Dispatcher) storeForReplay(ctx context.Context, topic, orderID string, body []byte) {
	if d.store == nil {
		d.logger.Warn(ctx, "No event store configured, dropping "+topic+" event for order "+orderID)
		return
	}
	if err := d.store.StoreEventForReplay(ctx, topic, orderID, body); err != nil {
		d.logger.Exception(ctx, "Failed to store "+topic+" event for replay", err)
	}
}

// ReplayFailedEvents republishes stored events oldest first, marking each one
// completed or failed.
func (d *Dispatcher) ReplayFailedEvents(ctx context.Context) error {
	const batchSize = 100
	const maxRetries = 3

	if d.store == nil {
		return errors.New("event store is not configured")
	}

	stored, err := d.store.GetUnreplayedEvents(ctx, batchSize)
	if err != nil {
		d.logger.Exception(ctx, "failed to fetch unreplayed events", err)
		return errors.Wrap(err, "fetch unreplayed events")
	}

	if len(stored) == 0 {
		d.logger.Info(ctx, "No events to replay")
		return nil
	}

	d.logger.Info(ctx, fmt.Sprintf("Starting replay of %d failed events", len(stored)))

	successCount := 0
	failureCount := 0

	for _, evt := range stored {
		if ctx.Err() != nil {
			return errors.Wrap(ctx.Err(), "replay interrupted")
		}
		if err := d.store.MarkEventAsReplaying(ctx, evt.ID); err != nil {
			d.logger.Warn(ctx, fmt.Sprintf("Failed to mark event %s as replaying: %v", evt.ID, err))
		}

		var pubErr error
		for attempt := 1; attempt <= maxRetries; attempt++ {
			pubErr = d.publish(evt.Topic, evt.EventData)
			if pubErr == nil {
				break
			}
			d.logger.Warn(ctx, fmt.Sprintf("Replay publish failed for event %s, attempt %d/%d: %v",
				evt.ID, attempt, maxRetries, pubErr))

			if attempt < maxRetries {
				select {
				case <-ctx.Done():
				case <-time.After(time.Duration(attempt) * d.retryDelay):
				}
			}
			if ctx.Err() != nil {
				break
			}
		}

		if pubErr != nil && ctx.Err() != nil {
			// The request is gone; leave the event replayable and stop.
			if err := d.store.MarkEventAsFailed(context.WithoutCancel(ctx), evt.ID); err != nil {
				d.logger.Warn(ctx, fmt.Sprintf("Failed to mark event %s as failed: %v", evt.ID, err))
			}
			d.logger.Warn(ctx, fmt.Sprintf("Replay interrupted: %d successful, %d failed", successCount, failureCount+1))
			return errors.Wrap(ctx.Err(), "replay interrupted")
		}

		if pubErr == nil {
			if err := d.store.MarkEventAsCompleted(ctx, evt.ID); err != nil {
				d.logger.Warn(ctx, fmt.Sprintf("Failed to mark event %s as completed: %v", evt.ID, err))
			} else {
				successCount++
			}
			continue
		}

		d.logger.Exception(ctx, fmt.Sprintf("Replay failed for event %s after %d retries", evt.ID, maxRetries), pubErr)
		if err := d.store.MarkEventAsFailed(ctx, evt.ID); err != nil {
			d.logger.Warn(ctx, fmt.Sprintf("Failed to mark event %s as failed: %v", evt.ID, err))
		}
		failureCount++
	}

	d.logger.Info(ctx, fmt.Sprintf("Replay completed: %d successful, %d failed", successCount, failureCount))

	if failureCount > 0 {
		return errors.Errorf("replay completed with %d failures out of %d events", failureCount, len(stored))
	}
	return nil
}
