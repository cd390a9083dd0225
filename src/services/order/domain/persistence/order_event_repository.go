package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mongodb "go-clothing-store/src/infrastructure/mongo"
	"go-clothing-store/src/services/events"
)

const OrderEventCollection = "order_events"

type OrderEvent struct {
	ID         string     `bson:"_id,omitempty"`
	OrderID    string     `bson:"orderId"`
	Topic      string     `bson:"topic"`
	EventData  []byte     `bson:"eventData"`
	CreatedAt  time.Time  `bson:"createdAt"`
	Replayed   bool       `bson:"replayed"`
	ReplayedAt *time.Time `bson:"replayedAt,omitempty"`
	Status     string     `bson:"status"`
}

// OrderEventRepository stores events that could not reach the broker.
type OrderEventRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

func NewOrderEventRepository(db *mongo.Database) *OrderEventRepository {
	return &OrderEventRepository{
		collection: mongodb.Collection(db, OrderEventCollection),
		now:        time.Now,
	}
}

// StoreEventForReplay persists an unpublished event with status pending.
func (r *OrderEventRepository) StoreEventForReplay(ctx context.Context, topic, orderID string, eventData []byte) error {
	if r.collection == nil {
		return mongodb.ErrDatabaseNotConfigured
	}

	_, err := r.collection.InsertOne(ctx, OrderEvent{
		ID:        uuid.NewString(),
		OrderID:   orderID,
		Topic:     topic,
		EventData: eventData,
		CreatedAt: r.now().UTC(),
		Status:    events.EventStatusPending,
	})
	return err
}

// GetUnreplayedEvents fetches events that have not been replayed yet
// Events are returned in FIFO order (oldest first) based on createdAt timestamp
func (r *OrderEventRepository) GetUnreplayedEvents(ctx context.Context, limit int64) ([]events.StoredEvent, error) {
	if r.collection == nil {
		return nil, mongodb.ErrDatabaseNotConfigured
	}

	filter := bson.M{
		"replayed": bson.M{"$ne": true},
		"status":   bson.M{"$in": []string{events.EventStatusPending, events.EventStatusFailed}},
	}
	opts := options.Find().SetLimit(limit).SetSort(bson.D{bson.E{Key: "createdAt", Value: 1}}) // 1 = ascending (FIFO)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var stored []events.StoredEvent
	for cursor.Next(ctx) {
		var evt OrderEvent
		if err := cursor.Decode(&evt); err != nil {
			return nil, err
		}
		stored = append(stored, events.StoredEvent{
			ID:         evt.ID,
			OrderID:    evt.OrderID,
			Topic:      evt.Topic,
			EventData:  evt.EventData,
			CreatedAt:  evt.CreatedAt,
			Replayed:   evt.Replayed,
			ReplayedAt: evt.ReplayedAt,
			Status:     evt.Status,
		})
	}
	return stored, cursor.Err()
}

// MarkEventAsReplaying marks an event as currently being replayed
func (r *OrderEventRepository) MarkEventAsReplaying(ctx context.Context, eventID string) error {
	return r.setStatus(ctx, eventID, bson.M{"status": events.EventStatusReplaying})
}

// MarkEventAsCompleted marks an event as successfully completed
func (r *OrderEventRepository) MarkEventAsCompleted(ctx context.Context, eventID string) error {
	return r.setStatus(ctx, eventID, bson.M{
		"status":     events.EventStatusCompleted,
		"replayed":   true,
		"replayedAt": r.now().UTC(),
	})
}

// MarkEventAsFailed marks an event as failed for future replay
func (r *OrderEventRepository) MarkEventAsFailed(ctx context.Context, eventID string) error {
	return r.setStatus(ctx, eventID, bson.M{"status": events.EventStatusFailed})
}

func (r *OrderEventRepository) setStatus(ctx context.Context, eventID string, fields bson.M) error {
	if r.collection == nil {
		return mongodb.ErrDatabaseNotConfigured
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": eventID}, bson.M{"$set": fields})
	return err
}
