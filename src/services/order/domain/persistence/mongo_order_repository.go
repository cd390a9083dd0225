package persistence

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mongodb "go-clothing-store/src/infrastructure/mongo"
	"go-clothing-store/src/services/identifier"
	"go-clothing-store/src/services/order/domain"
)

const OrderCollection = "order"

type OrderRepository struct {
	collection *mongo.Collection
}

// OrderDocument is the storage model for MongoDB
type OrderDocument struct {
	ID              primitive.ObjectID  `bson:"_id"`
	CustomerName    string              `bson:"customer_name"`
	CustomerEmail   string              `bson:"customer_email"`
	ShippingAddress string              `bson:"shipping_address"`
	Items           []OrderItemDocument `bson:"items"`
	Subtotal        float64             `bson:"subtotal"`
	Status          string              `bson:"status"`
	PaymentMethod   string              `bson:"payment_method"`
	CreatedAt       time.Time           `bson:"created_at"`
	UpdatedAt       time.Time           `bson:"updated_at"`
	PaidAt          *time.Time          `bson:"paid_at,omitempty"`
}

type OrderItemDocument struct {
	ProductID string  `bson:"product_id"`
	Title     string  `bson:"title"`
	Price     float64 `bson:"price"`
	Quantity  int     `bson:"quantity"`
}

type statusGroupDocument struct {
	Status  string  `bson:"_id"`
	Count   int     `bson:"count"`
	Revenue float64 `bson:"revenue"`
}

// NewOrderRepository builds the repository over db. A nil db yields a
// repository whose every call fails with ErrDatabaseNotConfigured.
func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{
		collection: mongodb.Collection(db, OrderCollection),
	}
}

// EnsureIndexes creates the created_at index used by listing and reports.
func (r *OrderRepository) EnsureIndexes(ctx context.Context) error {
	if r.collection == nil {
		return mongodb.ErrDatabaseNotConfigured
	}
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	return err
}

func (r *OrderRepository) Insert(ctx context.Context, order *domain.Order) (identifier.ID, error) {
	if r.collection == nil {
		return identifier.ID{}, mongodb.ErrDatabaseNotConfigured
	}

	doc := toDocument(order)
	doc.ID = primitive.NewObjectID()

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return identifier.ID{}, err
	}
	return identifier.FromObjectID(doc.ID), nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id identifier.ID) (*domain.Order, error) {
	if r.collection == nil {
		return nil, mongodb.ErrDatabaseNotConfigured
	}

	var doc OrderDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id.ObjectID()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil // Order not found
		}
		return nil, err
	}
	order := toDomain(doc)
	return &order, nil
}

// List sorts by created_at descending; ObjectIDs grow with insertion, so the
// ascending _id tiebreak keeps equal timestamps in insertion order.
func (r *OrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	if r.collection == nil {
		return nil, mongodb.ErrDatabaseNotConfigured
	}

	opts := options.Find().SetSort(bson.D{
		bson.E{Key: "created_at", Value: -1},
		bson.E{Key: "_id", Value: 1},
	})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	orders := []domain.Order{}
	for cursor.Next(ctx) {
		var doc OrderDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		orders = append(orders, toDomain(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderRepository) MarkPaid(ctx context.Context, id identifier.ID, at time.Time) (bool, error) {
	if r.collection == nil {
		return false, mongodb.ErrDatabaseNotConfigured
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id.ObjectID()}, bson.M{"$set": bson.M{
		"status":     string(domain.StatusPaid),
		"paid_at":    at,
		"updated_at": at,
	}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *OrderRepository) SummarizeByStatus(ctx context.Context, start, end time.Time) ([]domain.StatusTotal, error) {
	if r.collection == nil {
		return nil, mongodb.ErrDatabaseNotConfigured
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "created_at", Value: bson.D{
				{Key: "$gte", Value: start},
				{Key: "$lt", Value: end},
			}},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "revenue", Value: bson.D{{Key: "$sum", Value: "$subtotal"}}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []statusGroupDocument
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	totals := make([]domain.StatusTotal, len(rows))
	for i, row := range rows {
		totals[i] = domain.StatusTotal{
			Status:  domain.Status(row.Status),
			Count:   row.Count,
			Revenue: row.Revenue,
		}
	}
	return totals, nil
}

func toDocument(order *domain.Order) OrderDocument {
	items := make([]OrderItemDocument, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemDocument{
			ProductID: item.ProductID,
			Title:     item.Title,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}
	return OrderDocument{
		ID:              order.ID.ObjectID(),
		CustomerName:    order.CustomerName,
		CustomerEmail:   order.CustomerEmail,
		ShippingAddress: order.ShippingAddress,
		Items:           items,
		Subtotal:        order.Subtotal,
		Status:          string(order.Status),
		PaymentMethod:   order.PaymentMethod,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
		PaidAt:          order.PaidAt,
	}
}

func toDomain(doc OrderDocument) domain.Order {
	items := make([]domain.OrderItem, len(doc.Items))
	for i, item := range doc.Items {
		items[i] = domain.OrderItem{
			ProductID: item.ProductID,
			Title:     item.Title,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}
	return domain.Order{
		ID:              identifier.FromObjectID(doc.ID),
		CustomerName:    doc.CustomerName,
		CustomerEmail:   doc.CustomerEmail,
		ShippingAddress: doc.ShippingAddress,
		Items:           items,
		Subtotal:        doc.Subtotal,
		Status:          domain.Status(doc.Status),
		PaymentMethod:   doc.PaymentMethod,
		CreatedAt:       doc.CreatedAt.UTC(),
		UpdatedAt:       doc.UpdatedAt.UTC(),
		PaidAt:          utcPtr(doc.PaidAt),
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}
