//go:build integration

package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcmongo "github.com/testcontainers/testcontainers-go/modules/mongodb"
	driver "go.mongodb.org/mongo-driver/mongo"

	"go-clothing-store/src/config"
	mongodb "go-clothing-store/src/infrastructure/mongo"
	"go-clothing-store/src/services/catalog"
	"go-clothing-store/src/services/events"
	"go-clothing-store/src/services/identifier"
	"go-clothing-store/src/services/order/domain"
	"go-clothing-store/src/services/order/domain/persistence"
)

func startMongo(t *testing.T) *driver.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	container, err := tcmongo.Run(ctx, "mongo:7")
	if err != nil {
		t.Skipf("mongo container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{MongoDBConnectionString: uri, MongoDBDatabaseName: "clothing-store-test"}
	client, err := mongodb.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	return mongodb.Database(client, cfg)
}

func TestOrderRepository_Mongo(t *testing.T) {
	db := startMongo(t)
	ctx := context.Background()
	repo := persistence.NewOrderRepository(db)
	require.NoError(t, repo.EnsureIndexes(ctx))

	march := time.Date(2024, time.March, 5, 9, 0, 0, 123456789, time.UTC)
	first, err := repo.Insert(ctx, &domain.Order{
		CustomerName:    "Ada",
		CustomerEmail:   "ada@example.com",
		ShippingAddress: "12 Analytical St",
		Items:           []domain.OrderItem{{ProductID: "p1", Title: "Linen Shirt", Price: 19.99, Quantity: 2}},
		Subtotal:        39.98,
		Status:          domain.StatusPending,
		PaymentMethod:   domain.PaymentMethodQR,
		CreatedAt:       march,
		UpdatedAt:       march,
	})
	require.NoError(t, err)

	second, err := repo.Insert(ctx, &domain.Order{
		CustomerName:  "Grace",
		Subtotal:      10.31,
		Status:        domain.StatusPending,
		PaymentMethod: domain.PaymentMethodQR,
		CreatedAt:     march.Add(time.Hour),
		UpdatedAt:     march.Add(time.Hour),
	})
	require.NoError(t, err)

	t.Run("find", func(t *testing.T) {
		order, err := repo.FindByID(ctx, first)
		require.NoError(t, err)
		require.NotNil(t, order)
		assert.Equal(t, first, order.ID)
		assert.Equal(t, "Ada", order.CustomerName)
		require.Len(t, order.Items, 1)
		assert.Equal(t, "Linen Shirt", order.Items[0].Title)
		assert.Equal(t, time.UTC, order.CreatedAt.Location())
		assert.Nil(t, order.PaidAt)

		missing, err := repo.FindByID(ctx, identifier.New())
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("list newest first", func(t *testing.T) {
		orders, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, second, orders[0].ID)
		assert.Equal(t, first, orders[1].ID)
	})

	t.Run("mark paid", func(t *testing.T) {
		paidAt := march.Add(2 * time.Hour)
		matched, err := repo.MarkPaid(ctx, first, paidAt)
		require.NoError(t, err)
		assert.True(t, matched)

		order, err := repo.FindByID(ctx, first)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPaid, order.Status)
		require.NotNil(t, order.PaidAt)
		assert.True(t, paidAt.Truncate(time.Millisecond).Equal(*order.PaidAt))

		matched, err = repo.MarkPaid(ctx, identifier.New(), paidAt)
		require.NoError(t, err)
		assert.False(t, matched)
	})

	t.Run("summarize by status", func(t *testing.T) {
		start := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
		totals, err := repo.SummarizeByStatus(ctx, start, start.AddDate(0, 1, 0))
		require.NoError(t, err)

		byStatus := map[domain.Status]domain.StatusTotal{}
		for _, total := range totals {
			byStatus[total.Status] = total
		}
		assert.Equal(t, 1, byStatus[domain.StatusPaid].Count)
		assert.InDelta(t, 39.98, byStatus[domain.StatusPaid].Revenue, 1e-9)
		assert.Equal(t, 1, byStatus[domain.StatusPending].Count)

		totals, err = repo.SummarizeByStatus(ctx, start.AddDate(0, 1, 0), start.AddDate(0, 2, 0))
		require.NoError(t, err)
		assert.Empty(t, totals)
	})
}

func TestOrderEventRepository_Mongo(t *testing.T) {
	db := startMongo(t)
	ctx := context.Background()
	repo := persistence.NewOrderEventRepository(db)

	require.NoError(t, repo.StoreEventForReplay(ctx, events.OrderCreated, "o-1", []byte(`{"orderId":"o-1"}`)))
	require.NoError(t, repo.StoreEventForReplay(ctx, events.OrderPaid, "o-2", []byte(`{"orderId":"o-2"}`)))

	pending, err := repo.GetUnreplayedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, events.OrderCreated, pending[0].Topic)
	assert.Equal(t, events.EventStatusPending, pending[0].Status)

	require.NoError(t, repo.MarkEventAsCompleted(ctx, pending[0].ID))
	require.NoError(t, repo.MarkEventAsFailed(ctx, pending[1].ID))

	remaining, err := repo.GetUnreplayedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "o-2", remaining[0].OrderID)
	assert.Equal(t, events.EventStatusFailed, remaining[0].Status)
}

func TestProductRepository_Mongo(t *testing.T) {
	db := startMongo(t)
	ctx := context.Background()
	repo := catalog.NewProductRepository(db)

	now := time.Date(2024, time.March, 5, 9, 0, 0, 0, time.UTC)
	id, err := repo.Insert(ctx, &catalog.Product{Title: "Denim Jacket", Price: 79.5, InStock: true, CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)

	title := "Raw Denim Jacket"
	matched, err := repo.Update(ctx, id, catalog.ProductUpdate{Title: &title}, now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, matched)

	product, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, title, product.Title)
	assert.Equal(t, 79.5, product.Price)

	require.NoError(t, repo.SeedProduct(ctx, catalog.Product{Title: "Wool Scarf", Price: 5, InStock: true, CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, repo.SeedProduct(ctx, catalog.Product{Title: "Wool Scarf", Price: 9, InStock: true, CreatedAt: now, UpdatedAt: now}))

	products, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 2)

	deleted, err := repo.Delete(ctx, id)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, id)
	require.NoError(t, err)
	assert.False(t, deleted)
}
