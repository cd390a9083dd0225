package mongo

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"go-clothing-store/src/config"
)

// ErrDatabaseNotConfigured is returned by repositories built without a
// database. It fails the request, never the process.
var ErrDatabaseNotConfigured = errors.New("database not configured")

const connectTimeout = 10 * time.Second

// Connect opens a client and verifies it with a ping. The caller owns the
// client and must Disconnect it.
func Connect(ctx context.Context, cfg *config.Config) (*mongo.Client, error) {
	if cfg.MongoDBConnectionString == "" {
		return nil, ErrDatabaseNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoDBConnectionString))
	if err != nil {
		return nil, errors.Wrap(err, "connect to mongodb")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "ping mongodb")
	}
	return client, nil
}

// Database returns the configured database, or nil when client is nil.
func Database(client *mongo.Client, cfg *config.Config) *mongo.Database {
	if client == nil {
		return nil
	}
	return client.Database(cfg.MongoDBDatabaseName)
}

// Collection returns a collection handle, or nil when db is nil so that
// repositories can report ErrDatabaseNotConfigured per request.
func Collection(db *mongo.Database, name string) *mongo.Collection {
	if db == nil {
		return nil
	}
	return db.Collection(name)
}
