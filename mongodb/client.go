package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/v2/mongo/otelmongo"
)

const (
	// AccountsCollection stores one document per provisioned identity,
	// keyed by the provider subject id.
	AccountsCollection = "accounts"
)

// Client owns the MongoDB connection. It is constructed explicitly at
// startup and injected into repositories; there is no package-level
// connection state.
type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials MongoDB, verifies the connection with a ping, and
// returns a Client bound to dbName. Close must be called on shutdown.
func Connect(ctx context.Context, uri, dbName string) (*Client, error) {
	log.Info().Str("db", dbName).Msg("Connecting to MongoDB")

	clientOptions := options.Client().ApplyURI(uri)
	clientOptions.SetConnectTimeout(10 * time.Second)
	clientOptions.SetMonitor(otelmongo.NewMonitor())

	client, err := mongo.Connect(clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB primary: %w", err)
	}

	return &Client{
		client: client,
		db:     client.Database(dbName),
	}, nil
}

// Database returns the bound database handle.
func (c *Client) Database() *mongo.Database {
	return c.db
}

// Ping verifies the connection, for health checks. Uses a short timeout
// so a dead server cannot stall the caller.
func (c *Client) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return c.client.Ping(pingCtx, readpref.Primary())
}

// Close disconnects the underlying client.
func (c *Client) Close(ctx context.Context) {
	log.Info().Msg("Closing MongoDB connection")
	if err := c.client.Disconnect(ctx); err != nil {
		log.Error().Err(err).Msg("Error closing MongoDB connection")
	}
}
