package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"roost/internal/platform/config"
)

// Client wraps the mongo driver client with health checking so main can treat
// every backend uniformly.
type Client struct {
	*mongo.Client
	database string
}

// New connects to MongoDB and verifies the connection with a ping.
func New(ctx context.Context, cfg config.Mongo) (*Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping failed: %w", err)
	}
	return &Client{Client: client, database: cfg.Database}, nil
}

// Database returns the configured application database.
func (c *Client) Database() *mongo.Database {
	return c.Client.Database(c.database)
}

// Health checks if the connection is healthy.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (c *Client) Close(ctx context.Context) error {
	return c.Disconnect(ctx)
}
