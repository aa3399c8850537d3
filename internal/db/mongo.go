package db

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/resultsportal/internal/config"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// MongoDB holds the client and the database the registry lives in
type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// NewMongoDB connects to MongoDB and verifies the primary is reachable
func NewMongoDB(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*MongoDB, error) {
	timeout, err := time.ParseDuration(cfg.Mongo.ConnectTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mongo connect timeout: %w", err)
	}

	opts := options.Client().
		ApplyURI(cfg.Mongo.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to reach mongodb: %w", err)
	}

	logger.Info().Str("database", cfg.Mongo.Database).Msg("Connected to MongoDB")
	return &MongoDB{Client: client, Database: client.Database(cfg.Mongo.Database)}, nil
}

// Ping checks the primary, used by the health endpoint
func (m *MongoDB) Ping(ctx context.Context) error {
	return m.Client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client
func (m *MongoDB) Close(ctx context.Context) error {
	if m.Client == nil {
		return nil
	}
	return m.Client.Disconnect(ctx)
}
