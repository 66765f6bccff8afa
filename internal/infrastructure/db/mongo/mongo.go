package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

const defaultTimeout = 10 * time.Second

// Config holds the MongoDB connection settings of the account store.
type Config struct {
	URI      string
	Database string
	AppName  string
	// Timeout bounds connecting, server selection and startup checks.
	Timeout time.Duration
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return defaultTimeout
	}
	return c.Timeout
}

// clientOptions acknowledges writes on a majority so a registration that
// reported CREATED survives a primary failover.
func (c Config) clientOptions() *options.ClientOptions {
	opts := options.Client().
		ApplyURI(c.URI).
		SetConnectTimeout(c.timeout()).
		SetServerSelectionTimeout(c.timeout()).
		SetWriteConcern(writeconcern.Majority()).
		SetRetryWrites(true)
	if c.AppName != "" {
		opts.SetAppName(c.AppName)
	}
	return opts
}

// Open connects to MongoDB, waits for a primary and makes sure the accounts
// indexes exist. The caller owns the returned client and must disconnect it.
func Open(ctx context.Context, cfg Config) (*AccountRepository, *mongo.Client, error) {
	client, err := mongo.Connect(ctx, cfg.clientOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	setupCtx, cancel := context.WithTimeout(ctx, cfg.timeout())
	defer cancel()

	repo := NewAccountRepository(client.Database(cfg.Database))
	if err := repo.Ping(setupCtx); err != nil {
		return nil, nil, errors.Join(fmt.Errorf("mongo ping: %w", err), client.Disconnect(context.Background()))
	}
	if err := repo.EnsureIndexes(setupCtx); err != nil {
		return nil, nil, errors.Join(fmt.Errorf("mongo indexes: %w", err), client.Disconnect(context.Background()))
	}
	return repo, client, nil
}
