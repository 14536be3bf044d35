package persistence

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/money-transfer-wallet/internal/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// LedgerEntriesCollection holds the read-model copy of committed transaction records.
const LedgerEntriesCollection = "ledger_entries"

// ledgerIndexes: a unique record_id turns a second projection of the same record into a
// duplicate-key error, and (user_id, created_at) serves the history page.
var ledgerIndexes = []mongo.IndexModel{
	{
		Keys:    bson.D{{Key: "record_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("record_id_unique"),
	},
	{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		Options: options.Index().SetName("user_history"),
	},
}

type MongoDB struct {
	client   *mongo.Client
	database *mongo.Database
	timeout  time.Duration
	logger   *slog.Logger
}

func NewMongoDB(ctx context.Context, logger *slog.Logger, cfg *config.MongoDBConfig) (*MongoDB, error) {
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize).
		SetMaxConnIdleTime(cfg.MaxConnIdleTime))
	if err != nil {
		return nil, fmt.Errorf("invalid MongoDB settings: %w", err)
	}

	db := &MongoDB{
		client:   client,
		database: client.Database(cfg.Database),
		timeout:  cfg.Timeout,
		logger:   logger,
	}
	if err := db.Ping(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	if _, err := db.Collection(LedgerEntriesCollection).Indexes().CreateMany(ctx, ledgerIndexes); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create ledger indexes: %w", err)
	}

	logger.Info("Connected to MongoDB", "database", cfg.Database)
	return db, nil
}

func (m *MongoDB) Database() *mongo.Database {
	return m.database
}

func (m *MongoDB) Collection(name string) *mongo.Collection {
	return m.database.Collection(name)
}

// Ping checks the primary within the configured timeout.
func (m *MongoDB) Ping(ctx context.Context) error {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}
	if err := m.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongodb unreachable: %w", err)
	}
	return nil
}

func (m *MongoDB) Close(ctx context.Context) error {
	if err := m.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}
	m.logger.Info("Closed MongoDB client")
	return nil
}
