// Package mongo keeps the ledger read model: one document per committed transaction record.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/money-transfer-wallet/internal/domain/ledger"
	"github.com/money-transfer-wallet/internal/platform/persistence"
)

type LedgerRepository struct {
	entries *mongo.Collection
	logger  *slog.Logger
}

func NewLedgerRepository(logger *slog.Logger, db *mongo.Database) ledger.Repository {
	return &LedgerRepository{
		entries: db.Collection(persistence.LedgerEntriesCollection),
		logger:  logger,
	}
}

func (r *LedgerRepository) Create(ctx context.Context, entry *ledger.Entry) error {
	if entry.ProjectedAt == nil {
		now := time.Now().UTC()
		entry.ProjectedAt = &now
	}

	_, err := r.entries.InsertOne(ctx, entry)
	switch {
	case err == nil:
		return nil
	case mongo.IsDuplicateKeyError(err):
		return ledger.ErrDuplicateEntry{RecordID: entry.RecordID}
	}
	r.logger.Error("Failed to insert ledger entry", "record_id", entry.RecordID.String(), "error", err)
	return fmt.Errorf("failed to insert ledger entry %s: %w", entry.RecordID, err)
}

func (r *LedgerRepository) GetByRecordID(ctx context.Context, recordID uuid.UUID) (*ledger.Entry, error) {
	var entry ledger.Entry
	err := r.entries.FindOne(ctx, bson.D{{Key: "record_id", Value: recordID}}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ledger.ErrEntryNotFound{RecordID: recordID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger entry %s: %w", recordID, err)
	}
	return &entry, nil
}

// List sorts on created_at, then record_id so pages stay stable when timestamps tie.
func (r *LedgerRepository) List(ctx context.Context, filter ledger.HistoryFilter, limit, offset int) ([]*ledger.Entry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "record_id", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.entries.Find(ctx, historyQuery(filter), opts)
	if err != nil {
		r.logger.Error("Failed to query ledger history", "user_id", filter.UserID.String(), "error", err)
		return nil, fmt.Errorf("failed to query ledger history: %w", err)
	}
	defer cursor.Close(ctx)

	entries := make([]*ledger.Entry, 0, limit)
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode ledger history: %w", err)
	}
	return entries, nil
}

func (r *LedgerRepository) Count(ctx context.Context, filter ledger.HistoryFilter) (int64, error) {
	n, err := r.entries.CountDocuments(ctx, historyQuery(filter))
	if err != nil {
		r.logger.Error("Failed to count ledger history", "user_id", filter.UserID.String(), "error", err)
		return 0, fmt.Errorf("failed to count ledger history: %w", err)
	}
	return n, nil
}

// historyQuery always leads with user_id so the (user_id, created_at) index applies.
func historyQuery(f ledger.HistoryFilter) bson.D {
	q := bson.D{{Key: "user_id", Value: f.UserID}}
	if f.Category != "" {
		q = append(q, bson.E{Key: "category", Value: f.Category})
	}
	if f.Direction != "" {
		q = append(q, bson.E{Key: "direction", Value: f.Direction})
	}
	return q
}
