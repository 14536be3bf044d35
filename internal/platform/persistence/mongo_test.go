package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongo.Connect does not dial; nothing here needs a server until Ping.
func newOfflineMongo(t *testing.T) *MongoDB {
	t.Helper()
	client, err := mongo.Connect(context.Background(), options.Client().
		ApplyURI("mongodb://127.0.0.1:1").
		SetServerSelectionTimeout(50*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	return &MongoDB{
		client:   client,
		database: client.Database("wallet_test"),
		timeout:  100 * time.Millisecond,
		logger:   testLogger(),
	}
}

func TestMongoDB_Collection(t *testing.T) {
	mdb := newOfflineMongo(t)

	assert.Equal(t, "wallet_test", mdb.Database().Name())
	assert.Equal(t, LedgerEntriesCollection, mdb.Collection(LedgerEntriesCollection).Name())
}

func TestMongoDB_PingUnreachable(t *testing.T) {
	mdb := newOfflineMongo(t)

	err := mdb.Ping(context.Background())
	assert.ErrorContains(t, err, "mongodb unreachable")
}

func TestLedgerIndexes(t *testing.T) {
	require.Len(t, ledgerIndexes, 2)
	assert.True(t, *ledgerIndexes[0].Options.Unique)
	assert.Equal(t, "record_id_unique", *ledgerIndexes[0].Options.Name)
}
