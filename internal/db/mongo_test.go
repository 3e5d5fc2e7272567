package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/motorcheck/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestConnectMongo_BadURI(t *testing.T) {
	client, err := ConnectMongo(context.Background(), "mongodb://bad:uri")
	assert.Error(t, err)
	assert.Nil(t, client)
}

func TestConnectMongo_EmptyURI(t *testing.T) {
	client, err := ConnectMongo(context.Background(), "")
	assert.Error(t, err)
	assert.Nil(t, client)
}

func TestMongoCollection_NilCollection(t *testing.T) {
	coll := &MongoCollection{Collection: nil}
	ctx := context.Background()

	var out []models.FuelLog
	assert.Error(t, coll.FindAll(ctx, &out))
	assert.Error(t, coll.FindByID(ctx, "x", &out))
	assert.Error(t, coll.ReplaceAll(ctx, nil))
	assert.Error(t, coll.Upsert(ctx, "x", struct{}{}))
}

func TestReplaceModels(t *testing.T) {
	docs := []Document{
		{ID: "a", Doc: models.FuelLog{ID: "a"}},
		{ID: "b", Doc: models.FuelLog{ID: "b"}},
	}
	writes := replaceModels(docs)
	require.Len(t, writes, 3)

	for i, w := range writes[:2] {
		replace, ok := w.(*mongo.ReplaceOneModel)
		require.True(t, ok)
		assert.Equal(t, bson.M{"_id": docs[i].ID}, replace.Filter)
		assert.Equal(t, docs[i].Doc, replace.Replacement)
		require.NotNil(t, replace.Upsert)
		assert.True(t, *replace.Upsert)
	}

	del, ok := writes[2].(*mongo.DeleteManyModel)
	require.True(t, ok, "stale documents are deleted after the upserts")
	assert.Equal(t, bson.M{"_id": bson.M{"$nin": bson.A{"a", "b"}}}, del.Filter)
}

func TestReplaceModels_Empty(t *testing.T) {
	writes := replaceModels(nil)
	require.Len(t, writes, 1)
	del, ok := writes[0].(*mongo.DeleteManyModel)
	require.True(t, ok)
	assert.Equal(t, bson.M{"_id": bson.M{"$nin": bson.A{}}}, del.Filter)
}

// Integration test (requires running MongoDB)
func TestMongoStore_Integration(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" || uri == "uri" {
		t.Skip("MONGO_URI not set or invalid, skipping integration test")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	client, err := ConnectMongo(ctx, uri)
	if err != nil {
		t.Skipf("failed to connect: %v, skipping integration test", err)
		return
	}
	defer client.Disconnect(context.Background())

	database := client.Database("motorcheck_test")
	defer database.Drop(context.Background())
	store := NewMongoStore(database)

	_, fresh, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, fresh)

	snap := models.DefaultSnapshot()
	snap.Vehicle.CurrentOdometer = 12000
	snap.ServiceLogs = []models.ServiceLog{
		{ID: "l1", ServiceID: "oil_engine", ServiceName: "Oil", Date: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), Odometer: 11000},
	}
	require.NoError(t, store.Seed(ctx, snap))

	loaded, fresh, err := store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, fresh)
	assert.Equal(t, 12000, loaded.Vehicle.CurrentOdometer)
	assert.Len(t, loaded.ServiceDefinitions, len(models.PredefinedServices()))
	require.Len(t, loaded.ServiceLogs, 1)
	assert.Equal(t, "l1", loaded.ServiceLogs[0].ID)
	assert.Empty(t, loaded.FuelLogs)

	require.NoError(t, store.SaveServiceLogs(ctx, nil))
	loaded, _, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded.ServiceLogs)
	assert.Len(t, loaded.ServiceDefinitions, len(models.PredefinedServices()))

	_, ok, err := store.LastSent(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	at := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	require.NoError(t, store.MarkSent(ctx, at))
	got, ok, err := store.LastSent(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, at.Equal(got))
}
