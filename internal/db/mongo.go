package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectMongo connects to MongoDB at uri and verifies the connection.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo uri is empty")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	// Ping to verify connection
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// MongoCollection wraps a MongoDB collection.
type MongoCollection struct {
	Collection *mongo.Collection
}

// FindAll decodes every document of the collection into out.
func (c *MongoCollection) FindAll(ctx context.Context, out interface{}) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	cursor, err := c.Collection.Find(ctx, bson.M{})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}

// FindByID decodes the document with the given _id into out.
func (c *MongoCollection) FindByID(ctx context.Context, id string, out interface{}) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	err := c.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNoDocument
	}
	return err
}

// ReplaceAll makes docs the full content of the collection in one ordered
// bulk write: every document is upserted, then documents whose _id is not in
// docs are deleted. An interrupted write leaves old documents behind, never an
// empty collection.
func (c *MongoCollection) ReplaceAll(ctx context.Context, docs []Document) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	opts := options.BulkWrite().SetOrdered(true)
	if _, err := c.Collection.BulkWrite(ctx, replaceModels(docs), opts); err != nil {
		return fmt.Errorf("replace documents: %w", err)
	}
	return nil
}

func replaceModels(docs []Document) []mongo.WriteModel {
	ids := make(bson.A, 0, len(docs))
	writes := make([]mongo.WriteModel, 0, len(docs)+1)
	for _, d := range docs {
		ids = append(ids, d.ID)
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": d.ID}).
			SetReplacement(d.Doc).
			SetUpsert(true))
	}
	writes = append(writes, mongo.NewDeleteManyModel().
		SetFilter(bson.M{"_id": bson.M{"$nin": ids}}))
	return writes
}

// Upsert replaces the document with the given _id, inserting it if missing.
func (c *MongoCollection) Upsert(ctx context.Context, id string, doc interface{}) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	_, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	return err
}
