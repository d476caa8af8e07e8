package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore persists blobs as {key, value} documents, one per key.
type MongoStore struct {
	mongoClient *mongo.Client
	collection  *mongo.Collection
}

type mongoRecord struct {
	Key   string `bson:"key"`
	Value []byte `bson:"value"`
}

// NewMongoStore creates a new MongoDB-backed store.
func NewMongoStore(connectionString, databaseName, collectionName string) *MongoStore {
	clientOptions := options.Client().ApplyURI(connectionString)
	mongoClient, err := mongo.Connect(context.Background(), clientOptions)
	if err != nil {
		// Error surfaces on Connect().
		return &MongoStore{}
	}

	return &MongoStore{
		mongoClient: mongoClient,
		collection:  mongoClient.Database(databaseName).Collection(collectionName),
	}
}

// Connect verifies connectivity to MongoDB.
func (s *MongoStore) Connect(ctx context.Context) error {
	if s.mongoClient == nil {
		return fmt.Errorf("mongo client not initialized")
	}
	return s.mongoClient.Ping(ctx, nil)
}

// Close closes the MongoDB connection.
func (s *MongoStore) Close(ctx context.Context) error {
	if s.mongoClient == nil {
		return nil
	}
	return s.mongoClient.Disconnect(ctx)
}

func (s *MongoStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.collection == nil {
		return nil, fmt.Errorf("collection not initialized")
	}
	var record mongoRecord
	err := s.collection.FindOne(ctx, bson.M{"key": key}).Decode(&record)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", key, err)
	}
	return record.Value, nil
}

func (s *MongoStore) Set(ctx context.Context, key string, value []byte) error {
	if s.collection == nil {
		return fmt.Errorf("collection not initialized")
	}
	filter := bson.M{"key": key}
	update := bson.M{"$set": mongoRecord{Key: key, Value: value}}
	opts := options.Update().SetUpsert(true)

	if _, err := s.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, key string) error {
	if s.collection == nil {
		return fmt.Errorf("collection not initialized")
	}
	if _, err := s.collection.DeleteOne(ctx, bson.M{"key": key}); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}
