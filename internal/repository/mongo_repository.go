package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) CartRepository {
	return &mongoRepository{
		collection: db.Collection("cart_lines"),
	}
}

func (m mongoRepository) ListLines(ctx context.Context, identity string) ([]Line, error) {
	filter := bson.M{"identity": identity}

	cursor, err := m.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart lines: %w", err)
	}
	defer cursor.Close(ctx)

	var lines []Line
	if err := cursor.All(ctx, &lines); err != nil {
		return nil, fmt.Errorf("failed to decode cart lines: %w", err)
	}

	return lines, nil
}

func (m mongoRepository) FindLine(ctx context.Context, identity, lineID string) (*Line, error) {
	filter := bson.M{"_id": lineID, "identity": identity}

	var line Line
	err := m.collection.FindOne(ctx, filter).Decode(&line)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrLineNotFound
		}
		return nil, fmt.Errorf("failed to find cart line: %w", err)
	}

	return &line, nil
}

func (m mongoRepository) FindVariant(ctx context.Context, identity, productID, size, color string) (*Line, error) {
	filter := bson.M{
		"identity":   identity,
		"product_id": productID,
		"size":       size,
		"color":      color,
	}

	var line Line
	err := m.collection.FindOne(ctx, filter).Decode(&line)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrLineNotFound
		}
		return nil, fmt.Errorf("failed to find cart variant: %w", err)
	}

	return &line, nil
}

func (m mongoRepository) InsertLine(ctx context.Context, line Line) error {
	if _, err := m.collection.InsertOne(ctx, line); err != nil {
		return fmt.Errorf("failed to insert cart line: %w", err)
	}
	return nil
}

func (m mongoRepository) UpdateQuantity(ctx context.Context, identity, lineID string, quantity int) error {
	filter := bson.M{"_id": lineID, "identity": identity}
	update := bson.M{"$set": bson.M{"quantity": quantity}}

	result, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update cart line quantity: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrLineNotFound
	}

	return nil
}

func (m mongoRepository) DeleteLine(ctx context.Context, identity, lineID string) error {
	filter := bson.M{"_id": lineID, "identity": identity}

	result, err := m.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete cart line: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrLineNotFound
	}

	return nil
}

func (m mongoRepository) DeleteAll(ctx context.Context, identity string) error {
	filter := bson.M{"identity": identity}

	if _, err := m.collection.DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("failed to clear cart lines: %w", err)
	}

	return nil
}

// CreateIndexes sets up the identity index plus a variant uniqueness
// guard so two rows for the same product+size+color cannot coexist.
func CreateIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "identity", Value: 1}},
		},
		{
			Keys: bson.D{
				{Key: "identity", Value: 1},
				{Key: "product_id", Value: 1},
				{Key: "size", Value: 1},
				{Key: "color", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := db.Collection("cart_lines").Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

func ConnectMongoDB(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}
