package config

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"safii-be/models"
)

// Collection names
const (
	IssuesCollection  = "issues"
	UpvotesCollection = "upvotes"
	UsersCollection   = "users"
)

// ConnectDB connects to MongoDB and returns the client and database.
func ConnectDB(ctx context.Context, uri, database string) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping MongoDB: %w", err)
	}

	log.Println("Connected to MongoDB!")
	return client, client.Database(database), nil
}

// EnsureIndexes creates the indexes the storage layer relies on. The upvote
// index is what keeps (issue, user) unique under concurrent toggles.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	if err := models.EnsureUpvoteIndex(ctx, db.Collection(UpvotesCollection)); err != nil {
		return fmt.Errorf("upvote index: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := db.Collection(UsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("user email index: %w", err)
	}

	_, err = db.Collection(IssuesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("issue created_at index: %w", err)
	}
	return nil
}
