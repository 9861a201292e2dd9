package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"safii-be/models"
)

// UpvoteRepository stores upvotes. It relies on the unique (issue_id, user_id)
// index created by models.EnsureUpvoteIndex.
type UpvoteRepository struct {
	collection *mongo.Collection
}

func NewUpvoteRepository(collection *mongo.Collection) *UpvoteRepository {
	return &UpvoteRepository{collection: collection}
}

func (r *UpvoteRepository) Exists(ctx context.Context, issueID, userID primitive.ObjectID) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"issue_id": issueID, "user_id": userID})
	if err != nil {
		return false, fmt.Errorf("check upvote: %w", err)
	}
	return count > 0, nil
}

// Insert records the upvote. ErrDuplicate means the pair already exists.
func (r *UpvoteRepository) Insert(ctx context.Context, issueID, userID primitive.ObjectID) error {
	upvote := models.Upvote{
		ID:        primitive.NewObjectID(),
		IssueID:   issueID,
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	_, err := r.collection.InsertOne(ctx, upvote)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert upvote: %w", err)
	}
	return nil
}

// Delete removes the upvote. Removing a missing pair is not an error.
func (r *UpvoteRepository) Delete(ctx context.Context, issueID, userID primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"issue_id": issueID, "user_id": userID})
	if err != nil {
		return fmt.Errorf("delete upvote: %w", err)
	}
	return nil
}

func (r *UpvoteRepository) Count(ctx context.Context, issueID primitive.ObjectID) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"issue_id": issueID})
	if err != nil {
		return 0, fmt.Errorf("count upvotes: %w", err)
	}
	return count, nil
}

// CountMany returns upvote counts keyed by issue for the given ids.
func (r *UpvoteRepository) CountMany(ctx context.Context, issueIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	counts := make(map[primitive.ObjectID]int64, len(issueIDs))
	if len(issueIDs) == 0 {
		return counts, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"issue_id": bson.M{"$in": issueIDs}}}},
		{{Key: "$group", Value: bson.M{"_id": "$issue_id", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate upvotes: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var row struct {
			IssueID primitive.ObjectID `bson:"_id"`
			Count   int64              `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("decode upvote count: %w", err)
		}
		counts[row.IssueID] = row.Count
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate upvote counts: %w", err)
	}
	return counts, nil
}
