package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"safii-be/models"
)

type IssueRepository struct {
	collection *mongo.Collection
}

func NewIssueRepository(collection *mongo.Collection) *IssueRepository {
	return &IssueRepository{collection: collection}
}

func (r *IssueRepository) Insert(ctx context.Context, issue *models.Issue) error {
	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	if _, err := r.collection.InsertOne(ctx, issue); err != nil {
		return fmt.Errorf("insert issue: %w", err)
	}
	return nil
}

func (r *IssueRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	var issue models.Issue
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&issue)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find issue %s: %w", id.Hex(), err)
	}
	return &issue, nil
}

// FindAll returns every issue, newest first.
func (r *IssueRepository) FindAll(ctx context.Context) ([]models.Issue, error) {
	return r.find(ctx, bson.M{})
}

// FindByReporter returns the reporter's issues, newest first.
func (r *IssueRepository) FindByReporter(ctx context.Context, reporterID primitive.ObjectID) ([]models.Issue, error) {
	return r.find(ctx, bson.M{"reporter_id": reporterID})
}

func (r *IssueRepository) find(ctx context.Context, filter bson.M) ([]models.Issue, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find issues: %w", err)
	}
	defer cursor.Close(ctx)

	issues := []models.Issue{}
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, fmt.Errorf("decode issues: %w", err)
	}
	return issues, nil
}

// Update replaces the stored issue with the given one.
func (r *IssueRepository) Update(ctx context.Context, issue *models.Issue) error {
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": issue.ID}, issue)
	if err != nil {
		return fmt.Errorf("update issue %s: %w", issue.ID.Hex(), err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
