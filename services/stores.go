package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"safii-be/eventbus"
	"safii-be/models"
)

// IssueStore is implemented by repository.IssueRepository.
type IssueStore interface {
	Insert(ctx context.Context, issue *models.Issue) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Issue, error)
	FindAll(ctx context.Context) ([]models.Issue, error)
	FindByReporter(ctx context.Context, reporterID primitive.ObjectID) ([]models.Issue, error)
	Update(ctx context.Context, issue *models.Issue) error
}

// UpvoteStore is implemented by repository.UpvoteRepository.
type UpvoteStore interface {
	Exists(ctx context.Context, issueID, userID primitive.ObjectID) (bool, error)
	Insert(ctx context.Context, issueID, userID primitive.ObjectID) error
	Delete(ctx context.Context, issueID, userID primitive.ObjectID) error
	Count(ctx context.Context, issueID primitive.ObjectID) (int64, error)
	CountMany(ctx context.Context, issueIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error)
}

// UserStore is implemented by repository.UserRepository.
type UserStore interface {
	Insert(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// EventPublisher is implemented by eventbus.RedisEventBus.
type EventPublisher interface {
	Publish(ctx context.Context, event *eventbus.Event) error
}

// ParseID converts a hex id from a URL or token into an ObjectID.
func ParseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return id, nil
}
