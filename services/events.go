package services

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"safii-be/eventbus"
)

// publish sends an event if a publisher is configured. Failures are logged
// and never reach the caller.
func publish(ctx context.Context, events EventPublisher, eventType string, issueID primitive.ObjectID, payload interface{}) {
	if events == nil {
		return
	}
	event, err := eventbus.NewEvent(eventType, issueID.Hex(), payload)
	if err != nil {
		log.Printf("Error building %s event: %v", eventType, err)
		return
	}
	if err := events.Publish(ctx, event); err != nil {
		log.Printf("Error publishing %s event for issue %s: %v", eventType, issueID.Hex(), err)
	}
}
