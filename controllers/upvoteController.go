package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"safii-be/services"
)

// UpvoteService is implemented by services.UpvoteService.
type UpvoteService interface {
	Toggle(ctx context.Context, issueID, userID primitive.ObjectID) (services.UpvoteResult, error)
	Status(ctx context.Context, issueID, userID primitive.ObjectID) (services.UpvoteResult, error)
}

type UpvoteController struct {
	upvotes UpvoteService
}

func NewUpvoteController(upvotes UpvoteService) *UpvoteController {
	return &UpvoteController{upvotes: upvotes}
}

// ToggleUpvote upvotes the issue if the user has not, and removes the upvote
// otherwise.
func (uc *UpvoteController) ToggleUpvote(c *gin.Context) {
	issueID, userID, ok := upvoteTarget(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := uc.upvotes.Toggle(ctx, issueID, userID)
	if err != nil {
		respondError(c, "updating your upvote", err)
		return
	}

	message := "Upvote removed successfully"
	if result.Upvoted {
		message = "Issue upvoted successfully"
	}
	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"upvoted": result.Upvoted,
		"count":   result.Count,
	})
}

func (uc *UpvoteController) GetUpvoteStatus(c *gin.Context) {
	issueID, userID, ok := upvoteTarget(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := uc.upvotes.Status(ctx, issueID, userID)
	if err != nil {
		respondError(c, "loading upvotes", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func upvoteTarget(c *gin.Context) (issueID, userID primitive.ObjectID, ok bool) {
	if userID, ok = currentUserID(c); !ok {
		return
	}
	issueID, ok = pathID(c)
	return
}
