package services

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"safii-be/eventbus"
	"safii-be/repository"
)

// UpvoteResult is a user's upvote state on an issue and the issue's total.
type UpvoteResult struct {
	Upvoted bool  `json:"upvoted"`
	Count   int64 `json:"count"`
}

type UpvoteService struct {
	issues  IssueStore
	upvotes UpvoteStore
	events  EventPublisher
}

// NewUpvoteService wires the service. events may be nil.
func NewUpvoteService(issues IssueStore, upvotes UpvoteStore, events EventPublisher) *UpvoteService {
	return &UpvoteService{issues: issues, upvotes: upvotes, events: events}
}

// Toggle removes the user's upvote if present and adds it otherwise. The
// count is re-read after the change so concurrent toggles converge on the
// stored state.
func (s *UpvoteService) Toggle(ctx context.Context, issueID, userID primitive.ObjectID) (UpvoteResult, error) {
	if err := s.ensureIssue(ctx, issueID); err != nil {
		return UpvoteResult{}, err
	}

	exists, err := s.upvotes.Exists(ctx, issueID, userID)
	if err != nil {
		return UpvoteResult{}, fmt.Errorf("toggle upvote: %w", err)
	}

	var result UpvoteResult
	if exists {
		if err := s.upvotes.Delete(ctx, issueID, userID); err != nil {
			return UpvoteResult{}, fmt.Errorf("remove upvote: %w", err)
		}
	} else {
		err := s.upvotes.Insert(ctx, issueID, userID)
		if err != nil && !errors.Is(err, repository.ErrDuplicate) {
			return UpvoteResult{}, fmt.Errorf("add upvote: %w", err)
		}
		result.Upvoted = true
	}

	result.Count, err = s.upvotes.Count(ctx, issueID)
	if err != nil {
		return UpvoteResult{}, fmt.Errorf("count upvotes: %w", err)
	}

	publish(ctx, s.events, eventbus.IssueUpvoted, issueID, eventbus.IssueUpvotedPayload{
		IssueID: issueID.Hex(),
		UserID:  userID.Hex(),
		Upvoted: result.Upvoted,
		Count:   result.Count,
	})
	return result, nil
}

// Status reports whether the user has upvoted the issue and its total.
func (s *UpvoteService) Status(ctx context.Context, issueID, userID primitive.ObjectID) (UpvoteResult, error) {
	if err := s.ensureIssue(ctx, issueID); err != nil {
		return UpvoteResult{}, err
	}

	upvoted, err := s.upvotes.Exists(ctx, issueID, userID)
	if err != nil {
		return UpvoteResult{}, fmt.Errorf("upvote status: %w", err)
	}
	count, err := s.upvotes.Count(ctx, issueID)
	if err != nil {
		return UpvoteResult{}, fmt.Errorf("count upvotes: %w", err)
	}
	return UpvoteResult{Upvoted: upvoted, Count: count}, nil
}

func (s *UpvoteService) ensureIssue(ctx context.Context, issueID primitive.ObjectID) error {
	_, err := s.issues.FindByID(ctx, issueID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrIssueNotFound
	}
	if err != nil {
		return fmt.Errorf("find issue: %w", err)
	}
	return nil
}
