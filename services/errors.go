package services

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrIssueNotFound      = errors.New("issue not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidID          = errors.New("invalid id")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrNotAdmin           = errors.New("not authorized")
	ErrResolvedImage      = errors.New("resolved image requires status resolved")
)

// ValidationError carries every problem found in a request.
type ValidationError struct {
	Details []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Details, "; ")
}

func (e *ValidationError) add(msg string) {
	e.Details = append(e.Details, msg)
}

// errOrNil returns e only when it holds at least one detail.
func (e *ValidationError) errOrNil() error {
	if len(e.Details) == 0 {
		return nil
	}
	return e
}

// IsRetryable reports whether err came from a collaborator failure that may
// succeed on a later attempt (timeouts, dropped connections). Validation,
// not-found and authorization errors are never retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return true
	}
	if errors.Is(err, redis.ErrClosed) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
