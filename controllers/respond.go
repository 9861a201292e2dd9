package controllers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"safii-be/middlewares"
	"safii-be/services"
)

const requestTimeout = 10 * time.Second

// requestContext bounds collaborator calls and cancels them when the client
// goes away.
func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := services.ParseID(c.GetString(middlewares.UserIDKey))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return primitive.NilObjectID, false
	}
	return id, true
}

func pathID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := services.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return primitive.NilObjectID, false
	}
	return id, true
}

func validationFailed(c *gin.Context, details []string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": details})
}

// bindingDetails turns a ShouldBind error into readable messages.
func bindingDetails(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"Invalid request body"}
	}
	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, fieldMessage(fe))
	}
	return details
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

// respondError maps service errors to HTTP responses. action completes the
// sentence "Something went wrong while ...".
func respondError(c *gin.Context, action string, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		validationFailed(c, verr.Details)
	case errors.Is(err, services.ErrIssueNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found", "message": "The requested issue does not exist"})
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, services.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
	case errors.Is(err, services.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
	case errors.Is(err, services.ErrResolvedImage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Resolved image requires status resolved"})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	case errors.Is(err, services.ErrEmailTaken):
		c.JSON(http.StatusBadRequest, gin.H{"error": "User with this email already exists"})
	case errors.Is(err, services.ErrNotAdmin):
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized"})
	default:
		log.Printf("Error %s: %v", action, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"message":   "Something went wrong while " + action,
			"retryable": services.IsRetryable(err),
		})
	}
}
