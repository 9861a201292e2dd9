package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"safii-be/models"
	"safii-be/services"
)

// IssueService is implemented by services.IssueService.
type IssueService interface {
	Submit(ctx context.Context, reporterID primitive.ObjectID, in services.SubmitInput) (*models.Issue, error)
	List(ctx context.Context, q services.ListQuery) (*services.ListResult, error)
	ListByReporter(ctx context.Context, reporterID primitive.ObjectID) ([]services.IssueView, error)
	Get(ctx context.Context, id primitive.ObjectID) (*services.IssueView, error)
	AdminUpdate(ctx context.Context, id primitive.ObjectID, in services.AdminUpdateInput) (*services.IssueView, error)
	Stats(ctx context.Context) (models.DashboardStats, error)
}

type IssueController struct {
	issues IssueService
}

func NewIssueController(issues IssueService) *IssueController {
	return &IssueController{issues: issues}
}

// SubmitIssue handles the creation of a new issue. Location may be sent as
// free text ("Main St (12.3456, 77.1234)") or as a location object.
func (ic *IssueController) SubmitIssue(c *gin.Context) {
	reporterID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input struct {
		Title       string          `json:"title"`
		Description string          `json:"description"`
		Category    string          `json:"category"`
		Priority    string          `json:"priority"`
		Location    models.Location `json:"location"`
		ImageURL    *string         `json:"imageUrl,omitempty"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		validationFailed(c, bindingDetails(err))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	issue, err := ic.issues.Submit(ctx, reporterID, services.SubmitInput{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Priority:    input.Priority,
		Location:    input.Location,
		ImageURL:    input.ImageURL,
	})
	if err != nil {
		respondError(c, "submitting the issue", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Issue submitted successfully",
		"issue":   issue.Summary(),
	})
}

// GetAllIssues lists issues newest first. status, category and priority may
// each be repeated or comma-separated; "all" lifts the restriction.
func (ic *IssueController) GetAllIssues(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := ic.issues.List(ctx, services.ListQuery{
		Filters: models.FilterStateFromQuery(c.Request.URL.Query()),
		Search:  c.Query("search"),
		Page:    page,
		Limit:   limit,
	})
	if err != nil {
		respondError(c, "retrieving issues", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Issues retrieved successfully",
		"issues":  result.Issues,
		"total":   result.Total,
		"page":    result.Page,
		"limit":   result.Limit,
	})
}

// GetMyIssues lists the authenticated user's own reports.
func (ic *IssueController) GetMyIssues(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	issues, err := ic.issues.ListByReporter(ctx, userID)
	if err != nil {
		respondError(c, "retrieving your issues", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Issues retrieved successfully",
		"issues":  issues,
		"total":   len(issues),
	})
}

func (ic *IssueController) GetIssue(c *gin.Context) {
	issueID, ok := pathID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	issue, err := ic.issues.Get(ctx, issueID)
	if err != nil {
		respondError(c, "retrieving the issue", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Issue retrieved successfully",
		"issue":   issue,
	})
}

// UpdateIssue lets an admin change status, notes and the resolution photo.
func (ic *IssueController) UpdateIssue(c *gin.Context) {
	issueID, ok := pathID(c)
	if !ok {
		return
	}

	var input struct {
		Status           *string `json:"status"`
		AdminNotes       *string `json:"adminNotes"`
		ResolvedImageURL *string `json:"resolvedImageUrl"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		validationFailed(c, bindingDetails(err))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	issue, err := ic.issues.AdminUpdate(ctx, issueID, services.AdminUpdateInput{
		Status:           input.Status,
		AdminNotes:       input.AdminNotes,
		ResolvedImageURL: input.ResolvedImageURL,
	})
	if err != nil {
		respondError(c, "updating the issue", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Issue updated successfully",
		"issue":   issue,
	})
}

// GetStats returns the admin dashboard counters.
func (ic *IssueController) GetStats(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	stats, err := ic.issues.Stats(ctx)
	if err != nil {
		respondError(c, "loading statistics", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
