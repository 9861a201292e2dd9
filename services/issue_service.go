package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"safii-be/eventbus"
	"safii-be/models"
	"safii-be/repository"
)

// Pagination defaults for List.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

const maxLocationLength = 200

type IssueService struct {
	issues  IssueStore
	upvotes UpvoteStore
	users   UserStore
	events  EventPublisher
	now     func() time.Time
}

// NewIssueService wires the service. events may be nil.
func NewIssueService(issues IssueStore, upvotes UpvoteStore, users UserStore, events EventPublisher) *IssueService {
	return &IssueService{
		issues:  issues,
		upvotes: upvotes,
		users:   users,
		events:  events,
		now:     time.Now,
	}
}

type SubmitInput struct {
	Title       string
	Description string
	Category    string
	Priority    string
	Location    models.Location
	ImageURL    *string
}

// Reporter is the public part of the user who submitted an issue.
type Reporter struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
}

// IssueView is an issue as returned by the API.
type IssueView struct {
	models.Issue
	LocationDisplay string    `json:"locationDisplay"`
	Upvotes         int64     `json:"upvotes"`
	Reporter        *Reporter `json:"reporter,omitempty"`
}

type ListQuery struct {
	Filters models.FilterState
	Search  string
	Page    int
	Limit   int
}

type ListResult struct {
	Issues []IssueView `json:"issues"`
	Total  int         `json:"total"`
	Page   int         `json:"page"`
	Limit  int         `json:"limit"`
}

type AdminUpdateInput struct {
	Status           *string
	AdminNotes       *string
	ResolvedImageURL *string
}

func validateSubmit(in SubmitInput) error {
	verr := &ValidationError{}

	if n := utf8.RuneCountInString(strings.TrimSpace(in.Title)); n < 5 || n > 200 {
		verr.add("Title must be between 5 and 200 characters")
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(in.Description)); n < 10 || n > 1000 {
		verr.add("Description must be between 10 and 1000 characters")
	}
	if !models.IssueCategory(in.Category).Valid() {
		verr.add("Invalid category")
	}
	if !models.IssuePriority(in.Priority).Valid() {
		verr.add("Invalid priority")
	}
	if err := in.Location.Validate(); err != nil || utf8.RuneCountInString(in.Location.Display()) > maxLocationLength {
		verr.add("Invalid location")
	}
	return verr.errOrNil()
}

// Submit validates and stores a new pending issue.
func (s *IssueService) Submit(ctx context.Context, reporterID primitive.ObjectID, in SubmitInput) (*models.Issue, error) {
	if err := validateSubmit(in); err != nil {
		return nil, err
	}

	now := s.now()
	issue := &models.Issue{
		ID:          primitive.NewObjectID(),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Category:    models.IssueCategory(in.Category),
		Status:      models.Pending,
		Priority:    models.IssuePriority(in.Priority),
		Location:    in.Location,
		ImageURL:    nonEmpty(in.ImageURL),
		ReporterID:  reporterID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if issue.Location.Kind == models.AddressLocation {
		issue.Location.Address = strings.TrimSpace(issue.Location.Address)
	}

	if err := s.issues.Insert(ctx, issue); err != nil {
		return nil, fmt.Errorf("submit issue: %w", err)
	}

	publish(ctx, s.events, eventbus.IssueCreated, issue.ID, eventbus.IssueCreatedPayload{
		IssueID:    issue.ID.Hex(),
		ReporterID: reporterID.Hex(),
		Category:   string(issue.Category),
		Priority:   string(issue.Priority),
		Location:   issue.Location.Display(),
		CreatedAt:  issue.CreatedAt,
	})
	return issue, nil
}

// List returns one page of issues, newest first, matching the filters and the
// optional search text. Total counts every match, not just the page.
func (s *IssueService) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	all, err := s.issues.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}

	matched := models.ApplyFilters(all, q.Filters)
	matched = search(matched, q.Search)

	page, limit := normalizePage(q.Page, q.Limit)
	start := (page - 1) * limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}

	views, err := s.views(ctx, matched[start:end])
	if err != nil {
		return nil, err
	}
	return &ListResult{Issues: views, Total: len(matched), Page: page, Limit: limit}, nil
}

// ListByReporter returns every issue the user submitted, newest first.
func (s *IssueService) ListByReporter(ctx context.Context, reporterID primitive.ObjectID) ([]IssueView, error) {
	issues, err := s.issues.FindByReporter(ctx, reporterID)
	if err != nil {
		return nil, fmt.Errorf("list reporter issues: %w", err)
	}
	return s.views(ctx, issues)
}

// Get returns a single issue with its reporter and upvote count.
func (s *IssueService) Get(ctx context.Context, id primitive.ObjectID) (*IssueView, error) {
	issue, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := s.upvotes.Count(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count upvotes: %w", err)
	}

	view := newView(*issue, count)
	reporter, err := s.users.FindByID(ctx, issue.ReporterID)
	switch {
	case err == nil:
		view.Reporter = &Reporter{ID: reporter.ID, Name: reporter.Name, Email: reporter.Email}
	case errors.Is(err, repository.ErrNotFound):
		log.Printf("Reporter %s of issue %s not found", issue.ReporterID.Hex(), id.Hex())
	default:
		return nil, fmt.Errorf("find reporter: %w", err)
	}
	return &view, nil
}

// AdminUpdate applies an administrator's triage decision.
func (s *IssueService) AdminUpdate(ctx context.Context, id primitive.ObjectID, in AdminUpdateInput) (*IssueView, error) {
	issue, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	oldStatus := issue.Status
	if in.Status != nil {
		status := models.IssueStatus(*in.Status)
		if !status.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, *in.Status)
		}
		issue.SetStatus(status, now)
	}
	if in.AdminNotes != nil {
		issue.AdminNotes = nonEmpty(in.AdminNotes)
	}
	if in.ResolvedImageURL != nil {
		url := nonEmpty(in.ResolvedImageURL)
		if url != nil && issue.Status != models.Resolved {
			return nil, ErrResolvedImage
		}
		issue.ResolvedImageURL = url
	}
	issue.UpdatedAt = now

	if err := s.issues.Update(ctx, issue); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrIssueNotFound
		}
		return nil, fmt.Errorf("update issue: %w", err)
	}

	if issue.Status != oldStatus {
		publish(ctx, s.events, eventbus.IssueStatusUpdated, issue.ID, eventbus.IssueStatusUpdatedPayload{
			IssueID:   issue.ID.Hex(),
			OldStatus: string(oldStatus),
			NewStatus: string(issue.Status),
			ChangedAt: now,
		})
	}

	count, err := s.upvotes.Count(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count upvotes: %w", err)
	}
	view := newView(*issue, count)
	return &view, nil
}

// Stats summarizes all issues for the admin dashboard.
func (s *IssueService) Stats(ctx context.Context) (models.DashboardStats, error) {
	all, err := s.issues.FindAll(ctx)
	if err != nil {
		return models.DashboardStats{}, fmt.Errorf("issue stats: %w", err)
	}
	return models.ComputeStats(all, s.now()), nil
}

func (s *IssueService) find(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	issue, err := s.issues.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrIssueNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find issue: %w", err)
	}
	return issue, nil
}

func (s *IssueService) views(ctx context.Context, issues []models.Issue) ([]IssueView, error) {
	ids := make([]primitive.ObjectID, len(issues))
	for i, issue := range issues {
		ids[i] = issue.ID
	}
	counts, err := s.upvotes.CountMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("count upvotes: %w", err)
	}

	views := make([]IssueView, len(issues))
	for i, issue := range issues {
		views[i] = newView(issue, counts[issue.ID])
	}
	return views, nil
}

func newView(issue models.Issue, upvotes int64) IssueView {
	return IssueView{
		Issue:           issue,
		LocationDisplay: issue.Location.Display(),
		Upvotes:         upvotes,
	}
}

func search(issues []models.Issue, text string) []models.Issue {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return issues
	}
	out := make([]models.Issue, 0, len(issues))
	for _, issue := range issues {
		if strings.Contains(strings.ToLower(issue.Title), needle) ||
			strings.Contains(strings.ToLower(issue.Description), needle) ||
			strings.Contains(strings.ToLower(issue.Location.Display()), needle) {
			out = append(out, issue)
		}
	}
	return out
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 || limit > MaxLimit {
		limit = DefaultLimit
	}
	return page, limit
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
