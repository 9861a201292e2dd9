package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"safii-be/eventbus"
	"safii-be/models"
)

type issueFixture struct {
	svc     *IssueService
	issues  *memIssues
	upvotes *memUpvotes
	users   *memUsers
	events  *recordedEvents
	clock   time.Time
}

func newIssueFixture(t *testing.T) *issueFixture {
	t.Helper()

	f := &issueFixture{
		issues:  &memIssues{},
		upvotes: newMemUpvotes(),
		users:   &memUsers{},
		events:  &recordedEvents{},
		clock:   time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	f.svc = NewIssueService(f.issues, f.upvotes, f.users, f.events)
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func validSubmit() SubmitInput {
	return SubmitInput{
		Title:       "Deep pothole on Main St",
		Description: "A pothole about a foot wide near the bus stop.",
		Category:    "pothole",
		Priority:    "high",
		Location:    models.ParseLocationInput("Main St (12.3456, 77.1234)"),
	}
}

func (f *issueFixture) seed(t *testing.T, title string, status models.IssueStatus, category models.IssueCategory, priority models.IssuePriority) models.Issue {
	t.Helper()

	f.clock = f.clock.Add(time.Minute)
	issue := models.Issue{
		ID:          primitive.NewObjectID(),
		Title:       title,
		Description: "seeded issue",
		Category:    category,
		Status:      status,
		Priority:    priority,
		Location:    models.NewAddressLocation("Ward " + title),
		CreatedAt:   f.clock,
		UpdatedAt:   f.clock,
	}
	require.NoError(t, f.issues.Insert(context.Background(), &issue))
	return issue
}

func TestSubmitStoresPendingIssue(t *testing.T) {
	t.Parallel()

	f := newIssueFixture(t)
	reporter := primitive.NewObjectID()
	in := validSubmit()
	blank := "  "
	in.ImageURL = &blank

	issue, err := f.svc.Submit(context.Background(), reporter, in)
	require.NoError(t, err)

	assert.Equal(t, models.Pending, issue.Status)
	assert.Equal(t, reporter, issue.ReporterID)
	assert.Nil(t, issue.ImageURL)
	assert.Nil(t, issue.ResolvedAt)
	assert.Equal(t, f.clock, issue.CreatedAt)
	assert.Equal(t, "Main St (12.3456, 77.1234)", issue.Location.Display())

	stored, err := f.issues.FindByID(context.Background(), issue.ID)
	require.NoError(t, err)
	assert.Equal(t, *issue, *stored)
	assert.Equal(t, []string{eventbus.IssueCreated}, f.events.types())
}

func TestSubmitCollectsEveryValidationProblem(t *testing.T) {
	t.Parallel()

	f := newIssueFixture(t)
	_, err := f.svc.Submit(context.Background(), primitive.NewObjectID(), SubmitInput{
		Title:       "bad",
		Description: "short",
		Category:    "volcano",
		Priority:    "urgent",
		Location:    models.NewAddressLocation(" "),
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	want := []string{
		"Title must be between 5 and 200 characters",
		"Description must be between 10 and 1000 characters",
		"Invalid category",
		"Invalid priority",
		"Invalid location",
	}
	if diff := cmp.Diff(want, verr.Details); diff != "" {
		t.Fatalf("details mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, f.issues.issues)
	assert.Empty(t, f.events.types())
}

func TestSubmitPropagatesStorageFailure(t *testing.T) {
	t.Parallel()

	f := newIssueFixture(t)
	f.issues.err = context.DeadlineExceeded

	_, err := f.svc.Submit(context.Background(), primitive.NewObjectID(), validSubmit())
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
	assert.Empty(t, f.events.types())
}

func TestSubmitSucceedsWhenPublishFails(t *testing.T) {
	t.Parallel()

	f := newIssueFixture(t)
	f.events.err = errors.New("stream down")

	_, err := f.svc.Submit(context.Background(), primitive.NewObjectID(), validSubmit())
	require.NoError(t, err)
	assert.Len(t, f.issues.issues, 1)
}

func TestListFiltersSearchesAndPaginates(t *testing.T) {
	t.Parallel()

	f := newIssueFixture(t)
	f.seed(t, "a", models.Pending, models.Pothole, models.Critical)
	f.seed(t, "b", models.Resolved, models.Garbage, models.Critical)
	f.seed(t, "c", models.Pending, models.Garbage, models.Critical)
	f.seed(t, "d", models.Pending, models.Drainage, models.Low)
	f.seed(t, "e", models.Pending, models.Pothole, models.Critical)

	ctx := context.Background()
	names := func(r *ListResult) []string {
		out := make([]string, len(r.Issues))
		for i, v := range r.Issues {
			out[i] = v.Title
		}
		return out
	}

	all, err := f.svc.List(ctx, ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"e", "d", "c", "b", "a"}, names(all))
	assert.Equal(t, 5, all.Total)
	assert.Equal(t, DefaultPage, all.Page)
	assert.Equal(t, DefaultLimit, all.Limit)

	filtered, err := f.svc.List(ctx, ListQuery{Filters: models.FilterState{
		Status:   []string{"pending"},
		Category: []string{"pothole", "garbage"},
		Priority: []string{"critical"},
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{"e", "c", "a"}, names(filtered))
	assert.Equal(t, 3, filtered.Total)

	paged, err := f.svc.List(ctx, ListQuery{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b"}, names(paged))
	assert.Equal(t, 5, paged.Total)

	past, err := f.svc.List(ctx, ListQuery{Page: 9, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, past.Issues)
	assert.Equal(t, 5, past.Total)

	searched, err := f.svc.List(ctx, ListQuery{Search: "WARD D"})
	require.NoError(t, err)
	assert.Equal(t, []string{"d"}, names(searched))
}

func TestListIncludesUpvoteCountsAndDisplay(t *testing.T) {
	t.Parallel()

	f := newIssueFixture(t)
	issue := f.seed(t, "a", models.Pending, models.Pothole, models.Low)
	ctx := context.Background()
	require.NoError(t, f.upvotes.Insert(ctx, issue.ID, primitive.NewObjectID()))
	require.NoError(t, f.upvotes.Insert(ctx, issue.ID, primitive.NewObjectID()))

	res, err := f.svc.List(ctx, ListQuery{})
	require.NoError(t, err)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, int64(2), res.Issues[0].Upvotes)
	assert.Equal(t, "Ward a", res.Issues[0].LocationDisplay)
}

func TestListByReporter(t *testing.T) {
	t.Parallel()

	f := newIssueFixture(t)
	ctx := context.Background()
	mine := primitive.NewObjectID()

	_, err := f.svc.Submit(ctx, mine, validSubmit())
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, primitive.NewObjectID(), validSubmit())
	require.NoError(t, err)

	views, err := f.svc.ListByReporter(ctx, mine)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, mine, views[0].ReporterID)
}

func TestGetJoinsReporter(t *testing.T) {
	t.Parallel()

	f := newIssueFixture(t)
	ctx := context.Background()
	user := models.User{Name: "Asha", Email: "asha@example.com"}
	require.NoError(t, f.users.Insert(ctx, &user))

	issue, err := f.svc.Submit(ctx, user.ID, validSubmit())
	require.NoError(t, err)

	view, err := f.svc.Get(ctx, issue.ID)
	require.NoError(t, err)
	require.NotNil(t, view.Reporter)
	assert.Equal(t, "Asha", view.Reporter.Name)
	assert.Equal(t, "asha@example.com", view.Reporter.Email)
	assert.Equal(t, "Main St (12.3456, 77.1234)", view.LocationDisplay)

	_, err = f.svc.Get(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrIssueNotFound)
}

func TestAdminUpdateKeepsResolvedFieldsConsistent(t *testing.T) {
	t.Parallel()

	f := newIssueFixture(t)
	ctx := context.Background()
	issue := f.seed(t, "a", models.Pending, models.Pothole, models.High)
	str := func(s string) *string { return &s }

	view, err := f.svc.AdminUpdate(ctx, issue.ID, AdminUpdateInput{
		Status:           str("resolved"),
		AdminNotes:       str("Filled by ward crew"),
		ResolvedImageURL: str("http://localhost/uploads/after.jpg"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.Resolved, view.Status)
	require.NotNil(t, view.ResolvedAt)
	assert.Equal(t, f.clock, *view.ResolvedAt)
	require.NotNil(t, view.ResolvedImageURL)
	require.NotNil(t, view.AdminNotes)

	f.clock = f.clock.Add(time.Hour)
	view, err = f.svc.AdminUpdate(ctx, issue.ID, AdminUpdateInput{Status: str("in_progress")})
	require.NoError(t, err)
	assert.Nil(t, view.ResolvedAt)
	assert.Nil(t, view.ResolvedImageURL)
	assert.Equal(t, "Filled by ward crew", *view.AdminNotes)
	assert.Equal(t, f.clock, view.UpdatedAt)

	_, err = f.svc.AdminUpdate(ctx, issue.ID, AdminUpdateInput{ResolvedImageURL: str("http://x/y.jpg")})
	assert.ErrorIs(t, err, ErrResolvedImage)

	assert.Equal(t, []string{eventbus.IssueStatusUpdated, eventbus.IssueStatusUpdated}, f.events.types())
}

func TestAdminUpdateRejectsUnknownStatusAndIssue(t *testing.T) {
	t.Parallel()

	f := newIssueFixture(t)
	ctx := context.Background()
	issue := f.seed(t, "a", models.Pending, models.Pothole, models.High)
	closed := "closed"

	_, err := f.svc.AdminUpdate(ctx, issue.ID, AdminUpdateInput{Status: &closed})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = f.svc.AdminUpdate(ctx, primitive.NewObjectID(), AdminUpdateInput{})
	assert.ErrorIs(t, err, ErrIssueNotFound)

	stored, err := f.issues.FindByID(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Pending, stored.Status)
}

func TestStats(t *testing.T) {
	t.Parallel()

	f := newIssueFixture(t)
	f.seed(t, "a", models.Pending, models.Pothole, models.High)
	f.seed(t, "b", models.Resolved, models.Pothole, models.High)
	f.seed(t, "c", models.InProgress, models.Pothole, models.High)

	stats, err := f.svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.DashboardStats{
		TotalIssues:      3,
		PendingIssues:    1,
		InProgressIssues: 1,
		ResolvedIssues:   1,
		TodayIssues:      3,
	}, stats)
}
