package models_test

import (
	"net/url"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safii-be/models"
)

type fixtureRow struct {
	title    string
	status   models.IssueStatus
	category models.IssueCategory
	priority models.IssuePriority
}

func issueFixture() []models.Issue {
	rows := []fixtureRow{
		{"a", models.Pending, models.Pothole, models.Critical},
		{"b", models.Resolved, models.Garbage, models.Critical},
		{"c", models.Pending, models.Drainage, models.Critical},
		{"d", models.InProgress, models.Pothole, models.Low},
		{"e", models.Pending, models.Garbage, models.Critical},
		{"f", models.Rejected, models.Landslide, models.High},
		{"g", models.Pending, models.StreetLight, models.Medium},
		{"h", models.Resolved, models.Pothole, models.Critical},
		{"i", models.Pending, models.BrokenSign, models.Critical},
		{"j", models.Pending, models.Garbage, models.High},
	}
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	issues := make([]models.Issue, len(rows))
	for i, r := range rows {
		issues[i] = models.Issue{
			Title:     r.title,
			Status:    r.status,
			Category:  r.category,
			Priority:  r.priority,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
	}
	return issues
}

func titles(issues []models.Issue) []string {
	out := make([]string, len(issues))
	for i, issue := range issues {
		out[i] = issue.Title
	}
	return out
}

func TestApplyFilters(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name    string
		filters models.FilterState
		want    []string
	}{
		{
			name:    "no constraints is identity",
			filters: models.FilterState{Status: []string{}, Category: []string{}, Priority: []string{}},
			want:    []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"},
		},
		{
			name:    "all sentinel is identity",
			filters: models.FilterState{Status: []string{models.FilterAll}},
			want:    []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"},
		},
		{
			name:    "status pending keeps order",
			filters: models.FilterState{Status: []string{"pending"}},
			want:    []string{"a", "c", "e", "g", "i", "j"},
		},
		{
			name: "or within category and across priority",
			filters: models.FilterState{
				Category: []string{"pothole", "garbage"},
				Priority: []string{"critical"},
			},
			want: []string{"a", "b", "e", "h"},
		},
		{
			name: "three dimensions",
			filters: models.FilterState{
				Status:   []string{"pending", "in_progress"},
				Category: []string{"pothole", "garbage"},
				Priority: []string{"critical", "low"},
			},
			want: []string{"a", "d", "e"},
		},
		{
			name:    "unknown value yields nothing",
			filters: models.FilterState{Priority: []string{"urgent"}},
			want:    []string{},
		},
	} {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := models.ApplyFilters(issueFixture(), tt.filters)
			if diff := cmp.Diff(tt.want, titles(got)); diff != "" {
				t.Fatalf("ApplyFilters mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApplyFiltersDoesNotAliasInput(t *testing.T) {
	t.Parallel()

	in := issueFixture()
	out := models.ApplyFilters(in, models.FilterState{})
	out[0].Title = "changed"

	assert.Equal(t, "a", in[0].Title)
}

func TestFilterStateToggle(t *testing.T) {
	t.Parallel()

	var f models.FilterState
	require.NoError(t, f.Toggle(models.FilterCategory, "pothole"))
	require.NoError(t, f.Toggle(models.FilterCategory, "garbage"))
	assert.Equal(t, []string{"pothole", "garbage"}, f.Category)
	assert.Equal(t, 1, f.ActiveCount())

	require.NoError(t, f.Toggle(models.FilterCategory, "pothole"))
	assert.Equal(t, []string{"garbage"}, f.Category)

	require.NoError(t, f.Toggle(models.FilterStatus, "pending"))
	assert.Equal(t, 2, f.ActiveCount())

	require.NoError(t, f.Toggle(models.FilterStatus, models.FilterAll))
	assert.Empty(t, f.Status)

	f.ClearAll()
	assert.Equal(t, 0, f.ActiveCount())

	assert.ErrorIs(t, f.Toggle("colour", "red"), models.ErrUnknownFilterDimension)
}

func TestFilterStateSet(t *testing.T) {
	t.Parallel()

	var f models.FilterState
	require.NoError(t, f.Set(models.FilterPriority, "high"))
	require.NoError(t, f.Set(models.FilterPriority, "low"))
	assert.Equal(t, []string{"low"}, f.Priority)

	require.NoError(t, f.Set(models.FilterPriority, models.FilterAll))
	assert.Empty(t, f.Priority)

	assert.ErrorIs(t, f.Set("colour", "red"), models.ErrUnknownFilterDimension)
}

func TestFilterStateFromQuery(t *testing.T) {
	t.Parallel()

	q := url.Values{
		"status":   {"pending,resolved"},
		"category": {"pothole", "garbage"},
		"priority": {" "},
	}
	f := models.FilterStateFromQuery(q)

	assert.Equal(t, []string{"pending", "resolved"}, f.Status)
	assert.Equal(t, []string{"pothole", "garbage"}, f.Category)
	assert.Empty(t, f.Priority)
	assert.Equal(t, 2, f.ActiveCount())
}
