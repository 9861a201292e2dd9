package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safii-be/models"
)

func TestIssueSetStatusMaintainsResolvedAt(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC)
	after := "https://cdn.example/after.jpg"
	issue := models.Issue{Status: models.Pending}

	issue.SetStatus(models.InProgress, now)
	assert.Nil(t, issue.ResolvedAt)

	issue.SetStatus(models.Resolved, now)
	require.NotNil(t, issue.ResolvedAt)
	assert.Equal(t, now, *issue.ResolvedAt)
	issue.ResolvedImageURL = &after

	issue.SetStatus(models.Resolved, now.Add(time.Hour))
	assert.Equal(t, now, *issue.ResolvedAt, "re-resolving keeps the original timestamp")

	issue.SetStatus(models.Pending, now)
	assert.Nil(t, issue.ResolvedAt)
	assert.Nil(t, issue.ResolvedImageURL)
}

func TestEnumValidity(t *testing.T) {
	t.Parallel()

	assert.True(t, models.StreetLight.Valid())
	assert.False(t, models.IssueCategory("Road").Valid())
	assert.True(t, models.Rejected.Valid())
	assert.False(t, models.IssueStatus("closed").Valid())
	assert.True(t, models.Critical.Valid())
	assert.False(t, models.IssuePriority("urgent").Valid())
}

func TestIssueSummary(t *testing.T) {
	t.Parallel()

	issue := models.Issue{
		Title:    "Pothole near school",
		Category: models.Pothole,
		Status:   models.Pending,
		Priority: models.High,
		Location: models.NewCoordinateLocation(11.4327, 76.8738, ""),
	}

	s := issue.Summary()
	assert.Equal(t, "11.4327, 76.8738", s.LocationDisplay)
	assert.Equal(t, models.High, s.Priority)
}
