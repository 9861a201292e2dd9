package models

import "time"

// DashboardStats is the admin overview of all issues.
type DashboardStats struct {
	TotalIssues      int `json:"totalIssues"`
	PendingIssues    int `json:"pendingIssues"`
	InProgressIssues int `json:"inProgressIssues"`
	ResolvedIssues   int `json:"resolvedIssues"`
	RejectedIssues   int `json:"rejectedIssues"`
	TodayIssues      int `json:"todayIssues"`
}

// ComputeStats counts issues per status and those created since midnight of
// now's day in now's location.
func ComputeStats(issues []Issue, now time.Time) DashboardStats {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	stats := DashboardStats{TotalIssues: len(issues)}
	for _, issue := range issues {
		switch issue.Status {
		case Pending:
			stats.PendingIssues++
		case InProgress:
			stats.InProgressIssues++
		case Resolved:
			stats.ResolvedIssues++
		case Rejected:
			stats.RejectedIssues++
		}
		if !issue.CreatedAt.Before(midnight) {
			stats.TodayIssues++
		}
	}
	return stats
}
