package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueCategory enum
type IssueCategory string

const (
	Pothole     IssueCategory = "pothole"
	Drainage    IssueCategory = "drainage"
	Garbage     IssueCategory = "garbage"
	Landslide   IssueCategory = "landslide"
	StreetLight IssueCategory = "street_light"
	BrokenSign  IssueCategory = "broken_sign"
	Other       IssueCategory = "other"
)

// IssueStatus enum
type IssueStatus string

const (
	Pending    IssueStatus = "pending"
	InProgress IssueStatus = "in_progress"
	Resolved   IssueStatus = "resolved"
	Rejected   IssueStatus = "rejected"
)

// IssuePriority enum
type IssuePriority string

const (
	Low      IssuePriority = "low"
	Medium   IssuePriority = "medium"
	High     IssuePriority = "high"
	Critical IssuePriority = "critical"
)

var (
	validCategories = map[IssueCategory]bool{
		Pothole: true, Drainage: true, Garbage: true, Landslide: true,
		StreetLight: true, BrokenSign: true, Other: true,
	}
	validStatuses = map[IssueStatus]bool{
		Pending: true, InProgress: true, Resolved: true, Rejected: true,
	}
	validPriorities = map[IssuePriority]bool{
		Low: true, Medium: true, High: true, Critical: true,
	}
)

func (c IssueCategory) Valid() bool { return validCategories[c] }
func (s IssueStatus) Valid() bool   { return validStatuses[s] }
func (p IssuePriority) Valid() bool { return validPriorities[p] }

// Issue represents a civic issue reported by a user
type Issue struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title            string             `bson:"title" json:"title"`
	Description      string             `bson:"description" json:"description"`
	Category         IssueCategory      `bson:"category" json:"category"`
	Status           IssueStatus        `bson:"status" json:"status"`
	Priority         IssuePriority      `bson:"priority" json:"priority"`
	Location         Location           `bson:"location" json:"location"`
	ImageURL         *string            `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	ResolvedImageURL *string            `bson:"resolvedImageUrl,omitempty" json:"resolvedImageUrl,omitempty"`
	ReporterID       primitive.ObjectID `bson:"reporter_id" json:"reporter_id"`
	AdminNotes       *string            `bson:"admin_notes,omitempty" json:"admin_notes,omitempty"`
	ResolvedAt       *time.Time         `bson:"resolved_at,omitempty" json:"resolved_at,omitempty"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updated_at"`
}

// SetStatus moves the issue to status, keeping resolved_at and the resolved
// image consistent with it.
func (i *Issue) SetStatus(status IssueStatus, now time.Time) {
	if status == i.Status {
		return
	}
	i.Status = status
	if status == Resolved {
		t := now
		i.ResolvedAt = &t
	} else {
		i.ResolvedAt = nil
		i.ResolvedImageURL = nil
	}
}

// IssueSummary is the trimmed representation returned right after submission.
type IssueSummary struct {
	ID              primitive.ObjectID `json:"id"`
	Title           string             `json:"title"`
	Category        IssueCategory      `json:"category"`
	Status          IssueStatus        `json:"status"`
	Priority        IssuePriority      `json:"priority"`
	Location        Location           `json:"location"`
	LocationDisplay string             `json:"locationDisplay"`
	ImageURL        *string            `json:"imageUrl,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
}

func (i Issue) Summary() IssueSummary {
	return IssueSummary{
		ID:              i.ID,
		Title:           i.Title,
		Category:        i.Category,
		Status:          i.Status,
		Priority:        i.Priority,
		Location:        i.Location,
		LocationDisplay: i.Location.Display(),
		ImageURL:        i.ImageURL,
		CreatedAt:       i.CreatedAt,
	}
}
