package eventbus

import (
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Event types published on the issue stream
const (
	IssueCreated       = "issue.created"
	IssueStatusUpdated = "issue.status.updated"
	IssueUpvoted       = "issue.upvoted"
)

// Event is a domain event about a single issue.
type Event struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	IssueID   string          `json:"issue_id"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// IssueCreatedPayload is published when a citizen submits an issue.
type IssueCreatedPayload struct {
	IssueID    string    `json:"issue_id"`
	ReporterID string    `json:"reporter_id"`
	Category   string    `json:"category"`
	Priority   string    `json:"priority"`
	Location   string    `json:"location"`
	CreatedAt  time.Time `json:"created_at"`
}

// IssueStatusUpdatedPayload is published when an admin changes the status.
type IssueStatusUpdatedPayload struct {
	IssueID   string    `json:"issue_id"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
	ChangedAt time.Time `json:"changed_at"`
}

// IssueUpvotedPayload is published on every upvote toggle.
type IssueUpvotedPayload struct {
	IssueID string `json:"issue_id"`
	UserID  string `json:"user_id"`
	Upvoted bool   `json:"upvoted"`
	Count   int64  `json:"count"`
}

func NewEvent(eventType string, issueID string, payload interface{}) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		EventID:   uuid.New().String(),
		EventType: eventType,
		IssueID:   issueID,
		Payload:   payloadBytes,
		Timestamp: time.Now(),
	}, nil
}

func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func FromJSON(data []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
