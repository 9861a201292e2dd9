package services

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"safii-be/eventbus"
	"safii-be/models"
	"safii-be/repository"
)

type memIssues struct {
	mu     sync.Mutex
	issues []models.Issue
	err    error
}

func (m *memIssues) Insert(_ context.Context, issue *models.Issue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	m.issues = append(m.issues, *issue)
	return nil
}

func (m *memIssues) FindByID(_ context.Context, id primitive.ObjectID) (*models.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, issue := range m.issues {
		if issue.ID == id {
			found := issue
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

// FindAll returns issues newest first, like the Mongo repository.
func (m *memIssues) FindAll(_ context.Context) ([]models.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]models.Issue, 0, len(m.issues))
	for i := len(m.issues) - 1; i >= 0; i-- {
		out = append(out, m.issues[i])
	}
	return out, nil
}

func (m *memIssues) FindByReporter(ctx context.Context, reporterID primitive.ObjectID) ([]models.Issue, error) {
	all, err := m.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := []models.Issue{}
	for _, issue := range all {
		if issue.ReporterID == reporterID {
			out = append(out, issue)
		}
	}
	return out, nil
}

func (m *memIssues) Update(_ context.Context, issue *models.Issue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for i := range m.issues {
		if m.issues[i].ID == issue.ID {
			m.issues[i] = *issue
			return nil
		}
	}
	return repository.ErrNotFound
}

type upvoteKey struct {
	issue, user primitive.ObjectID
}

// memUpvotes enforces the (issue, user) uniqueness the Mongo index provides.
type memUpvotes struct {
	mu    sync.Mutex
	votes map[upvoteKey]bool
	err   error
}

func newMemUpvotes() *memUpvotes {
	return &memUpvotes{votes: map[upvoteKey]bool{}}
}

func (m *memUpvotes) Exists(_ context.Context, issueID, userID primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	return m.votes[upvoteKey{issueID, userID}], nil
}

func (m *memUpvotes) Insert(_ context.Context, issueID, userID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	key := upvoteKey{issueID, userID}
	if m.votes[key] {
		return repository.ErrDuplicate
	}
	m.votes[key] = true
	return nil
}

func (m *memUpvotes) Delete(_ context.Context, issueID, userID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.votes, upvoteKey{issueID, userID})
	return nil
}

func (m *memUpvotes) Count(_ context.Context, issueID primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	var n int64
	for key := range m.votes {
		if key.issue == issueID {
			n++
		}
	}
	return n, nil
}

func (m *memUpvotes) CountMany(ctx context.Context, issueIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	out := make(map[primitive.ObjectID]int64, len(issueIDs))
	for _, id := range issueIDs {
		n, err := m.Count(ctx, id)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			out[id] = n
		}
	}
	return out, nil
}

type memUsers struct {
	mu    sync.Mutex
	users []models.User
}

func (m *memUsers) Insert(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	m.users = append(m.users, *user)
	return nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			found := u
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

type recordedEvents struct {
	mu     sync.Mutex
	events []*eventbus.Event
	err    error
}

func (r *recordedEvents) Publish(_ context.Context, event *eventbus.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, event)
	return nil
}

func (r *recordedEvents) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.EventType
	}
	return out
}
