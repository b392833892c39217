package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/openvoice/feedback-service/internal/domain"
)

// ChangeType enumerates row-level change kinds delivered on the feed.
type ChangeType string

const (
	ChangeInserted ChangeType = "inserted"
	ChangeUpdated  ChangeType = "updated"
	ChangeDeleted  ChangeType = "deleted"
)

// ChangeEvent is one row-level change to the issues table. Inserts and
// updates carry the full issue snapshot; deletes carry only the id.
// Delivery is at-least-once per key, so consumers must merge idempotently.
type ChangeEvent struct {
	ID        string        `json:"id"`
	Type      ChangeType    `json:"type"`
	IssueID   string        `json:"issue_id"`
	Issue     *domain.Issue `json:"issue,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// NewInserted builds an insert event for a freshly persisted issue.
func NewInserted(issue *domain.Issue) ChangeEvent {
	return ChangeEvent{
		ID:        uuid.NewString(),
		Type:      ChangeInserted,
		IssueID:   issue.ID,
		Issue:     issue,
		Timestamp: time.Now().UTC(),
	}
}

// NewUpdated builds an update event carrying the new issue snapshot.
func NewUpdated(issue *domain.Issue) ChangeEvent {
	return ChangeEvent{
		ID:        uuid.NewString(),
		Type:      ChangeUpdated,
		IssueID:   issue.ID,
		Issue:     issue,
		Timestamp: time.Now().UTC(),
	}
}

// NewDeleted builds a delete event for a removed issue id.
func NewDeleted(issueID string) ChangeEvent {
	return ChangeEvent{
		ID:        uuid.NewString(),
		Type:      ChangeDeleted,
		IssueID:   issueID,
		Timestamp: time.Now().UTC(),
	}
}
