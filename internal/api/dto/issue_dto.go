package dto

import (
	"time"

	"github.com/openvoice/feedback-service/internal/domain"
	"github.com/openvoice/feedback-service/internal/liveview"
)

// CreateIssueRequest payload for an anonymous submission.
type CreateIssueRequest struct {
	Department  string `json:"department"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// IssueResponse is the wire shape of one issue.
type IssueResponse struct {
	ID          string     `json:"id"`
	TicketID    string     `json:"ticket_id"`
	Department  string     `json:"department"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	ResolvedAt  *time.Time `json:"resolved_at"`
}

// NewIssueResponse maps a domain issue onto the wire shape.
func NewIssueResponse(issue *domain.Issue) IssueResponse {
	return IssueResponse{
		ID:          issue.ID,
		TicketID:    issue.TicketID,
		Department:  issue.Department,
		Category:    issue.Category,
		Description: issue.Description,
		Status:      string(issue.Status),
		CreatedAt:   issue.CreatedAt,
		ResolvedAt:  issue.ResolvedAt,
	}
}

// NewIssueResponses maps a slice of issues.
func NewIssueResponses(issues []domain.Issue) []IssueResponse {
	out := make([]IssueResponse, 0, len(issues))
	for i := range issues {
		out = append(out, NewIssueResponse(&issues[i]))
	}
	return out
}

// DashboardResponse is the admin listing: both partitions share one sort
// order, and stats reflect the unfiltered collection.
type DashboardResponse struct {
	Stats      liveview.Stats  `json:"stats"`
	Unresolved []IssueResponse `json:"unresolved"`
	Resolved   []IssueResponse `json:"resolved"`
	Stale      bool            `json:"stale"`
}

// MetaResponse lists the closed submission enumerations.
type MetaResponse struct {
	Departments []string `json:"departments"`
	Categories  []string `json:"categories"`
}

// LoginRequest payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse payload.
type LoginResponse struct {
	Token string `json:"token"`
}
