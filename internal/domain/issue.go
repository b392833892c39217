package domain

import (
	"regexp"
	"strings"
	"time"
)

// IssueStatus enumerates lifecycle states for issues.
type IssueStatus string

const (
	IssueStatusUnresolved IssueStatus = "unresolved"
	IssueStatusResolved   IssueStatus = "resolved"
)

// TicketIDPrefix is the fixed prefix of every human-facing ticket identifier.
const TicketIDPrefix = "OV-"

var ticketIDPattern = regexp.MustCompile(`^OV-\d{6}$`)

// Issue is the sole aggregate: one anonymous feedback record tracked
// from submission through resolution.
type Issue struct {
	ID          string      `json:"id"`
	TicketID    string      `json:"ticket_id"`
	Department  string      `json:"department"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	Status      IssueStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	ResolvedAt  *time.Time  `json:"resolved_at"`
}

// Resolved reports whether the issue has been marked resolved.
func (i *Issue) Resolved() bool {
	return i.Status == IssueStatusResolved
}

// NormalizeTicketID canonicalizes user input for ticket lookup. Ticket
// identifiers are case-insensitive at the presentation boundary but stored
// uppercase.
func NormalizeTicketID(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// ValidTicketID reports whether id matches the canonical OV-XXXXXX format.
func ValidTicketID(id string) bool {
	return ticketIDPattern.MatchString(id)
}
