package liveview

import (
	"sort"
	"strings"

	"github.com/openvoice/feedback-service/internal/domain"
)

// SortOrder selects the created_at direction for dashboard listings.
type SortOrder string

const (
	SortNewest SortOrder = "newest"
	SortOldest SortOrder = "oldest"
)

// CategoryAll is the sentinel that disables category filtering.
const CategoryAll = "all"

// FilterBySearch keeps issues whose ticket id contains the query as a
// substring. The query is trimmed and uppercased first; an empty query passes
// everything through.
func FilterBySearch(issues []domain.Issue, query string) []domain.Issue {
	query = strings.ToUpper(strings.TrimSpace(query))
	if query == "" {
		return issues
	}
	out := make([]domain.Issue, 0, len(issues))
	for _, issue := range issues {
		if strings.Contains(issue.TicketID, query) {
			out = append(out, issue)
		}
	}
	return out
}

// FilterByCategory keeps issues with an exactly matching category. The "all"
// sentinel (or an empty category) passes everything through.
func FilterByCategory(issues []domain.Issue, category string) []domain.Issue {
	if category == "" || category == CategoryAll {
		return issues
	}
	out := make([]domain.Issue, 0, len(issues))
	for _, issue := range issues {
		if issue.Category == category {
			out = append(out, issue)
		}
	}
	return out
}

// SortByCreatedAt returns a new slice stably sorted by created_at. Ties keep
// their original relative order.
func SortByCreatedAt(issues []domain.Issue, order SortOrder) []domain.Issue {
	out := make([]domain.Issue, len(issues))
	copy(out, issues)
	sort.SliceStable(out, func(i, j int) bool {
		if order == SortOldest {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// PartitionByStatus splits issues into unresolved and resolved groups,
// preserving input order within each group.
func PartitionByStatus(issues []domain.Issue) (unresolved, resolved []domain.Issue) {
	unresolved = make([]domain.Issue, 0, len(issues))
	resolved = make([]domain.Issue, 0, len(issues))
	for _, issue := range issues {
		if issue.Status == domain.IssueStatusResolved {
			resolved = append(resolved, issue)
		} else {
			unresolved = append(unresolved, issue)
		}
	}
	return unresolved, resolved
}

// Stats summarizes the full, unfiltered collection for the dashboard header.
type Stats struct {
	Total       int `json:"total"`
	Unresolved  int `json:"unresolved"`
	Resolved    int `json:"resolved"`
	Departments int `json:"departments_affected"`
}

// ComputeStats derives dashboard counters from a snapshot.
func ComputeStats(issues []domain.Issue) Stats {
	stats := Stats{Total: len(issues)}
	departments := make(map[string]struct{})
	for _, issue := range issues {
		if issue.Status == domain.IssueStatusResolved {
			stats.Resolved++
		} else {
			stats.Unresolved++
		}
		departments[issue.Department] = struct{}{}
	}
	stats.Departments = len(departments)
	return stats
}

// DashboardQuery carries the admin listing controls.
type DashboardQuery struct {
	Search   string
	Category string
	Sort     SortOrder
}

// Dashboard is the fully derived admin listing.
type Dashboard struct {
	Stats      Stats
	Unresolved []domain.Issue
	Resolved   []domain.Issue
}

// BuildDashboard derives the admin view from a snapshot. The composition
// order is search, then category filter, then sort, then partition: the
// filters narrow the input before the sort, and partitioning last leaves both
// groups in one shared sort order. Stats always reflect the unfiltered
// snapshot.
func BuildDashboard(issues []domain.Issue, query DashboardQuery) Dashboard {
	filtered := FilterBySearch(issues, query.Search)
	filtered = FilterByCategory(filtered, query.Category)
	sorted := SortByCreatedAt(filtered, query.Sort)
	unresolved, resolved := PartitionByStatus(sorted)
	return Dashboard{
		Stats:      ComputeStats(issues),
		Unresolved: unresolved,
		Resolved:   resolved,
	}
}
