package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openvoice/feedback-service/internal/domain"
)

// IssueRepository encapsulates issue persistence. The backing store assigns
// both the row id and the ticket identifier; clients never mint either.
type IssueRepository interface {
	// Create persists the issue and fills in the server-assigned ID,
	// TicketID, Status and CreatedAt.
	Create(ctx context.Context, issue *domain.Issue) error
	GetByID(ctx context.Context, id string) (*domain.Issue, error)
	// GetByTicketID expects a canonical (uppercase, trimmed) ticket id.
	GetByTicketID(ctx context.Context, ticketID string) (*domain.Issue, error)
	// ListAll returns every issue ordered by created_at descending.
	ListAll(ctx context.Context) ([]domain.Issue, error)
	// Resolve marks the issue resolved. Re-resolving keeps the original
	// resolved_at, so the call is a no-op for already-resolved rows.
	Resolve(ctx context.Context, id string) (*domain.Issue, error)
}

type issueRepository struct {
	pool *pgxpool.Pool
}

// NewIssueRepository instantiates the repository.
func NewIssueRepository(pool *pgxpool.Pool) IssueRepository {
	return &issueRepository{pool: pool}
}

func (r *issueRepository) Create(ctx context.Context, issue *domain.Issue) error {
	const query = `
        INSERT INTO issues (department, category, description)
        VALUES ($1,$2,$3)
        RETURNING id, ticket_id, status, created_at`
	return r.pool.QueryRow(ctx, query,
		issue.Department,
		issue.Category,
		issue.Description,
	).Scan(&issue.ID, &issue.TicketID, &issue.Status, &issue.CreatedAt)
}

func (r *issueRepository) GetByID(ctx context.Context, id string) (*domain.Issue, error) {
	const query = `
        SELECT id, ticket_id, department, category, description, status, created_at, resolved_at
        FROM issues WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *issueRepository) GetByTicketID(ctx context.Context, ticketID string) (*domain.Issue, error) {
	const query = `
        SELECT id, ticket_id, department, category, description, status, created_at, resolved_at
        FROM issues WHERE ticket_id=$1`
	return r.fetchSingle(ctx, query, ticketID)
}

func (r *issueRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Issue, error) {
	var issue domain.Issue
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&issue.ID,
		&issue.TicketID,
		&issue.Department,
		&issue.Category,
		&issue.Description,
		&issue.Status,
		&issue.CreatedAt,
		&issue.ResolvedAt,
	); err != nil {
		return nil, err
	}
	return &issue, nil
}

func (r *issueRepository) ListAll(ctx context.Context) ([]domain.Issue, error) {
	const query = `
        SELECT id, ticket_id, department, category, description, status, created_at, resolved_at
        FROM issues ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIssues(rows)
}

func (r *issueRepository) Resolve(ctx context.Context, id string) (*domain.Issue, error) {
	const query = `
        UPDATE issues
        SET status=$1, resolved_at=COALESCE(resolved_at, NOW())
        WHERE id=$2
        RETURNING id, ticket_id, department, category, description, status, created_at, resolved_at`
	var issue domain.Issue
	if err := r.pool.QueryRow(ctx, query, domain.IssueStatusResolved, id).Scan(
		&issue.ID,
		&issue.TicketID,
		&issue.Department,
		&issue.Category,
		&issue.Description,
		&issue.Status,
		&issue.CreatedAt,
		&issue.ResolvedAt,
	); err != nil {
		return nil, err
	}
	return &issue, nil
}

func scanIssues(rows pgx.Rows) ([]domain.Issue, error) {
	var result []domain.Issue
	for rows.Next() {
		var issue domain.Issue
		if err := rows.Scan(
			&issue.ID,
			&issue.TicketID,
			&issue.Department,
			&issue.Category,
			&issue.Description,
			&issue.Status,
			&issue.CreatedAt,
			&issue.ResolvedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, issue)
	}
	return result, rows.Err()
}
