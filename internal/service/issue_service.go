package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/openvoice/feedback-service/internal/domain"
	"github.com/openvoice/feedback-service/internal/events"
	"github.com/openvoice/feedback-service/internal/repository"
	apperrors "github.com/openvoice/feedback-service/pkg/util"
)

// IssueService is the ticket registry: it owns issue creation, ticket lookup
// and the resolve transition, and publishes the resulting change events.
type IssueService struct {
	issues repository.IssueRepository
	feed   events.Feed
	logger *zap.Logger
}

// IssueCreateInput describes an anonymous submission.
type IssueCreateInput struct {
	Department  string
	Category    string
	Description string
}

// NewIssueService constructs the service.
func NewIssueService(issues repository.IssueRepository, feed events.Feed, logger *zap.Logger) *IssueService {
	return &IssueService{issues: issues, feed: feed, logger: logger}
}

// CreateIssue validates and persists a submission. The ticket identifier is
// assigned by the store's sequence, never minted here: two concurrent
// submitters must not be able to race to the same value. Returns the full
// persisted record.
func (s *IssueService) CreateIssue(ctx context.Context, input IssueCreateInput) (*domain.Issue, error) {
	var badFields []string
	if !domain.ValidDepartment(input.Department) {
		badFields = append(badFields, "department")
	}
	if !domain.ValidCategory(input.Category) {
		badFields = append(badFields, "category")
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		badFields = append(badFields, "description")
	}
	if len(badFields) > 0 {
		return nil, apperrors.NewValidationError("invalid submission", map[string]any{
			"fields": badFields,
		})
	}

	issue := &domain.Issue{
		Department:  input.Department,
		Category:    input.Category,
		Description: description,
		Status:      domain.IssueStatusUnresolved,
	}
	if err := s.issues.Create(ctx, issue); err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}

	s.publish(ctx, events.NewInserted(issue))
	s.logger.Info("issue created",
		zap.String("ticket_id", issue.TicketID),
		zap.String("department", issue.Department),
		zap.String("category", issue.Category))
	return issue, nil
}

// LookupByTicketID resolves a ticket identifier to its issue. Input is
// trimmed and uppercased first; a miss is NotFound, a normal outcome. Lookup
// never mutates state.
func (s *IssueService) LookupByTicketID(ctx context.Context, raw string) (*domain.Issue, error) {
	ticketID := domain.NormalizeTicketID(raw)
	if ticketID == "" {
		return nil, apperrors.NewValidationError("ticket id required", map[string]any{
			"fields": []string{"ticket_id"},
		})
	}
	issue, err := s.issues.GetByTicketID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.NewPersistenceError(err)
	}
	return issue, nil
}

// ResolveIssue transitions the issue to resolved and stamps resolved_at.
// Resolving an already-resolved issue is a no-op success returning the
// unchanged record; the original resolved_at is kept and no event is
// published. The live view learns of the transition only through the
// resulting update event.
func (s *IssueService) ResolveIssue(ctx context.Context, id string) (*domain.Issue, error) {
	current, err := s.issues.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("issue", map[string]any{"id": id})
		}
		return nil, apperrors.NewPersistenceError(err)
	}
	if current.Resolved() {
		return current, nil
	}

	resolved, err := s.issues.Resolve(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("issue", map[string]any{"id": id})
		}
		return nil, apperrors.NewPersistenceError(err)
	}

	s.publish(ctx, events.NewUpdated(resolved))
	s.logger.Info("issue resolved", zap.String("ticket_id", resolved.TicketID))
	return resolved, nil
}

// ListIssues returns every issue, newest first. Used for the bulk fetch that
// seeds the live view.
func (s *IssueService) ListIssues(ctx context.Context) ([]domain.Issue, error) {
	issues, err := s.issues.ListAll(ctx)
	if err != nil {
		return nil, apperrors.NewFetchError(err)
	}
	return issues, nil
}

// publish emits a change event; a failed publish is logged but does not fail
// the write that already committed.
func (s *IssueService) publish(ctx context.Context, event events.ChangeEvent) {
	if err := s.feed.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish change event",
			zap.String("event_type", string(event.Type)),
			zap.String("issue_id", event.IssueID),
			zap.Error(err))
	}
}
