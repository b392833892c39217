package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/openvoice/feedback-service/internal/domain"
	"github.com/openvoice/feedback-service/internal/events"
	apperrors "github.com/openvoice/feedback-service/pkg/util"
)

// fakeIssueRepository mimics the store's behavior: it assigns the row id,
// mints ticket ids from a serialized sequence, and keeps the first
// resolved_at on re-resolve.
type fakeIssueRepository struct {
	nextSeq int
	nextRow int
	rows    map[string]domain.Issue
	failAll bool
}

func newFakeRepo() *fakeIssueRepository {
	return &fakeIssueRepository{nextSeq: 1001, rows: make(map[string]domain.Issue)}
}

func (r *fakeIssueRepository) Create(ctx context.Context, issue *domain.Issue) error {
	if r.failAll {
		return errors.New("connection refused")
	}
	r.nextRow++
	issue.ID = fmt.Sprintf("row-%d", r.nextRow)
	issue.TicketID = fmt.Sprintf("%s%06d", domain.TicketIDPrefix, r.nextSeq)
	r.nextSeq++
	issue.Status = domain.IssueStatusUnresolved
	issue.CreatedAt = time.Now().UTC()
	r.rows[issue.ID] = *issue
	return nil
}

func (r *fakeIssueRepository) GetByID(ctx context.Context, id string) (*domain.Issue, error) {
	if r.failAll {
		return nil, errors.New("connection refused")
	}
	row, ok := r.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &row, nil
}

func (r *fakeIssueRepository) GetByTicketID(ctx context.Context, ticketID string) (*domain.Issue, error) {
	if r.failAll {
		return nil, errors.New("connection refused")
	}
	for _, row := range r.rows {
		if row.TicketID == ticketID {
			row := row
			return &row, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeIssueRepository) ListAll(ctx context.Context) ([]domain.Issue, error) {
	if r.failAll {
		return nil, errors.New("connection refused")
	}
	out := make([]domain.Issue, 0, len(r.rows))
	for _, row := range r.rows {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeIssueRepository) Resolve(ctx context.Context, id string) (*domain.Issue, error) {
	if r.failAll {
		return nil, errors.New("connection refused")
	}
	row, ok := r.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	row.Status = domain.IssueStatusResolved
	if row.ResolvedAt == nil {
		now := time.Now().UTC()
		row.ResolvedAt = &now
	}
	r.rows[id] = row
	return &row, nil
}

func newTestService(repo *fakeIssueRepository, feed events.Feed) *IssueService {
	return NewIssueService(repo, feed, zap.NewNop())
}

func drain(sub *events.Subscription) []events.ChangeEvent {
	var out []events.ChangeEvent
	for {
		select {
		case event := <-sub.C:
			out = append(out, event)
		default:
			return out
		}
	}
}

func validInput() IssueCreateInput {
	return IssueCreateInput{
		Department:  "Library",
		Category:    "Infrastructure",
		Description: "AC broken",
	}
}

func TestCreateIssueMintsFormattedUniqueTicketIDs(t *testing.T) {
	t.Parallel()
	svc := newTestService(newFakeRepo(), events.NewMemoryFeed())
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		issue, err := svc.CreateIssue(ctx, validInput())
		if err != nil {
			t.Fatalf("CreateIssue: %v", err)
		}
		if !domain.ValidTicketID(issue.TicketID) {
			t.Errorf("ticket id %q does not match OV-XXXXXX", issue.TicketID)
		}
		if seen[issue.TicketID] {
			t.Errorf("duplicate ticket id %q", issue.TicketID)
		}
		seen[issue.TicketID] = true
		if issue.Status != domain.IssueStatusUnresolved {
			t.Errorf("status: got %q, want unresolved", issue.Status)
		}
		if issue.ResolvedAt != nil {
			t.Errorf("resolved_at: got %v, want nil", issue.ResolvedAt)
		}
	}
}

func TestCreateIssueValidationNamesOffendingFields(t *testing.T) {
	t.Parallel()
	svc := newTestService(newFakeRepo(), events.NewMemoryFeed())
	ctx := context.Background()

	tests := []struct {
		name       string
		input      IssueCreateInput
		wantFields []string
	}{
		{
			name:       "unknown department",
			input:      IssueCreateInput{Department: "Astrology", Category: "Academics", Description: "x"},
			wantFields: []string{"department"},
		},
		{
			name:       "unknown category",
			input:      IssueCreateInput{Department: "Library", Category: "Gossip", Description: "x"},
			wantFields: []string{"category"},
		},
		{
			name:       "blank description",
			input:      IssueCreateInput{Department: "Library", Category: "Academics", Description: "   "},
			wantFields: []string{"description"},
		},
		{
			name:       "everything wrong",
			input:      IssueCreateInput{},
			wantFields: []string{"department", "category", "description"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.CreateIssue(ctx, tt.input)
			var domainErr *apperrors.DomainError
			if !errors.As(err, &domainErr) || domainErr.Code != "VALIDATION_FAILED" {
				t.Fatalf("got %v, want VALIDATION_FAILED", err)
			}
			fields, _ := domainErr.Details["fields"].([]string)
			if len(fields) != len(tt.wantFields) {
				t.Fatalf("fields: got %v, want %v", fields, tt.wantFields)
			}
			for i := range fields {
				if fields[i] != tt.wantFields[i] {
					t.Errorf("fields: got %v, want %v", fields, tt.wantFields)
				}
			}
		})
	}
}

func TestCreateIssueTrimsDescription(t *testing.T) {
	t.Parallel()
	svc := newTestService(newFakeRepo(), events.NewMemoryFeed())

	input := validInput()
	input.Description = "  water cooler leaking  "
	issue, err := svc.CreateIssue(context.Background(), input)
	if err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}
	if issue.Description != "water cooler leaking" {
		t.Errorf("description: got %q, want trimmed", issue.Description)
	}
}

func TestCreateIssuePersistenceFailure(t *testing.T) {
	t.Parallel()
	repo := newFakeRepo()
	repo.failAll = true
	svc := newTestService(repo, events.NewMemoryFeed())

	_, err := svc.CreateIssue(context.Background(), validInput())
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "PERSISTENCE_FAILED" {
		t.Fatalf("got %v, want PERSISTENCE_FAILED", err)
	}
}

func TestLookupByTicketIDNormalizesInput(t *testing.T) {
	t.Parallel()
	svc := newTestService(newFakeRepo(), events.NewMemoryFeed())
	ctx := context.Background()

	created, err := svc.CreateIssue(ctx, validInput())
	if err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}

	variants := []string{
		created.TicketID,
		" " + created.TicketID + " ",
		"ov-" + created.TicketID[3:],
		" ov-" + created.TicketID[3:] + " ",
	}
	for _, variant := range variants {
		got, err := svc.LookupByTicketID(ctx, variant)
		if err != nil {
			t.Errorf("LookupByTicketID(%q): %v", variant, err)
			continue
		}
		if got.ID != created.ID {
			t.Errorf("LookupByTicketID(%q): got record %q, want %q", variant, got.ID, created.ID)
		}
	}
}

func TestLookupByTicketIDMissIsNotFound(t *testing.T) {
	t.Parallel()
	svc := newTestService(newFakeRepo(), events.NewMemoryFeed())

	_, err := svc.LookupByTicketID(context.Background(), "OV-424242")
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "NOT_FOUND" {
		t.Fatalf("got %v, want NOT_FOUND", err)
	}

	_, err = svc.LookupByTicketID(context.Background(), "   ")
	if !errors.As(err, &domainErr) || domainErr.Code != "VALIDATION_FAILED" {
		t.Fatalf("blank lookup: got %v, want VALIDATION_FAILED", err)
	}
}

func TestResolveIssueLifecycle(t *testing.T) {
	t.Parallel()
	svc := newTestService(newFakeRepo(), events.NewMemoryFeed())
	ctx := context.Background()

	created, err := svc.CreateIssue(ctx, validInput())
	if err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}

	resolved, err := svc.ResolveIssue(ctx, created.ID)
	if err != nil {
		t.Fatalf("ResolveIssue: %v", err)
	}
	if resolved.Status != domain.IssueStatusResolved {
		t.Errorf("status: got %q, want resolved", resolved.Status)
	}
	if resolved.ResolvedAt == nil {
		t.Fatal("resolved_at: got nil, want set")
	}
	if resolved.ResolvedAt.Before(resolved.CreatedAt) {
		t.Errorf("resolved_at %v before created_at %v", resolved.ResolvedAt, resolved.CreatedAt)
	}

	// Re-resolve is a no-op success returning the unchanged record.
	again, err := svc.ResolveIssue(ctx, created.ID)
	if err != nil {
		t.Fatalf("second ResolveIssue: %v", err)
	}
	if !again.ResolvedAt.Equal(*resolved.ResolvedAt) {
		t.Errorf("resolved_at changed on re-resolve: %v -> %v", resolved.ResolvedAt, again.ResolvedAt)
	}
}

func TestResolveUnknownIssueIsNotFound(t *testing.T) {
	t.Parallel()
	svc := newTestService(newFakeRepo(), events.NewMemoryFeed())

	_, err := svc.ResolveIssue(context.Background(), "ghost")
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "NOT_FOUND" {
		t.Fatalf("got %v, want NOT_FOUND", err)
	}
}

func TestWritesPublishChangeEvents(t *testing.T) {
	t.Parallel()
	feed := events.NewMemoryFeed()
	svc := newTestService(newFakeRepo(), feed)
	ctx := context.Background()

	sub, err := feed.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Close()

	created, err := svc.CreateIssue(ctx, validInput())
	if err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}
	if _, err := svc.ResolveIssue(ctx, created.ID); err != nil {
		t.Fatalf("ResolveIssue: %v", err)
	}
	// Second resolve is a no-op and must not publish.
	if _, err := svc.ResolveIssue(ctx, created.ID); err != nil {
		t.Fatalf("second ResolveIssue: %v", err)
	}

	got := drain(sub)
	if len(got) != 2 {
		t.Fatalf("events: got %d, want 2", len(got))
	}
	if got[0].Type != events.ChangeInserted || got[0].IssueID != created.ID {
		t.Errorf("event 0: got %+v, want inserted for %s", got[0], created.ID)
	}
	if got[1].Type != events.ChangeUpdated || got[1].Issue == nil || got[1].Issue.Status != domain.IssueStatusResolved {
		t.Errorf("event 1: got %+v, want resolved update", got[1])
	}
}

func TestSubmitTrackResolveScenario(t *testing.T) {
	t.Parallel()
	svc := newTestService(newFakeRepo(), events.NewMemoryFeed())
	ctx := context.Background()

	created, err := svc.CreateIssue(ctx, IssueCreateInput{
		Department:  "Library",
		Category:    "Infrastructure",
		Description: "AC broken",
	})
	if err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}
	if !domain.ValidTicketID(created.TicketID) {
		t.Fatalf("ticket id %q does not match OV-XXXXXX", created.TicketID)
	}

	tracked, err := svc.LookupByTicketID(ctx, " "+created.TicketID+" ")
	if err != nil {
		t.Fatalf("LookupByTicketID: %v", err)
	}
	if tracked.Status != domain.IssueStatusUnresolved || tracked.ResolvedAt != nil {
		t.Fatalf("before resolve: got status=%q resolved_at=%v", tracked.Status, tracked.ResolvedAt)
	}

	if _, err := svc.ResolveIssue(ctx, created.ID); err != nil {
		t.Fatalf("ResolveIssue: %v", err)
	}

	tracked, err = svc.LookupByTicketID(ctx, created.TicketID)
	if err != nil {
		t.Fatalf("LookupByTicketID after resolve: %v", err)
	}
	if tracked.Status != domain.IssueStatusResolved || tracked.ResolvedAt == nil {
		t.Fatalf("after resolve: got status=%q resolved_at=%v", tracked.Status, tracked.ResolvedAt)
	}
	if tracked.ResolvedAt.Before(tracked.CreatedAt) {
		t.Errorf("resolved_at %v before created_at %v", tracked.ResolvedAt, tracked.CreatedAt)
	}
}
