package liveview

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/openvoice/feedback-service/internal/domain"
	"github.com/openvoice/feedback-service/internal/events"
	"github.com/openvoice/feedback-service/internal/observability"
	apperrors "github.com/openvoice/feedback-service/pkg/util"
)

const (
	fetchAttempts     = 3
	fetchBackoffStart = 250 * time.Millisecond
)

// Fetcher performs the bulk load that seeds the view.
type Fetcher interface {
	ListAll(ctx context.Context) ([]domain.Issue, error)
}

// View is a client-local, eventually-consistent mirror of the issue
// collection: seeded by one bulk fetch, kept current by the change feed, read
// through immutable snapshots. The sequence is ordered newest-first by
// created_at and is mutated only via Initialize and Apply. Apply is driven by
// a single consumer goroutine (Run), so the event stream is the sole mutation
// path during steady state.
type View struct {
	mu          sync.RWMutex
	issues      []domain.Issue
	initialized bool
	stale       bool

	fetcher Fetcher
	feed    events.Feed
	logger  *zap.Logger
	metrics *observability.Metrics

	subMu sync.Mutex
	sub   *events.Subscription
}

// NewView constructs an empty view. metrics may be nil.
func NewView(fetcher Fetcher, feed events.Feed, logger *zap.Logger, metrics *observability.Metrics) *View {
	return &View{fetcher: fetcher, feed: feed, logger: logger, metrics: metrics}
}

// Initialize performs the bulk fetch, retrying with doubling backoff. On
// failure the prior state, if any, is left untouched and the caller gets a
// FETCH_FAILED error; retry is a fresh Initialize call.
func (v *View) Initialize(ctx context.Context) error {
	var lastErr error
	backoff := fetchBackoffStart
	for attempt := 1; attempt <= fetchAttempts; attempt++ {
		issues, err := v.fetcher.ListAll(ctx)
		if err == nil {
			v.mu.Lock()
			v.issues = issues
			v.initialized = true
			v.stale = false
			v.mu.Unlock()
			return nil
		}
		lastErr = err
		v.logger.Warn("bulk fetch failed",
			zap.Int("attempt", attempt),
			zap.Error(err))
		if attempt < fetchAttempts {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return apperrors.NewFetchError(ctx.Err())
			}
			backoff *= 2
		}
	}
	return apperrors.NewFetchError(lastErr)
}

// Run subscribes to the change feed and consumes events in arrival order
// until Close is called or the subscription drops. A dropped subscription
// marks the view stale; no automatic resubscription is attempted.
func (v *View) Run(ctx context.Context) error {
	sub, err := v.feed.Subscribe(ctx)
	if err != nil {
		return err
	}
	v.subMu.Lock()
	v.sub = sub
	v.subMu.Unlock()

	go func() {
		for event := range sub.C {
			v.metrics.RecordFeedEvent(string(event.Type))
			v.Apply(event)
		}
		v.mu.Lock()
		v.stale = true
		v.mu.Unlock()
		v.logger.Info("change feed subscription ended; view is stale until refreshed")
	}()
	return nil
}

// Apply merges one change event into the collection. The merge is idempotent
// under at-least-once delivery and tolerates an update arriving before its
// insert is locally known.
func (v *View) Apply(event events.ChangeEvent) {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch event.Type {
	case events.ChangeInserted, events.ChangeUpdated:
		if event.Issue == nil {
			return
		}
		if i := v.indexOf(event.Issue.ID); i >= 0 {
			// Duplicate insert or routine update: replace in place. Sort
			// order depends only on the immutable created_at, so the
			// position stays valid.
			v.issues[i] = *event.Issue
			return
		}
		// New record, or an update whose insert was missed: prepend, which
		// keeps the newest-first order for fresh rows.
		v.issues = append([]domain.Issue{*event.Issue}, v.issues...)
	case events.ChangeDeleted:
		if i := v.indexOf(event.IssueID); i >= 0 {
			v.issues = append(v.issues[:i], v.issues[i+1:]...)
		}
	}
}

// indexOf requires v.mu held.
func (v *View) indexOf(id string) int {
	for i := range v.issues {
		if v.issues[i].ID == id {
			return i
		}
	}
	return -1
}

// Snapshot returns a copy of the current sequence. It never blocks on
// in-flight events.
func (v *View) Snapshot() []domain.Issue {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]domain.Issue, len(v.issues))
	copy(out, v.issues)
	return out
}

// Initialized reports whether the bulk fetch has ever succeeded.
func (v *View) Initialized() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.initialized
}

// Stale reports whether the feed subscription has dropped since the last
// successful Initialize.
func (v *View) Stale() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.stale
}

// Close tears down the feed subscription synchronously. No pending-event
// drain is performed.
func (v *View) Close() {
	v.subMu.Lock()
	defer v.subMu.Unlock()
	if v.sub != nil {
		v.sub.Close()
		v.sub = nil
	}
}
