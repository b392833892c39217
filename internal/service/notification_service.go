package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/openvoice/feedback-service/internal/config"
	"github.com/openvoice/feedback-service/internal/events"
)

// NotificationService emits administrator notifications for issue changes
// delivered on the change feed.
type NotificationService struct {
	feed   events.Feed
	logger *zap.Logger
	cfg    config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(feed events.Feed, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{feed: feed, logger: logger, cfg: cfg}
}

// Run subscribes to the change feed and handles events until the
// subscription is torn down. The returned close function is synchronous.
func (n *NotificationService) Run(ctx context.Context) (func(), error) {
	sub, err := n.feed.Subscribe(ctx)
	if err != nil {
		return nil, err
	}
	go func() {
		for event := range sub.C {
			n.handle(ctx, event)
		}
	}()
	return sub.Close, nil
}

func (n *NotificationService) handle(ctx context.Context, event events.ChangeEvent) {
	switch event.Type {
	case events.ChangeInserted:
		n.logger.Info("IssueCreated", zap.String("issue_id", event.IssueID))
		n.sendEmailNotificationStub(ctx, event)
		n.sendWebhookNotificationStub(ctx, event)
	case events.ChangeUpdated:
		n.logger.Info("IssueUpdated", zap.String("issue_id", event.IssueID))
		n.sendWebhookNotificationStub(ctx, event)
	case events.ChangeDeleted:
		n.logger.Info("IssueDeleted", zap.String("issue_id", event.IssueID))
	}
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.ChangeEvent) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("issue_id", event.IssueID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.ChangeEvent) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("issue_id", event.IssueID),
		zap.String("event_type", string(event.Type)))
}
