package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/openvoice/feedback-service/internal/liveview"
	"github.com/openvoice/feedback-service/internal/service"
)

// StartFeedWorker attaches the change-feed consumers: the live view, which
// owns the authoritative local collection, and the notification handlers.
// The returned stop function tears both subscriptions down synchronously.
func StartFeedWorker(ctx context.Context, view *liveview.View, notifications *service.NotificationService, logger *zap.Logger) (func(), error) {
	if err := view.Run(ctx); err != nil {
		return nil, err
	}

	stopNotifications := func() {}
	if notifications != nil {
		stop, err := notifications.Run(ctx)
		if err != nil {
			view.Close()
			return nil, err
		}
		stopNotifications = stop
	}

	logger.Info("feed worker started")
	return func() {
		view.Close()
		stopNotifications()
	}, nil
}
