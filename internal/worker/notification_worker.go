package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/tour-service/internal/service"
)

// Drainer blocks until in-flight event handlers finish.
type Drainer interface {
	Wait()
}

// NotificationWorker owns the notification subscriptions for the process lifetime.
type NotificationWorker struct {
	drainer Drainer
	logger  *zap.Logger
}

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService, drainer Drainer, logger *zap.Logger) *NotificationWorker {
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}
	return &NotificationWorker{drainer: drainer, logger: logger}
}

// Stop waits for pending notifications, giving up when ctx is done.
func (w *NotificationWorker) Stop(ctx context.Context) error {
	if w == nil || w.drainer == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		w.drainer.Wait()
		close(done)
	}()
	select {
	case <-done:
		w.logger.Info("notifications drained")
		return nil
	case <-ctx.Done():
		w.logger.Warn("notifications still pending at shutdown")
		return ctx.Err()
	}
}
