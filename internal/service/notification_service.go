package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/tour-service/internal/events"
	"github.com/spec-kit/tour-service/internal/mail"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	mailer     mail.Mailer
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, mailer mail.Mailer, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		mailer:     mailer,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventUserSignedUp, n.handleUserSignedUp)
	n.dispatcher.Subscribe(events.EventPasswordChanged, n.logEvent)
	n.dispatcher.Subscribe(events.EventUserDeactivated, n.logEvent)
	n.dispatcher.Subscribe(events.EventBookingCreated, n.logEvent)
}

func (n *NotificationService) handleUserSignedUp(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.UserSignedUpPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	if n.mailer == nil {
		return nil
	}
	return n.mailer.SendWelcome(ctx, mail.Recipient{Email: payload.Email, FirstName: payload.FirstName}, payload.AccountURL)
}

func (n *NotificationService) logEvent(_ context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("subject_id", event.SubjectID),
		zap.Any("payload", event.Payload))
	return nil
}
