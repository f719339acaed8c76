package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/eservicedesk/internal/events"
)

// NotificationService logs order lifecycle events for the ops channel. The
// portal surfaces outcomes as toasts; this is the server-side trail.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	return &NotificationService{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventOrderCreated, n.handleOrderCreated)
	n.dispatcher.Subscribe(events.EventOrderDelegated, n.handleOrderDelegated)
	n.dispatcher.Subscribe(events.EventOrderDelegationFailed, n.handleDelegationFailed)
	n.dispatcher.Subscribe(events.EventOrderVerified, n.handleOrderVerified)
	n.dispatcher.Subscribe(events.EventOrderCancelled, n.handleOrderCancelled)
	n.dispatcher.Subscribe(events.EventBulkEscalationFinished, n.handleBulkFinished)
}

func (n *NotificationService) handleOrderCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("OrderCreated", zap.String("order_id", event.OrderID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleOrderDelegated(ctx context.Context, event events.Event) error {
	n.logger.Info("OrderDelegated", zap.String("order_id", event.OrderID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleDelegationFailed(ctx context.Context, event events.Event) error {
	n.logger.Warn("OrderDelegationFailed", zap.String("order_id", event.OrderID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleOrderVerified(ctx context.Context, event events.Event) error {
	n.logger.Info("OrderVerified", zap.String("order_id", event.OrderID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleOrderCancelled(ctx context.Context, event events.Event) error {
	n.logger.Info("OrderCancelled", zap.String("order_id", event.OrderID))
	return nil
}

func (n *NotificationService) handleBulkFinished(ctx context.Context, event events.Event) error {
	n.logger.Info("BulkEscalationFinished", zap.Any("payload", event.Payload))
	return nil
}
