package worker

import (
	"context"

	"shop-service/internal/broker"
	"shop-service/internal/models"
	"shop-service/internal/util"

	"go.uber.org/zap"
)

// Consumer is the part of broker.Consumer the worker drives
type Consumer interface {
	StartConsuming(ctx context.Context, handler broker.MessageHandler) error
	Close() error
}

// OrderNotifier delivers a confirmation for a new order
type OrderNotifier interface {
	SendOrderConfirmation(ctx context.Context, event *models.OrderCreatedEvent) error
}

// NotificationWorker sends customer emails for order events
type NotificationWorker struct {
	consumer     Consumer
	eventHandler *broker.EventHandler
	notifier     OrderNotifier
	logger       *zap.Logger
}

// NewNotificationWorker creates a new notification worker
func NewNotificationWorker(consumer Consumer, notifier OrderNotifier) *NotificationWorker {
	w := &NotificationWorker{
		consumer:     consumer,
		eventHandler: broker.NewEventHandler(),
		notifier:     notifier,
		logger:       util.GetLogger(),
	}

	w.eventHandler.OnOrderCreated(w.handleOrderCreated)
	return w
}

// Start consumes until ctx is cancelled
func (w *NotificationWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting notification worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop closes the underlying consumer
func (w *NotificationWorker) Stop() error {
	w.logger.Info("Stopping notification worker")
	return w.consumer.Close()
}

func (w *NotificationWorker) handleOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	if err := w.notifier.SendOrderConfirmation(ctx, event); err != nil {
		util.NotificationsTotal.WithLabelValues("error").Inc()
		w.logger.Error("Failed to send order confirmation",
			zap.Int64("order_id", event.OrderID),
			zap.Error(err))
		return err
	}

	util.NotificationsTotal.WithLabelValues("sent").Inc()
	return nil
}
