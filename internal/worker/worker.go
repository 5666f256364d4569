package worker

import (
	"context"
	"log"

	"storefront-service/internal/broker"
	"storefront-service/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// AuditWorker consumes order events and records an audit trail of
// placed orders
type AuditWorker struct {
	consumer *broker.Consumer
	logger   *zap.Logger
}

// NewAuditWorker creates a new audit worker
func NewAuditWorker(consumer *broker.Consumer) *AuditWorker {
	return &AuditWorker{
		consumer: consumer,
		logger:   util.GetLogger(),
	}
}

// Start starts the worker
func (w *AuditWorker) Start(ctx context.Context) error {
	log.Println("Starting order audit worker...")
	return w.consumer.StartConsuming(ctx, w.handleMessage)
}

// Stop stops the worker
func (w *AuditWorker) Stop() error {
	log.Println("Stopping order audit worker...")
	return w.consumer.Close()
}

func (w *AuditWorker) handleMessage(_ context.Context, msg kafka.Message) error {
	event, ok, err := broker.DecodeOrderPlaced(msg)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	util.OrdersAuditedTotal.Inc()
	w.logger.Info("Order audited",
		zap.String("order_id", event.OrderID),
		zap.Int("items", event.ItemCount),
		zap.Int64("total", event.Total),
		zap.String("coupon", event.CouponCode))
	return nil
}
