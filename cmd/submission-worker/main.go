package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/carebridge-health/dme-orders/pkg/common/config"
	"github.com/carebridge-health/dme-orders/pkg/common/database"
	"github.com/carebridge-health/dme-orders/pkg/common/kafka"
	"github.com/carebridge-health/dme-orders/pkg/common/logger"
	"github.com/carebridge-health/dme-orders/pkg/common/models"
	"github.com/carebridge-health/dme-orders/pkg/orders"
	"github.com/carebridge-health/dme-orders/pkg/orders/apiclient"
)

type worker struct {
	repo   *orders.Repository
	client *apiclient.Client
	dlq    *kafka.Producer
}

func main() {
	logger.Init()
	cfg := config.Load()

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to postgres")
	}

	w := &worker{
		repo:   orders.NewRepository(db),
		client: apiclient.New(cfg),
	}

	if cfg.OrderDLQTopic != "" {
		w.dlq = kafka.NewProducer(cfg.OrderDLQTopic)
		defer w.dlq.Close()
	}

	consumer := kafka.NewConsumer(cfg.OrderTopic, "submission-worker")
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		logger.Log.WithField("topic", cfg.OrderTopic).Info("Submission Worker started")
		if err := consumer.Consume(ctx, w.handleEvent); err != nil && !errors.Is(err, context.Canceled) {
			logger.Log.WithError(err).Error("consumer stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Submission Worker...")
	cancel()
	logger.Log.Info("Submission Worker stopped")
}

func (w *worker) handleEvent(ctx context.Context, event models.Event) error {
	if event.Type != orders.EventOrderExtracted {
		return nil
	}

	orderID, payload, err := decodeOrderEvent(event)
	if err != nil {
		// Malformed events are dead on arrival; commit and DLQ them.
		logger.Log.WithError(err).WithField("event_id", event.ID).Error("discarding malformed order event")
		w.deadLetter(ctx, event, err)
		return nil
	}

	if err := w.client.Submit(ctx, payload); err != nil {
		logger.Log.WithError(err).WithField("order_id", orderID).Error("order submission failed")
		if markErr := w.repo.MarkFailed(ctx, orderID, err.Error()); markErr != nil {
			logger.Log.WithError(markErr).WithField("order_id", orderID).Error("failed to record submission failure")
		}
		w.deadLetter(ctx, event, err)
		return nil
	}

	if err := w.repo.MarkSubmitted(ctx, orderID); err != nil {
		logger.Log.WithError(err).WithField("order_id", orderID).Error("failed to record submission")
	}

	logger.Log.WithField("order_id", orderID).Info("order submitted")
	return nil
}

func decodeOrderEvent(event models.Event) (string, models.OrderPayload, error) {
	orderID, _ := event.Data["order_id"].(string)
	if orderID == "" {
		return "", models.OrderPayload{}, errors.New("order event missing order_id")
	}

	raw, err := json.Marshal(event.Data["payload"])
	if err != nil {
		return "", models.OrderPayload{}, fmt.Errorf("re-encoding order payload: %w", err)
	}

	var payload models.OrderPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", models.OrderPayload{}, fmt.Errorf("decoding order payload: %w", err)
	}
	if payload.Device == "" {
		return "", models.OrderPayload{}, errors.New("order payload missing device")
	}

	return orderID, payload, nil
}

func (w *worker) deadLetter(ctx context.Context, event models.Event, cause error) {
	if w.dlq == nil {
		return
	}
	data := map[string]interface{}{
		"original_event": event,
		"error":          cause.Error(),
	}
	if err := w.dlq.PublishEvent(ctx, "order.dlq", "submission-worker", data); err != nil {
		logger.Log.WithError(err).Error("failed to push event to DLQ")
	}
}
