package queue

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jmarsden/meridian-banking/internal/model"
)

// EventStore is the persistence surface the worker needs
type EventStore interface {
	InsertNotification(ctx context.Context, n *model.Notification) error
	InsertAuditRecord(ctx context.Context, rec *model.AuditRecord) error
}

// Worker consumes events from the queue and persists them
type Worker struct {
	client *redis.Client
	store  EventStore
	logger *zap.Logger
	stopCh chan struct{}
}

// NewWorker creates a new Worker
func NewWorker(client *redis.Client, store EventStore, logger *zap.Logger) *Worker {
	return &Worker{
		client: client,
		store:  store,
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

// Start begins consuming events from the queue.
// This runs in a loop until Stop() is called.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("worker started, listening for events")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker stopping due to context cancellation")
			return
		case <-w.stopCh:
			w.logger.Info("worker stopping due to stop signal")
			return
		default:
			// BLPOP waits up to 5 seconds for an event, then loops to
			// check for the stop signal
			result, err := w.client.BLPop(ctx, 5*time.Second, QueueName).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					continue
				}
				if ctx.Err() != nil {
					return
				}
				w.logger.Error("error reading from queue", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}

			// result[0] is the queue name, result[1] is the event
			if len(result) < 2 {
				continue
			}

			w.processEvent(ctx, result[1])
		}
	}
}

// Stop signals the worker to stop processing
func (w *Worker) Stop() {
	close(w.stopCh)
}

// processEvent handles a single event from the queue
func (w *Worker) processEvent(ctx context.Context, data string) {
	var event Event
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		w.logger.Error("failed to unmarshal event", zap.Error(err))
		return
	}

	switch event.Kind {
	case EventKindNotification:
		if event.Notification == nil {
			w.logger.Warn("notification event with no payload")
			return
		}
		if err := w.store.InsertNotification(ctx, event.Notification); err != nil {
			w.logger.Error("failed to persist notification",
				zap.String("notification_id", event.Notification.ID.String()),
				zap.Error(err))
			return
		}
		w.logger.Info("notification persisted",
			zap.String("notification_id", event.Notification.ID.String()),
			zap.String("owner_id", event.Notification.OwnerID.String()))
	case EventKindAudit:
		if event.Audit == nil {
			w.logger.Warn("audit event with no payload")
			return
		}
		if err := w.store.InsertAuditRecord(ctx, event.Audit); err != nil {
			w.logger.Error("failed to persist audit record",
				zap.String("audit_id", event.Audit.ID.String()),
				zap.Error(err))
			return
		}
		w.logger.Info("audit record persisted",
			zap.String("audit_id", event.Audit.ID.String()),
			zap.String("action", string(event.Audit.Action)))
	default:
		w.logger.Warn("unknown event kind", zap.String("kind", event.Kind))
	}
}

// ProcessOne processes a single event synchronously (useful for testing)
func (w *Worker) ProcessOne(ctx context.Context) error {
	result, err := w.client.LPop(ctx, QueueName).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil // No event available
		}
		return err
	}

	w.processEvent(ctx, result)
	return nil
}
