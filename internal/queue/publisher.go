// Package queue moves side effects out of the request path. Completed
// movements and other mutations publish events to a Redis list; a
// separate worker drains the list and persists notifications and audit
// records. A lost event never affects a committed ledger entry.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jmarsden/meridian-banking/internal/model"
)

const (
	// QueueName is the Redis list key for pending side-effect events
	QueueName = "events:pending"
)

// Event is the message published to the queue. Exactly one of
// Notification or Audit is set, discriminated by Kind.
type Event struct {
	Kind         string              `json:"kind"` // "notification" or "audit"
	Notification *model.Notification `json:"notification,omitempty"`
	Audit        *model.AuditRecord  `json:"audit,omitempty"`
	PublishedAt  time.Time           `json:"published_at"`
}

const (
	EventKindNotification = "notification"
	EventKindAudit        = "audit"
)

// Publisher handles publishing events to Redis
type Publisher struct {
	client *redis.Client
}

// NewPublisher creates a new Publisher
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// MovementCompleted publishes the notification and audit event for a
// committed ledger entry. Satisfies engine.Notifier.
func (p *Publisher) MovementCompleted(ctx context.Context, txn *model.Transaction) error {
	notification := &model.Notification{
		ID:      uuid.New(),
		OwnerID: txn.OwnerID,
		Type:    model.NotificationTypeTransaction,
		Title:   fmt.Sprintf("%s completed", txn.Type),
		Message: fmt.Sprintf("Transaction %s for %s %s completed. Balance: %s %s",
			txn.TransactionID, txn.Amount.StringFixed(2), txn.Currency,
			txn.BalanceAfter.StringFixed(2), txn.Currency),
		CreatedAt: time.Now(),
	}
	if err := p.PublishNotification(ctx, notification); err != nil {
		return err
	}

	return p.PublishAudit(ctx, &model.AuditRecord{
		ID:          uuid.New(),
		Action:      model.AuditActionTransactionCreate,
		ActorID:     txn.OwnerID,
		EntityType:  "transaction",
		EntityID:    txn.ID,
		Description: fmt.Sprintf("%s of %s %s (%s)", txn.Type, txn.Amount.StringFixed(2), txn.Currency, txn.TransactionID),
		Status:      "success",
		CreatedAt:   time.Now(),
	})
}

// PublishNotification enqueues an owner-facing notification
func (p *Publisher) PublishNotification(ctx context.Context, n *model.Notification) error {
	return p.publish(ctx, Event{
		Kind:         EventKindNotification,
		Notification: n,
		PublishedAt:  time.Now(),
	})
}

// PublishAudit enqueues an audit trail record
func (p *Publisher) PublishAudit(ctx context.Context, rec *model.AuditRecord) error {
	return p.publish(ctx, Event{
		Kind:        EventKindAudit,
		Audit:       rec,
		PublishedAt: time.Now(),
	})
}

func (p *Publisher) publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// RPUSH adds to the end of the list (FIFO queue)
	if err := p.client.RPush(ctx, QueueName, data).Err(); err != nil {
		return fmt.Errorf("failed to publish to queue: %w", err)
	}

	return nil
}

// QueueLength returns the current number of events in the queue
func (p *Publisher) QueueLength(ctx context.Context) (int64, error) {
	return p.client.LLen(ctx, QueueName).Result()
}
