package store

import (
	"context"
	"fmt"

	"github.com/jmarsden/meridian-banking/internal/model"
)

// InsertAuditRecord durably records one audit trail entry
func (s *Store) InsertAuditRecord(ctx context.Context, record *model.AuditRecord) error {
	query := `
		INSERT INTO audit_logs (id, action, actor_id, entity_type, entity_id, description, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		record.ID,
		record.Action,
		record.ActorID,
		record.EntityType,
		record.EntityID,
		record.Description,
		record.Status,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit record: %w", err)
	}

	return nil
}

// InsertNotification stores an owner-facing notification
func (s *Store) InsertNotification(ctx context.Context, n *model.Notification) error {
	query := `
		INSERT INTO notifications (id, owner_id, type, title, message, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.pool.Exec(ctx, query,
		n.ID,
		n.OwnerID,
		n.Type,
		n.Title,
		n.Message,
		n.Read,
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}

	return nil
}
