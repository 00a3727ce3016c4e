package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/applyflow/internal/types"
)

// CreateInAppNotification inserts an in-app notification record.
func (db *DB) CreateInAppNotification(ctx context.Context, n types.InAppNotification) error {
	data, err := json.Marshal(n.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal notification data: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO in_app_notifications
			(id, user_id, type, title, message, data, link, priority, read, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		n.ID, n.UserID, n.Type, n.Title, n.Message, data, n.Link, n.Priority,
		n.Read, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create in-app notification: %w", err)
	}
	return nil
}

// ListInAppNotifications retrieves a user's notifications, newest first.
func (db *DB) ListInAppNotifications(ctx context.Context, userID uuid.UUID, limit int) ([]types.InAppNotification, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, user_id, type, title, message, data, link, priority, read, created_at
		 FROM in_app_notifications
		 WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list in-app notifications: %w", err)
	}
	defer rows.Close()

	var notifications []types.InAppNotification
	for rows.Next() {
		var n types.InAppNotification
		var data []byte
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message,
			&data, &n.Link, &n.Priority, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &n.Data); err != nil {
				return nil, fmt.Errorf("failed to unmarshal notification data: %w", err)
			}
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}
	return notifications, nil
}

// MarkNotificationRead flags one notification as read.
func (db *DB) MarkNotificationRead(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE in_app_notifications SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("notification not found: %s", id)
	}
	return nil
}
