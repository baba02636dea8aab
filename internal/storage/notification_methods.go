package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/flownest/flownest-server/internal/models"
)

const notificationColumns = `id, created_at, recipient_id, sender_id, title, message, type, read, details`

// CreateNotification stores an in-app notification
func (s *PostgresStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if n.Type == "" {
		n.Type = models.NotificationInfo
	}

	_, err := s.getDB().ExecContext(ctx,
		`INSERT INTO notifications (`+notificationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		n.ID, n.CreatedAt, n.RecipientID, n.SenderID, n.Title, n.Message,
		n.Type, n.Read, n.Details,
	)
	return mapError(err)
}

// ListNotifications lists a user's notifications, newest first
func (s *PostgresStore) ListNotifications(ctx context.Context, recipientID uuid.UUID, limit int) ([]*models.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE recipient_id = $1 ORDER BY created_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.getDB().QueryContext(ctx, query, recipientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*models.Notification{}
	for rows.Next() {
		n := &models.Notification{}
		err := rows.Scan(
			&n.ID, &n.CreatedAt, &n.RecipientID, &n.SenderID, &n.Title,
			&n.Message, &n.Type, &n.Read, &n.Details,
		)
		if err != nil {
			return nil, err
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

// MarkNotificationRead flags one of the recipient's notifications as read
func (s *PostgresStore) MarkNotificationRead(ctx context.Context, recipientID, id uuid.UUID) error {
	return expectOne(s.getDB().ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1 AND recipient_id = $2`, id, recipientID))
}
