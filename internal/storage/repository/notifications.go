package repository

import (
	"context"
	"fmt"

	"github.com/avtoradar/marketplace-api/internal/lib/apperr"
	"github.com/avtoradar/marketplace-api/internal/models"
)

// CreateNotification сохраняет уведомление пользователя.
func (s *Storage) CreateNotification(ctx context.Context, n models.Notification) error {
	const op = "storage.CreateNotification"

	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO notifications
            (id, user_id, type, title, message, is_read, related_entity_type, related_entity_id, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5, false, $6, $7, now(), now())`,
		n.ID, n.UserID, n.Type, n.Title, n.Message, n.RelatedEntityType, n.RelatedEntityID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListNotifications возвращает уведомления пользователя, новые первыми.
func (s *Storage) ListNotifications(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	const op = "storage.ListNotifications"

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, user_id, type, title, message, is_read,
                related_entity_type, related_entity_id, created_at, updated_at
         FROM notifications WHERE user_id = $1
         ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []models.Notification
	for rows.Next() {
		var n models.Notification
		err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.IsRead,
			&n.RelatedEntityType, &n.RelatedEntityID, &n.CreatedAt, &n.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// MarkNotificationRead помечает уведомление прочитанным. Уведомление должно
// принадлежать пользователю, иначе ErrNotFound.
func (s *Storage) MarkNotificationRead(ctx context.Context, id, userID string) error {
	const op = "storage.MarkNotificationRead"

	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE notifications SET is_read = true, updated_at = now()
         WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	return nil
}
