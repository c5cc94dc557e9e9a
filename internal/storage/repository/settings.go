package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/avtoradar/marketplace-api/internal/models"
)

// ListSettings возвращает все сохранённые настройки.
func (s *Storage) ListSettings(ctx context.Context) ([]models.Setting, error) {
	const op = "storage.ListSettings"

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT setting_key, value FROM settings ORDER BY setting_key`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []models.Setting
	for rows.Next() {
		var setting models.Setting
		var value sql.NullString
		if err := rows.Scan(&setting.Key, &value); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if value.Valid {
			setting.Value = &value.String
		}
		result = append(result, setting)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpsertSetting создаёт или обновляет настройку по ключу.
func (s *Storage) UpsertSetting(ctx context.Context, key string, value *string) error {
	const op = "storage.UpsertSetting"

	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO settings (setting_key, value, updated_at)
         VALUES ($1, $2, now())
         ON CONFLICT (setting_key) DO UPDATE SET value = $2, updated_at = now()`,
		key, value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
