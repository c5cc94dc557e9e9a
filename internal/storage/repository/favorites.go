package repository

import (
	"context"
	"fmt"

	"github.com/avtoradar/marketplace-api/internal/lib/apperr"
	"github.com/avtoradar/marketplace-api/internal/models"
)

// AddFavorite сохраняет пару (пользователь, объявление) в избранном.
// Повторное добавление той же пары возвращает ErrConflict.
func (s *Storage) AddFavorite(ctx context.Context, fav models.Favorite) error {
	const op = "storage.AddFavorite"

	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO favorites (id, user_id, vehicle_id, created_at)
         VALUES ($1, $2, $3, now())`,
		fav.ID, fav.UserID, fav.VehicleID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: %w", op, apperr.ErrConflict)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RemoveFavorite удаляет пару из избранного.
func (s *Storage) RemoveFavorite(ctx context.Context, userID string, vehicleID int) error {
	const op = "storage.RemoveFavorite"

	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND vehicle_id = $2`, userID, vehicleID)
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

// IsFavorite сообщает, есть ли объявление в избранном пользователя.
func (s *Storage) IsFavorite(ctx context.Context, userID string, vehicleID int) (bool, error) {
	const op = "storage.IsFavorite"

	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var exists bool
	err := s.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM favorites WHERE user_id = $1 AND vehicle_id = $2)`,
		userID, vehicleID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// ListFavoriteVehicles возвращает одобренные объявления из избранного
// пользователя, недавно добавленные первыми.
func (s *Storage) ListFavoriteVehicles(ctx context.Context, userID string) ([]VehicleRow, error) {
	const op = "storage.ListFavoriteVehicles"

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+vehicleColumns+`
         FROM favorites f
         JOIN vehicles v ON v.id = f.vehicle_id
         JOIN users u ON u.id = v.user_id
         WHERE f.user_id = $1 AND v.status = 'approved'
         ORDER BY f.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []VehicleRow
	for rows.Next() {
		vr, err := scanVehicleRow(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, *vr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountFavoritesForUser возвращает число записей избранного пользователя.
func (s *Storage) CountFavoritesForUser(ctx context.Context, userID string) (int, error) {
	const op = "storage.CountFavoritesForUser"

	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var count int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM favorites WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
