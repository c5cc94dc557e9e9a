package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/avtoradar/marketplace-api/internal/lib/apperr"
	"github.com/avtoradar/marketplace-api/internal/models"
)

// VehicleRow — строка объявления вместе с данными владельца из join-а.
// Решение о видимости e-mail принимает сервисный слой.
type VehicleRow struct {
	models.Vehicle
	OwnerName  string
	OwnerEmail string
	OwnerRole  string
}

const vehicleColumns = `v.id, v.title, v.brand, v.model, v.year, v.price, v.type,
        v.fuel_type, v.transmission, v.condition, v.mileage, v.description,
        v.images, v.contact_info, v.status, v.user_id, v.is_premium,
        v.approved_at, v.created_at, v.updated_at,
        u.name, u.email, u.role`

func scanVehicleRow(row interface{ Scan(dest ...any) error }) (*VehicleRow, error) {
	var vr VehicleRow
	var rawImages, rawContact, rawStatus, rawCondition string
	var approvedAt sql.NullTime
	err := row.Scan(&vr.ID, &vr.Title, &vr.Brand, &vr.Model, &vr.Year, &vr.Price,
		&vr.Type, &vr.FuelType, &vr.Transmission, &rawCondition, &vr.Mileage,
		&vr.Description, &rawImages, &rawContact, &rawStatus, &vr.UserID,
		&vr.IsPremium, &approvedAt, &vr.CreatedAt, &vr.UpdatedAt,
		&vr.OwnerName, &vr.OwnerEmail, &vr.OwnerRole)
	if err != nil {
		return nil, err
	}
	vr.Images = decodeImages(rawImages)
	vr.Contact = decodeContact(rawContact)
	vr.Status = models.VehicleStatus(rawStatus)
	vr.Condition = models.Condition(rawCondition)
	if approvedAt.Valid {
		vr.ApprovedAt = &approvedAt.Time
	}
	return &vr, nil
}

func buildVehicleFilter(filter models.VehicleFilter) (string, []any) {
	var conds []string
	var args []any
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		p := next("%" + filter.Search + "%")
		conds = append(conds, fmt.Sprintf(
			"(v.title ILIKE %[1]s OR v.brand ILIKE %[1]s OR v.model ILIKE %[1]s OR v.description ILIKE %[1]s)", p))
	}
	if filter.Type != "" {
		conds = append(conds, "v.type = "+next(filter.Type))
	}
	if filter.FuelType != "" {
		conds = append(conds, "v.fuel_type = "+next(filter.FuelType))
	}
	if filter.Transmission != "" {
		conds = append(conds, "v.transmission = "+next(filter.Transmission))
	}
	if filter.MinPrice != nil {
		conds = append(conds, "v.price >= "+next(*filter.MinPrice))
	}
	if filter.MaxPrice != nil {
		conds = append(conds, "v.price <= "+next(*filter.MaxPrice))
	}
	if filter.MinYear != nil {
		conds = append(conds, "v.year >= "+next(*filter.MinYear))
	}
	if filter.MaxYear != nil {
		conds = append(conds, "v.year <= "+next(*filter.MaxYear))
	}
	if filter.MyPosts {
		conds = append(conds, "v.user_id = "+next(filter.UserID))
	} else if filter.Status != nil {
		conds = append(conds, "v.status = "+next(string(*filter.Status)))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}
	return where, args
}

// ListVehicles возвращает страницу объявлений по фильтру и общее число
// подходящих строк.
func (s *Storage) ListVehicles(ctx context.Context, filter models.VehicleFilter) ([]VehicleRow, int, error) {
	const op = "storage.ListVehicles"

	select {
	case <-ctx.Done():
		return nil, 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	where, args := buildVehicleFilter(filter)

	var total int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM vehicles v JOIN users u ON u.id = v.user_id`+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	offset := (filter.Page - 1) * filter.Limit
	query := `SELECT ` + vehicleColumns + `
        FROM vehicles v JOIN users u ON u.id = v.user_id` + where +
		` ORDER BY v.created_at DESC, v.is_premium DESC, v.approved_at DESC NULLS LAST` +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filter.Limit, offset)

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []VehicleRow
	for rows.Next() {
		vr, err := scanVehicleRow(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, *vr)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return result, total, nil
}

// GetVehicleByID возвращает объявление вместе с данными владельца.
func (s *Storage) GetVehicleByID(ctx context.Context, id int) (*VehicleRow, error) {
	const op = "storage.GetVehicleByID"

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	row := s.DB.QueryRowContext(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles v JOIN users u ON u.id = v.user_id WHERE v.id = $1`, id)
	vr, err := scanVehicleRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return vr, nil
}

const insertVehicleQuery = `INSERT INTO vehicles
        (title, brand, model, year, price, type, fuel_type, transmission,
         condition, mileage, description, images, contact_info, status,
         user_id, is_premium, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, now(), now())
        RETURNING id`

func insertVehicleArgs(v models.Vehicle, isPremium bool) []any {
	return []any{v.Title, v.Brand, v.Model, v.Year, v.Price, v.Type, v.FuelType,
		v.Transmission, string(v.Condition), v.Mileage, v.Description,
		encodeImages(v.Images), encodeContact(v.Contact), string(v.Status),
		v.UserID, isPremium}
}

// CreateVehicle сохраняет объявление без списания квоты подписки.
func (s *Storage) CreateVehicle(ctx context.Context, v models.Vehicle) (int, error) {
	const op = "storage.CreateVehicle"

	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var id int
	err := s.DB.QueryRowContext(ctx, insertVehicleQuery, insertVehicleArgs(v, v.IsPremium)...).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// CreateVehicleWithQuota атомарно списывает одну публикацию с подписки и
// сохраняет объявление. Условный декремент допускает ровно одного
// победителя при гонке на последней публикации: проигравший получает
// обычное, не премиальное объявление. При обнулении счётчика подписка
// переводится в cancelled.
func (s *Storage) CreateVehicleWithQuota(ctx context.Context, v models.Vehicle, subscriptionID string) (int, bool, error) {
	const op = "storage.CreateVehicleWithQuota"

	select {
	case <-ctx.Done():
		return 0, false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var id int
	var isPremium bool
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE subscriptions SET post_count = post_count - 1, updated_at = now()
             WHERE id = $1 AND post_count > 0`, subscriptionID)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		isPremium = affected == 1

		if isPremium {
			if _, err := tx.ExecContext(ctx,
				`UPDATE subscriptions
                 SET status = 'cancelled', cancelled_at = now(), updated_at = now()
                 WHERE id = $1 AND post_count = 0 AND (status = 'active' OR status IS NULL)`,
				subscriptionID); err != nil {
				return err
			}
		}

		return tx.QueryRowContext(ctx, insertVehicleQuery, insertVehicleArgs(v, isPremium)...).Scan(&id)
	})
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", op, err)
	}
	return id, isPremium, nil
}

// UpdateVehicle перезаписывает изменяемые поля объявления. Слияние частичного
// обновления с прежними значениями выполняет сервисный слой.
func (s *Storage) UpdateVehicle(ctx context.Context, v models.Vehicle) error {
	const op = "storage.UpdateVehicle"

	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE vehicles SET title = $2, brand = $3, model = $4, year = $5,
            price = $6, type = $7, fuel_type = $8, transmission = $9,
            condition = $10, mileage = $11, description = $12, images = $13,
            contact_info = $14, status = $15, approved_at = $16, updated_at = now()
         WHERE id = $1`,
		v.ID, v.Title, v.Brand, v.Model, v.Year, v.Price, v.Type, v.FuelType,
		v.Transmission, string(v.Condition), v.Mileage, v.Description,
		encodeImages(v.Images), encodeContact(v.Contact), string(v.Status), v.ApprovedAt)
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

const setStatusQuery = `UPDATE vehicles
        SET status = $2,
            approved_at = CASE WHEN $2 = 'approved' AND approved_at IS NULL THEN now() ELSE approved_at END,
            updated_at = now()
        WHERE id = $1`

// SetVehicleStatus безусловно переводит объявление в указанный статус.
// approved_at проставляется только при первом одобрении и далее не меняется.
func (s *Storage) SetVehicleStatus(ctx context.Context, id int, status models.VehicleStatus) error {
	const op = "storage.SetVehicleStatus"

	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, setStatusQuery, id, string(status))
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

// BulkSetVehicleStatus переводит набор объявлений в статус одной транзакцией.
func (s *Storage) BulkSetVehicleStatus(ctx context.Context, ids []int, status models.VehicleStatus) error {
	const op = "storage.BulkSetVehicleStatus"

	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		for _, id := range ids {
			if _, err := tx.ExecContext(ctx, setStatusQuery, id, string(status)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func deleteVehicleTx(ctx context.Context, tx *sql.Tx, id int) (int64, error) {
	if _, err := tx.ExecContext(ctx, `DELETE FROM favorites WHERE vehicle_id = $1`, id); err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteVehicleCascade удаляет объявление вместе с записями избранного.
func (s *Storage) DeleteVehicleCascade(ctx context.Context, id int) error {
	const op = "storage.DeleteVehicleCascade"

	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		affected, err := deleteVehicleTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if affected == 0 {
			return apperr.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// BulkDeleteVehicles удаляет набор объявлений с каскадом одной транзакцией.
func (s *Storage) BulkDeleteVehicles(ctx context.Context, ids []int) error {
	const op = "storage.BulkDeleteVehicles"

	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		for _, id := range ids {
			if _, err := deleteVehicleTx(ctx, tx, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListVehicleTable возвращает облегчённую проекцию всех объявлений для
// административной таблицы.
func (s *Storage) ListVehicleTable(ctx context.Context) ([]models.VehicleTableRow, error) {
	const op = "storage.ListVehicleTable"

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT v.id, v.title, v.brand, v.model, v.year, v.price, v.type,
                v.status, v.created_at, u.id, u.name, u.email
         FROM vehicles v JOIN users u ON u.id = v.user_id
         ORDER BY v.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []models.VehicleTableRow
	for rows.Next() {
		var row models.VehicleTableRow
		var rawStatus string
		var owner models.OwnerInfo
		var email string
		err := rows.Scan(&row.ID, &row.Title, &row.Brand, &row.Model, &row.Year,
			&row.Price, &row.Type, &rawStatus, &row.CreatedAt,
			&owner.ID, &owner.Name, &email)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		row.Status = models.VehicleStatus(rawStatus)
		owner.Email = &email
		row.Owner = &owner
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountVehiclesForUser возвращает число объявлений пользователя.
func (s *Storage) CountVehiclesForUser(ctx context.Context, userID string) (int, error) {
	const op = "storage.CountVehiclesForUser"

	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var count int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM vehicles WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// ActiveSubscriberIDs возвращает подмножество переданных пользователей,
// у которых сейчас есть действующая неистёкшая подписка.
func (s *Storage) ActiveSubscriberIDs(ctx context.Context, userIDs []string) (map[string]bool, error) {
	const op = "storage.ActiveSubscriberIDs"

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result := make(map[string]bool, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	placeholders := make([]string, 0, len(userIDs))
	args := make([]any, 0, len(userIDs))
	seen := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		args = append(args, id)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT DISTINCT user_id FROM subscriptions
         WHERE user_id IN (`+strings.Join(placeholders, ", ")+`)
           AND (status = 'active' OR status IS NULL) AND end_date > now()`, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
