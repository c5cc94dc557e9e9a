package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avtoradar/marketplace-api/internal/lib/apperr"
	"github.com/avtoradar/marketplace-api/internal/models"
)

const planColumns = `id, name, plan_type, price, post_count, features, is_active, created_at, updated_at`

func scanPlan(row interface{ Scan(dest ...any) error }) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	var rawFeatures string
	err := row.Scan(&plan.ID, &plan.Name, &plan.PlanType, &plan.Price,
		&plan.PostCount, &rawFeatures, &plan.IsActive, &plan.CreatedAt, &plan.UpdatedAt)
	if err != nil {
		return nil, err
	}
	plan.Features = decodeFeatures(rawFeatures)
	return &plan, nil
}

// ListActivePlans возвращает активные тарифы, отсортированные по типу и цене.
func (s *Storage) ListActivePlans(ctx context.Context) ([]models.SubscriptionPlan, error) {
	const op = "storage.ListActivePlans"

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+planColumns+` FROM subscription_plans
         WHERE is_active = true ORDER BY plan_type, price`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var plans []models.SubscriptionPlan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		plans = append(plans, *plan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return plans, nil
}

// GetPlanByID возвращает тариф по идентификатору.
func (s *Storage) GetPlanByID(ctx context.Context, id string) (*models.SubscriptionPlan, error) {
	const op = "storage.GetPlanByID"

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	row := s.DB.QueryRowContext(ctx,
		`SELECT `+planColumns+` FROM subscription_plans WHERE id = $1`, id)
	plan, err := scanPlan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return plan, nil
}

// GetCheapestPlanByType возвращает самый дешёвый активный тариф указанного типа.
func (s *Storage) GetCheapestPlanByType(ctx context.Context, planType string) (*models.SubscriptionPlan, error) {
	const op = "storage.GetCheapestPlanByType"

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	row := s.DB.QueryRowContext(ctx,
		`SELECT `+planColumns+` FROM subscription_plans
         WHERE plan_type = $1 AND is_active = true
         ORDER BY price LIMIT 1`, planType)
	plan, err := scanPlan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return plan, nil
}

// CreatePlan сохраняет новый тариф.
func (s *Storage) CreatePlan(ctx context.Context, plan models.SubscriptionPlan) error {
	const op = "storage.CreatePlan"

	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO subscription_plans
            (id, name, plan_type, price, post_count, features, is_active, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())`,
		plan.ID, plan.Name, plan.PlanType, plan.Price, plan.PostCount,
		encodeFeatures(plan.Features), plan.IsActive)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdatePlan перезаписывает изменяемые поля тарифа.
func (s *Storage) UpdatePlan(ctx context.Context, plan models.SubscriptionPlan) error {
	const op = "storage.UpdatePlan"

	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE subscription_plans
         SET name = $2, price = $3, post_count = $4, features = $5, is_active = $6, updated_at = now()
         WHERE id = $1`,
		plan.ID, plan.Name, plan.Price, plan.PostCount,
		encodeFeatures(plan.Features), plan.IsActive)
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

// DeletePlan удаляет тариф из каталога. Уже купленные подписки хранят копию
// параметров тарифа и не затрагиваются.
func (s *Storage) DeletePlan(ctx context.Context, id string) error {
	const op = "storage.DeletePlan"

	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM subscription_plans WHERE id = $1`, id)
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
