package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avtoradar/marketplace-api/internal/lib/apperr"
	"github.com/avtoradar/marketplace-api/internal/models"
)

const subscriptionColumns = `id, user_id, plan_type, status, start_date, end_date,
        price, payment_method, transaction_id, post_count, created_at, updated_at, cancelled_at`

func scanSubscription(row interface{ Scan(dest ...any) error }, extra ...any) (*models.Subscription, error) {
	var sub models.Subscription
	var status, paymentMethod, transactionID sql.NullString
	var cancelledAt sql.NullTime
	dest := []any{&sub.ID, &sub.UserID, &sub.PlanType, &status, &sub.StartDate,
		&sub.EndDate, &sub.Price, &paymentMethod, &transactionID, &sub.PostCount,
		&sub.CreatedAt, &sub.UpdatedAt, &cancelledAt}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if status.Valid {
		sub.Status = &status.String
	}
	if paymentMethod.Valid {
		sub.PaymentMethod = &paymentMethod.String
	}
	if transactionID.Valid {
		sub.TransactionID = &transactionID.String
	}
	if cancelledAt.Valid {
		sub.CancelledAt = &cancelledAt.Time
	}
	return &sub, nil
}

// CreateSubscription сохраняет новую подписку.
func (s *Storage) CreateSubscription(ctx context.Context, sub models.Subscription) error {
	const op = "storage.CreateSubscription"

	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO subscriptions
            (id, user_id, plan_type, status, start_date, end_date, price,
             payment_method, transaction_id, post_count, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())`,
		sub.ID, sub.UserID, sub.PlanType, sub.Status, sub.StartDate, sub.EndDate,
		sub.Price, sub.PaymentMethod, sub.TransactionID, sub.PostCount)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetLatestSubscription возвращает самую позднюю по времени создания подписку
// пользователя независимо от её состояния.
func (s *Storage) GetLatestSubscription(ctx context.Context, userID string) (*models.Subscription, error) {
	const op = "storage.GetLatestSubscription"

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	row := s.DB.QueryRowContext(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions
         WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`, userID)
	sub, err := scanSubscription(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// GetUsableSubscription возвращает самую свежую подписку пользователя со
// статусом active (или NULL) и неистёкшим сроком действия.
func (s *Storage) GetUsableSubscription(ctx context.Context, userID string) (*models.Subscription, error) {
	const op = "storage.GetUsableSubscription"

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	row := s.DB.QueryRowContext(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions
         WHERE user_id = $1 AND (status = 'active' OR status IS NULL) AND end_date > now()
         ORDER BY created_at DESC LIMIT 1`, userID)
	sub, err := scanSubscription(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// CancelActiveSubscription переводит действующую подписку пользователя в
// cancelled. Возвращает ErrNotFound, если действующей подписки нет.
func (s *Storage) CancelActiveSubscription(ctx context.Context, userID string) error {
	const op = "storage.CancelActiveSubscription"

	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE subscriptions
         SET status = 'cancelled', cancelled_at = now(), updated_at = now()
         WHERE user_id = $1 AND status = 'active' AND end_date > now()`, userID)
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

// SubscriptionWithUser — подписка вместе с данными владельца для
// административного списка.
type SubscriptionWithUser struct {
	models.Subscription
	UserName  string
	UserEmail string
}

// ListSubscriptions возвращает все подписки с данными владельцев,
// новые первыми.
func (s *Storage) ListSubscriptions(ctx context.Context) ([]SubscriptionWithUser, error) {
	const op = "storage.ListSubscriptions"

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT s.id, s.user_id, s.plan_type, s.status, s.start_date, s.end_date,
                s.price, s.payment_method, s.transaction_id, s.post_count,
                s.created_at, s.updated_at, s.cancelled_at, u.name, u.email
         FROM subscriptions s JOIN users u ON u.id = s.user_id
         ORDER BY s.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []SubscriptionWithUser
	for rows.Next() {
		var name, email string
		sub, err := scanSubscription(rows, &name, &email)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, SubscriptionWithUser{
			Subscription: *sub,
			UserName:     name,
			UserEmail:    email,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountSubscriptionsForUser возвращает число подписок пользователя.
func (s *Storage) CountSubscriptionsForUser(ctx context.Context, userID string) (int, error) {
	const op = "storage.CountSubscriptionsForUser"

	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var count int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
