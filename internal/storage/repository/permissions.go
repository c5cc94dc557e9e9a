package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/avtoradar/marketplace-api/internal/models"
)

// ListPermissions возвращает права всех администраторов.
func (s *Storage) ListPermissions(ctx context.Context) ([]models.AdminPermission, error) {
	const op = "storage.ListPermissions"

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	return s.queryPermissions(ctx, op,
		`SELECT id, admin_id, feature, can_access, can_create, can_edit, can_delete
         FROM admin_permissions ORDER BY admin_id, feature`)
}

// ListPermissionsForAdmin возвращает права одного администратора.
func (s *Storage) ListPermissionsForAdmin(ctx context.Context, adminID string) ([]models.AdminPermission, error) {
	const op = "storage.ListPermissionsForAdmin"

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	return s.queryPermissions(ctx, op,
		`SELECT id, admin_id, feature, can_access, can_create, can_edit, can_delete
         FROM admin_permissions WHERE admin_id = $1 ORDER BY feature`, adminID)
}

func (s *Storage) queryPermissions(ctx context.Context, op, query string, args ...any) ([]models.AdminPermission, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []models.AdminPermission
	for rows.Next() {
		var p models.AdminPermission
		err := rows.Scan(&p.ID, &p.AdminID, &p.Feature,
			&p.CanAccess, &p.CanCreate, &p.CanEdit, &p.CanDelete)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpsertPermissions заменяет набор прав администратора одной транзакцией.
func (s *Storage) UpsertPermissions(ctx context.Context, adminID string, grants []models.PermissionGrant) error {
	const op = "storage.UpsertPermissions"

	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM admin_permissions WHERE admin_id = $1`, adminID); err != nil {
			return err
		}
		for _, grant := range grants {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO admin_permissions
                    (admin_id, feature, can_access, can_create, can_edit, can_delete)
                 VALUES ($1, $2, $3, $4, $5, $6)`,
				adminID, grant.Feature, grant.CanAccess, grant.CanCreate, grant.CanEdit, grant.CanDelete)
			if err != nil {
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
