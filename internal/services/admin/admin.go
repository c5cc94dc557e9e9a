// Package services содержит бизнес-логику административной панели:
// управление пользователями и администраторами с защитными правилами,
// каскадное удаление учётных записей и права доступа по функциям.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/avtoradar/marketplace-api/internal/lib/apperr"
	"github.com/avtoradar/marketplace-api/internal/lib/password"
	"github.com/avtoradar/marketplace-api/internal/models"
)

// AdminUserRepository описывает контракт работы с учётными записями.
type AdminUserRepository interface {
	// ListUsersByRole возвращает пользователей с указанными ролями.
	ListUsersByRole(ctx context.Context, roles ...string) ([]models.User, error)
	// GetUserByID возвращает пользователя или ErrNotFound.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	// CreateUser сохраняет новую учётную запись.
	CreateUser(ctx context.Context, user models.User) error
	// UpdateUser обновляет изменяемые поля учётной записи.
	UpdateUser(ctx context.Context, user models.User) error
	// DeleteUserCascade удаляет учётную запись со всеми зависимыми данными.
	DeleteUserCascade(ctx context.Context, id string) error
	// CountVehiclesForUser возвращает число объявлений пользователя.
	CountVehiclesForUser(ctx context.Context, userID string) (int, error)
	// CountFavoritesForUser возвращает число записей избранного пользователя.
	CountFavoritesForUser(ctx context.Context, userID string) (int, error)
	// CountSubscriptionsForUser возвращает число подписок пользователя.
	CountSubscriptionsForUser(ctx context.Context, userID string) (int, error)
}

// PermissionRepository описывает контракт работы с правами администраторов.
type PermissionRepository interface {
	// ListPermissions возвращает права всех администраторов.
	ListPermissions(ctx context.Context) ([]models.AdminPermission, error)
	// ListPermissionsForAdmin возвращает права одного администратора.
	ListPermissionsForAdmin(ctx context.Context, adminID string) ([]models.AdminPermission, error)
	// UpsertPermissions заменяет набор прав администратора.
	UpsertPermissions(ctx context.Context, adminID string, grants []models.PermissionGrant) error
}

// Actor — администратор, выполняющий операцию.
type Actor struct {
	ID   string
	Role string
}

// UserDetail — учётная запись вместе со счётчиками зависимых данных.
type UserDetail struct {
	models.UserView
	VehicleCount      int `json:"vehicle_count"`
	FavoriteCount     int `json:"favorite_count"`
	SubscriptionCount int `json:"subscription_count"`
}

// AdminService реализует операции административной панели.
type AdminService struct {
	users       AdminUserRepository
	permissions PermissionRepository
	log         *slog.Logger
}

// NewAdminService создает новый экземпляр AdminService.
func NewAdminService(users AdminUserRepository, permissions PermissionRepository, log *slog.Logger) *AdminService {
	return &AdminService{
		users:       users,
		permissions: permissions,
		log:         log,
	}
}

// ListUsers возвращает все учётные записи с ролью "user".
func (s *AdminService) ListUsers(ctx context.Context) ([]models.UserView, error) {
	return s.listByRoles(ctx, models.RoleUser)
}

// ListAdmins возвращает все административные учётные записи.
func (s *AdminService) ListAdmins(ctx context.Context) ([]models.UserView, error) {
	return s.listByRoles(ctx, models.RoleAdmin, models.RoleSuperadmin)
}

func (s *AdminService) listByRoles(ctx context.Context, roles ...string) ([]models.UserView, error) {
	users, err := s.users.ListUsersByRole(ctx, roles...)
	if err != nil {
		return nil, err
	}
	views := make([]models.UserView, 0, len(users))
	for i := range users {
		views = append(views, users[i].View())
	}
	return views, nil
}

// GetUser возвращает учётную запись со счётчиками объявлений, избранного
// и подписок.
func (s *AdminService) GetUser(ctx context.Context, id string) (*UserDetail, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	vehicles, err := s.users.CountVehiclesForUser(ctx, id)
	if err != nil {
		return nil, err
	}
	favorites, err := s.users.CountFavoritesForUser(ctx, id)
	if err != nil {
		return nil, err
	}
	subscriptions, err := s.users.CountSubscriptionsForUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return &UserDetail{
		UserView:          user.View(),
		VehicleCount:      vehicles,
		FavoriteCount:     favorites,
		SubscriptionCount: subscriptions,
	}, nil
}

// AddUser создает учётную запись с произвольной ролью.
func (s *AdminService) AddUser(ctx context.Context, req models.DummyUserCreate) (*models.UserView, error) {
	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	if role != models.RoleUser && !models.IsAdminRole(role) {
		return nil, apperr.Validation("role", "must be one of user, admin, superadmin")
	}
	return s.createAccount(ctx, req, role)
}

// AddAdmin создает административную учётную запись. Доступно только
// суперадминистратору.
func (s *AdminService) AddAdmin(ctx context.Context, req models.DummyUserCreate, actor Actor) (*models.UserView, error) {
	if actor.Role != models.RoleSuperadmin {
		return nil, fmt.Errorf("only superadmin may add admins: %w", apperr.ErrForbidden)
	}
	role := req.Role
	if role == "" {
		role = models.RoleAdmin
	}
	if !models.IsAdminRole(role) {
		return nil, apperr.Validation("role", "must be admin or superadmin")
	}
	return s.createAccount(ctx, req, role)
}

func (s *AdminService) createAccount(ctx context.Context, req models.DummyUserCreate, role string) (*models.UserView, error) {
	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return nil, err
	}
	user := models.User{
		ID:           uuid.NewString(),
		Email:        models.NormalizeEmail(req.Email),
		Name:         req.Name,
		PasswordHash: hashed,
		Role:         role,
	}
	if req.Phone != "" {
		user.Phone = &req.Phone
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info("account created", slog.String("id", user.ID), slog.String("role", role))

	view := user.View()
	now := time.Now().UTC()
	view.CreatedAt, view.UpdatedAt = now, now
	return &view, nil
}

// UpdateUser обновляет учётную запись с ролью "user". Административные
// записи через этот путь менять нельзя.
func (s *AdminService) UpdateUser(ctx context.Context, id string, req models.DummyUserUpdate) (*models.UserView, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleUser {
		return nil, fmt.Errorf("account %s is not a regular user: %w", id, apperr.ErrForbidden)
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = models.NormalizeEmail(req.Email)
	}
	if req.Phone != "" {
		user.Phone = &req.Phone
	}

	if err := s.users.UpdateUser(ctx, *user); err != nil {
		return nil, err
	}
	view := user.View()
	return &view, nil
}

// ToggleBlockUser переключает блокировку пользователя. Самоблокировка запрещена.
func (s *AdminService) ToggleBlockUser(ctx context.Context, id string, actor Actor) (*models.UserView, error) {
	return s.toggleBlock(ctx, id, actor, false)
}

// ToggleBlockAdmin переключает блокировку администратора. Самоблокировка запрещена.
func (s *AdminService) ToggleBlockAdmin(ctx context.Context, id string, actor Actor) (*models.UserView, error) {
	return s.toggleBlock(ctx, id, actor, true)
}

func (s *AdminService) toggleBlock(ctx context.Context, id string, actor Actor, adminPath bool) (*models.UserView, error) {
	if id == actor.ID {
		return nil, fmt.Errorf("cannot block own account: %w", apperr.ErrForbidden)
	}
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if adminPath != models.IsAdminRole(user.Role) {
		return nil, fmt.Errorf("account %s is managed through another path: %w", id, apperr.ErrForbidden)
	}

	user.IsBlocked = !user.IsBlocked
	if err := s.users.UpdateUser(ctx, *user); err != nil {
		return nil, err
	}
	s.log.Info("account block toggled",
		slog.String("id", id), slog.Bool("is_blocked", user.IsBlocked))

	view := user.View()
	return &view, nil
}

// DeleteUser удаляет пользователя со всеми зависимыми данными. Удалить себя
// или административную запись через этот путь нельзя.
func (s *AdminService) DeleteUser(ctx context.Context, id string, actor Actor) error {
	if id == actor.ID {
		return fmt.Errorf("cannot delete own account: %w", apperr.ErrForbidden)
	}
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if user.Role != models.RoleUser {
		return fmt.Errorf("account %s is not a regular user: %w", id, apperr.ErrForbidden)
	}
	return s.users.DeleteUserCascade(ctx, id)
}

// DeleteAdmin удаляет административную учётную запись. Суперадминистратора
// может удалить только суперадминистратор, удаление себя запрещено.
func (s *AdminService) DeleteAdmin(ctx context.Context, id string, actor Actor) error {
	if id == actor.ID {
		return fmt.Errorf("cannot delete own account: %w", apperr.ErrForbidden)
	}
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if !models.IsAdminRole(user.Role) {
		return fmt.Errorf("account %s is not an admin: %w", id, apperr.ErrForbidden)
	}
	if user.Role == models.RoleSuperadmin && actor.Role != models.RoleSuperadmin {
		return fmt.Errorf("only superadmin may delete a superadmin: %w", apperr.ErrForbidden)
	}
	return s.users.DeleteUserCascade(ctx, id)
}

// ListPermissions возвращает права всех администраторов.
func (s *AdminService) ListPermissions(ctx context.Context) ([]models.AdminPermission, error) {
	return s.permissions.ListPermissions(ctx)
}

// MyPermissions возвращает права запрашивающего администратора.
// Суперадминистратор не ограничен таблицей прав.
func (s *AdminService) MyPermissions(ctx context.Context, actor Actor) ([]models.AdminPermission, bool, error) {
	if actor.Role == models.RoleSuperadmin {
		return nil, true, nil
	}
	grants, err := s.permissions.ListPermissionsForAdmin(ctx, actor.ID)
	if err != nil {
		return nil, false, err
	}
	return grants, false, nil
}

// GrantPermissions заменяет набор прав администратора. Доступно только
// суперадминистратору, выдавать права можно только администраторам.
func (s *AdminService) GrantPermissions(ctx context.Context, req models.DummyPermission, actor Actor) error {
	if actor.Role != models.RoleSuperadmin {
		return fmt.Errorf("only superadmin may grant permissions: %w", apperr.ErrForbidden)
	}
	target, err := s.users.GetUserByID(ctx, req.AdminID)
	if err != nil {
		return err
	}
	if !models.IsAdminRole(target.Role) {
		return fmt.Errorf("account %s is not an admin: %w", req.AdminID, apperr.ErrForbidden)
	}
	return s.permissions.UpsertPermissions(ctx, req.AdminID, req.Permissions)
}
