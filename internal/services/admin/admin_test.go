package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/avtoradar/marketplace-api/internal/lib/apperr"
	"github.com/avtoradar/marketplace-api/internal/models"
)

type AdminUsersMock struct{ mock.Mock }

func (m *AdminUsersMock) ListUsersByRole(ctx context.Context, roles ...string) ([]models.User, error) {
	callArgs := make([]any, 0, len(roles)+1)
	callArgs = append(callArgs, ctx)
	for _, role := range roles {
		callArgs = append(callArgs, role)
	}
	args := m.Called(callArgs...)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}
func (m *AdminUsersMock) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *AdminUsersMock) CreateUser(ctx context.Context, user models.User) error {
	return m.Called(ctx, user).Error(0)
}
func (m *AdminUsersMock) UpdateUser(ctx context.Context, user models.User) error {
	return m.Called(ctx, user).Error(0)
}
func (m *AdminUsersMock) DeleteUserCascade(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
func (m *AdminUsersMock) CountVehiclesForUser(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}
func (m *AdminUsersMock) CountFavoritesForUser(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}
func (m *AdminUsersMock) CountSubscriptionsForUser(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

type PermissionsMock struct{ mock.Mock }

func (m *PermissionsMock) ListPermissions(ctx context.Context) ([]models.AdminPermission, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AdminPermission), args.Error(1)
}
func (m *PermissionsMock) ListPermissionsForAdmin(ctx context.Context, adminID string) ([]models.AdminPermission, error) {
	args := m.Called(ctx, adminID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AdminPermission), args.Error(1)
}
func (m *PermissionsMock) UpsertPermissions(ctx context.Context, adminID string, grants []models.PermissionGrant) error {
	return m.Called(ctx, adminID, grants).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func account(id, role string) *models.User {
	return &models.User{
		ID:    id,
		Email: id + "@example.com",
		Name:  "Account " + id,
		Role:  role,
	}
}

func newAdminService(users *AdminUsersMock, perms *PermissionsMock) *AdminService {
	return NewAdminService(users, perms, newNoopLogger())
}

func TestAdminService_AddAdmin(t *testing.T) {
	req := models.DummyUserCreate{
		Name:     "New Admin",
		Email:    "Admin@Example.com",
		Password: "secret123",
	}

	t.Run("regular admin cannot add admins", func(t *testing.T) {
		svc := newAdminService(new(AdminUsersMock), new(PermissionsMock))
		_, err := svc.AddAdmin(context.Background(), req, Actor{ID: "adm", Role: models.RoleAdmin})
		require.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("superadmin creates admin by default", func(t *testing.T) {
		users := new(AdminUsersMock)
		svc := newAdminService(users, new(PermissionsMock))
		users.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
			return u.Role == models.RoleAdmin &&
				u.Email == "admin@example.com" &&
				u.PasswordHash != "secret123"
		})).Return(nil).Once()

		view, err := svc.AddAdmin(context.Background(), req, Actor{ID: "root", Role: models.RoleSuperadmin})
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, view.Role)
		users.AssertExpectations(t)
	})

	t.Run("user role is not allowed on admin path", func(t *testing.T) {
		svc := newAdminService(new(AdminUsersMock), new(PermissionsMock))
		badReq := req
		badReq.Role = models.RoleUser
		_, err := svc.AddAdmin(context.Background(), badReq, Actor{ID: "root", Role: models.RoleSuperadmin})
		require.Error(t, err)
		_, ok := apperr.AsValidation(err)
		assert.True(t, ok)
	})
}

func TestAdminService_UpdateUser_FoldsEmail(t *testing.T) {
	users := new(AdminUsersMock)
	svc := newAdminService(users, new(PermissionsMock))

	users.On("GetUserByID", mock.Anything, "user-1").
		Return(account("user-1", models.RoleUser), nil).Once()
	users.On("UpdateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Email == "renamed@example.com"
	})).Return(nil).Once()

	view, err := svc.UpdateUser(context.Background(), "user-1", models.DummyUserUpdate{
		Email: " Renamed@Example.COM ",
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed@example.com", view.Email)
	users.AssertExpectations(t)
}

func TestAdminService_ToggleBlock(t *testing.T) {
	actor := Actor{ID: "adm", Role: models.RoleAdmin}

	tests := []struct {
		name       string
		targetID   string
		adminPath  bool
		setupMocks func(u *AdminUsersMock)
		wantErr    error
	}{
		{
			name:       "self block is forbidden",
			targetID:   "adm",
			setupMocks: func(_ *AdminUsersMock) {},
			wantErr:    apperr.ErrForbidden,
		},
		{
			name:     "admin account on user path is forbidden",
			targetID: "other-admin",
			setupMocks: func(u *AdminUsersMock) {
				u.On("GetUserByID", mock.Anything, "other-admin").
					Return(account("other-admin", models.RoleAdmin), nil).Once()
			},
			wantErr: apperr.ErrForbidden,
		},
		{
			name:     "user is blocked on user path",
			targetID: "user-1",
			setupMocks: func(u *AdminUsersMock) {
				u.On("GetUserByID", mock.Anything, "user-1").
					Return(account("user-1", models.RoleUser), nil).Once()
				u.On("UpdateUser", mock.Anything, mock.MatchedBy(func(usr models.User) bool {
					return usr.IsBlocked
				})).Return(nil).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(AdminUsersMock)
			svc := newAdminService(users, new(PermissionsMock))
			tt.setupMocks(users)

			view, err := svc.ToggleBlockUser(context.Background(), tt.targetID, actor)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.True(t, view.IsBlocked)
			}
			users.AssertExpectations(t)
		})
	}
}

func TestAdminService_DeleteAdmin(t *testing.T) {
	t.Run("admin cannot delete superadmin", func(t *testing.T) {
		users := new(AdminUsersMock)
		svc := newAdminService(users, new(PermissionsMock))
		users.On("GetUserByID", mock.Anything, "root").
			Return(account("root", models.RoleSuperadmin), nil).Once()

		err := svc.DeleteAdmin(context.Background(), "root", Actor{ID: "adm", Role: models.RoleAdmin})
		require.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("superadmin deletes admin with cascade", func(t *testing.T) {
		users := new(AdminUsersMock)
		svc := newAdminService(users, new(PermissionsMock))
		users.On("GetUserByID", mock.Anything, "adm-2").
			Return(account("adm-2", models.RoleAdmin), nil).Once()
		users.On("DeleteUserCascade", mock.Anything, "adm-2").Return(nil).Once()

		err := svc.DeleteAdmin(context.Background(), "adm-2", Actor{ID: "root", Role: models.RoleSuperadmin})
		require.NoError(t, err)
		users.AssertExpectations(t)
	})

	t.Run("self delete is forbidden", func(t *testing.T) {
		svc := newAdminService(new(AdminUsersMock), new(PermissionsMock))
		err := svc.DeleteAdmin(context.Background(), "root", Actor{ID: "root", Role: models.RoleSuperadmin})
		require.ErrorIs(t, err, apperr.ErrForbidden)
	})
}

func TestAdminService_DeleteUser(t *testing.T) {
	users := new(AdminUsersMock)
	svc := newAdminService(users, new(PermissionsMock))

	users.On("GetUserByID", mock.Anything, "adm-2").
		Return(account("adm-2", models.RoleAdmin), nil).Once()

	err := svc.DeleteUser(context.Background(), "adm-2", Actor{ID: "adm", Role: models.RoleAdmin})
	require.ErrorIs(t, err, apperr.ErrForbidden)
	users.AssertExpectations(t)
}

func TestAdminService_MyPermissions(t *testing.T) {
	t.Run("superadmin bypasses permission table", func(t *testing.T) {
		perms := new(PermissionsMock)
		svc := newAdminService(new(AdminUsersMock), perms)

		grants, superadmin, err := svc.MyPermissions(context.Background(), Actor{ID: "root", Role: models.RoleSuperadmin})
		require.NoError(t, err)
		assert.True(t, superadmin)
		assert.Nil(t, grants)
		perms.AssertExpectations(t)
	})

	t.Run("admin reads own grants", func(t *testing.T) {
		perms := new(PermissionsMock)
		svc := newAdminService(new(AdminUsersMock), perms)
		perms.On("ListPermissionsForAdmin", mock.Anything, "adm").
			Return([]models.AdminPermission{{AdminID: "adm", Feature: "vehicles", CanAccess: true}}, nil).Once()

		grants, superadmin, err := svc.MyPermissions(context.Background(), Actor{ID: "adm", Role: models.RoleAdmin})
		require.NoError(t, err)
		assert.False(t, superadmin)
		require.Len(t, grants, 1)
		perms.AssertExpectations(t)
	})
}

func TestAdminService_GrantPermissions(t *testing.T) {
	req := models.DummyPermission{
		AdminID: "adm-2",
		Permissions: []models.PermissionGrant{
			{Feature: "vehicles", CanAccess: true, CanEdit: true},
		},
	}

	t.Run("only superadmin may grant", func(t *testing.T) {
		svc := newAdminService(new(AdminUsersMock), new(PermissionsMock))
		err := svc.GrantPermissions(context.Background(), req, Actor{ID: "adm", Role: models.RoleAdmin})
		require.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("target must be admin", func(t *testing.T) {
		users := new(AdminUsersMock)
		svc := newAdminService(users, new(PermissionsMock))
		users.On("GetUserByID", mock.Anything, "adm-2").
			Return(account("adm-2", models.RoleUser), nil).Once()

		err := svc.GrantPermissions(context.Background(), req, Actor{ID: "root", Role: models.RoleSuperadmin})
		require.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("grants are upserted", func(t *testing.T) {
		users := new(AdminUsersMock)
		perms := new(PermissionsMock)
		svc := newAdminService(users, perms)
		users.On("GetUserByID", mock.Anything, "adm-2").
			Return(account("adm-2", models.RoleAdmin), nil).Once()
		perms.On("UpsertPermissions", mock.Anything, "adm-2", req.Permissions).Return(nil).Once()

		err := svc.GrantPermissions(context.Background(), req, Actor{ID: "root", Role: models.RoleSuperadmin})
		require.NoError(t, err)
		perms.AssertExpectations(t)
	})
}
