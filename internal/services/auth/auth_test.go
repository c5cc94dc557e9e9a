package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/avtoradar/marketplace-api/internal/lib/apperr"
	"github.com/avtoradar/marketplace-api/internal/lib/jwt"
	"github.com/avtoradar/marketplace-api/internal/lib/password"
	"github.com/avtoradar/marketplace-api/internal/models"
)

type UsersMock struct{ mock.Mock }

func (m *UsersMock) CreateUser(ctx context.Context, user models.User) error {
	return m.Called(ctx, user).Error(0)
}
func (m *UsersMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *UsersMock) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *UsersMock) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func newMaker() jwt.Maker {
	return jwt.NewJWTMaker("test-secret", time.Hour)
}

func storedUser(role string, blocked bool) *models.User {
	hash, _ := password.GetHash("correct-password")
	return &models.User{
		ID:           "user-1",
		Email:        "user@example.com",
		Name:         "User",
		PasswordHash: hash,
		Role:         role,
		IsBlocked:    blocked,
	}
}

func TestAuthService_Register(t *testing.T) {
	users := new(UsersMock)
	svc := NewAuthService(users, newMaker())

	users.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Role == models.RoleUser &&
			u.Email == "new@example.com" &&
			u.PasswordHash != "secret123" &&
			password.CompareHash(u.PasswordHash, "secret123") == nil
	})).Return(nil).Once()

	user, token, err := svc.Register(context.Background(), models.DummyRegister{
		Email:    "new@example.com",
		Name:     "Newcomer",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotEmpty(t, user.ID)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.RoleUser, claims.Role)

	users.AssertExpectations(t)
}

func TestAuthService_Register_EmailFolding(t *testing.T) {
	t.Run("email is stored trimmed and lowercased", func(t *testing.T) {
		users := new(UsersMock)
		svc := NewAuthService(users, newMaker())

		users.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
			return u.Email == "user@example.com"
		})).Return(nil).Once()

		_, _, err := svc.Register(context.Background(), models.DummyRegister{
			Email:    "  User@Example.COM ",
			Name:     "Newcomer",
			Password: "secret123",
		})
		require.NoError(t, err)
		users.AssertExpectations(t)
	})

	t.Run("same address in another casing conflicts", func(t *testing.T) {
		users := new(UsersMock)
		svc := NewAuthService(users, newMaker())

		// Хранилище держит адрес в каноническом виде, поэтому повторная
		// регистрация в другом регистре упирается в тот же уникальный ключ.
		users.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
			return u.Email == "user@example.com"
		})).Return(apperr.ErrConflict).Once()

		_, _, err := svc.Register(context.Background(), models.DummyRegister{
			Email:    "User@Example.com",
			Name:     "Duplicate",
			Password: "secret123",
		})
		require.ErrorIs(t, err, apperr.ErrConflict)
		users.AssertExpectations(t)
	})
}

func TestAuthService_Login_FoldsEmailLookup(t *testing.T) {
	users := new(UsersMock)
	svc := NewAuthService(users, newMaker())

	users.On("GetUserByEmail", mock.Anything, "user@example.com").
		Return(storedUser(models.RoleUser, false), nil).Once()
	users.On("TouchLastLogin", mock.Anything, "user-1", mock.Anything).Return(nil).Once()

	_, _, err := svc.Login(context.Background(), " User@EXAMPLE.com", "correct-password")
	require.NoError(t, err)
	users.AssertExpectations(t)
}

func TestAuthService_Login(t *testing.T) {
	tests := []struct {
		name       string
		password   string
		setupMocks func(u *UsersMock)
		wantErr    error
	}{
		{
			name:     "success touches last login",
			password: "correct-password",
			setupMocks: func(u *UsersMock) {
				u.On("GetUserByEmail", mock.Anything, "user@example.com").
					Return(storedUser(models.RoleUser, false), nil).Once()
				u.On("TouchLastLogin", mock.Anything, "user-1", mock.Anything).Return(nil).Once()
			},
		},
		{
			name:     "wrong password looks like missing account",
			password: "wrong",
			setupMocks: func(u *UsersMock) {
				u.On("GetUserByEmail", mock.Anything, "user@example.com").
					Return(storedUser(models.RoleUser, false), nil).Once()
			},
			wantErr: apperr.ErrNotFound,
		},
		{
			name:     "blocked account is forbidden",
			password: "correct-password",
			setupMocks: func(u *UsersMock) {
				u.On("GetUserByEmail", mock.Anything, "user@example.com").
					Return(storedUser(models.RoleUser, true), nil).Once()
			},
			wantErr: apperr.ErrForbidden,
		},
		{
			name:     "unknown email",
			password: "correct-password",
			setupMocks: func(u *UsersMock) {
				u.On("GetUserByEmail", mock.Anything, "user@example.com").
					Return(nil, apperr.ErrNotFound).Once()
			},
			wantErr: apperr.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(UsersMock)
			svc := NewAuthService(users, newMaker())
			tt.setupMocks(users)

			user, token, err := svc.Login(context.Background(), "user@example.com", tt.password)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, token)
				require.NotNil(t, user.LastLogin)
			}
			users.AssertExpectations(t)
		})
	}
}

func TestAuthService_AdminLogin(t *testing.T) {
	t.Run("regular user is rejected", func(t *testing.T) {
		users := new(UsersMock)
		svc := NewAuthService(users, newMaker())
		users.On("GetUserByEmail", mock.Anything, "user@example.com").
			Return(storedUser(models.RoleUser, false), nil).Once()
		users.On("TouchLastLogin", mock.Anything, "user-1", mock.Anything).Return(nil).Once()

		_, _, err := svc.AdminLogin(context.Background(), "user@example.com", "correct-password")
		require.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("admin passes", func(t *testing.T) {
		users := new(UsersMock)
		svc := NewAuthService(users, newMaker())
		users.On("GetUserByEmail", mock.Anything, "user@example.com").
			Return(storedUser(models.RoleAdmin, false), nil).Once()
		users.On("TouchLastLogin", mock.Anything, "user-1", mock.Anything).Return(nil).Once()

		user, token, err := svc.AdminLogin(context.Background(), "user@example.com", "correct-password")
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, user.Role)
		assert.NotEmpty(t, token)
	})
}
