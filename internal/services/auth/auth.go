// Package services содержит логику бизнес-уровня для регистрации,
// входа и аутентификации пользователей.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avtoradar/marketplace-api/internal/lib/apperr"
	"github.com/avtoradar/marketplace-api/internal/lib/jwt"
	"github.com/avtoradar/marketplace-api/internal/lib/password"
	"github.com/avtoradar/marketplace-api/internal/models"
)

// UserRepository описывает контракт работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя.
	CreateUser(ctx context.Context, user models.User) error

	// GetUserByEmail возвращает пользователя по email или ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID возвращает пользователя по идентификатору или ErrNotFound.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// TouchLastLogin фиксирует время последнего входа.
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}

// AuthService отвечает за регистрацию, вход и проверку JWT.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// Register создает нового пользователя с хэшированием пароля и ролью "user",
// возвращает пользователя и токен доступа.
func (s *AuthService) Register(ctx context.Context, req models.DummyRegister) (*models.User, string, error) {
	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return nil, "", err
	}

	user := models.User{
		ID:           uuid.NewString(),
		Email:        models.NormalizeEmail(req.Email),
		Name:         req.Name,
		PasswordHash: hashed,
		Role:         models.RoleUser,
		IsBlocked:    false,
	}
	if req.Phone != "" {
		user.Phone = &req.Phone
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.jwtMaker.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

// Login проверяет учётные данные и возвращает пользователя с токеном доступа.
// Заблокированным пользователям вход запрещён.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (*models.User, string, error) {
	user, err := s.users.GetUserByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		return nil, "", err
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, "", fmt.Errorf("invalid credentials: %w", apperr.ErrNotFound)
	}
	if user.IsBlocked {
		return nil, "", fmt.Errorf("account is blocked: %w", apperr.ErrForbidden)
	}

	now := time.Now().UTC()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, "", err
	}
	user.LastLogin = &now

	token, err := s.jwtMaker.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// AdminLogin выполняет вход и дополнительно требует административную роль.
func (s *AuthService) AdminLogin(ctx context.Context, email, rawPassword string) (*models.User, string, error) {
	user, token, err := s.Login(ctx, email, rawPassword)
	if err != nil {
		return nil, "", err
	}
	if !models.IsAdminRole(user.Role) {
		return nil, "", fmt.Errorf("admin role required: %w", apperr.ErrForbidden)
	}
	return user, token, nil
}

// Me возвращает текущего пользователя по идентификатору из токена.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

// ValidateToken проверяет JWT и возвращает claims пользователя.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*jwt.CustomClaims, error) {
	return s.jwtMaker.ParseToken(token)
}
