// Package models содержит доменные структуры маркетплейса транспорта,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import (
	"strings"
	"time"
)

// NormalizeEmail приводит адрес к каноническому виду: обрезает крайние
// пробелы и переводит в нижний регистр. Уникальность email
// регистронезависимая, поэтому нормализация обязательна перед любым
// сохранением или поиском по адресу.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// User представляет учётную запись пользователя или администратора.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         string
	IsBlocked    bool
	Phone        *string
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserView — проекция пользователя для ответов API (без хэша пароля).
type UserView struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      string     `json:"role"`
	IsBlocked bool       `json:"is_blocked"`
	Phone     *string    `json:"phone,omitempty"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// View возвращает проекцию пользователя без чувствительных полей.
func (u *User) View() UserView {
	return UserView{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		IsBlocked: u.IsBlocked,
		Phone:     u.Phone,
		LastLogin: u.LastLogin,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// DummyRegister используется для приёма данных регистрации из JSON-запроса.
type DummyRegister struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone,omitempty"`
}

// DummyLogin используется для приёма данных входа из JSON-запроса.
type DummyLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// DummyUserUpdate — частичное обновление учётной записи администратором.
// Пустые поля означают «оставить прежнее значение».
type DummyUserUpdate struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
	Phone string `json:"phone,omitempty"`
}

// DummyUserCreate — создание учётной записи администратором с явной ролью.
type DummyUserCreate struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone,omitempty"`
	Role     string `json:"role,omitempty"`
}
