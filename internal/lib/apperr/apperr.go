// Package apperr определяет доменные ошибки сервиса и их категории.
//
// Сервисный слой оборачивает эти сентинелы через fmt.Errorf("%s: %w", ...),
// HTTP-слой разбирает их errors.Is/errors.As и выбирает статус ответа.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound — сущность отсутствует или не принадлежит запрашивающему.
	ErrNotFound = errors.New("not found")
	// ErrConflict — нарушение уникальности или предусловия состояния.
	ErrConflict = errors.New("conflict")
	// ErrInvalidState — операция недопустима в текущем статусе сущности.
	ErrInvalidState = errors.New("invalid state")
	// ErrForbidden — аутентифицирован, но прав недостаточно.
	ErrForbidden = errors.New("forbidden")
	// ErrUnavailable — внешний сервис недоступен или вернул ошибку.
	ErrUnavailable = errors.New("service unavailable")
)

// ValidationError описывает ошибку валидации конкретного поля запроса.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field %s: %s", e.Field, e.Reason)
}

// Validation создает ValidationError для поля с указанием причины.
func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// AsValidation возвращает *ValidationError, если err относится к ошибкам валидации.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
