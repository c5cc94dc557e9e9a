// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков. Пакет упрощает возврат
// успешных ответов, ошибок и сообщений валидации в едином формате.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/avtoradar/marketplace-api/internal/lib/apperr"
)

// Response описывает стандартную структуру JSON‑ответа сервера.
// Поле Status — статус запроса ("OK" или "Error").
// Поле Error — текст ошибки (опционально, при неуспехе).
// Поле Data — данные ответа (опционально, при успехе).
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// ErrorResponse — структура ошибки для Swagger-документации.
// Используется в аннотациях @Failure как возвращаемый тип ошибки.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid request body"`
}

const (
	// StatusOK — значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError — значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// StatusOKWithData возвращает успешный Response с переданными данными.
func StatusOKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) ErrorResponse {
	return ErrorResponse{
		Status: StatusError,
		Error:  msg,
	}
}

// ValidationError формирует Response со статусом Error на основе ошибок валидации.
// Каждое нарушение формируется в человеко‑читаемый текст, объединённый через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "min":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is too short", err.Field()))
		case "gt", "gte":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is out of range", err.Field()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return Response{
		Status: StatusError,
		Error:  strings.Join(errsMsgs, ", "),
	}
}

// WriteError подбирает HTTP-статус по категории доменной ошибки и пишет
// JSON-ответ. Непредвиденные ошибки отдаются как "internal error" без
// деталей хранилища.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	if ve, ok := apperr.AsValidation(err); ok {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, Error(ve.Error()))
		return
	}

	switch {
	case errors.Is(err, apperr.ErrNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, Error("not found"))
	case errors.Is(err, apperr.ErrConflict), errors.Is(err, apperr.ErrInvalidState):
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, Error(trimOpPrefix(err)))
	case errors.Is(err, apperr.ErrForbidden):
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, Error(trimOpPrefix(err)))
	case errors.Is(err, apperr.ErrUnavailable):
		render.Status(r, http.StatusBadGateway)
		render.JSON(w, r, Error(trimOpPrefix(err)))
	default:
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, Error("internal error"))
	}
}

// trimOpPrefix убирает служебные префиксы вида "storage.CreateUser:" из
// текста ошибки, оставляя человеко-читаемую часть.
func trimOpPrefix(err error) string {
	parts := strings.Split(err.Error(), ": ")
	for len(parts) > 1 && strings.Contains(parts[0], ".") && !strings.Contains(parts[0], " ") {
		parts = parts[1:]
	}
	return strings.Join(parts, ": ")
}
