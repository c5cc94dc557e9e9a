// Package markread реализует HTTP-обработчик отметки уведомления прочитанным.
package markread

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/avtoradar/marketplace-api/internal/http/middlewarectx"
	"github.com/avtoradar/marketplace-api/internal/http/response"
	"github.com/avtoradar/marketplace-api/internal/lib/sl"
)

// Handler управляет HTTP-запросами отметки уведомлений.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс сервисного слоя для уведомлений.
type Service interface {
	MarkRead(ctx context.Context, id, userID string) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Отметить уведомление прочитанным
// @Description Помечает уведомление текущего пользователя как прочитанное.
// @Tags Notifications
// @Security BearerAuth
// @Produce  json
// @Param id path string true "Идентификатор уведомления"
// @Success 200 {object} response.Response "Уведомление отмечено"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Уведомление не найдено"
// @Router /notifications/{id}/read [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.notification.markread"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := r.Context().Value(middlewarectx.UserID).(string)
	if !ok || userID == "" {
		log.Warn("user id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		log.Warn("notification id is empty")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("notification id is required"))
		return
	}

	if err := h.service.MarkRead(r.Context(), id, userID); err != nil {
		log.Error("failed to mark notification read", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("notification marked read", slog.String("id", id))
	render.JSON(w, r, response.StatusOKWithData(nil))
}
