// Package remove реализует HTTP-обработчик удаления объявления владельцем.
// Удаление доступно только для собственных объявлений в статусе pending.
package remove

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/avtoradar/marketplace-api/internal/http/middlewarectx"
	"github.com/avtoradar/marketplace-api/internal/http/response"
	"github.com/avtoradar/marketplace-api/internal/lib/sl"
)

// Handler управляет HTTP-запросами удаления объявлений.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики удаления объявления.
type Service interface {
	Delete(ctx context.Context, id int, requesterID string) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Удалить объявление
// @Description Удаляет собственное объявление в статусе pending вместе с записями избранного.
// @Tags Vehicles
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID объявления"
// @Success 200 {object} response.Response "Объявление удалено"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Объявление не найдено или чужое"
// @Failure 409 {object} response.ErrorResponse "Объявление уже прошло модерацию"
// @Router /vehicles/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.vehicle.remove"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("invalid vehicle id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid vehicle id"))
		return
	}

	userID, ok := r.Context().Value(middlewarectx.UserID).(string)
	if !ok || userID == "" {
		log.Error("user id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	if err := h.service.Delete(r.Context(), id, userID); err != nil {
		log.Error("failed to delete vehicle", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("vehicle deleted", slog.Int("id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"deleted_id": id}))
}
