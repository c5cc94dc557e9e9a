// Package update реализует HTTP-обработчик частичного обновления объявления
// владельцем. Обновление доступно только для собственных объявлений в
// статусе pending; незаполненные поля сохраняют прежние значения.
package update

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/avtoradar/marketplace-api/internal/http/middlewarectx"
	"github.com/avtoradar/marketplace-api/internal/http/response"
	"github.com/avtoradar/marketplace-api/internal/lib/sl"
	"github.com/avtoradar/marketplace-api/internal/models"
)

// Handler управляет HTTP-запросами обновления объявлений.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики обновления объявления.
type Service interface {
	Update(ctx context.Context, id int, req models.DummyVehicleUpdate, requesterID string) (*models.VehicleView, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Обновить объявление
// @Description Частично обновляет собственное объявление в статусе pending.
// @Tags Vehicles
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID объявления"
// @Param request body models.DummyVehicleUpdate true "Изменяемые поля"
// @Success 200 {object} models.VehicleView "Обновлённое объявление"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Объявление не найдено или чужое"
// @Failure 409 {object} response.ErrorResponse "Объявление уже прошло модерацию"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /vehicles/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.vehicle.update"
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

	var req models.DummyVehicleUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	userID, ok := r.Context().Value(middlewarectx.UserID).(string)
	if !ok || userID == "" {
		log.Error("user id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	view, err := h.service.Update(r.Context(), id, req, userID)
	if err != nil {
		log.Error("failed to update vehicle", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("vehicle updated", slog.Int("id", id))
	render.JSON(w, r, response.StatusOKWithData(view))
}
