// Package read реализует HTTP-обработчик получения одного объявления.
package read

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
	"github.com/avtoradar/marketplace-api/internal/models"
	services "github.com/avtoradar/marketplace-api/internal/services/vehicle"
)

// Handler управляет HTTP-запросами чтения объявления.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения объявления.
type Service interface {
	GetByID(ctx context.Context, id int, req services.Requester) (*models.VehicleView, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить объявление
// @Description Возвращает объявление по идентификатору. E-mail владельца виден владельцу и администраторам.
// @Tags Vehicles
// @Produce  json
// @Param id path int true "ID объявления"
// @Success 200 {object} models.VehicleView "Объявление"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 404 {object} response.ErrorResponse "Объявление не найдено"
// @Router /vehicles/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.vehicle.read"
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

	userID, _ := r.Context().Value(middlewarectx.UserID).(string)
	role, _ := r.Context().Value(middlewarectx.Role).(string)

	view, err := h.service.GetByID(r.Context(), id, services.Requester{ID: userID, Role: role})
	if err != nil {
		log.Error("failed to read vehicle", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(view))
}
