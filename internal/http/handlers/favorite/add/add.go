// Package add реализует HTTP-обработчик добавления объявления в избранное.
package add

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

// Handler управляет HTTP-запросами добавления в избранное.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики избранного.
type Service interface {
	Add(ctx context.Context, userID string, vehicleID int) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Добавить в избранное
// @Description Добавляет одобренное объявление в избранное пользователя.
// @Tags Favorites
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID объявления"
// @Success 200 {object} response.Response "Добавлено"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Объявление не найдено или не одобрено"
// @Failure 409 {object} response.ErrorResponse "Уже в избранном"
// @Router /favorites/{id} [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.favorite.add"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	vehicleID, err := strconv.Atoi(chi.URLParam(r, "id"))
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

	if err := h.service.Add(r.Context(), userID, vehicleID); err != nil {
		log.Error("failed to add favorite", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("favorite added", slog.Int("vehicle_id", vehicleID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"is_favorite": true}))
}
