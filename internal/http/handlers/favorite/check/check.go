// Package check реализует HTTP-обработчик проверки наличия объявления
// в избранном пользователя.
package check

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

// Handler управляет HTTP-запросами проверки избранного.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики избранного.
type Service interface {
	IsFavorite(ctx context.Context, userID string, vehicleID int) (bool, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Проверить избранное
// @Description Сообщает, находится ли объявление в избранном пользователя.
// @Tags Favorites
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID объявления"
// @Success 200 {object} map[string]bool "Признак избранного"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Router /favorites/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.favorite.check"
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

	isFavorite, err := h.service.IsFavorite(r.Context(), userID, vehicleID)
	if err != nil {
		log.Error("failed to check favorite", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]bool{"is_favorite": isFavorite}))
}
