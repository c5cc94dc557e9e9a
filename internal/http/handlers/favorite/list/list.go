// Package list реализует HTTP-обработчик получения избранных объявлений
// пользователя. В выдачу попадают только одобренные объявления.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/avtoradar/marketplace-api/internal/http/middlewarectx"
	"github.com/avtoradar/marketplace-api/internal/http/response"
	"github.com/avtoradar/marketplace-api/internal/lib/sl"
	"github.com/avtoradar/marketplace-api/internal/models"
)

// Handler управляет HTTP-запросами списка избранного.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики избранного.
type Service interface {
	ListForUser(ctx context.Context, userID string) ([]models.VehicleView, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список избранного
// @Description Возвращает одобренные объявления из избранного пользователя, недавно добавленные первыми.
// @Tags Favorites
// @Produce  json
// @Security BearerAuth
// @Success 200 {array} models.VehicleView "Избранные объявления"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Router /favorites [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.favorite.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := r.Context().Value(middlewarectx.UserID).(string)
	if !ok || userID == "" {
		log.Error("user id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	views, err := h.service.ListForUser(r.Context(), userID)
	if err != nil {
		log.Error("failed to list favorites", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(views))
}
