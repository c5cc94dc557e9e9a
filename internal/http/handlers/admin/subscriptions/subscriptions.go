// Package subscriptions реализует административный HTTP-обработчик списка
// всех подписок.
package subscriptions

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/avtoradar/marketplace-api/internal/http/response"
	"github.com/avtoradar/marketplace-api/internal/lib/sl"
	"github.com/avtoradar/marketplace-api/internal/models"
)

// Handler управляет административными HTTP-запросами по подпискам.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс сервисного слоя подписок.
type Service interface {
	ListAll(ctx context.Context) ([]models.SubscriptionView, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// List godoc
// @Summary Список подписок
// @Description Возвращает все подписки с данными владельцев и производным статусом, новые первыми.
// @Tags Admin
// @Security BearerAuth
// @Produce  json
// @Success 200 {array} models.SubscriptionView "Список подписок"
// @Router /admin/subscriptions [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.subscriptions.List"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	views, err := h.service.ListAll(r.Context())
	if err != nil {
		log.Error("failed to list subscriptions", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Debug("subscriptions listed", slog.Int("count", len(views)))
	render.JSON(w, r, response.StatusOKWithData(views))
}
