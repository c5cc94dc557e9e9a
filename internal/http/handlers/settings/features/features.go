// Package features реализует публичный HTTP-обработчик получения флагов
// функциональности. Ошибки чтения хранилища не отдаются наружу: в этом
// случае клиент получает значения по умолчанию.
package features

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/avtoradar/marketplace-api/internal/http/response"
	"github.com/avtoradar/marketplace-api/internal/models"
)

// Handler управляет HTTP-запросами флагов функциональности.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс чтения флагов функциональности.
type Service interface {
	Features(ctx context.Context) models.FeatureSettings
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Флаги функциональности
// @Description Возвращает действующие флаги: регистрация, предсказание цены, pro-тарифы, режим обслуживания.
// @Tags Settings
// @Produce  json
// @Success 200 {object} models.FeatureSettings "Действующие флаги"
// @Router /settings/features [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.settings.features"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	features := h.service.Features(r.Context())
	log.Debug("features loaded")
	render.JSON(w, r, response.StatusOKWithData(features))
}
