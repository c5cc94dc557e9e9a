// Package settings реализует административные HTTP-обработчики платформенных
// настроек и флагов функциональности.
package settings

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/avtoradar/marketplace-api/internal/http/response"
	"github.com/avtoradar/marketplace-api/internal/lib/sl"
	"github.com/avtoradar/marketplace-api/internal/models"
)

// Handler управляет административными HTTP-запросами настроек.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс сервисного слоя настроек.
type Service interface {
	ListAll(ctx context.Context) ([]models.Setting, error)
	Put(ctx context.Context, settings []models.Setting) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

type putRequest struct {
	Settings []models.Setting `json:"settings" validate:"required,min=1"`
}

// List godoc
// @Summary Список настроек
// @Description Возвращает все сохранённые пары ключ-значение настроек платформы.
// @Tags Admin
// @Security BearerAuth
// @Produce  json
// @Success 200 {array} models.Setting "Список настроек"
// @Router /admin/settings [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.settings.List"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	settings, err := h.service.ListAll(r.Context())
	if err != nil {
		log.Error("failed to list settings", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Debug("settings listed", slog.Int("count", len(settings)))
	render.JSON(w, r, response.StatusOKWithData(settings))
}

// Put godoc
// @Summary Сохранить настройки
// @Description Создаёт или обновляет переданные пары ключ-значение; настройки применяются со следующего запроса.
// @Tags Admin
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body putRequest true "Пары ключ-значение"
// @Success 200 {object} response.Response "Настройки сохранены"
// @Failure 422 {object} response.ErrorResponse "Пустой список настроек"
// @Router /admin/settings [put]
func (h *Handler) Put(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.settings.Put"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req putRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("invalid request", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	if err := h.service.Put(r.Context(), req.Settings); err != nil {
		log.Error("failed to save settings", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("settings saved", slog.Int("count", len(req.Settings)))
	render.JSON(w, r, response.StatusOKWithData(nil))
}
