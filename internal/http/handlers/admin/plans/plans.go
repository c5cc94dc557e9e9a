// Package plans реализует административные HTTP-обработчики управления
// тарифами подписки.
package plans

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/avtoradar/marketplace-api/internal/http/response"
	"github.com/avtoradar/marketplace-api/internal/lib/sl"
	"github.com/avtoradar/marketplace-api/internal/models"
)

// Handler управляет административными HTTP-запросами по тарифам.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс сервисного слоя управления тарифами.
type Service interface {
	CreatePlan(ctx context.Context, req models.DummyPlan) (*models.PlanView, error)
	UpdatePlan(ctx context.Context, id string, req models.DummyPlanPatch) (*models.PlanView, error)
	DeletePlan(ctx context.Context, id string) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// Create godoc
// @Summary Создать тариф
// @Description Создаёт тариф подписки; без явного флага тариф создаётся активным.
// @Tags Admin
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body models.DummyPlan true "Данные тарифа"
// @Success 200 {object} models.PlanView "Созданный тариф"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /admin/plans [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.plans.Create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyPlan
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

	view, err := h.service.CreatePlan(r.Context(), req)
	if err != nil {
		log.Error("failed to create plan", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("plan created", slog.String("id", view.ID))
	render.JSON(w, r, response.StatusOKWithData(view))
}

// Update godoc
// @Summary Обновить тариф
// @Description Частично обновляет тариф; уже купленные подписки сохраняют снимок прежних условий.
// @Tags Admin
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param id path string true "Идентификатор тарифа"
// @Param request body models.DummyPlanPatch true "Изменяемые поля"
// @Success 200 {object} models.PlanView "Обновлённый тариф"
// @Failure 404 {object} response.ErrorResponse "Тариф не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /admin/plans/{id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.plans.Update"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")

	var req models.DummyPlanPatch
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	view, err := h.service.UpdatePlan(r.Context(), id, req)
	if err != nil {
		log.Error("failed to update plan", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("plan updated", slog.String("id", id))
	render.JSON(w, r, response.StatusOKWithData(view))
}

// Delete godoc
// @Summary Удалить тариф
// @Description Удаляет тариф; существующие подписки продолжают действовать по своему снимку условий.
// @Tags Admin
// @Security BearerAuth
// @Produce  json
// @Param id path string true "Идентификатор тарифа"
// @Success 200 {object} response.Response "Тариф удалён"
// @Failure 404 {object} response.ErrorResponse "Тариф не найден"
// @Router /admin/plans/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.plans.Delete"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	if err := h.service.DeletePlan(r.Context(), id); err != nil {
		log.Error("failed to delete plan", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("plan deleted", slog.String("id", id))
	render.JSON(w, r, response.StatusOKWithData(nil))
}
