// Package vehicles реализует административные HTTP-обработчики модерации
// объявлений: табличный список, создание от имени пользователя, произвольное
// редактирование, смена статуса и массовые операции.
package vehicles

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/avtoradar/marketplace-api/internal/http/response"
	"github.com/avtoradar/marketplace-api/internal/lib/sl"
	"github.com/avtoradar/marketplace-api/internal/models"
)

// Handler управляет административными HTTP-запросами по объявлениям.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс сервисного слоя модерации объявлений.
type Service interface {
	AdminTable(ctx context.Context) ([]models.VehicleTableRow, error)
	AdminCreateForUser(ctx context.Context, req models.DummyVehicle, ownerID string, status string) (*models.VehicleView, error)
	AdminUpdate(ctx context.Context, id int, req models.DummyVehicleUpdate) (*models.VehicleView, error)
	AdminSetStatus(ctx context.Context, id int, status models.VehicleStatus) error
	AdminBulkSetStatus(ctx context.Context, ids []int, status models.VehicleStatus) error
	AdminBulkDelete(ctx context.Context, ids []int) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

type createRequest struct {
	models.DummyVehicle
	UserID string `json:"user_id" validate:"required"`
	Status string `json:"status,omitempty"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

type bulkStatusRequest struct {
	IDs    []int  `json:"ids" validate:"required,min=1"`
	Status string `json:"status" validate:"required"`
}

type bulkDeleteRequest struct {
	IDs []int `json:"ids" validate:"required,min=1"`
}

// Table godoc
// @Summary Таблица объявлений
// @Description Возвращает облегчённую проекцию всех объявлений для админ-панели, e-mail владельца всегда заполнен.
// @Tags Admin
// @Security BearerAuth
// @Produce  json
// @Success 200 {array} models.VehicleTableRow "Таблица объявлений"
// @Router /admin/vehicles [get]
func (h *Handler) Table(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.vehicles.Table"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	rows, err := h.service.AdminTable(r.Context())
	if err != nil {
		log.Error("failed to list vehicle table", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Debug("vehicle table listed", slog.Int("count", len(rows)))
	render.JSON(w, r, response.StatusOKWithData(rows))
}

// Create godoc
// @Summary Создать объявление от имени пользователя
// @Description Создаёт объявление для указанного пользователя, при необходимости сразу в заданном статусе.
// @Tags Admin
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body createRequest true "Данные объявления и владелец"
// @Success 200 {object} models.VehicleView "Созданное объявление"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /admin/vehicles [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.vehicles.Create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req createRequest
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

	view, err := h.service.AdminCreateForUser(r.Context(), req.DummyVehicle, req.UserID, req.Status)
	if err != nil {
		log.Error("failed to create vehicle", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("vehicle created for user", slog.Int("id", view.ID), slog.String("user_id", req.UserID))
	render.JSON(w, r, response.StatusOKWithData(view))
}

// Update godoc
// @Summary Обновить объявление
// @Description Редактирует любое объявление независимо от владельца и статуса, включая смену статуса.
// @Tags Admin
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param id path int true "ID объявления"
// @Param request body models.DummyVehicleUpdate true "Изменяемые поля"
// @Success 200 {object} models.VehicleView "Обновлённое объявление"
// @Failure 404 {object} response.ErrorResponse "Объявление не найдено"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /admin/vehicles/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.vehicles.Update"
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

	view, err := h.service.AdminUpdate(r.Context(), id, req)
	if err != nil {
		log.Error("failed to update vehicle", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("vehicle updated", slog.Int("id", id))
	render.JSON(w, r, response.StatusOKWithData(view))
}

// SetStatus godoc
// @Summary Сменить статус объявления
// @Description Переводит объявление в указанный статус модерации и уведомляет владельца.
// @Tags Admin
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param id path int true "ID объявления"
// @Param request body statusRequest true "Новый статус"
// @Success 200 {object} response.Response "Статус изменён"
// @Failure 404 {object} response.ErrorResponse "Объявление не найдено"
// @Failure 422 {object} response.ErrorResponse "Неизвестный статус"
// @Router /admin/vehicles/{id}/status [post]
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.vehicles.SetStatus"
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

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	status, err := models.ParseVehicleStatus(req.Status)
	if err != nil {
		log.Error("unknown status value", slog.String("status", req.Status))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("unknown status value"))
		return
	}

	if err := h.service.AdminSetStatus(r.Context(), id, status); err != nil {
		log.Error("failed to set status", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("vehicle status set", slog.Int("id", id), slog.String("status", string(status)))
	render.JSON(w, r, response.StatusOKWithData(nil))
}

// BulkSetStatus godoc
// @Summary Массовая смена статуса
// @Description Переводит набор объявлений в указанный статус; сбой по одному объявлению не прерывает остальные.
// @Tags Admin
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body bulkStatusRequest true "Идентификаторы и статус"
// @Success 200 {object} response.Response "Статусы изменены"
// @Failure 422 {object} response.ErrorResponse "Неизвестный статус или пустой список"
// @Router /admin/vehicles/bulk-status [post]
func (h *Handler) BulkSetStatus(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.vehicles.BulkSetStatus"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req bulkStatusRequest
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

	status, err := models.ParseVehicleStatus(req.Status)
	if err != nil {
		log.Error("unknown status value", slog.String("status", req.Status))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("unknown status value"))
		return
	}

	if err := h.service.AdminBulkSetStatus(r.Context(), req.IDs, status); err != nil {
		log.Error("failed to bulk set status", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("vehicle statuses set", slog.Int("count", len(req.IDs)), slog.String("status", string(status)))
	render.JSON(w, r, response.StatusOKWithData(nil))
}

// BulkDelete godoc
// @Summary Массовое удаление объявлений
// @Description Удаляет набор объявлений вместе с записями избранного.
// @Tags Admin
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body bulkDeleteRequest true "Идентификаторы объявлений"
// @Success 200 {object} response.Response "Объявления удалены"
// @Failure 422 {object} response.ErrorResponse "Пустой список идентификаторов"
// @Router /admin/vehicles/bulk-delete [post]
func (h *Handler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.vehicles.BulkDelete"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req bulkDeleteRequest
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

	if err := h.service.AdminBulkDelete(r.Context(), req.IDs); err != nil {
		log.Error("failed to bulk delete vehicles", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("vehicles deleted", slog.Int("count", len(req.IDs)))
	render.JSON(w, r, response.StatusOKWithData(nil))
}
