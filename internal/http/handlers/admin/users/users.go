// Package users реализует административные HTTP-обработчики управления
// пользователями: список, карточка, создание, обновление, блокировка и
// удаление учётных записей с ролью user.
package users

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/avtoradar/marketplace-api/internal/http/middlewarectx"
	"github.com/avtoradar/marketplace-api/internal/http/response"
	"github.com/avtoradar/marketplace-api/internal/lib/sl"
	"github.com/avtoradar/marketplace-api/internal/models"
	adminservice "github.com/avtoradar/marketplace-api/internal/services/admin"
)

// Handler управляет административными HTTP-запросами по пользователям.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс сервисного слоя администрирования пользователей.
type Service interface {
	ListUsers(ctx context.Context) ([]models.UserView, error)
	GetUser(ctx context.Context, id string) (*adminservice.UserDetail, error)
	AddUser(ctx context.Context, req models.DummyUserCreate) (*models.UserView, error)
	UpdateUser(ctx context.Context, id string, req models.DummyUserUpdate) (*models.UserView, error)
	ToggleBlockUser(ctx context.Context, id string, actor adminservice.Actor) (*models.UserView, error)
	DeleteUser(ctx context.Context, id string, actor adminservice.Actor) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

func actorFrom(r *http.Request) (adminservice.Actor, bool) {
	id, ok := r.Context().Value(middlewarectx.UserID).(string)
	if !ok || id == "" {
		return adminservice.Actor{}, false
	}
	role, _ := r.Context().Value(middlewarectx.Role).(string)
	return adminservice.Actor{ID: id, Role: role}, true
}

// List godoc
// @Summary Список пользователей
// @Description Возвращает все учётные записи с ролью user, новые первыми.
// @Tags Admin
// @Security BearerAuth
// @Produce  json
// @Success 200 {array} models.UserView "Список пользователей"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Router /admin/users [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.users.List"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	views, err := h.service.ListUsers(r.Context())
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Debug("users listed", slog.Int("count", len(views)))
	render.JSON(w, r, response.StatusOKWithData(views))
}

// Get godoc
// @Summary Карточка пользователя
// @Description Возвращает учётную запись и счётчики её объявлений, избранного и подписок.
// @Tags Admin
// @Security BearerAuth
// @Produce  json
// @Param id path string true "Идентификатор пользователя"
// @Success 200 {object} adminservice.UserDetail "Карточка пользователя"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Router /admin/users/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.users.Get"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	detail, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		log.Error("failed to get user", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Debug("user fetched", slog.String("id", id))
	render.JSON(w, r, response.StatusOKWithData(detail))
}

// Create godoc
// @Summary Создать пользователя
// @Description Создаёт учётную запись; без явной роли создаётся обычный пользователь.
// @Tags Admin
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body models.DummyUserCreate true "Данные учётной записи"
// @Success 200 {object} models.UserView "Созданная учётная запись"
// @Failure 409 {object} response.ErrorResponse "E-mail уже занят"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /admin/users [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.users.Create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyUserCreate
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

	view, err := h.service.AddUser(r.Context(), req)
	if err != nil {
		log.Error("failed to create user", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("user created", slog.String("id", view.ID))
	render.JSON(w, r, response.StatusOKWithData(view))
}

// Update godoc
// @Summary Обновить пользователя
// @Description Частично обновляет учётную запись обычного пользователя; пустые поля не меняются.
// @Tags Admin
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param id path string true "Идентификатор пользователя"
// @Param request body models.DummyUserUpdate true "Изменяемые поля"
// @Success 200 {object} models.UserView "Обновлённая учётная запись"
// @Failure 403 {object} response.ErrorResponse "Учётная запись не является пользовательской"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Router /admin/users/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.users.Update"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")

	var req models.DummyUserUpdate
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

	view, err := h.service.UpdateUser(r.Context(), id, req)
	if err != nil {
		log.Error("failed to update user", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("user updated", slog.String("id", id))
	render.JSON(w, r, response.StatusOKWithData(view))
}

// ToggleBlock godoc
// @Summary Заблокировать или разблокировать пользователя
// @Description Переключает флаг блокировки учётной записи; собственную запись заблокировать нельзя.
// @Tags Admin
// @Security BearerAuth
// @Produce  json
// @Param id path string true "Идентификатор пользователя"
// @Success 200 {object} models.UserView "Учётная запись после переключения"
// @Failure 403 {object} response.ErrorResponse "Операция запрещена"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Router /admin/users/{id}/toggle-block [post]
func (h *Handler) ToggleBlock(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.users.ToggleBlock"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, ok := actorFrom(r)
	if !ok {
		log.Error("user id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	id := chi.URLParam(r, "id")
	view, err := h.service.ToggleBlockUser(r.Context(), id, actor)
	if err != nil {
		log.Error("failed to toggle block", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("user block toggled", slog.String("id", id), slog.Bool("is_blocked", view.IsBlocked))
	render.JSON(w, r, response.StatusOKWithData(view))
}

// Delete godoc
// @Summary Удалить пользователя
// @Description Удаляет учётную запись вместе с её объявлениями, избранным, подписками и уведомлениями.
// @Tags Admin
// @Security BearerAuth
// @Produce  json
// @Param id path string true "Идентификатор пользователя"
// @Success 200 {object} response.Response "Учётная запись удалена"
// @Failure 403 {object} response.ErrorResponse "Операция запрещена"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Router /admin/users/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.users.Delete"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, ok := actorFrom(r)
	if !ok {
		log.Error("user id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.DeleteUser(r.Context(), id, actor); err != nil {
		log.Error("failed to delete user", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("user deleted", slog.String("id", id))
	render.JSON(w, r, response.StatusOKWithData(nil))
}
