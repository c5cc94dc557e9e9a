// Package admins реализует административные HTTP-обработчики управления
// учётными записями администраторов. Создание и удаление супер-администраторов
// доступно только пользователям с ролью superadmin.
package admins

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

// Handler управляет административными HTTP-запросами по администраторам.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс сервисного слоя администрирования администраторов.
type Service interface {
	ListAdmins(ctx context.Context) ([]models.UserView, error)
	AddAdmin(ctx context.Context, req models.DummyUserCreate, actor adminservice.Actor) (*models.UserView, error)
	ToggleBlockAdmin(ctx context.Context, id string, actor adminservice.Actor) (*models.UserView, error)
	DeleteAdmin(ctx context.Context, id string, actor adminservice.Actor) error
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
// @Summary Список администраторов
// @Description Возвращает учётные записи с ролями admin и superadmin.
// @Tags Admin
// @Security BearerAuth
// @Produce  json
// @Success 200 {array} models.UserView "Список администраторов"
// @Router /admin/admins [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.admins.List"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	views, err := h.service.ListAdmins(r.Context())
	if err != nil {
		log.Error("failed to list admins", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Debug("admins listed", slog.Int("count", len(views)))
	render.JSON(w, r, response.StatusOKWithData(views))
}

// Create godoc
// @Summary Создать администратора
// @Description Создаёт учётную запись администратора; доступно только супер-администратору.
// @Tags Admin
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body models.DummyUserCreate true "Данные учётной записи"
// @Success 200 {object} models.UserView "Созданная учётная запись"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 409 {object} response.ErrorResponse "E-mail уже занят"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /admin/admins [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.admins.Create"
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

	view, err := h.service.AddAdmin(r.Context(), req, actor)
	if err != nil {
		log.Error("failed to create admin", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("admin created", slog.String("id", view.ID))
	render.JSON(w, r, response.StatusOKWithData(view))
}

// ToggleBlock godoc
// @Summary Заблокировать или разблокировать администратора
// @Description Переключает флаг блокировки администратора; собственную запись заблокировать нельзя.
// @Tags Admin
// @Security BearerAuth
// @Produce  json
// @Param id path string true "Идентификатор администратора"
// @Success 200 {object} models.UserView "Учётная запись после переключения"
// @Failure 403 {object} response.ErrorResponse "Операция запрещена"
// @Failure 404 {object} response.ErrorResponse "Администратор не найден"
// @Router /admin/admins/{id}/toggle-block [post]
func (h *Handler) ToggleBlock(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.admins.ToggleBlock"
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
	view, err := h.service.ToggleBlockAdmin(r.Context(), id, actor)
	if err != nil {
		log.Error("failed to toggle block", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("admin block toggled", slog.String("id", id), slog.Bool("is_blocked", view.IsBlocked))
	render.JSON(w, r, response.StatusOKWithData(view))
}

// Delete godoc
// @Summary Удалить администратора
// @Description Удаляет учётную запись администратора вместе с выданными правами.
// @Tags Admin
// @Security BearerAuth
// @Produce  json
// @Param id path string true "Идентификатор администратора"
// @Success 200 {object} response.Response "Учётная запись удалена"
// @Failure 403 {object} response.ErrorResponse "Операция запрещена"
// @Failure 404 {object} response.ErrorResponse "Администратор не найден"
// @Router /admin/admins/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.admins.Delete"
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
	if err := h.service.DeleteAdmin(r.Context(), id, actor); err != nil {
		log.Error("failed to delete admin", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("admin deleted", slog.String("id", id))
	render.JSON(w, r, response.StatusOKWithData(nil))
}
