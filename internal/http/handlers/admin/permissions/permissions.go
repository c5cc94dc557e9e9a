// Package permissions реализует административные HTTP-обработчики прав
// доступа администраторов. Выдача прав доступна только супер-администратору;
// супер-администратор обходит проверки прав.
package permissions

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/avtoradar/marketplace-api/internal/http/middlewarectx"
	"github.com/avtoradar/marketplace-api/internal/http/response"
	"github.com/avtoradar/marketplace-api/internal/lib/sl"
	"github.com/avtoradar/marketplace-api/internal/models"
	adminservice "github.com/avtoradar/marketplace-api/internal/services/admin"
)

// Handler управляет административными HTTP-запросами прав доступа.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс сервисного слоя прав доступа.
type Service interface {
	ListPermissions(ctx context.Context) ([]models.AdminPermission, error)
	MyPermissions(ctx context.Context, actor adminservice.Actor) ([]models.AdminPermission, bool, error)
	GrantPermissions(ctx context.Context, req models.DummyPermission, actor adminservice.Actor) error
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
// @Summary Все выданные права
// @Description Возвращает права всех администраторов.
// @Tags Admin
// @Security BearerAuth
// @Produce  json
// @Success 200 {array} models.AdminPermission "Список прав"
// @Router /admin/permissions [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.permissions.List"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	perms, err := h.service.ListPermissions(r.Context())
	if err != nil {
		log.Error("failed to list permissions", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Debug("permissions listed", slog.Int("count", len(perms)))
	render.JSON(w, r, response.StatusOKWithData(perms))
}

// Mine godoc
// @Summary Мои права
// @Description Возвращает права текущего администратора; для супер-администратора возвращается признак полного доступа.
// @Tags Admin
// @Security BearerAuth
// @Produce  json
// @Success 200 {object} response.Response "Права и признак полного доступа"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Router /admin/permissions/me [get]
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.permissions.Mine"
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

	perms, superadmin, err := h.service.MyPermissions(r.Context(), actor)
	if err != nil {
		log.Error("failed to get permissions", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Debug("permissions fetched", slog.Int("count", len(perms)), slog.Bool("superadmin", superadmin))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"permissions": perms,
		"superadmin":  superadmin,
	}))
}

// Grant godoc
// @Summary Выдать права администратору
// @Description Создаёт или обновляет права администратора на функции; доступно только супер-администратору.
// @Tags Admin
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body models.DummyPermission true "Администратор и права"
// @Success 200 {object} response.Response "Права выданы"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Администратор не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /admin/permissions [post]
func (h *Handler) Grant(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.permissions.Grant"
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

	var req models.DummyPermission
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

	if err := h.service.GrantPermissions(r.Context(), req, actor); err != nil {
		log.Error("failed to grant permissions", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("permissions granted", slog.String("admin_id", req.AdminID))
	render.JSON(w, r, response.StatusOKWithData(nil))
}
