// Package list реализует HTTP-обработчик получения списка объявлений с
// фильтрами и пагинацией.
//
// Не-администраторы видят только одобренные объявления; параметр my_posts
// переключает выдачу на собственные объявления запрашивающего в любом статусе.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/avtoradar/marketplace-api/internal/http/middlewarectx"
	"github.com/avtoradar/marketplace-api/internal/http/response"
	"github.com/avtoradar/marketplace-api/internal/lib/sl"
	"github.com/avtoradar/marketplace-api/internal/models"
	services "github.com/avtoradar/marketplace-api/internal/services/vehicle"
)

// Handler управляет HTTP-запросами списка объявлений.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики списка объявлений.
type Service interface {
	List(ctx context.Context, filter models.VehicleFilter, req services.Requester) ([]models.VehicleView, models.Pagination, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

func parseFilter(r *http.Request) models.VehicleFilter {
	q := r.URL.Query()
	filter := models.VehicleFilter{
		Search:       q.Get("search"),
		Type:         q.Get("type"),
		FuelType:     q.Get("fuel_type"),
		Transmission: q.Get("transmission"),
	}
	if v, err := strconv.ParseFloat(q.Get("min_price"), 64); err == nil {
		filter.MinPrice = &v
	}
	if v, err := strconv.ParseFloat(q.Get("max_price"), 64); err == nil {
		filter.MaxPrice = &v
	}
	if v, err := strconv.Atoi(q.Get("min_year")); err == nil {
		filter.MinYear = &v
	}
	if v, err := strconv.Atoi(q.Get("max_year")); err == nil {
		filter.MaxYear = &v
	}
	if v, err := strconv.Atoi(q.Get("page")); err == nil {
		filter.Page = v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = v
	}
	filter.MyPosts = q.Get("my_posts") == "true"
	return filter
}

// ServeHTTP godoc
// @Summary Список объявлений
// @Description Возвращает страницу объявлений по фильтрам. Статус доступен только администраторам.
// @Tags Vehicles
// @Produce  json
// @Param search query string false "Поиск по названию, марке, модели и описанию"
// @Param type query string false "Тип транспорта"
// @Param fuel_type query string false "Тип топлива"
// @Param transmission query string false "Коробка передач"
// @Param min_price query number false "Цена от"
// @Param max_price query number false "Цена до"
// @Param min_year query int false "Год от"
// @Param max_year query int false "Год до"
// @Param status query string false "Статус (только администраторам)"
// @Param my_posts query bool false "Только мои объявления"
// @Param page query int false "Номер страницы"
// @Param limit query int false "Размер страницы (не более 100)"
// @Success 200 {object} map[string]any "Объявления и пагинация"
// @Failure 422 {object} response.ErrorResponse "Некорректный статус"
// @Router /vehicles [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.vehicle.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	filter := parseFilter(r)
	userID, _ := r.Context().Value(middlewarectx.UserID).(string)
	role, _ := r.Context().Value(middlewarectx.Role).(string)
	requester := services.Requester{ID: userID, Role: role}

	if raw := r.URL.Query().Get("status"); raw != "" && models.IsAdminRole(role) {
		status, err := models.ParseVehicleStatus(raw)
		if err != nil {
			log.Error("invalid status filter", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("unknown status value"))
			return
		}
		filter.Status = &status
	}

	if filter.MyPosts && userID == "" {
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	views, pagination, err := h.service.List(r.Context(), filter, requester)
	if err != nil {
		log.Error("failed to list vehicles", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"vehicles":   views,
		"pagination": pagination,
	}))
}
