// Package predict реализует HTTP-обработчик предсказания цены объявления
// через внешний ML-сервис. Доступно только для легковых автомобилей,
// горизонт предсказания от 0 до 5 лет.
package predict

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/avtoradar/marketplace-api/internal/http/response"
	"github.com/avtoradar/marketplace-api/internal/lib/sl"
	"github.com/avtoradar/marketplace-api/internal/models"
	services "github.com/avtoradar/marketplace-api/internal/services/vehicle"
)

// Handler управляет HTTP-запросами предсказания цены.
type Handler struct {
	log      *slog.Logger
	service  Service
	features FeatureReader
}

// Service описывает интерфейс бизнес-логики предсказания цены.
type Service interface {
	Predict(ctx context.Context, vehicleID, yearsAhead int) (*services.PredictionResult, error)
}

// FeatureReader отдаёт действующие флаги функциональности.
type FeatureReader interface {
	Features(ctx context.Context) models.FeatureSettings
}

// New создает новый Handler с переданными логгером и сервисами.
func New(log *slog.Logger, service Service, features FeatureReader) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		features: features,
	}
}

type request struct {
	YearsAhead int `json:"years_ahead"`
}

// ServeHTTP godoc
// @Summary Предсказать цену
// @Description Запрашивает у ML-сервиса предсказание цены автомобиля на несколько лет вперёд.
// @Tags Vehicles
// @Accept  json
// @Produce  json
// @Param id path int true "ID объявления"
// @Param request body request true "Горизонт предсказания в годах (0-5)"
// @Success 200 {object} services.PredictionResult "Предсказание с разницей к текущей цене"
// @Failure 403 {object} response.ErrorResponse "Предсказание цены отключено"
// @Failure 404 {object} response.ErrorResponse "Объявление не найдено"
// @Failure 422 {object} response.ErrorResponse "Недопустимый горизонт или тип транспорта"
// @Failure 502 {object} response.ErrorResponse "ML-сервис недоступен"
// @Router /vehicles/{id}/predict-price [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.vehicle.predict"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if !h.features.Features(r.Context()).PricePrediction {
		log.Warn("price prediction is disabled")
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, response.Error("price prediction is temporarily disabled"))
		return
	}

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("invalid vehicle id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid vehicle id"))
		return
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	result, err := h.service.Predict(r.Context(), id, req.YearsAhead)
	if err != nil {
		log.Error("failed to predict price", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("price predicted", slog.Int("vehicle_id", id), slog.Int("years_ahead", req.YearsAhead))
	render.JSON(w, r, response.StatusOKWithData(result))
}
