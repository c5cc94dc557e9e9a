// Package create реализует HTTP-обработчик покупки подписки.
//
// Повторная покупка при действующей подписке отклоняется. Покупка pro-тарифов
// может быть отключена флагом функциональности.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/avtoradar/marketplace-api/internal/http/middlewarectx"
	"github.com/avtoradar/marketplace-api/internal/http/response"
	"github.com/avtoradar/marketplace-api/internal/lib/sl"
	"github.com/avtoradar/marketplace-api/internal/models"
)

// Handler управляет HTTP-запросами покупки подписки.
type Handler struct {
	log      *slog.Logger
	service  Service
	features FeatureReader
}

// Service описывает интерфейс бизнес-логики покупки подписки.
type Service interface {
	Purchase(ctx context.Context, userID string, req models.DummyPurchase) (*models.SubscriptionView, error)
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

// ServeHTTP godoc
// @Summary Купить подписку
// @Description Оформляет подписку на месяц по тарифу. Цена и лимит публикаций копируются из тарифа на момент покупки.
// @Tags Subscriptions
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.DummyPurchase true "Тариф и способ оплаты"
// @Success 200 {object} models.SubscriptionView "Оформленная подписка"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Покупка pro-тарифов отключена"
// @Failure 404 {object} response.ErrorResponse "Тариф не найден"
// @Failure 409 {object} response.ErrorResponse "Подписка уже действует"
// @Failure 422 {object} response.ErrorResponse "Не указан тариф"
// @Router /subscriptions [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyPurchase
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if strings.EqualFold(req.PlanType, "pro") && !h.features.Features(r.Context()).ProPlanActivation {
		log.Warn("pro plan activation is disabled")
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, response.Error("pro plan activation is temporarily disabled"))
		return
	}

	userID, ok := r.Context().Value(middlewarectx.UserID).(string)
	if !ok || userID == "" {
		log.Error("user id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	view, err := h.service.Purchase(r.Context(), userID, req)
	if err != nil {
		log.Error("failed to purchase subscription", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("subscription purchased", slog.String("id", view.ID))
	render.JSON(w, r, response.StatusOKWithData(view))
}
