// Package services содержит бизнес-логику подписок: каталог тарифов с
// кешированием, покупку с копией параметров тарифа, отмену и производный
// статус с учётом срока действия.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/avtoradar/marketplace-api/internal/lib/apperr"
	"github.com/avtoradar/marketplace-api/internal/lib/sl"
	"github.com/avtoradar/marketplace-api/internal/models"
	"github.com/avtoradar/marketplace-api/internal/storage/repository"
)

// SubscriptionRepository описывает контракт работы с подписками в хранилище.
type SubscriptionRepository interface {
	// CreateSubscription сохраняет новую подписку.
	CreateSubscription(ctx context.Context, sub models.Subscription) error
	// GetLatestSubscription возвращает самую позднюю подписку пользователя.
	GetLatestSubscription(ctx context.Context, userID string) (*models.Subscription, error)
	// GetUsableSubscription возвращает действующую подписку пользователя.
	GetUsableSubscription(ctx context.Context, userID string) (*models.Subscription, error)
	// CancelActiveSubscription отменяет действующую подписку пользователя.
	CancelActiveSubscription(ctx context.Context, userID string) error
	// ListSubscriptions возвращает все подписки с данными владельцев.
	ListSubscriptions(ctx context.Context) ([]repository.SubscriptionWithUser, error)
}

// PlanRepository описывает контракт работы с каталогом тарифов.
type PlanRepository interface {
	// ListActivePlans возвращает активные тарифы.
	ListActivePlans(ctx context.Context) ([]models.SubscriptionPlan, error)
	// GetPlanByID возвращает тариф по идентификатору или ErrNotFound.
	GetPlanByID(ctx context.Context, id string) (*models.SubscriptionPlan, error)
	// GetCheapestPlanByType возвращает самый дешёвый активный тариф типа.
	GetCheapestPlanByType(ctx context.Context, planType string) (*models.SubscriptionPlan, error)
	// CreatePlan сохраняет новый тариф.
	CreatePlan(ctx context.Context, plan models.SubscriptionPlan) error
	// UpdatePlan перезаписывает изменяемые поля тарифа.
	UpdatePlan(ctx context.Context, plan models.SubscriptionPlan) error
	// DeletePlan удаляет тариф из каталога.
	DeletePlan(ctx context.Context, id string) error
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// Notifier отправляет уведомление пользователю.
type Notifier interface {
	Notify(ctx context.Context, userID, ntype, title, message, entityID string)
}

const (
	plansCacheKey = "subscription_plans:active"
	plansCacheTTL = 10 * time.Minute
)

// SubscriptionService реализует операции над подписками и тарифами.
type SubscriptionService struct {
	subs     SubscriptionRepository
	plans    PlanRepository
	cache    Cache
	notifier Notifier
	log      *slog.Logger
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
func NewSubscriptionService(subs SubscriptionRepository, plans PlanRepository, cache Cache, notifier Notifier, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		subs:     subs,
		plans:    plans,
		cache:    cache,
		notifier: notifier,
		log:      log,
	}
}

func subscriptionView(sub *models.Subscription, now time.Time) models.SubscriptionView {
	features := []string{}
	return models.SubscriptionView{
		ID:            sub.ID,
		UserID:        sub.UserID,
		PlanType:      sub.PlanType,
		Status:        models.EffectiveStatus(sub, now),
		StartDate:     sub.StartDate,
		EndDate:       sub.EndDate,
		Price:         sub.Price,
		PaymentMethod: sub.PaymentMethod,
		TransactionID: sub.TransactionID,
		PostCount:     sub.PostCount,
		CreatedAt:     sub.CreatedAt,
		UpdatedAt:     sub.UpdatedAt,
		CancelledAt:   sub.CancelledAt,
		PlanFeatures:  features,
	}
}

// ListPlans возвращает активные тарифы, используя кеш каталога.
func (s *SubscriptionService) ListPlans(ctx context.Context) ([]models.PlanView, error) {
	var views []models.PlanView
	found, err := s.cache.Get(plansCacheKey, &views)
	if err != nil {
		s.log.Warn("failed to read plans from cache", sl.Err(err))
	}
	if found {
		return views, nil
	}

	plans, err := s.plans.ListActivePlans(ctx)
	if err != nil {
		return nil, err
	}
	views = make([]models.PlanView, 0, len(plans))
	for i := range plans {
		views = append(views, plans[i].View())
	}

	if err := s.cache.Set(plansCacheKey, views, plansCacheTTL); err != nil {
		s.log.Warn("failed to cache plans", sl.Err(err))
	}
	return views, nil
}

// SubscriptionStatus — ответ на запрос статуса подписки пользователя.
type SubscriptionStatus struct {
	Active       bool                     `json:"active"`
	Subscription *models.SubscriptionView `json:"subscription,omitempty"`
}

// GetStatus возвращает состояние последней подписки пользователя. Подписка
// со статусом active, но истекшим сроком действия отдаётся как неактивная
// без перезаписи в хранилище.
func (s *SubscriptionService) GetStatus(ctx context.Context, userID string) (*SubscriptionStatus, error) {
	sub, err := s.subs.GetLatestSubscription(ctx, userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return &SubscriptionStatus{Active: false}, nil
		}
		return nil, err
	}

	now := time.Now().UTC()
	view := subscriptionView(sub, now)
	return &SubscriptionStatus{
		Active:       sub.IsUsable(now),
		Subscription: &view,
	}, nil
}

func (s *SubscriptionService) resolvePlan(ctx context.Context, req models.DummyPurchase) (*models.SubscriptionPlan, error) {
	if req.PlanID != "" {
		return s.plans.GetPlanByID(ctx, req.PlanID)
	}
	if req.PlanType != "" {
		return s.plans.GetCheapestPlanByType(ctx, req.PlanType)
	}
	return nil, apperr.Validation("plan_id", "plan_id or plan_type is required")
}

// Purchase оформляет подписку на месяц. Цена и лимит публикаций копируются
// из тарифа на момент покупки: последующие изменения тарифа не влияют на
// уже купленные подписки. Повторная покупка при действующей подписке
// отклоняется с ErrConflict.
func (s *SubscriptionService) Purchase(ctx context.Context, userID string, req models.DummyPurchase) (*models.SubscriptionView, error) {
	plan, err := s.resolvePlan(ctx, req)
	if err != nil {
		return nil, err
	}

	existing, err := s.subs.GetUsableSubscription(ctx, userID)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("user already has an active subscription: %w", apperr.ErrConflict)
	}

	now := time.Now().UTC()
	status := models.SubscriptionActive
	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "card"
	}
	transactionID := req.TransactionID
	if transactionID == "" {
		transactionID = "txn-" + uuid.NewString()
	}

	sub := models.Subscription{
		ID:            "sub-" + uuid.NewString(),
		UserID:        userID,
		PlanType:      plan.PlanType,
		Status:        &status,
		StartDate:     now,
		EndDate:       now.AddDate(0, 1, 0),
		Price:         plan.Price,
		PaymentMethod: &paymentMethod,
		TransactionID: &transactionID,
		PostCount:     plan.PostCount,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.subs.CreateSubscription(ctx, sub); err != nil {
		return nil, err
	}
	s.log.Info("subscription purchased",
		slog.String("id", sub.ID), slog.String("plan_type", sub.PlanType))

	s.notifier.Notify(ctx, userID, models.NotificationSubscriptionPurchased,
		"Subscription activated",
		fmt.Sprintf("Your %s subscription is active until %s.", plan.Name, sub.EndDate.Format("2006-01-02")),
		sub.ID)

	view := subscriptionView(&sub, now)
	view.PlanName = plan.Name
	view.PlanFeatures = plan.Features
	return &view, nil
}

// Cancel отменяет действующую подписку пользователя.
func (s *SubscriptionService) Cancel(ctx context.Context, userID string) error {
	return s.subs.CancelActiveSubscription(ctx, userID)
}

// ListAll возвращает все подписки с данными владельцев для администратора.
func (s *SubscriptionService) ListAll(ctx context.Context) ([]models.SubscriptionView, error) {
	rows, err := s.subs.ListSubscriptions(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	views := make([]models.SubscriptionView, 0, len(rows))
	for i := range rows {
		view := subscriptionView(&rows[i].Subscription, now)
		view.UserName = rows[i].UserName
		view.UserEmail = rows[i].UserEmail
		views = append(views, view)
	}
	return views, nil
}

// CreatePlan добавляет тариф в каталог и сбрасывает кеш каталога.
func (s *SubscriptionService) CreatePlan(ctx context.Context, req models.DummyPlan) (*models.PlanView, error) {
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	plan := models.SubscriptionPlan{
		ID:        "plan-" + uuid.NewString(),
		Name:      req.Name,
		PlanType:  req.PlanType,
		Price:     req.Price,
		PostCount: req.PostCount,
		Features:  req.Features,
		IsActive:  isActive,
	}
	if err := s.plans.CreatePlan(ctx, plan); err != nil {
		return nil, err
	}
	s.invalidatePlansCache()

	view := plan.View()
	return &view, nil
}

// UpdatePlan применяет частичное обновление тарифа и сбрасывает кеш каталога.
func (s *SubscriptionService) UpdatePlan(ctx context.Context, id string, req models.DummyPlanPatch) (*models.PlanView, error) {
	plan, err := s.plans.GetPlanByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		plan.Name = *req.Name
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			return nil, apperr.Validation("price", "must be greater than zero")
		}
		plan.Price = *req.Price
	}
	if req.PostCount != nil {
		if *req.PostCount < 0 {
			return nil, apperr.Validation("post_count", "must not be negative")
		}
		plan.PostCount = *req.PostCount
	}
	if req.Features != nil {
		plan.Features = *req.Features
	}
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}

	if err := s.plans.UpdatePlan(ctx, *plan); err != nil {
		return nil, err
	}
	s.invalidatePlansCache()

	view := plan.View()
	return &view, nil
}

// DeletePlan удаляет тариф из каталога и сбрасывает кеш каталога.
// Уже купленные подписки хранят копию параметров и не затрагиваются.
func (s *SubscriptionService) DeletePlan(ctx context.Context, id string) error {
	if err := s.plans.DeletePlan(ctx, id); err != nil {
		return err
	}
	s.invalidatePlansCache()
	return nil
}

func (s *SubscriptionService) invalidatePlansCache() {
	if err := s.cache.Invalidate(plansCacheKey); err != nil {
		s.log.Warn("failed to invalidate plans cache", sl.Err(err))
	}
}
