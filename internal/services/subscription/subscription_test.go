package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/avtoradar/marketplace-api/internal/lib/apperr"
	"github.com/avtoradar/marketplace-api/internal/models"
	"github.com/avtoradar/marketplace-api/internal/storage/repository"
)

type SubsRepoMock struct{ mock.Mock }

func (m *SubsRepoMock) CreateSubscription(ctx context.Context, sub models.Subscription) error {
	return m.Called(ctx, sub).Error(0)
}
func (m *SubsRepoMock) GetLatestSubscription(ctx context.Context, userID string) (*models.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}
func (m *SubsRepoMock) GetUsableSubscription(ctx context.Context, userID string) (*models.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}
func (m *SubsRepoMock) CancelActiveSubscription(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}
func (m *SubsRepoMock) ListSubscriptions(ctx context.Context) ([]repository.SubscriptionWithUser, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.SubscriptionWithUser), args.Error(1)
}

type PlansRepoMock struct{ mock.Mock }

func (m *PlansRepoMock) ListActivePlans(ctx context.Context) ([]models.SubscriptionPlan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SubscriptionPlan), args.Error(1)
}
func (m *PlansRepoMock) GetPlanByID(ctx context.Context, id string) (*models.SubscriptionPlan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubscriptionPlan), args.Error(1)
}
func (m *PlansRepoMock) GetCheapestPlanByType(ctx context.Context, planType string) (*models.SubscriptionPlan, error) {
	args := m.Called(ctx, planType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubscriptionPlan), args.Error(1)
}
func (m *PlansRepoMock) CreatePlan(ctx context.Context, plan models.SubscriptionPlan) error {
	return m.Called(ctx, plan).Error(0)
}
func (m *PlansRepoMock) UpdatePlan(ctx context.Context, plan models.SubscriptionPlan) error {
	return m.Called(ctx, plan).Error(0)
}
func (m *PlansRepoMock) DeletePlan(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}
func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	return m.Called(key, value, expiration).Error(0)
}
func (m *CacheMock) Invalidate(key string) error {
	return m.Called(key).Error(0)
}

type NotifierMock struct{ mock.Mock }

func (m *NotifierMock) Notify(ctx context.Context, userID, ntype, title, message, entityID string) {
	m.Called(ctx, userID, ntype, title, message, entityID)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func basicPlan() *models.SubscriptionPlan {
	return &models.SubscriptionPlan{
		ID:        "plan-basic",
		Name:      "Basic",
		PlanType:  "basic",
		Price:     990,
		PostCount: 1,
		Features:  []string{"1 premium listing"},
		IsActive:  true,
	}
}

func newService(subs *SubsRepoMock, plans *PlansRepoMock, cache *CacheMock, notifier *NotifierMock) *SubscriptionService {
	return NewSubscriptionService(subs, plans, cache, notifier, newNoopLogger())
}

func TestSubscriptionService_Purchase(t *testing.T) {
	tests := []struct {
		name           string
		req            models.DummyPurchase
		setupMocks     func(s *SubsRepoMock, p *PlansRepoMock, n *NotifierMock)
		wantErr        error
		wantValidation bool
		check          func(t *testing.T, view *models.SubscriptionView)
	}{
		{
			name: "success copies plan snapshot and defaults payment method",
			req:  models.DummyPurchase{PlanID: "plan-basic"},
			setupMocks: func(s *SubsRepoMock, p *PlansRepoMock, n *NotifierMock) {
				p.On("GetPlanByID", mock.Anything, "plan-basic").Return(basicPlan(), nil).Once()
				s.On("GetUsableSubscription", mock.Anything, "user-1").
					Return(nil, apperr.ErrNotFound).Once()
				s.On("CreateSubscription", mock.Anything, mock.MatchedBy(func(sub models.Subscription) bool {
					oneMonth := sub.StartDate.AddDate(0, 1, 0).Equal(sub.EndDate)
					return strings.HasPrefix(sub.ID, "sub-") &&
						sub.Price == 990 && sub.PostCount == 1 &&
						*sub.PaymentMethod == "card" &&
						strings.HasPrefix(*sub.TransactionID, "txn-") &&
						oneMonth
				})).Return(nil).Once()
				n.On("Notify", mock.Anything, "user-1", models.NotificationSubscriptionPurchased,
					mock.Anything, mock.Anything, mock.Anything).Once()
			},
			check: func(t *testing.T, view *models.SubscriptionView) {
				assert.Equal(t, models.SubscriptionActive, view.Status)
				assert.Equal(t, "Basic", view.PlanName)
				assert.Equal(t, []string{"1 premium listing"}, view.PlanFeatures)
			},
		},
		{
			name: "cheapest active plan resolved by type",
			req:  models.DummyPurchase{PlanType: "basic", PaymentMethod: "sbp"},
			setupMocks: func(s *SubsRepoMock, p *PlansRepoMock, n *NotifierMock) {
				p.On("GetCheapestPlanByType", mock.Anything, "basic").Return(basicPlan(), nil).Once()
				s.On("GetUsableSubscription", mock.Anything, "user-1").
					Return(nil, apperr.ErrNotFound).Once()
				s.On("CreateSubscription", mock.Anything, mock.MatchedBy(func(sub models.Subscription) bool {
					return *sub.PaymentMethod == "sbp"
				})).Return(nil).Once()
				n.On("Notify", mock.Anything, "user-1", models.NotificationSubscriptionPurchased,
					mock.Anything, mock.Anything, mock.Anything).Once()
			},
		},
		{
			name: "active subscription blocks repeat purchase",
			req:  models.DummyPurchase{PlanID: "plan-basic"},
			setupMocks: func(s *SubsRepoMock, p *PlansRepoMock, _ *NotifierMock) {
				p.On("GetPlanByID", mock.Anything, "plan-basic").Return(basicPlan(), nil).Once()
				s.On("GetUsableSubscription", mock.Anything, "user-1").
					Return(&models.Subscription{ID: "sub-old", EndDate: time.Now().Add(time.Hour)}, nil).Once()
			},
			wantErr: apperr.ErrConflict,
		},
		{
			name:           "plan reference is required",
			req:            models.DummyPurchase{},
			setupMocks:     func(_ *SubsRepoMock, _ *PlansRepoMock, _ *NotifierMock) {},
			wantValidation: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subs := new(SubsRepoMock)
			plans := new(PlansRepoMock)
			cache := new(CacheMock)
			notifier := new(NotifierMock)
			svc := newService(subs, plans, cache, notifier)

			tt.setupMocks(subs, plans, notifier)

			view, err := svc.Purchase(context.Background(), "user-1", tt.req)
			switch {
			case tt.wantValidation:
				require.Error(t, err)
				_, ok := apperr.AsValidation(err)
				assert.True(t, ok)
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			default:
				require.NoError(t, err)
				require.NotNil(t, view)
				if tt.check != nil {
					tt.check(t, view)
				}
			}

			subs.AssertExpectations(t)
			plans.AssertExpectations(t)
			notifier.AssertExpectations(t)
		})
	}
}

func TestSubscriptionService_GetStatus(t *testing.T) {
	active := models.SubscriptionActive

	tests := []struct {
		name       string
		setupMocks func(s *SubsRepoMock)
		wantActive bool
		wantStatus string
		wantNilSub bool
	}{
		{
			name: "no subscription at all",
			setupMocks: func(s *SubsRepoMock) {
				s.On("GetLatestSubscription", mock.Anything, "user-1").
					Return(nil, apperr.ErrNotFound).Once()
			},
			wantNilSub: true,
		},
		{
			name: "usable subscription is active",
			setupMocks: func(s *SubsRepoMock) {
				s.On("GetLatestSubscription", mock.Anything, "user-1").
					Return(&models.Subscription{ID: "sub-1", Status: &active, EndDate: time.Now().Add(time.Hour)}, nil).Once()
			},
			wantActive: true,
			wantStatus: models.SubscriptionActive,
		},
		{
			name: "stored active but expired is derived as expired",
			setupMocks: func(s *SubsRepoMock) {
				s.On("GetLatestSubscription", mock.Anything, "user-1").
					Return(&models.Subscription{ID: "sub-1", Status: &active, EndDate: time.Now().Add(-time.Hour)}, nil).Once()
			},
			wantStatus: models.SubscriptionExpired,
		},
		{
			name: "null status counts as active",
			setupMocks: func(s *SubsRepoMock) {
				s.On("GetLatestSubscription", mock.Anything, "user-1").
					Return(&models.Subscription{ID: "sub-1", Status: nil, EndDate: time.Now().Add(time.Hour)}, nil).Once()
			},
			wantActive: true,
			wantStatus: models.SubscriptionActive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subs := new(SubsRepoMock)
			svc := newService(subs, new(PlansRepoMock), new(CacheMock), new(NotifierMock))
			tt.setupMocks(subs)

			status, err := svc.GetStatus(context.Background(), "user-1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantActive, status.Active)
			if tt.wantNilSub {
				assert.Nil(t, status.Subscription)
			} else {
				require.NotNil(t, status.Subscription)
				assert.Equal(t, tt.wantStatus, status.Subscription.Status)
			}

			subs.AssertExpectations(t)
		})
	}
}

func TestSubscriptionService_ListPlans_Cache(t *testing.T) {
	t.Run("cache hit skips repository", func(t *testing.T) {
		plans := new(PlansRepoMock)
		cache := new(CacheMock)
		svc := newService(new(SubsRepoMock), plans, cache, new(NotifierMock))

		cache.On("Get", "subscription_plans:active", mock.Anything).Return(true, nil).Once()

		_, err := svc.ListPlans(context.Background())
		require.NoError(t, err)
		cache.AssertExpectations(t)
		plans.AssertExpectations(t)
	})

	t.Run("cache miss loads and caches", func(t *testing.T) {
		plans := new(PlansRepoMock)
		cache := new(CacheMock)
		svc := newService(new(SubsRepoMock), plans, cache, new(NotifierMock))

		cache.On("Get", "subscription_plans:active", mock.Anything).Return(false, nil).Once()
		plans.On("ListActivePlans", mock.Anything).
			Return([]models.SubscriptionPlan{*basicPlan()}, nil).Once()
		cache.On("Set", "subscription_plans:active", mock.Anything, 10*time.Minute).Return(nil).Once()

		views, err := svc.ListPlans(context.Background())
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, "Basic", views[0].Name)
		cache.AssertExpectations(t)
		plans.AssertExpectations(t)
	})

	t.Run("cache errors are non-fatal", func(t *testing.T) {
		plans := new(PlansRepoMock)
		cache := new(CacheMock)
		svc := newService(new(SubsRepoMock), plans, cache, new(NotifierMock))

		cache.On("Get", "subscription_plans:active", mock.Anything).
			Return(false, errors.New("redis down")).Once()
		plans.On("ListActivePlans", mock.Anything).
			Return([]models.SubscriptionPlan{*basicPlan()}, nil).Once()
		cache.On("Set", "subscription_plans:active", mock.Anything, 10*time.Minute).
			Return(errors.New("redis down")).Once()

		views, err := svc.ListPlans(context.Background())
		require.NoError(t, err)
		assert.Len(t, views, 1)
	})
}

func TestSubscriptionService_UpdatePlan_InvalidatesCache(t *testing.T) {
	plans := new(PlansRepoMock)
	cache := new(CacheMock)
	svc := newService(new(SubsRepoMock), plans, cache, new(NotifierMock))

	newPrice := 1290.0
	plans.On("GetPlanByID", mock.Anything, "plan-basic").Return(basicPlan(), nil).Once()
	plans.On("UpdatePlan", mock.Anything, mock.MatchedBy(func(p models.SubscriptionPlan) bool {
		return p.Price == newPrice
	})).Return(nil).Once()
	cache.On("Invalidate", "subscription_plans:active").Return(nil).Once()

	view, err := svc.UpdatePlan(context.Background(), "plan-basic", models.DummyPlanPatch{Price: &newPrice})
	require.NoError(t, err)
	assert.Equal(t, newPrice, view.Price)

	plans.AssertExpectations(t)
	cache.AssertExpectations(t)
}
