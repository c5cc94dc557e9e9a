package create

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/avtoradar/marketplace-api/internal/http/middlewarectx"
	"github.com/avtoradar/marketplace-api/internal/lib/apperr"
	"github.com/avtoradar/marketplace-api/internal/models"
)

type SubscriptionServiceMock struct {
	mock.Mock
}

func (m *SubscriptionServiceMock) Purchase(ctx context.Context, userID string, req models.DummyPurchase) (*models.SubscriptionView, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubscriptionView), args.Error(1)
}

type FeaturesMock struct {
	mock.Mock
}

func (m *FeaturesMock) Features(ctx context.Context) models.FeatureSettings {
	args := m.Called(ctx)
	return args.Get(0).(models.FeatureSettings)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestCreateHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    interface{}
		proEnabled     bool
		withUser       bool
		mockView       *models.SubscriptionView
		mockErr        error
		wantStatusCode int
		wantError      string
		wantStatus     string
	}{
		{
			name:           "basic plan purchase",
			requestBody:    models.DummyPurchase{PlanType: "basic", PaymentMethod: "card"},
			proEnabled:     true,
			withUser:       true,
			mockView:       &models.SubscriptionView{ID: "sub-1", PlanName: "Basic"},
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:           "pro plan blocked by feature flag",
			requestBody:    models.DummyPurchase{PlanType: "pro", PaymentMethod: "card"},
			proEnabled:     false,
			withUser:       true,
			wantStatusCode: http.StatusForbidden,
			wantError:      "pro plan activation is temporarily disabled",
			wantStatus:     "Error",
		},
		{
			name:           "pro plan allowed when flag enabled",
			requestBody:    models.DummyPurchase{PlanType: "PRO", PaymentMethod: "card"},
			proEnabled:     true,
			withUser:       true,
			mockView:       &models.SubscriptionView{ID: "sub-2", PlanName: "Pro"},
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:           "no user in context",
			requestBody:    models.DummyPurchase{PlanType: "basic"},
			proEnabled:     true,
			withUser:       false,
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "unauthorized",
			wantStatus:     "Error",
		},
		{
			name:           "active subscription exists",
			requestBody:    models.DummyPurchase{PlanType: "basic"},
			proEnabled:     true,
			withUser:       true,
			mockErr:        apperr.ErrConflict,
			wantStatusCode: http.StatusConflict,
			wantError:      "conflict",
			wantStatus:     "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(SubscriptionServiceMock)
			featuresMock := new(FeaturesMock)

			features := models.DefaultFeatureSettings()
			features.ProPlanActivation = tt.proEnabled
			featuresMock.On("Features", mock.Anything).Return(features)

			if tt.mockView != nil || tt.mockErr != nil {
				serviceMock.On("Purchase", mock.Anything, "user-1", mock.Anything).
					Return(tt.mockView, tt.mockErr).Once()
			}

			handler := New(newNoopLogger(), serviceMock, featuresMock)

			bodyBytes, err := json.Marshal(tt.requestBody)
			if err != nil {
				t.Fatal(err)
			}

			req := httptest.NewRequest(http.MethodPost, "/subscriptions", bytes.NewReader(bodyBytes))
			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123")
			if tt.withUser {
				ctx = context.WithValue(ctx, middlewarectx.UserID, "user-1")
			}
			req = req.WithContext(ctx)

			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			err = json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)

			assert.Equal(t, tt.wantStatus, got["status"])

			if tt.wantError != "" {
				errStr, ok := got["error"].(string)
				assert.True(t, ok)
				assert.Equal(t, tt.wantError, errStr)
			} else {
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, tt.mockView.ID, data["id"])
			}

			serviceMock.AssertExpectations(t)
		})
	}
}
