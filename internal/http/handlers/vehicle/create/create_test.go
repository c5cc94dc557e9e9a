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

type VehicleServiceMock struct {
	mock.Mock
}

func (m *VehicleServiceMock) Create(ctx context.Context, req models.DummyVehicle, ownerID string) (*models.VehicleView, error) {
	args := m.Called(ctx, req, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VehicleView), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func validRequest() models.DummyVehicle {
	return models.DummyVehicle{
		Title:       "Toyota Camry 2020",
		Brand:       "Toyota",
		Model:       "Camry",
		Year:        2020,
		Price:       18500,
		Condition:   "USED",
		Description: "Один владелец, полный сервис",
		ContactInfo: models.ContactInfo{Phone: "+79990001122"},
	}
}

func TestCreateHandler_ServeHTTP(t *testing.T) {
	serviceMock := new(VehicleServiceMock)
	logger := newNoopLogger()

	handler := New(logger, serviceMock)

	tests := []struct {
		name           string
		requestBody    interface{}
		withUser       bool
		mockView       *models.VehicleView
		mockErr        error
		wantStatusCode int
		wantError      string
		wantStatus     string
	}{
		{
			name:           "valid request",
			requestBody:    validRequest(),
			withUser:       true,
			mockView:       &models.VehicleView{ID: 7, Title: "Toyota Camry 2020", Status: "pending"},
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			withUser:       true,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
			wantStatus:     "Error",
		},
		{
			name: "validation error - missing title",
			requestBody: models.DummyVehicle{
				Brand:       "Toyota",
				Model:       "Camry",
				Year:        2020,
				Price:       18500,
				Condition:   "USED",
				Description: "desc",
			},
			withUser:       true,
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Title is a required field",
			wantStatus:     "Error",
		},
		{
			name:           "no user in context",
			requestBody:    validRequest(),
			withUser:       false,
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "unauthorized",
			wantStatus:     "Error",
		},
		{
			name:           "service validation error",
			requestBody:    validRequest(),
			withUser:       true,
			mockErr:        apperr.Validation("condition", "must be one of USED, BRANDNEW, REFURBISHED"),
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field condition: must be one of USED, BRANDNEW, REFURBISHED",
			wantStatus:     "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock.ExpectedCalls = nil
			serviceMock.Calls = nil

			if tt.mockView != nil || tt.mockErr != nil {
				serviceMock.On("Create", mock.Anything, mock.Anything, "user-1").
					Return(tt.mockView, tt.mockErr).Once()
			}

			var bodyBytes []byte
			var err error
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				bodyBytes, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatal(err)
				}
			}

			req := httptest.NewRequest(http.MethodPost, "/vehicles", bytes.NewReader(bodyBytes))
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
				assert.Equal(t, float64(7), data["id"])
			}

			serviceMock.AssertExpectations(t)
		})
	}
}
