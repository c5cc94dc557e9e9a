package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avtoradar/marketplace-api/internal/lib/apperr"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "validation error",
			err:        apperr.Validation("year", "is out of range"),
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "field year: is out of range",
		},
		{
			name:       "not found hides details",
			err:        fmt.Errorf("storage.GetVehicleByID: %w", apperr.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantError:  "not found",
		},
		{
			name:       "conflict keeps reason",
			err:        fmt.Errorf("services.subscription.Purchase: subscription already active: %w", apperr.ErrConflict),
			wantStatus: http.StatusConflict,
			wantError:  "subscription already active: conflict",
		},
		{
			name:       "invalid state maps to conflict",
			err:        fmt.Errorf("approved listing cannot be edited: %w", apperr.ErrInvalidState),
			wantStatus: http.StatusConflict,
			wantError:  "approved listing cannot be edited: invalid state",
		},
		{
			name:       "forbidden keeps reason",
			err:        fmt.Errorf("services.admin.DeleteUser: cannot delete own account: %w", apperr.ErrForbidden),
			wantStatus: http.StatusForbidden,
			wantError:  "cannot delete own account: forbidden",
		},
		{
			name:       "unavailable maps to bad gateway",
			err:        fmt.Errorf("predictionapi.Predict: %w", apperr.ErrUnavailable),
			wantStatus: http.StatusBadGateway,
			wantError:  "service unavailable",
		},
		{
			name:       "unknown error hides details",
			err:        errors.New("pq: connection reset by peer"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()

			WriteError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var got ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, StatusError, got.Status)
			assert.Equal(t, tt.wantError, got.Error)
		})
	}
}

func TestTrimOpPrefix(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "strips dotted op segments",
			err:  fmt.Errorf("services.vehicle.Update: storage.GetVehicleByID: only pending listings: %w", apperr.ErrInvalidState),
			want: "only pending listings: invalid state",
		},
		{
			name: "keeps plain message with colon",
			err:  fmt.Errorf("cannot delete own account: %w", apperr.ErrForbidden),
			want: "cannot delete own account: forbidden",
		},
		{
			name: "bare sentinel untouched",
			err:  apperr.ErrConflict,
			want: "conflict",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, trimOpPrefix(tt.err))
		})
	}
}
