package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/avtoradar/marketplace-api/internal/lib/apperr"
	"github.com/avtoradar/marketplace-api/internal/predictionapi"
)

type PredictionClientMock struct{ mock.Mock }

func (m *PredictionClientMock) Predict(ctx context.Context, req predictionapi.PredictRequest) (*predictionapi.PredictResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*predictionapi.PredictResponse), args.Error(1)
}

func TestPredictionService_Predict(t *testing.T) {
	carRow := pendingRow(1, "owner-1")
	carRow.Type = "car"
	carRow.Price = 20000

	truckRow := pendingRow(2, "owner-1")
	truckRow.Type = "truck"

	tests := []struct {
		name           string
		vehicleID      int
		yearsAhead     int
		setupMocks     func(r *RepoMock, c *PredictionClientMock)
		wantValidation bool
		wantErr        error
		check          func(t *testing.T, res *PredictionResult)
	}{
		{
			name:       "success computes difference and percentage",
			vehicleID:  1,
			yearsAhead: 3,
			setupMocks: func(r *RepoMock, c *PredictionClientMock) {
				r.On("GetVehicleByID", mock.Anything, 1).Return(carRow, nil).Once()
				c.On("Predict", mock.Anything, mock.MatchedBy(func(req predictionapi.PredictRequest) bool {
					return req.Brand == "Toyota" && req.YearsAhead == 3 && req.CurrentPrice == 20000
				})).Return(&predictionapi.PredictResponse{
					PredictedPrice: 15000,
					Confidence:     0.8,
					YearsAhead:     3,
					Currency:       "USD",
					PriceTrend:     "declining",
				}, nil).Once()
			},
			check: func(t *testing.T, res *PredictionResult) {
				assert.Equal(t, float64(-5000), res.PriceDifference)
				assert.InDelta(t, -25.0, res.PercentageChange, 0.001)
				assert.Equal(t, 3, res.YearsAhead)
			},
		},
		{
			name:           "years ahead above limit",
			vehicleID:      1,
			yearsAhead:     6,
			setupMocks:     func(_ *RepoMock, _ *PredictionClientMock) {},
			wantValidation: true,
		},
		{
			name:           "negative years ahead",
			vehicleID:      1,
			yearsAhead:     -1,
			setupMocks:     func(_ *RepoMock, _ *PredictionClientMock) {},
			wantValidation: true,
		},
		{
			name:       "trucks are not supported",
			vehicleID:  2,
			yearsAhead: 1,
			setupMocks: func(r *RepoMock, _ *PredictionClientMock) {
				r.On("GetVehicleByID", mock.Anything, 2).Return(truckRow, nil).Once()
			},
			wantValidation: true,
		},
		{
			name:       "upstream failure maps to unavailable",
			vehicleID:  1,
			yearsAhead: 1,
			setupMocks: func(r *RepoMock, c *PredictionClientMock) {
				r.On("GetVehicleByID", mock.Anything, 1).Return(carRow, nil).Once()
				c.On("Predict", mock.Anything, mock.Anything).
					Return(nil, fmt.Errorf("%w: connection refused", apperr.ErrUnavailable)).Once()
			},
			wantErr: apperr.ErrUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			client := new(PredictionClientMock)
			svc := NewPredictionService(repo, client)

			tt.setupMocks(repo, client)

			res, err := svc.Predict(context.Background(), tt.vehicleID, tt.yearsAhead)
			switch {
			case tt.wantValidation:
				require.Error(t, err)
				_, ok := apperr.AsValidation(err)
				assert.True(t, ok)
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			default:
				require.NoError(t, err)
				tt.check(t, res)
			}

			repo.AssertExpectations(t)
			client.AssertExpectations(t)
		})
	}
}
