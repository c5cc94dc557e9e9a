package services

import (
	"context"
	"strings"
	"time"

	"github.com/avtoradar/marketplace-api/internal/lib/apperr"
	"github.com/avtoradar/marketplace-api/internal/predictionapi"
)

// PredictionClient описывает клиента внешнего сервиса предсказания цены.
type PredictionClient interface {
	Predict(ctx context.Context, req predictionapi.PredictRequest) (*predictionapi.PredictResponse, error)
}

// PredictionResult — предсказание цены с вычисленной разницей к текущей цене.
type PredictionResult struct {
	VehicleID        int        `json:"vehicle_id"`
	CurrentPrice     float64    `json:"current_price"`
	PredictedPrice   float64    `json:"predicted_price"`
	PriceDifference  float64    `json:"price_difference"`
	PercentageChange float64    `json:"percentage_change"`
	Confidence       float64    `json:"confidence"`
	YearsAhead       int        `json:"years_ahead"`
	Currency         string     `json:"currency,omitempty"`
	Market           string     `json:"market,omitempty"`
	PriceTrend       string     `json:"price_trend,omitempty"`
	Timestamp        *time.Time `json:"timestamp,omitempty"`
}

// PredictionService проксирует запросы предсказания цены для объявлений.
type PredictionService struct {
	repo   VehicleRepository
	client PredictionClient
}

// NewPredictionService создает новый экземпляр PredictionService.
func NewPredictionService(repo VehicleRepository, client PredictionClient) *PredictionService {
	return &PredictionService{
		repo:   repo,
		client: client,
	}
}

// Predict запрашивает предсказание цены объявления на yearsAhead лет вперёд.
// Доступно только для легковых автомобилей, горизонт от 0 до 5 лет.
// Разница и процент изменения вычисляются на нашей стороне.
func (s *PredictionService) Predict(ctx context.Context, vehicleID, yearsAhead int) (*PredictionResult, error) {
	if yearsAhead < 0 || yearsAhead > 5 {
		return nil, apperr.Validation("years_ahead", "must be between 0 and 5")
	}

	row, err := s.repo.GetVehicleByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(row.Type, "car") {
		return nil, apperr.Validation("type", "price prediction is available for cars only")
	}

	prediction, err := s.client.Predict(ctx, predictionapi.PredictRequest{
		Brand:        row.Brand,
		Model:        row.Model,
		Year:         row.Year,
		Mileage:      row.Mileage,
		CurrentPrice: row.Price,
		Condition:    string(row.Condition),
		YearsAhead:   yearsAhead,
	})
	if err != nil {
		return nil, err
	}

	difference := prediction.PredictedPrice - row.Price
	percentage := 0.0
	if row.Price != 0 {
		percentage = difference / row.Price * 100
	}

	return &PredictionResult{
		VehicleID:        row.ID,
		CurrentPrice:     row.Price,
		PredictedPrice:   prediction.PredictedPrice,
		PriceDifference:  difference,
		PercentageChange: percentage,
		Confidence:       prediction.Confidence,
		YearsAhead:       prediction.YearsAhead,
		Currency:         prediction.Currency,
		Market:           prediction.Market,
		PriceTrend:       prediction.PriceTrend,
		Timestamp:        prediction.Timestamp,
	}, nil
}
