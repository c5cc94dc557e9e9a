package predictionapi

import "time"

// PredictRequest — запрос к сервису предсказания цены.
type PredictRequest struct {
	Brand        string  `json:"brand"`
	Model        string  `json:"model"`
	Year         int     `json:"year"`
	Mileage      int     `json:"mileage"`
	CurrentPrice float64 `json:"current_price"`
	Condition    string  `json:"condition"`
	YearsAhead   int     `json:"years_ahead"`
}

// PredictResponse — ответ сервиса предсказания цены.
type PredictResponse struct {
	PredictedPrice float64    `json:"predicted_price"`
	Confidence     float64    `json:"confidence"`
	YearsAhead     int        `json:"years_ahead"`
	Currency       string     `json:"currency,omitempty"`
	Market         string     `json:"market,omitempty"`
	PriceTrend     string     `json:"price_trend,omitempty"`
	Timestamp      *time.Time `json:"timestamp,omitempty"`
}
