// Package predictionapi реализует клиента внешнего ML-сервиса
// предсказания цены транспорта.
package predictionapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avtoradar/marketplace-api/internal/lib/apperr"
)

// Client — HTTP-клиент сервиса предсказания. Один неудачный вызов отдаётся
// наверх как ErrUnavailable без повторных попыток.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиента с ограничением времени запроса.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Predict запрашивает предсказание цены у ML-сервиса.
func (c *Client) Predict(ctx context.Context, reqParams PredictRequest) (*PredictResponse, error) {
	const op = "predictionapi.Predict"

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(reqParams); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", &buf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, apperr.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%s: %w: status %s: %s", op, apperr.ErrUnavailable, resp.Status, detail)
	}

	var prediction PredictResponse
	if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, apperr.ErrUnavailable, err)
	}
	return &prediction, nil
}
