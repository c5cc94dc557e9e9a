// Package services содержит бизнес-логику настроек: флаги функциональности
// читаются из хранилища на каждый запрос, при отсутствии ключа или ошибке
// чтения действуют значения по умолчанию.
package services

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/avtoradar/marketplace-api/internal/lib/sl"
	"github.com/avtoradar/marketplace-api/internal/models"
)

// SettingsRepository описывает контракт работы с настройками в хранилище.
type SettingsRepository interface {
	// ListSettings возвращает все сохранённые настройки.
	ListSettings(ctx context.Context) ([]models.Setting, error)
	// UpsertSetting создаёт или обновляет настройку по ключу.
	UpsertSetting(ctx context.Context, key string, value *string) error
}

// SettingsService реализует чтение флагов и административное управление ими.
type SettingsService struct {
	repo SettingsRepository
	log  *slog.Logger
}

// NewSettingsService создает новый экземпляр SettingsService.
func NewSettingsService(repo SettingsRepository, log *slog.Logger) *SettingsService {
	return &SettingsService{
		repo: repo,
		log:  log,
	}
}

// Features возвращает действующие флаги функциональности. Ошибка чтения
// хранилища не отдаётся наружу: в этом случае действуют значения по умолчанию.
func (s *SettingsService) Features(ctx context.Context) models.FeatureSettings {
	features := models.DefaultFeatureSettings()

	settings, err := s.repo.ListSettings(ctx)
	if err != nil {
		s.log.Warn("failed to load settings, using defaults", sl.Err(err))
		return features
	}

	for _, setting := range settings {
		if setting.Value == nil {
			continue
		}
		switch setting.Key {
		case models.SettingUserRegistration:
			features.UserRegistration = parseBoolOr(*setting.Value, features.UserRegistration)
		case models.SettingPricePrediction:
			features.PricePrediction = parseBoolOr(*setting.Value, features.PricePrediction)
		case models.SettingProPlanActivation:
			features.ProPlanActivation = parseBoolOr(*setting.Value, features.ProPlanActivation)
		case models.SettingMaintenanceMode:
			features.MaintenanceMode = parseBoolOr(*setting.Value, features.MaintenanceMode)
		case models.SettingMaintenanceMessage:
			if *setting.Value != "" {
				features.MaintenanceMessage = *setting.Value
			}
		}
	}
	return features
}

func parseBoolOr(raw string, fallback bool) bool {
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}

// ListAll возвращает все сохранённые настройки для администратора.
func (s *SettingsService) ListAll(ctx context.Context) ([]models.Setting, error) {
	return s.repo.ListSettings(ctx)
}

// Put сохраняет набор настроек ключ-значение.
func (s *SettingsService) Put(ctx context.Context, settings []models.Setting) error {
	for _, setting := range settings {
		if err := s.repo.UpsertSetting(ctx, setting.Key, setting.Value); err != nil {
			return err
		}
	}
	return nil
}
