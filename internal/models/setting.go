package models

// Ключи настроек функций в таблице settings.
const (
	SettingUserRegistration   = "feature_userRegistration"
	SettingPricePrediction    = "feature_pricePrediction"
	SettingProPlanActivation  = "feature_proPlanActivation"
	SettingMaintenanceMode    = "feature_maintenanceMode"
	SettingMaintenanceMessage = "feature_maintenanceMessage"
)

// DefaultMaintenanceMessage — сообщение режима обслуживания по умолчанию.
const DefaultMaintenanceMessage = "We are currently performing scheduled maintenance. Please check back later."

// FeatureSettings — флаги функциональности, читаются из хранилища на каждый
// запрос; при отсутствии ключа или ошибке чтения действуют значения по умолчанию.
type FeatureSettings struct {
	UserRegistration   bool   `json:"userRegistration"`
	PricePrediction    bool   `json:"pricePrediction"`
	ProPlanActivation  bool   `json:"proPlanActivation"`
	MaintenanceMode    bool   `json:"maintenanceMode"`
	MaintenanceMessage string `json:"maintenanceMessage"`
}

// DefaultFeatureSettings возвращает значения флагов по умолчанию.
func DefaultFeatureSettings() FeatureSettings {
	return FeatureSettings{
		UserRegistration:   true,
		PricePrediction:    true,
		ProPlanActivation:  true,
		MaintenanceMode:    false,
		MaintenanceMessage: DefaultMaintenanceMessage,
	}
}

// Setting — строка таблицы настроек.
type Setting struct {
	Key   string  `json:"key"`
	Value *string `json:"value"`
}
