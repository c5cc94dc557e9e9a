package repository

import (
	"encoding/json"

	"github.com/avtoradar/marketplace-api/internal/models"
)

// Фотографии и контактные данные хранятся в текстовых колонках как JSON.
// Повреждённое или пустое содержимое не роняет чтение строки: вместо
// ошибки возвращается пустое значение по умолчанию.

func encodeImages(images []string) string {
	if images == nil {
		images = []string{}
	}
	raw, err := json.Marshal(images)
	if err != nil {
		return "[]"
	}
	return string(raw)
}

func decodeImages(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var images []string
	if err := json.Unmarshal([]byte(raw), &images); err != nil || images == nil {
		return []string{}
	}
	return images
}

func encodeContact(contact models.ContactInfo) string {
	raw, err := json.Marshal(contact)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

func decodeContact(raw string) models.ContactInfo {
	if raw == "" {
		return models.ContactInfo{}
	}
	var contact models.ContactInfo
	if err := json.Unmarshal([]byte(raw), &contact); err != nil {
		return models.ContactInfo{}
	}
	return contact
}

func encodeFeatures(features []string) string {
	if features == nil {
		features = []string{}
	}
	raw, err := json.Marshal(features)
	if err != nil {
		return "[]"
	}
	return string(raw)
}

func decodeFeatures(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var features []string
	if err := json.Unmarshal([]byte(raw), &features); err != nil || features == nil {
		return []string{}
	}
	return features
}
