package models

import "time"

// Типы уведомлений.
const (
	NotificationVehicleApproved       = "vehicle_approved"
	NotificationVehicleRejected       = "vehicle_rejected"
	NotificationSubscriptionPurchased = "subscription_purchased"
	NotificationSubscriptionSpent     = "subscription_spent"
)

// Notification — уведомление пользователя о событии с его сущностью.
type Notification struct {
	ID                string     `json:"id"`
	UserID            string     `json:"user_id"`
	Type              string     `json:"type"`
	Title             string     `json:"title"`
	Message           string     `json:"message"`
	IsRead            bool       `json:"is_read"`
	RelatedEntityType *string    `json:"related_entity_type,omitempty"`
	RelatedEntityID   *string    `json:"related_entity_id,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// NotificationEvent — полезная нагрузка события, публикуемого в RabbitMQ.
type NotificationEvent struct {
	UserID   string `json:"user_id"`
	Type     string `json:"type"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	EntityID string `json:"entity_id,omitempty"`
}
