// Package services содержит бизнес-логику уведомлений: сохранение в базе и
// публикацию событий в RabbitMQ по принципу "лучших усилий" — сбой публикации
// никогда не прерывает породившую событие операцию.
package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/streadway/amqp"

	"github.com/avtoradar/marketplace-api/internal/lib/rabbitmq"
	"github.com/avtoradar/marketplace-api/internal/lib/sl"
	"github.com/avtoradar/marketplace-api/internal/models"
)

// NotificationRepository описывает контракт работы с уведомлениями в хранилище.
type NotificationRepository interface {
	// CreateNotification сохраняет уведомление.
	CreateNotification(ctx context.Context, n models.Notification) error
	// ListNotifications возвращает уведомления пользователя, новые первыми.
	ListNotifications(ctx context.Context, userID string, limit int) ([]models.Notification, error)
	// MarkNotificationRead помечает уведомление прочитанным.
	MarkNotificationRead(ctx context.Context, id, userID string) error
}

// EventPublisher публикует событие с ключом маршрутизации.
type EventPublisher interface {
	Publish(routingKey string, message any) error
}

// AMQPPublisher публикует события в обменник RabbitMQ.
type AMQPPublisher struct {
	Ch       *amqp.Channel
	Exchange string
}

// Publish отправляет сообщение в обменник.
func (p *AMQPPublisher) Publish(routingKey string, message any) error {
	return rabbitmq.PublishMessage(p.Ch, p.Exchange, routingKey, message)
}

const listLimit = 50

// NotificationService реализует создание и чтение уведомлений.
type NotificationService struct {
	repo      NotificationRepository
	publisher EventPublisher
	log       *slog.Logger
}

// NewNotificationService создает новый экземпляр NotificationService.
// publisher может быть nil, если RabbitMQ отключён конфигурацией.
func NewNotificationService(repo NotificationRepository, publisher EventPublisher, log *slog.Logger) *NotificationService {
	return &NotificationService{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// Notify сохраняет уведомление и публикует событие. Ошибки логируются и не
// возвращаются: уведомления не должны ронять основную операцию.
func (s *NotificationService) Notify(ctx context.Context, userID, ntype, title, message, entityID string) {
	notification := models.Notification{
		ID:      uuid.NewString(),
		UserID:  userID,
		Type:    ntype,
		Title:   title,
		Message: message,
	}
	if entityID != "" {
		entityType := relatedEntityType(ntype)
		notification.RelatedEntityType = &entityType
		notification.RelatedEntityID = &entityID
	}

	if err := s.repo.CreateNotification(ctx, notification); err != nil {
		s.log.Warn("failed to store notification",
			slog.String("user_id", userID), slog.String("type", ntype), sl.Err(err))
		return
	}

	if s.publisher == nil {
		return
	}
	event := models.NotificationEvent{
		UserID:   userID,
		Type:     ntype,
		Title:    title,
		Message:  message,
		EntityID: entityID,
	}
	if err := s.publisher.Publish(ntype, event); err != nil {
		s.log.Warn("failed to publish notification event",
			slog.String("type", ntype), sl.Err(err))
	}
}

func relatedEntityType(ntype string) string {
	switch ntype {
	case models.NotificationVehicleApproved, models.NotificationVehicleRejected:
		return "vehicle"
	default:
		return "subscription"
	}
}

// ListForUser возвращает последние уведомления пользователя.
func (s *NotificationService) ListForUser(ctx context.Context, userID string) ([]models.Notification, error) {
	return s.repo.ListNotifications(ctx, userID, listLimit)
}

// MarkRead помечает уведомление прочитанным. Чужое уведомление пометить
// нельзя: для владельца другой записи это ErrNotFound.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	return s.repo.MarkNotificationRead(ctx, id, userID)
}
