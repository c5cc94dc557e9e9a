// Package services содержит бизнес-логику жизненного цикла объявлений:
// создание с потреблением квоты подписки, модерацию, частичные обновления
// и проекции с правилом видимости e-mail владельца.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avtoradar/marketplace-api/internal/lib/apperr"
	"github.com/avtoradar/marketplace-api/internal/lib/sl"
	"github.com/avtoradar/marketplace-api/internal/models"
	"github.com/avtoradar/marketplace-api/internal/storage/repository"
)

// VehicleRepository описывает контракт работы с объявлениями в хранилище.
type VehicleRepository interface {
	// ListVehicles возвращает страницу объявлений и общее число строк по фильтру.
	ListVehicles(ctx context.Context, filter models.VehicleFilter) ([]repository.VehicleRow, int, error)
	// GetVehicleByID возвращает объявление с данными владельца или ErrNotFound.
	GetVehicleByID(ctx context.Context, id int) (*repository.VehicleRow, error)
	// CreateVehicle сохраняет объявление без списания квоты.
	CreateVehicle(ctx context.Context, v models.Vehicle) (int, error)
	// CreateVehicleWithQuota атомарно списывает публикацию с подписки и
	// сохраняет объявление; второй результат — получило ли оно премиум-флаг.
	CreateVehicleWithQuota(ctx context.Context, v models.Vehicle, subscriptionID string) (int, bool, error)
	// UpdateVehicle перезаписывает изменяемые поля объявления.
	UpdateVehicle(ctx context.Context, v models.Vehicle) error
	// SetVehicleStatus безусловно переводит объявление в статус.
	SetVehicleStatus(ctx context.Context, id int, status models.VehicleStatus) error
	// BulkSetVehicleStatus переводит набор объявлений в статус одной транзакцией.
	BulkSetVehicleStatus(ctx context.Context, ids []int, status models.VehicleStatus) error
	// DeleteVehicleCascade удаляет объявление вместе с избранным.
	DeleteVehicleCascade(ctx context.Context, id int) error
	// BulkDeleteVehicles удаляет набор объявлений с каскадом одной транзакцией.
	BulkDeleteVehicles(ctx context.Context, ids []int) error
	// ListVehicleTable возвращает облегчённую проекцию для административной таблицы.
	ListVehicleTable(ctx context.Context) ([]models.VehicleTableRow, error)
	// ActiveSubscriberIDs возвращает владельцев с действующей подпиской.
	ActiveSubscriberIDs(ctx context.Context, userIDs []string) (map[string]bool, error)
}

// SubscriptionReader описывает доступ к действующей подписке владельца.
type SubscriptionReader interface {
	GetUsableSubscription(ctx context.Context, userID string) (*models.Subscription, error)
}

// Notifier отправляет уведомление пользователю. Ошибки отправки не должны
// прерывать операцию, их обрабатывает реализация.
type Notifier interface {
	Notify(ctx context.Context, userID, ntype, title, message, entityID string)
}

// Requester — данные запрашивающего из контекста аутентификации.
// Нулевое значение означает анонимный запрос.
type Requester struct {
	ID   string
	Role string
}

const (
	defaultLimit = 10
	maxLimit     = 100
)

// VehicleService реализует операции над объявлениями.
type VehicleService struct {
	repo     VehicleRepository
	subs     SubscriptionReader
	notifier Notifier
	log      *slog.Logger
}

// NewVehicleService создает новый экземпляр VehicleService.
func NewVehicleService(repo VehicleRepository, subs SubscriptionReader, notifier Notifier, log *slog.Logger) *VehicleService {
	return &VehicleService{
		repo:     repo,
		subs:     subs,
		notifier: notifier,
		log:      log,
	}
}

// ProjectVehicle строит проекцию объявления. E-mail владельца виден только
// самому владельцу и администраторам.
func ProjectVehicle(row repository.VehicleRow, req Requester, premiumOwners map[string]bool) models.VehicleView {
	owner := models.OwnerInfo{
		ID:   row.UserID,
		Name: row.OwnerName,
	}
	if req.ID == row.UserID || models.IsAdminRole(req.Role) {
		email := row.OwnerEmail
		owner.Email = &email
	}
	images := row.Images
	if images == nil {
		images = []string{}
	}
	return models.VehicleView{
		ID:            row.ID,
		Title:         row.Title,
		Brand:         row.Brand,
		Model:         row.Model,
		Year:          row.Year,
		Price:         row.Price,
		Type:          row.Type,
		FuelType:      row.FuelType,
		Transmission:  row.Transmission,
		Condition:     row.Condition,
		Mileage:       row.Mileage,
		Description:   row.Description,
		Images:        images,
		ContactInfo:   row.Contact,
		Status:        row.Status,
		UserID:        row.UserID,
		IsPremium:     row.IsPremium,
		IsPremiumUser: premiumOwners[row.UserID],
		ApprovedAt:    row.ApprovedAt,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
		Owner:         &owner,
	}
}

// List возвращает страницу объявлений. Не-администраторы видят только
// одобренные объявления, кроме режима "мои объявления".
func (s *VehicleService) List(ctx context.Context, filter models.VehicleFilter, req Requester) ([]models.VehicleView, models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultLimit
	}
	if filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}

	if filter.MyPosts {
		filter.UserID = req.ID
	} else if !models.IsAdminRole(req.Role) {
		approved := models.StatusApproved
		filter.Status = &approved
	}

	rows, total, err := s.repo.ListVehicles(ctx, filter)
	if err != nil {
		return nil, models.Pagination{}, err
	}

	premiumOwners, err := s.premiumOwners(ctx, rows)
	if err != nil {
		return nil, models.Pagination{}, err
	}

	views := make([]models.VehicleView, 0, len(rows))
	for _, row := range rows {
		views = append(views, ProjectVehicle(row, req, premiumOwners))
	}

	totalPages := (total + filter.Limit - 1) / filter.Limit
	return views, models.Pagination{
		Page:       filter.Page,
		Limit:      filter.Limit,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

func (s *VehicleService) premiumOwners(ctx context.Context, rows []repository.VehicleRow) (map[string]bool, error) {
	ownerIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		ownerIDs = append(ownerIDs, row.UserID)
	}
	return s.repo.ActiveSubscriberIDs(ctx, ownerIDs)
}

// GetByID возвращает объявление по идентификатору.
func (s *VehicleService) GetByID(ctx context.Context, id int, req Requester) (*models.VehicleView, error) {
	row, err := s.repo.GetVehicleByID(ctx, id)
	if err != nil {
		return nil, err
	}
	premiumOwners, err := s.repo.ActiveSubscriberIDs(ctx, []string{row.UserID})
	if err != nil {
		return nil, err
	}
	view := ProjectVehicle(*row, req, premiumOwners)
	return &view, nil
}

func validateVehicleInput(req models.DummyVehicle) error {
	if req.Title == "" {
		return apperr.Validation("title", "must not be empty")
	}
	if req.Brand == "" {
		return apperr.Validation("brand", "must not be empty")
	}
	if req.Model == "" {
		return apperr.Validation("model", "must not be empty")
	}
	if req.Description == "" {
		return apperr.Validation("description", "must not be empty")
	}
	currentYear := time.Now().Year()
	if req.Year < 1900 || req.Year > currentYear+1 {
		return apperr.Validation("year", fmt.Sprintf("must be between 1900 and %d", currentYear+1))
	}
	if req.Price <= 0 {
		return apperr.Validation("price", "must be greater than zero")
	}
	if req.Mileage < 0 {
		return apperr.Validation("mileage", "must not be negative")
	}
	if _, err := models.ParseCondition(req.Condition); err != nil {
		return apperr.Validation("condition", "must be one of USED, BRANDNEW, REFURBISHED")
	}
	if req.ContactInfo.Phone == "" || req.ContactInfo.Email == "" || req.ContactInfo.Location == "" {
		return apperr.Validation("contact_info", "phone, email and location are required")
	}
	return nil
}

func vehicleFromInput(req models.DummyVehicle, ownerID string) models.Vehicle {
	return models.Vehicle{
		Title:        req.Title,
		Brand:        req.Brand,
		Model:        req.Model,
		Year:         req.Year,
		Price:        req.Price,
		Type:         req.Type,
		FuelType:     req.FuelType,
		Transmission: req.Transmission,
		Condition:    models.Condition(req.Condition),
		Mileage:      req.Mileage,
		Description:  req.Description,
		Images:       req.Images,
		Contact:      req.ContactInfo,
		Status:       models.StatusPending,
		UserID:       ownerID,
	}
}

// Create создает объявление в статусе pending. При наличии у владельца
// действующей подписки с остатком публикаций списывает одну публикацию и
// помечает объявление премиальным.
func (s *VehicleService) Create(ctx context.Context, req models.DummyVehicle, ownerID string) (*models.VehicleView, error) {
	if err := validateVehicleInput(req); err != nil {
		return nil, err
	}

	vehicle := vehicleFromInput(req, ownerID)

	var id int
	sub, err := s.subs.GetUsableSubscription(ctx, ownerID)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	if sub != nil && sub.PostCount > 0 {
		var isPremium bool
		id, isPremium, err = s.repo.CreateVehicleWithQuota(ctx, vehicle, sub.ID)
		if err != nil {
			return nil, err
		}
		if isPremium && sub.PostCount == 1 {
			s.notifier.Notify(ctx, ownerID, models.NotificationSubscriptionSpent,
				"Subscription exhausted",
				"Your subscription post limit has been used up and the subscription is now cancelled.",
				sub.ID)
		}
		s.log.Info("created vehicle", slog.Int("id", id), slog.Bool("is_premium", isPremium))
	} else {
		id, err = s.repo.CreateVehicle(ctx, vehicle)
		if err != nil {
			return nil, err
		}
		s.log.Info("created vehicle", slog.Int("id", id), slog.Bool("is_premium", false))
	}

	return s.GetByID(ctx, id, Requester{ID: ownerID})
}

func mergeVehicleUpdate(current models.Vehicle, req models.DummyVehicleUpdate) (models.Vehicle, error) {
	if req.Title != "" {
		current.Title = req.Title
	}
	if req.Brand != "" {
		current.Brand = req.Brand
	}
	if req.Model != "" {
		current.Model = req.Model
	}
	if req.Year != nil {
		currentYear := time.Now().Year()
		if *req.Year < 1900 || *req.Year > currentYear+1 {
			return current, apperr.Validation("year", fmt.Sprintf("must be between 1900 and %d", currentYear+1))
		}
		current.Year = *req.Year
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			return current, apperr.Validation("price", "must be greater than zero")
		}
		current.Price = *req.Price
	}
	if req.Type != "" {
		current.Type = req.Type
	}
	if req.FuelType != "" {
		current.FuelType = req.FuelType
	}
	if req.Transmission != "" {
		current.Transmission = req.Transmission
	}
	if req.Condition != "" {
		condition, err := models.ParseCondition(req.Condition)
		if err != nil {
			return current, apperr.Validation("condition", "must be one of USED, BRANDNEW, REFURBISHED")
		}
		current.Condition = condition
	}
	if req.Mileage != nil {
		if *req.Mileage < 0 {
			return current, apperr.Validation("mileage", "must not be negative")
		}
		current.Mileage = *req.Mileage
	}
	if req.Description != "" {
		current.Description = req.Description
	}
	if req.Images != nil {
		current.Images = req.Images
	}
	if req.ContactInfo != nil {
		if req.ContactInfo.Phone != "" {
			current.Contact.Phone = req.ContactInfo.Phone
		}
		if req.ContactInfo.Email != "" {
			current.Contact.Email = req.ContactInfo.Email
		}
		if req.ContactInfo.Location != "" {
			current.Contact.Location = req.ContactInfo.Location
		}
	}
	return current, nil
}

// Update выполняет частичное обновление объявления владельцем. Разрешено
// только для собственных объявлений в статусе pending.
func (s *VehicleService) Update(ctx context.Context, id int, req models.DummyVehicleUpdate, requesterID string) (*models.VehicleView, error) {
	row, err := s.repo.GetVehicleByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if row.UserID != requesterID {
		return nil, fmt.Errorf("vehicle %d is not owned by requester: %w", id, apperr.ErrNotFound)
	}
	if row.Status != models.StatusPending {
		return nil, fmt.Errorf("vehicle %d is not pending: %w", id, apperr.ErrInvalidState)
	}

	merged, err := mergeVehicleUpdate(row.Vehicle, req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateVehicle(ctx, merged); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id, Requester{ID: requesterID})
}

// Delete удаляет объявление владельцем. Разрешено только для собственных
// объявлений в статусе pending.
func (s *VehicleService) Delete(ctx context.Context, id int, requesterID string) error {
	row, err := s.repo.GetVehicleByID(ctx, id)
	if err != nil {
		return err
	}
	if row.UserID != requesterID {
		return fmt.Errorf("vehicle %d is not owned by requester: %w", id, apperr.ErrNotFound)
	}
	if row.Status != models.StatusPending {
		return fmt.Errorf("vehicle %d is not pending: %w", id, apperr.ErrInvalidState)
	}
	return s.repo.DeleteVehicleCascade(ctx, id)
}

func (s *VehicleService) notifyModeration(ctx context.Context, row *repository.VehicleRow, status models.VehicleStatus) {
	switch status {
	case models.StatusApproved:
		s.notifier.Notify(ctx, row.UserID, models.NotificationVehicleApproved,
			"Listing approved",
			fmt.Sprintf("Your listing %q has been approved and is now visible.", row.Title),
			fmt.Sprintf("%d", row.ID))
	case models.StatusRejected:
		s.notifier.Notify(ctx, row.UserID, models.NotificationVehicleRejected,
			"Listing rejected",
			fmt.Sprintf("Your listing %q has been rejected by moderation.", row.Title),
			fmt.Sprintf("%d", row.ID))
	}
}

// AdminSetStatus безусловно переводит объявление в статус. Повторное
// одобрение не сбрасывает время первого одобрения. Владелец получает
// уведомление о решении модерации.
func (s *VehicleService) AdminSetStatus(ctx context.Context, id int, status models.VehicleStatus) error {
	if err := s.repo.SetVehicleStatus(ctx, id, status); err != nil {
		return err
	}
	row, err := s.repo.GetVehicleByID(ctx, id)
	if err != nil {
		s.log.Warn("failed to load vehicle for notification", slog.Int("id", id), sl.Err(err))
		return nil
	}
	s.notifyModeration(ctx, row, status)
	return nil
}

// AdminBulkSetStatus переводит набор объявлений в статус одной транзакцией
// и уведомляет владельцев.
func (s *VehicleService) AdminBulkSetStatus(ctx context.Context, ids []int, status models.VehicleStatus) error {
	if err := s.repo.BulkSetVehicleStatus(ctx, ids, status); err != nil {
		return err
	}
	for _, id := range ids {
		row, err := s.repo.GetVehicleByID(ctx, id)
		if err != nil {
			s.log.Warn("failed to load vehicle for notification", slog.Int("id", id), sl.Err(err))
			continue
		}
		s.notifyModeration(ctx, row, status)
	}
	return nil
}

// AdminBulkDelete удаляет набор объявлений с каскадом одной транзакцией.
func (s *VehicleService) AdminBulkDelete(ctx context.Context, ids []int) error {
	return s.repo.BulkDeleteVehicles(ctx, ids)
}

// AdminUpdate — частичное обновление любого объявления администратором без
// ограничения по статусу. Может менять статус: первое одобрение проставляет
// время одобрения, повторные его не сдвигают.
func (s *VehicleService) AdminUpdate(ctx context.Context, id int, req models.DummyVehicleUpdate) (*models.VehicleView, error) {
	row, err := s.repo.GetVehicleByID(ctx, id)
	if err != nil {
		return nil, err
	}

	merged, err := mergeVehicleUpdate(row.Vehicle, req)
	if err != nil {
		return nil, err
	}

	var notify *models.VehicleStatus
	if req.Status != "" {
		status, err := models.ParseVehicleStatus(req.Status)
		if err != nil {
			return nil, apperr.Validation("status", "must be one of pending, approved, rejected")
		}
		if status != merged.Status {
			if status == models.StatusApproved && merged.ApprovedAt == nil {
				now := time.Now().UTC()
				merged.ApprovedAt = &now
			}
			merged.Status = status
			notify = &status
		}
	}

	if err := s.repo.UpdateVehicle(ctx, merged); err != nil {
		return nil, err
	}
	if notify != nil {
		s.notifyModeration(ctx, row, *notify)
	}
	return s.GetByID(ctx, id, Requester{Role: models.RoleAdmin})
}

// AdminCreateForUser создает объявление от имени указанного пользователя,
// при необходимости сразу переводя его в заданный статус.
func (s *VehicleService) AdminCreateForUser(ctx context.Context, req models.DummyVehicle, ownerID string, status string) (*models.VehicleView, error) {
	if err := validateVehicleInput(req); err != nil {
		return nil, err
	}

	vehicle := vehicleFromInput(req, ownerID)
	id, err := s.repo.CreateVehicle(ctx, vehicle)
	if err != nil {
		return nil, err
	}

	if status != "" && status != string(models.StatusPending) {
		parsed, err := models.ParseVehicleStatus(status)
		if err != nil {
			return nil, apperr.Validation("status", "must be one of pending, approved, rejected")
		}
		if err := s.repo.SetVehicleStatus(ctx, id, parsed); err != nil {
			return nil, err
		}
	}

	return s.GetByID(ctx, id, Requester{Role: models.RoleAdmin})
}

// AdminTable возвращает облегчённую проекцию всех объявлений.
func (s *VehicleService) AdminTable(ctx context.Context) ([]models.VehicleTableRow, error) {
	return s.repo.ListVehicleTable(ctx)
}
