// Package services содержит бизнес-логику избранного: уникальные пары
// «пользователь — объявление», доступные только для одобренных объявлений.
package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/avtoradar/marketplace-api/internal/lib/apperr"
	"github.com/avtoradar/marketplace-api/internal/models"
	vehicleservice "github.com/avtoradar/marketplace-api/internal/services/vehicle"
	"github.com/avtoradar/marketplace-api/internal/storage/repository"
)

// FavoriteRepository описывает контракт работы с избранным в хранилище.
type FavoriteRepository interface {
	// AddFavorite сохраняет пару, при дубликате возвращает ErrConflict.
	AddFavorite(ctx context.Context, fav models.Favorite) error
	// RemoveFavorite удаляет пару, при отсутствии возвращает ErrNotFound.
	RemoveFavorite(ctx context.Context, userID string, vehicleID int) error
	// IsFavorite сообщает, есть ли объявление в избранном пользователя.
	IsFavorite(ctx context.Context, userID string, vehicleID int) (bool, error)
	// ListFavoriteVehicles возвращает одобренные объявления из избранного.
	ListFavoriteVehicles(ctx context.Context, userID string) ([]repository.VehicleRow, error)
	// ActiveSubscriberIDs возвращает владельцев с действующей подпиской.
	ActiveSubscriberIDs(ctx context.Context, userIDs []string) (map[string]bool, error)
}

// VehicleReader описывает доступ к объявлению для проверки его статуса.
type VehicleReader interface {
	GetVehicleByID(ctx context.Context, id int) (*repository.VehicleRow, error)
}

// FavoriteService реализует операции над избранным.
type FavoriteService struct {
	repo     FavoriteRepository
	vehicles VehicleReader
}

// NewFavoriteService создает новый экземпляр FavoriteService.
func NewFavoriteService(repo FavoriteRepository, vehicles VehicleReader) *FavoriteService {
	return &FavoriteService{
		repo:     repo,
		vehicles: vehicles,
	}
}

// Add добавляет одобренное объявление в избранное пользователя.
// Неодобренные объявления в избранное не попадают.
func (s *FavoriteService) Add(ctx context.Context, userID string, vehicleID int) error {
	row, err := s.vehicles.GetVehicleByID(ctx, vehicleID)
	if err != nil {
		return err
	}
	if row.Status != models.StatusApproved {
		return fmt.Errorf("vehicle %d is not approved: %w", vehicleID, apperr.ErrNotFound)
	}

	return s.repo.AddFavorite(ctx, models.Favorite{
		ID:        uuid.NewString(),
		UserID:    userID,
		VehicleID: vehicleID,
	})
}

// Remove удаляет объявление из избранного пользователя.
func (s *FavoriteService) Remove(ctx context.Context, userID string, vehicleID int) error {
	return s.repo.RemoveFavorite(ctx, userID, vehicleID)
}

// IsFavorite сообщает, есть ли объявление в избранном пользователя.
func (s *FavoriteService) IsFavorite(ctx context.Context, userID string, vehicleID int) (bool, error) {
	return s.repo.IsFavorite(ctx, userID, vehicleID)
}

// ListForUser возвращает одобренные объявления из избранного пользователя,
// недавно добавленные первыми.
func (s *FavoriteService) ListForUser(ctx context.Context, userID string) ([]models.VehicleView, error) {
	rows, err := s.repo.ListFavoriteVehicles(ctx, userID)
	if err != nil {
		return nil, err
	}

	ownerIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		ownerIDs = append(ownerIDs, row.UserID)
	}
	premiumOwners, err := s.repo.ActiveSubscriberIDs(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}

	req := vehicleservice.Requester{ID: userID}
	views := make([]models.VehicleView, 0, len(rows))
	for _, row := range rows {
		views = append(views, vehicleservice.ProjectVehicle(row, req, premiumOwners))
	}
	return views, nil
}
