package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/avtoradar/marketplace-api/internal/lib/apperr"
	"github.com/avtoradar/marketplace-api/internal/models"
	"github.com/avtoradar/marketplace-api/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) ListVehicles(ctx context.Context, filter models.VehicleFilter) ([]repository.VehicleRow, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]repository.VehicleRow), args.Int(1), args.Error(2)
}
func (m *RepoMock) GetVehicleByID(ctx context.Context, id int) (*repository.VehicleRow, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.VehicleRow), args.Error(1)
}
func (m *RepoMock) CreateVehicle(ctx context.Context, v models.Vehicle) (int, error) {
	args := m.Called(ctx, v)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) CreateVehicleWithQuota(ctx context.Context, v models.Vehicle, subscriptionID string) (int, bool, error) {
	args := m.Called(ctx, v, subscriptionID)
	return args.Int(0), args.Bool(1), args.Error(2)
}
func (m *RepoMock) UpdateVehicle(ctx context.Context, v models.Vehicle) error {
	return m.Called(ctx, v).Error(0)
}
func (m *RepoMock) SetVehicleStatus(ctx context.Context, id int, status models.VehicleStatus) error {
	return m.Called(ctx, id, status).Error(0)
}
func (m *RepoMock) BulkSetVehicleStatus(ctx context.Context, ids []int, status models.VehicleStatus) error {
	return m.Called(ctx, ids, status).Error(0)
}
func (m *RepoMock) DeleteVehicleCascade(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}
func (m *RepoMock) BulkDeleteVehicles(ctx context.Context, ids []int) error {
	return m.Called(ctx, ids).Error(0)
}
func (m *RepoMock) ListVehicleTable(ctx context.Context) ([]models.VehicleTableRow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.VehicleTableRow), args.Error(1)
}
func (m *RepoMock) ActiveSubscriberIDs(ctx context.Context, userIDs []string) (map[string]bool, error) {
	args := m.Called(ctx, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]bool), args.Error(1)
}

type SubsMock struct{ mock.Mock }

func (m *SubsMock) GetUsableSubscription(ctx context.Context, userID string) (*models.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

type NotifierMock struct{ mock.Mock }

func (m *NotifierMock) Notify(ctx context.Context, userID, ntype, title, message, entityID string) {
	m.Called(ctx, userID, ntype, title, message, entityID)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func validInput() models.DummyVehicle {
	return models.DummyVehicle{
		Title:       "Toyota Camry 2020",
		Brand:       "Toyota",
		Model:       "Camry",
		Year:        2020,
		Price:       25000,
		Type:        "car",
		Condition:   "USED",
		Mileage:     40000,
		Description: "Well maintained",
		ContactInfo: models.ContactInfo{Phone: "+123", Email: "seller@example.com", Location: "Berlin"},
	}
}

func pendingRow(id int, ownerID string) *repository.VehicleRow {
	return &repository.VehicleRow{
		Vehicle: models.Vehicle{
			ID:        id,
			Title:     "Toyota Camry 2020",
			Brand:     "Toyota",
			Model:     "Camry",
			Year:      2020,
			Price:     25000,
			Condition: models.ConditionUsed,
			Status:    models.StatusPending,
			UserID:    ownerID,
		},
		OwnerName:  "Seller",
		OwnerEmail: "seller@example.com",
		OwnerRole:  models.RoleUser,
	}
}

func TestVehicleService_Create(t *testing.T) {
	tests := []struct {
		name           string
		setupMocks     func(r *RepoMock, s *SubsMock, n *NotifierMock)
		req            models.DummyVehicle
		wantValidation bool
	}{
		{
			name: "without subscription creates ordinary listing",
			setupMocks: func(r *RepoMock, s *SubsMock, _ *NotifierMock) {
				s.On("GetUsableSubscription", mock.Anything, "owner-1").
					Return(nil, apperr.ErrNotFound).Once()
				r.On("CreateVehicle", mock.Anything, mock.MatchedBy(func(v models.Vehicle) bool {
					return v.Status == models.StatusPending && v.UserID == "owner-1" && !v.IsPremium
				})).Return(10, nil).Once()
				r.On("GetVehicleByID", mock.Anything, 10).Return(pendingRow(10, "owner-1"), nil).Once()
				r.On("ActiveSubscriberIDs", mock.Anything, []string{"owner-1"}).
					Return(map[string]bool{}, nil).Once()
			},
			req: validInput(),
		},
		{
			name: "with subscription spends quota and marks premium",
			setupMocks: func(r *RepoMock, s *SubsMock, _ *NotifierMock) {
				s.On("GetUsableSubscription", mock.Anything, "owner-1").
					Return(&models.Subscription{ID: "sub-1", UserID: "owner-1", PostCount: 3, EndDate: time.Now().Add(time.Hour)}, nil).Once()
				r.On("CreateVehicleWithQuota", mock.Anything, mock.Anything, "sub-1").
					Return(11, true, nil).Once()
				r.On("GetVehicleByID", mock.Anything, 11).Return(pendingRow(11, "owner-1"), nil).Once()
				r.On("ActiveSubscriberIDs", mock.Anything, []string{"owner-1"}).
					Return(map[string]bool{"owner-1": true}, nil).Once()
			},
			req: validInput(),
		},
		{
			name: "last quota spends subscription and notifies owner",
			setupMocks: func(r *RepoMock, s *SubsMock, n *NotifierMock) {
				s.On("GetUsableSubscription", mock.Anything, "owner-1").
					Return(&models.Subscription{ID: "sub-1", UserID: "owner-1", PostCount: 1, EndDate: time.Now().Add(time.Hour)}, nil).Once()
				r.On("CreateVehicleWithQuota", mock.Anything, mock.Anything, "sub-1").
					Return(12, true, nil).Once()
				n.On("Notify", mock.Anything, "owner-1", models.NotificationSubscriptionSpent,
					mock.Anything, mock.Anything, "sub-1").Once()
				r.On("GetVehicleByID", mock.Anything, 12).Return(pendingRow(12, "owner-1"), nil).Once()
				r.On("ActiveSubscriberIDs", mock.Anything, []string{"owner-1"}).
					Return(map[string]bool{}, nil).Once()
			},
			req: validInput(),
		},
		{
			name:       "invalid condition is rejected",
			setupMocks: func(_ *RepoMock, _ *SubsMock, _ *NotifierMock) {},
			req: func() models.DummyVehicle {
				req := validInput()
				req.Condition = "BROKEN"
				return req
			}(),
			wantValidation: true,
		},
		{
			name:       "empty contact info is rejected",
			setupMocks: func(_ *RepoMock, _ *SubsMock, _ *NotifierMock) {},
			req: func() models.DummyVehicle {
				req := validInput()
				req.ContactInfo.Phone = ""
				return req
			}(),
			wantValidation: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			subs := new(SubsMock)
			notifier := new(NotifierMock)
			svc := NewVehicleService(repo, subs, notifier, newNoopLogger())

			tt.setupMocks(repo, subs, notifier)

			view, err := svc.Create(context.Background(), tt.req, "owner-1")
			if tt.wantValidation {
				require.Error(t, err)
				_, ok := apperr.AsValidation(err)
				assert.True(t, ok)
			} else {
				require.NoError(t, err)
				require.NotNil(t, view)
				assert.Equal(t, models.StatusPending, view.Status)
			}

			repo.AssertExpectations(t)
			subs.AssertExpectations(t)
			notifier.AssertExpectations(t)
		})
	}
}

func TestVehicleService_Update_Guards(t *testing.T) {
	tests := []struct {
		name      string
		row       *repository.VehicleRow
		requester string
		wantErr   error
	}{
		{
			name:      "foreign listing looks like missing",
			row:       pendingRow(5, "owner-1"),
			requester: "intruder",
			wantErr:   apperr.ErrNotFound,
		},
		{
			name: "approved listing cannot be edited",
			row: func() *repository.VehicleRow {
				row := pendingRow(5, "owner-1")
				row.Status = models.StatusApproved
				return row
			}(),
			requester: "owner-1",
			wantErr:   apperr.ErrInvalidState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			svc := NewVehicleService(repo, new(SubsMock), new(NotifierMock), newNoopLogger())
			repo.On("GetVehicleByID", mock.Anything, 5).Return(tt.row, nil).Once()

			_, err := svc.Update(context.Background(), 5, models.DummyVehicleUpdate{Title: "New title"}, tt.requester)
			require.ErrorIs(t, err, tt.wantErr)
			repo.AssertExpectations(t)
		})
	}
}

func TestVehicleService_Delete_Guards(t *testing.T) {
	repo := new(RepoMock)
	svc := NewVehicleService(repo, new(SubsMock), new(NotifierMock), newNoopLogger())

	row := pendingRow(7, "owner-1")
	row.Status = models.StatusRejected
	repo.On("GetVehicleByID", mock.Anything, 7).Return(row, nil).Once()

	err := svc.Delete(context.Background(), 7, "owner-1")
	require.ErrorIs(t, err, apperr.ErrInvalidState)

	repo.On("GetVehicleByID", mock.Anything, 7).Return(pendingRow(7, "owner-1"), nil).Once()
	repo.On("DeleteVehicleCascade", mock.Anything, 7).Return(nil).Once()

	err = svc.Delete(context.Background(), 7, "owner-1")
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestVehicleService_List(t *testing.T) {
	approved := models.StatusApproved

	tests := []struct {
		name       string
		filter     models.VehicleFilter
		req        Requester
		wantFilter func(t *testing.T, f models.VehicleFilter)
	}{
		{
			name:   "anonymous request sees only approved with clamped paging",
			filter: models.VehicleFilter{Page: 0, Limit: 500},
			req:    Requester{},
			wantFilter: func(t *testing.T, f models.VehicleFilter) {
				require.NotNil(t, f.Status)
				assert.Equal(t, approved, *f.Status)
				assert.Equal(t, 1, f.Page)
				assert.Equal(t, 100, f.Limit)
			},
		},
		{
			name:   "admin sees any status",
			filter: models.VehicleFilter{Page: 2, Limit: 20},
			req:    Requester{ID: "adm", Role: models.RoleAdmin},
			wantFilter: func(t *testing.T, f models.VehicleFilter) {
				assert.Nil(t, f.Status)
			},
		},
		{
			name:   "my posts binds filter to requester",
			filter: models.VehicleFilter{MyPosts: true},
			req:    Requester{ID: "owner-1", Role: models.RoleUser},
			wantFilter: func(t *testing.T, f models.VehicleFilter) {
				assert.Equal(t, "owner-1", f.UserID)
				assert.Nil(t, f.Status)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			svc := NewVehicleService(repo, new(SubsMock), new(NotifierMock), newNoopLogger())

			var captured models.VehicleFilter
			repo.On("ListVehicles", mock.Anything, mock.MatchedBy(func(f models.VehicleFilter) bool {
				captured = f
				return true
			})).Return([]repository.VehicleRow{}, 0, nil).Once()
			repo.On("ActiveSubscriberIDs", mock.Anything, []string{}).
				Return(map[string]bool{}, nil).Once()

			_, pagination, err := svc.List(context.Background(), tt.filter, tt.req)
			require.NoError(t, err)
			tt.wantFilter(t, captured)
			assert.Equal(t, 0, pagination.Total)
			repo.AssertExpectations(t)
		})
	}
}

func TestProjectVehicle_EmailVisibility(t *testing.T) {
	row := *pendingRow(3, "owner-1")

	tests := []struct {
		name      string
		req       Requester
		wantEmail bool
	}{
		{name: "anonymous does not see email", req: Requester{}},
		{name: "other user does not see email", req: Requester{ID: "other", Role: models.RoleUser}},
		{name: "owner sees own email", req: Requester{ID: "owner-1", Role: models.RoleUser}, wantEmail: true},
		{name: "admin sees email", req: Requester{ID: "adm", Role: models.RoleAdmin}, wantEmail: true},
		{name: "superadmin sees email", req: Requester{ID: "root", Role: models.RoleSuperadmin}, wantEmail: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := ProjectVehicle(row, tt.req, map[string]bool{"owner-1": true})
			require.NotNil(t, view.Owner)
			if tt.wantEmail {
				require.NotNil(t, view.Owner.Email)
				assert.Equal(t, "seller@example.com", *view.Owner.Email)
			} else {
				assert.Nil(t, view.Owner.Email)
			}
			assert.True(t, view.IsPremiumUser)
			assert.NotNil(t, view.Images)
		})
	}
}

func TestVehicleService_AdminSetStatus_NotifiesOwner(t *testing.T) {
	repo := new(RepoMock)
	notifier := new(NotifierMock)
	svc := NewVehicleService(repo, new(SubsMock), notifier, newNoopLogger())

	repo.On("SetVehicleStatus", mock.Anything, 9, models.StatusApproved).Return(nil).Once()
	repo.On("GetVehicleByID", mock.Anything, 9).Return(pendingRow(9, "owner-1"), nil).Once()
	notifier.On("Notify", mock.Anything, "owner-1", models.NotificationVehicleApproved,
		mock.Anything, mock.Anything, "9").Once()

	err := svc.AdminSetStatus(context.Background(), 9, models.StatusApproved)
	require.NoError(t, err)
	repo.AssertExpectations(t)
	notifier.AssertExpectations(t)
}
