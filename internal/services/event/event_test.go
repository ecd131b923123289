package event_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/event-ticketing/internal/apperrors"
	"github.com/magabrotheeeer/event-ticketing/internal/models"
	"github.com/magabrotheeeer/event-ticketing/internal/services/event"
)

// Мок для EventRepository
type EventRepoMock struct {
	mock.Mock
}

func (m *EventRepoMock) CreateEvent(ctx context.Context, e models.Event) (string, error) {
	args := m.Called(ctx, e)
	return args.String(0), args.Error(1)
}

func (m *EventRepoMock) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *EventRepoMock) ListEvents(ctx context.Context, filter models.EventFilter) ([]*models.Event, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.Event), args.Int(1), args.Error(2)
}

func (m *EventRepoMock) ListEventsByOrganizer(ctx context.Context, organizerID string) ([]*models.Event, error) {
	args := m.Called(ctx, organizerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Event), args.Error(1)
}

func (m *EventRepoMock) UpdateEvent(ctx context.Context, e models.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *EventRepoMock) DeleteEvent(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *EventRepoMock) SetPublished(ctx context.Context, id string, published bool) (*models.Event, error) {
	args := m.Called(ctx, id, published)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

// Мок для Cache — кеш-промахи по умолчанию
type CacheMock struct {
	mock.Mock
}

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *CacheMock) Invalidate(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func validRequest() models.DummyEvent {
	return models.DummyEvent{
		Name:        "Go Conference",
		Description: "Annual community meetup",
		StartDate:   time.Now().Add(24 * time.Hour),
		EndDate:     time.Now().Add(30 * time.Hour),
		Location: models.Location{
			Venue:   "Expo Hall",
			Address: "Main st. 1",
			City:    "Berlin",
			Country: "Germany",
		},
		TicketTiers: []models.DummyTier{
			{Name: "GA", Price: 20, Quantity: 100},
			{Name: "VIP", Price: 50, Quantity: 10},
		},
	}
}

func TestService_Create(t *testing.T) {
	caller := models.Identity{UserID: "org-1", Role: models.RoleOrganizer}

	t.Run("organizer is forced to caller and defaults applied", func(t *testing.T) {
		repo := new(EventRepoMock)
		repo.On("CreateEvent", mock.Anything, mock.MatchedBy(func(e models.Event) bool {
			return e.Organizer == "org-1" &&
				e.EventType == models.EventTypeOther &&
				e.ImageURL == models.DefaultImageURL &&
				len(e.TicketTiers) == 2 &&
				e.TicketTiers[0].ID != ""
		})).Return("ev-1", nil).Once()

		svc := event.New(repo, new(CacheMock), discardLogger())
		created, err := svc.Create(context.Background(), caller, validRequest())
		require.NoError(t, err)
		assert.Equal(t, "ev-1", created.ID)
		assert.Equal(t, models.EventStatusUpcoming, created.Status)

		repo.AssertExpectations(t)
	})

	t.Run("duplicate tier names are rejected", func(t *testing.T) {
		req := validRequest()
		req.TicketTiers = []models.DummyTier{
			{Name: "GA", Price: 20, Quantity: 100},
			{Name: "GA", Price: 50, Quantity: 10},
		}
		svc := event.New(new(EventRepoMock), new(CacheMock), discardLogger())
		_, err := svc.Create(context.Background(), caller, req)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("end date before start date is rejected", func(t *testing.T) {
		req := validRequest()
		req.EndDate = req.StartDate.Add(-time.Hour)
		svc := event.New(new(EventRepoMock), new(CacheMock), discardLogger())
		_, err := svc.Create(context.Background(), caller, req)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}

func TestService_List_VisibilityForcing(t *testing.T) {
	tests := []struct {
		name          string
		caller        *models.Identity
		wantPublished bool
	}{
		{name: "anonymous sees only published", caller: nil, wantPublished: true},
		{name: "plain user sees only published",
			caller: &models.Identity{UserID: "u1", Role: models.RoleUser}, wantPublished: true},
		{name: "organizer is not forced",
			caller: &models.Identity{UserID: "org-1", Role: models.RoleOrganizer}, wantPublished: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(EventRepoMock)
			repo.On("ListEvents", mock.Anything, mock.MatchedBy(func(f models.EventFilter) bool {
				if tt.wantPublished {
					return f.Published != nil && *f.Published
				}
				return f.Published == nil
			})).Return([]*models.Event{}, 0, nil).Once()

			svc := event.New(repo, new(CacheMock), discardLogger())
			_, err := svc.List(context.Background(), tt.caller, models.EventFilter{}, "", 1, 10)
			require.NoError(t, err)

			repo.AssertExpectations(t)
		})
	}
}

func TestService_List_Pagination(t *testing.T) {
	repo := new(EventRepoMock)
	repo.On("ListEvents", mock.Anything, mock.MatchedBy(func(f models.EventFilter) bool {
		return f.Limit == 10 && f.Offset == 20
	})).Return([]*models.Event{}, 25, nil).Once()

	svc := event.New(repo, new(CacheMock), discardLogger())
	res, err := svc.List(context.Background(),
		&models.Identity{Role: models.RoleAdmin}, models.EventFilter{}, "", 3, 10)
	require.NoError(t, err)
	assert.Equal(t, 25, res.TotalEvents)
	assert.Equal(t, 3, res.NumOfPages)
	assert.Equal(t, 3, res.CurrentPage)
}

func TestService_GetByID_Visibility(t *testing.T) {
	unpublished := &models.Event{
		ID:        "ev-1",
		Organizer: "org-1",
		Published: false,
		StartDate: time.Now().Add(time.Hour),
		EndDate:   time.Now().Add(2 * time.Hour),
	}

	tests := []struct {
		name    string
		caller  *models.Identity
		wantErr error
	}{
		{name: "anonymous gets unauthorized", caller: nil, wantErr: apperrors.ErrUnauthorized},
		{name: "stranger gets forbidden",
			caller:  &models.Identity{UserID: "u2", Role: models.RoleUser},
			wantErr: apperrors.ErrForbidden},
		{name: "owner sees own draft",
			caller: &models.Identity{UserID: "org-1", Role: models.RoleOrganizer}},
		{name: "admin sees any draft",
			caller: &models.Identity{UserID: "adm", Role: models.RoleAdmin}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(EventRepoMock)
			repo.On("GetEventByID", mock.Anything, "ev-1").Return(unpublished, nil).Once()
			cache := new(CacheMock)
			cache.On("Get", "event:ev-1", mock.Anything).Return(false, nil).Once()
			cache.On("Set", "event:ev-1", mock.Anything, time.Hour).Return(nil).Once()

			svc := event.New(repo, cache, discardLogger())
			got, err := svc.GetByID(context.Background(), tt.caller, "ev-1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, models.EventStatusUpcoming, got.Status)
			}
		})
	}
}

func TestService_Update_PreservesQuantitySold(t *testing.T) {
	existing := &models.Event{
		ID:        "ev-1",
		Organizer: "org-1",
		EventType: models.EventTypeMusic,
		ImageURL:  "http://img",
		TicketTiers: []models.TicketTier{
			{ID: "t1", Name: "GA", Price: 20, Quantity: 100, QuantitySold: 42},
		},
		CreatedAt: time.Now().Add(-time.Hour),
	}

	repo := new(EventRepoMock)
	repo.On("GetEventByID", mock.Anything, "ev-1").Return(existing, nil).Once()
	repo.On("UpdateEvent", mock.Anything, mock.MatchedBy(func(e models.Event) bool {
		ga := e.TicketTiers[0]
		return e.Organizer == "org-1" &&
			ga.ID == "t1" && ga.QuantitySold == 42 && ga.Price == 25 &&
			e.TicketTiers[1].QuantitySold == 0
	})).Return(nil).Once()
	cache := new(CacheMock)
	cache.On("Invalidate", "event:ev-1").Return(nil).Once()

	req := validRequest()
	req.TicketTiers = []models.DummyTier{
		{Name: "GA", Price: 25, Quantity: 100},
		{Name: "VIP", Price: 50, Quantity: 10},
	}

	svc := event.New(repo, cache, discardLogger())
	caller := models.Identity{UserID: "org-1", Role: models.RoleOrganizer}
	updated, err := svc.Update(context.Background(), caller, "ev-1", req)
	require.NoError(t, err)
	assert.Equal(t, 42, updated.TicketTiers[0].QuantitySold)

	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestService_Update_Forbidden(t *testing.T) {
	existing := &models.Event{ID: "ev-1", Organizer: "org-1"}

	repo := new(EventRepoMock)
	repo.On("GetEventByID", mock.Anything, "ev-1").Return(existing, nil).Once()

	svc := event.New(repo, new(CacheMock), discardLogger())
	caller := models.Identity{UserID: "org-2", Role: models.RoleOrganizer}
	_, err := svc.Update(context.Background(), caller, "ev-1", validRequest())
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestService_TogglePublish(t *testing.T) {
	existing := &models.Event{ID: "ev-1", Organizer: "org-1", Published: false}
	published := &models.Event{ID: "ev-1", Organizer: "org-1", Published: true,
		StartDate: time.Now().Add(time.Hour), EndDate: time.Now().Add(2 * time.Hour)}

	repo := new(EventRepoMock)
	repo.On("GetEventByID", mock.Anything, "ev-1").Return(existing, nil).Once()
	repo.On("SetPublished", mock.Anything, "ev-1", true).Return(published, nil).Once()
	cache := new(CacheMock)
	cache.On("Invalidate", "event:ev-1").Return(nil).Once()

	svc := event.New(repo, cache, discardLogger())
	caller := models.Identity{UserID: "org-1", Role: models.RoleOrganizer}
	got, err := svc.TogglePublish(context.Background(), caller, "ev-1")
	require.NoError(t, err)
	assert.True(t, got.Published)

	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}
