package mongodb

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/event-ticketing/internal/apperrors"
	"github.com/magabrotheeeer/event-ticketing/internal/models"
)

func setupTestStorage(t *testing.T) (*Storage, func()) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("27017/tcp"),
			wait.ForLog("Waiting for connections"),
		).WithDeadline(3 * time.Minute),
	}

	mongoContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start container")

	port, err := mongoContainer.MappedPort(ctx, "27017")
	require.NoError(t, err, "failed to get port")

	uri := fmt.Sprintf("mongodb://localhost:%s", port.Port())

	// Пробуем подключиться несколько раз с ретраями
	var storage *Storage
	for range 10 {
		storage, err = New(ctx, uri, "event_ticketing_test")
		if err == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")

	cleanup := func() {
		_ = storage.Close(ctx)
		_ = mongoContainer.Terminate(ctx)
	}
	return storage, cleanup
}

func createTestEvent(t *testing.T, storage *Storage, published bool, tiers ...models.TicketTier) string {
	t.Helper()

	id, err := storage.CreateEvent(context.Background(), models.Event{
		Name:        "Go Conference",
		Description: "Annual gathering",
		EventType:   models.EventTypeOther,
		StartDate:   time.Now().Add(24 * time.Hour).UTC(),
		EndDate:     time.Now().Add(30 * time.Hour).UTC(),
		Location: models.Location{
			Venue:   "Expo Hall",
			Address: "1 Main St",
			City:    "Berlin",
			Country: "Germany",
		},
		Organizer:   "org-1",
		TicketTiers: tiers,
		Published:   published,
		CreatedAt:   time.Now().UTC(),
	})
	require.NoError(t, err)
	return id
}

func TestStorage_RegisterUser_DuplicateEmail(t *testing.T) {
	storage, cleanup := setupTestStorage(t)
	defer cleanup()

	ctx := context.Background()
	user := models.User{
		Name:         "alice",
		Email:        "alice@example.com",
		PasswordHash: "hashedpassword",
		Role:         models.RoleUser,
		ActiveRole:   models.RoleUser,
		CreatedAt:    time.Now().UTC(),
	}

	id, err := storage.RegisterUser(ctx, user)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	_, err = storage.RegisterUser(ctx, user)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	got, err := storage.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
}

func TestStorage_ReserveTier(t *testing.T) {
	storage, cleanup := setupTestStorage(t)
	defer cleanup()

	ctx := context.Background()
	eventID := createTestEvent(t, storage, true, models.TicketTier{
		ID:       uuid.New().String(),
		Name:     "GA",
		Price:    20,
		Quantity: 2,
	})

	require.NoError(t, storage.ReserveTier(ctx, eventID, "GA", 1))
	require.NoError(t, storage.ReserveTier(ctx, eventID, "GA", 1))

	err := storage.ReserveTier(ctx, eventID, "GA", 1)
	assert.ErrorIs(t, err, apperrors.ErrCapacityExceeded)

	err = storage.ReserveTier(ctx, eventID, "VIP", 1)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	err = storage.ReserveTier(ctx, "missing-event", "GA", 1)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	event, err := storage.GetEventByID(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, 2, event.TicketTiers[0].QuantitySold)
}

func TestStorage_ReserveTier_Unpublished(t *testing.T) {
	storage, cleanup := setupTestStorage(t)
	defer cleanup()

	eventID := createTestEvent(t, storage, false, models.TicketTier{
		ID:       uuid.New().String(),
		Name:     "GA",
		Price:    20,
		Quantity: 10,
	})

	err := storage.ReserveTier(context.Background(), eventID, "GA", 1)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestStorage_ReserveTier_Concurrent(t *testing.T) {
	storage, cleanup := setupTestStorage(t)
	defer cleanup()

	ctx := context.Background()
	eventID := createTestEvent(t, storage, true, models.TicketTier{
		ID:       uuid.New().String(),
		Name:     "GA",
		Price:    20,
		Quantity: 10,
	})

	const buyers = 30

	var wg sync.WaitGroup
	results := make(chan error, buyers)
	for range buyers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- storage.ReserveTier(ctx, eventID, "GA", 1)
		}()
	}
	wg.Wait()
	close(results)

	var succeeded int
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, apperrors.ErrCapacityExceeded)
		}
	}
	assert.Equal(t, 10, succeeded)

	event, err := storage.GetEventByID(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, 10, event.TicketTiers[0].QuantitySold)
}

func TestStorage_ReleaseTier_Clamp(t *testing.T) {
	storage, cleanup := setupTestStorage(t)
	defer cleanup()

	ctx := context.Background()
	eventID := createTestEvent(t, storage, true, models.TicketTier{
		ID:       uuid.New().String(),
		Name:     "GA",
		Price:    20,
		Quantity: 10,
	})

	require.NoError(t, storage.ReserveTier(ctx, eventID, "GA", 3))
	require.NoError(t, storage.ReleaseTier(ctx, eventID, "GA", 5))

	event, err := storage.GetEventByID(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, 0, event.TicketTiers[0].QuantitySold)
}

func TestStorage_CreateTicket_DuplicateCode(t *testing.T) {
	storage, cleanup := setupTestStorage(t)
	defer cleanup()

	ctx := context.Background()
	ticket := models.Ticket{
		Event:        "ev-1",
		User:         "u-1",
		TicketType:   "GA",
		TicketPrice:  20,
		Quantity:     1,
		PurchaseDate: time.Now().UTC(),
		Status:       models.TicketStatusActive,
		TicketCode:   "EV1-AAAA1111",
	}

	_, err := storage.CreateTicket(ctx, ticket)
	require.NoError(t, err)

	_, err = storage.CreateTicket(ctx, ticket)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateCode)
}

func TestStorage_CheckInTicket(t *testing.T) {
	storage, cleanup := setupTestStorage(t)
	defer cleanup()

	ctx := context.Background()
	id, err := storage.CreateTicket(ctx, models.Ticket{
		Event:        "ev-1",
		User:         "u-1",
		TicketType:   "GA",
		TicketPrice:  20,
		Quantity:     2,
		PurchaseDate: time.Now().UTC(),
		Status:       models.TicketStatusActive,
		TicketCode:   "EV1-BBBB2222",
	})
	require.NoError(t, err)

	at := time.Now().UTC()
	require.NoError(t, storage.CheckInTicket(ctx, id, at))

	got, err := storage.GetTicketByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusUsed, got.Status)
	require.NotNil(t, got.CheckInTime)
	assert.WithinDuration(t, at, *got.CheckInTime, time.Second)

	// Повторное сканирование того же кода
	err = storage.CheckInTicket(ctx, id, time.Now().UTC())
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestStorage_ListTicketsByUser_Order(t *testing.T) {
	storage, cleanup := setupTestStorage(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Millisecond)
	for i, code := range []string{"EV1-CCCC0001", "EV1-CCCC0002", "EV1-CCCC0003"} {
		_, err := storage.CreateTicket(ctx, models.Ticket{
			Event:        "ev-1",
			User:         "u-1",
			TicketType:   "GA",
			TicketPrice:  20,
			Quantity:     1,
			PurchaseDate: base.Add(time.Duration(i) * time.Minute),
			Status:       models.TicketStatusActive,
			TicketCode:   code,
		})
		require.NoError(t, err)
	}

	tickets, err := storage.ListTicketsByUser(ctx, "u-1")
	require.NoError(t, err)
	require.Len(t, tickets, 3)

	// Сначала последняя покупка
	assert.Equal(t, "EV1-CCCC0003", tickets[0].TicketCode)
	assert.Equal(t, "EV1-CCCC0001", tickets[2].TicketCode)
}
