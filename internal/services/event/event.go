// Package event содержит бизнес-логику каталога событий: создание,
// публикацию, обновление, листинг с фильтрами и кеширование чтений.
package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/event-ticketing/internal/apperrors"
	"github.com/magabrotheeeer/event-ticketing/internal/models"
)

// EventRepository определяет методы для работы с событиями в хранилище.
type EventRepository interface {
	// CreateEvent сохраняет новое событие и возвращает его ID.
	CreateEvent(ctx context.Context, event models.Event) (string, error)
	// GetEventByID возвращает событие по идентификатору.
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
	// ListEvents возвращает страницу событий и общее число подходящих под фильтр.
	ListEvents(ctx context.Context, filter models.EventFilter) ([]*models.Event, int, error)
	// ListEventsByOrganizer возвращает все события данного организатора.
	ListEventsByOrganizer(ctx context.Context, organizerID string) ([]*models.Event, error)
	// UpdateEvent заменяет событие целиком.
	UpdateEvent(ctx context.Context, event models.Event) error
	// DeleteEvent удаляет событие по идентификатору.
	DeleteEvent(ctx context.Context, id string) error
	// SetPublished выставляет флаг публикации и возвращает обновленное событие.
	SetPublished(ctx context.Context, id string, published bool) (*models.Event, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// ListResult — страница каталога с данными пагинации.
type ListResult struct {
	Events      []*models.Event `json:"events"`
	TotalEvents int             `json:"totalEvents"`
	NumOfPages  int             `json:"numOfPages"`
	CurrentPage int             `json:"currentPage"`
}

// Service реализует бизнес-логику каталога событий, включая кеширование.
type Service struct {
	repo  EventRepository
	cache Cache
	log   *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo EventRepository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

func cacheKey(id string) string {
	return fmt.Sprintf("event:%s", id)
}

// validateTiers проверяет уникальность имен тарифов и присваивает
// идентификаторы новым тарифам.
func validateTiers(tiers []models.DummyTier) ([]models.TicketTier, error) {
	seen := make(map[string]struct{}, len(tiers))
	result := make([]models.TicketTier, 0, len(tiers))
	for _, t := range tiers {
		if _, ok := seen[t.Name]; ok {
			return nil, fmt.Errorf("duplicate ticket tier name %q: %w", t.Name, apperrors.ErrValidation)
		}
		seen[t.Name] = struct{}{}
		result = append(result, models.TicketTier{
			ID:          uuid.New().String(),
			Name:        t.Name,
			Price:       t.Price,
			Quantity:    t.Quantity,
			Description: t.Description,
		})
	}
	return result, nil
}

// Create создает новое событие. Организатором всегда становится
// вызывающий — поле organizer из запроса игнорируется.
func (s *Service) Create(ctx context.Context, caller models.Identity, req models.DummyEvent) (*models.Event, error) {
	const op = "event.Create"

	if !req.EndDate.After(req.StartDate) {
		return nil, fmt.Errorf("%s: end date must be after start date: %w", op, apperrors.ErrValidation)
	}
	tiers, err := validateTiers(req.TicketTiers)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	event := models.Event{
		Name:        req.Name,
		Description: req.Description,
		EventType:   req.EventType,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Location:    req.Location,
		Organizer:   caller.UserID,
		ImageURL:    req.ImageURL,
		TicketTiers: tiers,
		Published:   req.Published,
		CreatedAt:   time.Now().UTC(),
	}
	if event.EventType == "" {
		event.EventType = models.EventTypeOther
	}
	if event.ImageURL == "" {
		event.ImageURL = models.DefaultImageURL
	}

	id, err := s.repo.CreateEvent(ctx, event)
	if err != nil {
		return nil, err
	}
	event.ID = id
	event.Status = models.EventStatusAt(time.Now(), event.StartDate, event.EndDate)

	s.log.Info("created new event", slog.String("id", id))
	return &event, nil
}

// List возвращает страницу каталога. Вызывающие без прав организатора
// (в том числе анонимные) видят только опубликованные события.
// Фильтр по вычисляемому статусу применяется к прочитанной странице.
func (s *Service) List(ctx context.Context, caller *models.Identity, filter models.EventFilter, status string, page, limit int) (*ListResult, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	filter.Limit = limit
	filter.Offset = (page - 1) * limit

	if caller == nil || !caller.IsOrganizer() {
		published := true
		filter.Published = &published
	}

	events, total, err := s.repo.ListEvents(ctx, filter)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	filtered := events[:0]
	for _, e := range events {
		e.Status = models.EventStatusAt(now, e.StartDate, e.EndDate)
		if status != "" && e.Status != status {
			continue
		}
		filtered = append(filtered, e)
	}

	numOfPages := (total + limit - 1) / limit
	return &ListResult{
		Events:      filtered,
		TotalEvents: total,
		NumOfPages:  numOfPages,
		CurrentPage: page,
	}, nil
}

// GetByID возвращает событие, используя кеш или репозиторий.
// Неопубликованные события видны только владельцу и администратору:
// анонимный вызов получает Unauthorized, чужой пользователь — Forbidden.
func (s *Service) GetByID(ctx context.Context, caller *models.Identity, id string) (*models.Event, error) {
	const op = "event.GetByID"

	var event *models.Event
	key := cacheKey(id)
	found, err := s.cache.Get(key, &event)
	if err != nil {
		s.log.Warn("failed to read from cache", slog.String("key", key), slog.Any("err", err))
		found = false
	}
	if !found {
		event, err = s.repo.GetEventByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(key, event, time.Hour); err != nil {
			s.log.Warn("failed to cache event", slog.String("key", key), slog.Any("err", err))
		}
	}

	if !event.Published {
		if caller == nil {
			return nil, fmt.Errorf("%s: %w", op, apperrors.ErrUnauthorized)
		}
		if caller.Role != models.RoleAdmin && caller.UserID != event.Organizer {
			return nil, fmt.Errorf("%s: %w", op, apperrors.ErrForbidden)
		}
	}
	event.Status = models.EventStatusAt(time.Now(), event.StartDate, event.EndDate)
	return event, nil
}

// Update обновляет описательные поля и тарифы события. Владелец и
// организатор не меняются; quantity_sold сохраняется для тарифов,
// совпавших по имени с существующими.
func (s *Service) Update(ctx context.Context, caller models.Identity, id string, req models.DummyEvent) (*models.Event, error) {
	const op = "event.Update"

	existing, err := s.repo.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.CanModifyEvent(existing) {
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrForbidden)
	}
	if !req.EndDate.After(req.StartDate) {
		return nil, fmt.Errorf("%s: end date must be after start date: %w", op, apperrors.ErrValidation)
	}
	tiers, err := validateTiers(req.TicketTiers)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for i := range tiers {
		if old := existing.FindTier(tiers[i].Name); old != nil {
			tiers[i].ID = old.ID
			tiers[i].QuantitySold = old.QuantitySold
		}
	}

	updated := models.Event{
		ID:          existing.ID,
		Name:        req.Name,
		Description: req.Description,
		EventType:   req.EventType,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Location:    req.Location,
		Organizer:   existing.Organizer,
		ImageURL:    req.ImageURL,
		TicketTiers: tiers,
		Published:   req.Published,
		CreatedAt:   existing.CreatedAt,
	}
	if updated.EventType == "" {
		updated.EventType = existing.EventType
	}
	if updated.ImageURL == "" {
		updated.ImageURL = existing.ImageURL
	}

	if err := s.repo.UpdateEvent(ctx, updated); err != nil {
		return nil, err
	}
	s.log.Info("updated event in storage", slog.String("id", id))

	if err := s.cache.Invalidate(cacheKey(id)); err != nil {
		s.log.Warn("failed to invalidate cache", slog.String("key", cacheKey(id)), slog.Any("err", err))
	}

	updated.Status = models.EventStatusAt(time.Now(), updated.StartDate, updated.EndDate)
	return &updated, nil
}

// Delete удаляет событие владельца или любое событие для администратора.
func (s *Service) Delete(ctx context.Context, caller models.Identity, id string) error {
	const op = "event.Delete"

	existing, err := s.repo.GetEventByID(ctx, id)
	if err != nil {
		return err
	}
	if !caller.CanModifyEvent(existing) {
		return fmt.Errorf("%s: %w", op, apperrors.ErrForbidden)
	}
	if err := s.repo.DeleteEvent(ctx, id); err != nil {
		return err
	}
	if err := s.cache.Invalidate(cacheKey(id)); err != nil {
		s.log.Warn("failed to invalidate cache", slog.String("key", cacheKey(id)), slog.Any("err", err))
	}
	return nil
}

// TogglePublish переключает флаг публикации события.
func (s *Service) TogglePublish(ctx context.Context, caller models.Identity, id string) (*models.Event, error) {
	const op = "event.TogglePublish"

	existing, err := s.repo.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.CanModifyEvent(existing) {
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrForbidden)
	}

	updated, err := s.repo.SetPublished(ctx, id, !existing.Published)
	if err != nil {
		return nil, err
	}
	s.log.Info("toggled event publication",
		slog.String("id", id), slog.Bool("published", updated.Published))

	if err := s.cache.Invalidate(cacheKey(id)); err != nil {
		s.log.Warn("failed to invalidate cache", slog.String("key", cacheKey(id)), slog.Any("err", err))
	}

	updated.Status = models.EventStatusAt(time.Now(), updated.StartDate, updated.EndDate)
	return updated, nil
}

// MyEvents возвращает все события вызывающего.
func (s *Service) MyEvents(ctx context.Context, caller models.Identity) ([]*models.Event, error) {
	events, err := s.repo.ListEventsByOrganizer(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	for _, e := range events {
		e.Status = models.EventStatusAt(now, e.StartDate, e.EndDate)
	}
	return events, nil
}
