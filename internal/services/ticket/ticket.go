// Package ticket содержит бизнес-логику покупки, отмены и регистрации
// билетов, а также статистику продаж для организаторов.
package ticket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/event-ticketing/internal/apperrors"
	"github.com/magabrotheeeer/event-ticketing/internal/lib/ticketcode"
	"github.com/magabrotheeeer/event-ticketing/internal/models"
)

// Количество попыток вставки при коллизии кода билета.
const codeRetries = 5

// TicketRepository определяет методы для работы с билетами в хранилище.
type TicketRepository interface {
	// CreateTicket сохраняет новый билет и возвращает его ID.
	CreateTicket(ctx context.Context, ticket models.Ticket) (string, error)
	// GetTicketByID возвращает билет по идентификатору.
	GetTicketByID(ctx context.Context, id string) (*models.Ticket, error)
	// GetTicketByCode возвращает билет по коду.
	GetTicketByCode(ctx context.Context, code string) (*models.Ticket, error)
	// ListTicketsByUser возвращает билеты пользователя.
	ListTicketsByUser(ctx context.Context, userID string) ([]*models.Ticket, error)
	// ListTicketsByEvent возвращает билеты события.
	ListTicketsByEvent(ctx context.Context, eventID string) ([]*models.Ticket, error)
	// UpdateTicketStatus атомарно переводит билет из статуса from в to.
	UpdateTicketStatus(ctx context.Context, id, from, to string) error
	// CheckInTicket атомарно регистрирует билет: Active → Used + время.
	CheckInTicket(ctx context.Context, id string, at time.Time) error
}

// EventRepository — часть хранилища событий, нужная операциям с билетами.
type EventRepository interface {
	// GetEventByID возвращает событие по идентификатору.
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
	// ReserveTier атомарно резервирует qty мест тарифа.
	ReserveTier(ctx context.Context, eventID, tierName string, qty int) error
	// ReleaseTier возвращает qty мест тарифа, не опускаясь ниже нуля.
	ReleaseTier(ctx context.Context, eventID, tierName string, qty int) error
}

// Notifier публикует события жизненного цикла билета. Публикация
// выполняется по принципу best-effort: ошибки логируются и не влияют
// на результат операции.
type Notifier interface {
	Publish(routingKey string, message any) error
}

// Cache — часть кеша, нужная для инвалидации событий при изменении
// счетчиков продаж.
type Cache interface {
	Invalidate(key string) error
}

// Notification — полезная нагрузка сообщения о жизненном цикле билета.
type Notification struct {
	TicketID   string  `json:"ticketId"`
	TicketCode string  `json:"ticketCode"`
	EventID    string  `json:"eventId"`
	EventName  string  `json:"eventName,omitempty"`
	UserID     string  `json:"userId"`
	TicketType string  `json:"ticketType"`
	Quantity   int     `json:"quantity"`
	Total      float64 `json:"total"`
}

// Service реализует бизнес-логику работы с билетами.
type Service struct {
	tickets  TicketRepository
	events   EventRepository
	notifier Notifier
	cache    Cache
	log      *slog.Logger
}

// New создает новый экземпляр Service. notifier может быть nil, если
// брокер сообщений не сконфигурирован.
func New(tickets TicketRepository, events EventRepository, notifier Notifier, cache Cache, log *slog.Logger) *Service {
	return &Service{
		tickets:  tickets,
		events:   events,
		notifier: notifier,
		cache:    cache,
		log:      log,
	}
}

func eventCacheKey(id string) string {
	return fmt.Sprintf("event:%s", id)
}

func (s *Service) invalidateEvent(id string) {
	if err := s.cache.Invalidate(eventCacheKey(id)); err != nil {
		s.log.Warn("failed to invalidate event cache",
			slog.String("key", eventCacheKey(id)), slog.Any("err", err))
	}
}

func (s *Service) notify(routingKey string, n Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(routingKey, n); err != nil {
		s.log.Warn("failed to publish notification",
			slog.String("routing_key", routingKey), slog.Any("err", err))
	}
}

// Purchase покупает quantity билетов тарифа ticketType события eventID.
// Резервирование мест атомарно на уровне хранилища, поэтому конкурентные
// покупки не могут превысить вместимость тарифа. Цена фиксируется на
// момент покупки.
func (s *Service) Purchase(ctx context.Context, caller models.Identity, eventID, ticketType string, quantity int) (*models.Ticket, error) {
	const op = "ticket.Purchase"

	if quantity < 1 {
		return nil, fmt.Errorf("%s: quantity must be at least 1: %w", op, apperrors.ErrValidation)
	}

	event, err := s.events.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !event.Published {
		return nil, fmt.Errorf("%s: event is not published: %w", op, apperrors.ErrInvalidState)
	}
	tier := event.FindTier(ticketType)
	if tier == nil {
		return nil, fmt.Errorf("%s: no ticket tier named %q: %w", op, ticketType, apperrors.ErrNotFound)
	}

	if err := s.events.ReserveTier(ctx, eventID, ticketType, quantity); err != nil {
		return nil, err
	}

	ticket := models.Ticket{
		Event:        eventID,
		User:         caller.UserID,
		TicketType:   ticketType,
		TicketPrice:  tier.Price,
		Quantity:     quantity,
		PurchaseDate: time.Now().UTC(),
		Status:       models.TicketStatusActive,
	}

	var id string
	for attempt := 0; attempt < codeRetries; attempt++ {
		var code string
		code, err = ticketcode.Generate(eventID)
		if err != nil {
			break
		}
		ticket.TicketCode = code
		id, err = s.tickets.CreateTicket(ctx, ticket)
		if err == nil {
			break
		}
		if !errors.Is(err, apperrors.ErrDuplicateCode) {
			break
		}
		s.log.Warn("ticket code collision, retrying", slog.String("code", ticket.TicketCode))
	}
	if err != nil {
		// Вставка не удалась: возвращаем зарезервированные места.
		if relErr := s.events.ReleaseTier(ctx, eventID, ticketType, quantity); relErr != nil {
			s.log.Error("failed to release reserved tier after insert failure",
				slog.String("event_id", eventID), slog.Any("err", relErr))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ticket.ID = id

	s.invalidateEvent(eventID)
	s.log.Info("ticket purchased",
		slog.String("ticket_id", id),
		slog.String("event_id", eventID),
		slog.String("ticket_type", ticketType),
		slog.Int("quantity", quantity))

	s.notify("ticket.purchased", Notification{
		TicketID:   ticket.ID,
		TicketCode: ticket.TicketCode,
		EventID:    eventID,
		EventName:  event.Name,
		UserID:     caller.UserID,
		TicketType: ticketType,
		Quantity:   quantity,
		Total:      tier.Price * float64(quantity),
	})
	return &ticket, nil
}

// summaryFor строит краткое представление события для обогащения билета.
// Недоступное событие заменяется заглушкой, чтобы список билетов
// оставался читаемым после удаления события.
func (s *Service) summaryFor(ctx context.Context, eventID string, now time.Time) models.Summary {
	event, err := s.events.GetEventByID(ctx, eventID)
	if err != nil {
		s.log.Warn("failed to load event for ticket enrichment",
			slog.String("event_id", eventID), slog.Any("err", err))
		return models.Summary{ID: eventID, Name: "Unknown Event"}
	}
	return models.SummaryOf(event, now)
}

// MyTickets возвращает билеты вызывающего, обогащенные краткими
// данными событий.
func (s *Service) MyTickets(ctx context.Context, caller models.Identity) ([]models.EnrichedTicket, error) {
	tickets, err := s.tickets.ListTicketsByUser(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	summaries := make(map[string]models.Summary)
	result := make([]models.EnrichedTicket, 0, len(tickets))
	for _, t := range tickets {
		summary, ok := summaries[t.Event]
		if !ok {
			summary = s.summaryFor(ctx, t.Event, now)
			summaries[t.Event] = summary
		}
		result = append(result, models.EnrichedTicket{Ticket: *t, EventSummary: summary})
	}
	return result, nil
}

// GetByID возвращает билет с кратким представлением события.
// Чужой билет доступен только администратору.
func (s *Service) GetByID(ctx context.Context, caller models.Identity, id string) (*models.EnrichedTicket, error) {
	const op = "ticket.GetByID"

	ticket, err := s.tickets.GetTicketByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket.User != caller.UserID && caller.Role != models.RoleAdmin {
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrForbidden)
	}
	return &models.EnrichedTicket{
		Ticket:       *ticket,
		EventSummary: s.summaryFor(ctx, ticket.Event, time.Now()),
	}, nil
}

// Cancel отменяет активный билет до начала события и возвращает места
// в тариф. Чужой билет может отменить только администратор.
func (s *Service) Cancel(ctx context.Context, caller models.Identity, id string) (*models.Ticket, error) {
	const op = "ticket.Cancel"

	ticket, err := s.tickets.GetTicketByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket.User != caller.UserID && caller.Role != models.RoleAdmin {
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrForbidden)
	}

	event, err := s.events.GetEventByID(ctx, ticket.Event)
	if err != nil {
		return nil, err
	}
	if !event.StartDate.After(time.Now()) {
		return nil, fmt.Errorf("%s: event has already started: %w", op, apperrors.ErrInvalidState)
	}

	if err := s.tickets.UpdateTicketStatus(ctx, id,
		models.TicketStatusActive, models.TicketStatusCancelled); err != nil {
		return nil, err
	}
	if err := s.events.ReleaseTier(ctx, ticket.Event, ticket.TicketType, ticket.Quantity); err != nil {
		s.log.Error("failed to release tier after cancellation",
			slog.String("event_id", ticket.Event), slog.Any("err", err))
	}
	ticket.Status = models.TicketStatusCancelled

	s.invalidateEvent(ticket.Event)
	s.log.Info("ticket cancelled", slog.String("ticket_id", id))

	s.notify("ticket.cancelled", Notification{
		TicketID:   ticket.ID,
		TicketCode: ticket.TicketCode,
		EventID:    ticket.Event,
		EventName:  event.Name,
		UserID:     ticket.User,
		TicketType: ticket.TicketType,
		Quantity:   ticket.Quantity,
	})
	return ticket, nil
}

// CheckIn регистрирует билет на входе по его коду. Операция доступна
// владельцу события и администратору; повторная регистрация отклоняется.
func (s *Service) CheckIn(ctx context.Context, caller models.Identity, code string) (*models.Ticket, error) {
	const op = "ticket.CheckIn"

	ticket, err := s.tickets.GetTicketByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	event, err := s.events.GetEventByID(ctx, ticket.Event)
	if err != nil {
		return nil, err
	}
	if !caller.CanModifyEvent(event) {
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrForbidden)
	}

	at := time.Now().UTC()
	if err := s.tickets.CheckInTicket(ctx, ticket.ID, at); err != nil {
		return nil, err
	}
	ticket.Status = models.TicketStatusUsed
	ticket.CheckInTime = &at

	s.log.Info("ticket checked in",
		slog.String("ticket_id", ticket.ID), slog.String("code", code))

	s.notify("ticket.checked_in", Notification{
		TicketID:   ticket.ID,
		TicketCode: ticket.TicketCode,
		EventID:    ticket.Event,
		EventName:  event.Name,
		UserID:     ticket.User,
		TicketType: ticket.TicketType,
		Quantity:   ticket.Quantity,
	})
	return ticket, nil
}

// EventTickets возвращает все билеты события для его владельца
// или администратора.
func (s *Service) EventTickets(ctx context.Context, caller models.Identity, eventID string) ([]*models.Ticket, error) {
	const op = "ticket.EventTickets"

	event, err := s.events.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !caller.CanModifyEvent(event) {
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrForbidden)
	}
	return s.tickets.ListTicketsByEvent(ctx, eventID)
}

// Stats считает статистику продаж события: строки по парам
// (тариф, статус) и сводные показатели. Выручка учитывает билеты
// в статусах Active и Used; отмененные не приносят выручки.
func (s *Service) Stats(ctx context.Context, caller models.Identity, eventID string) (*models.TicketStats, error) {
	const op = "ticket.Stats"

	event, err := s.events.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !caller.CanModifyEvent(event) {
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrForbidden)
	}
	tickets, err := s.tickets.ListTicketsByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	type key struct {
		ticketType string
		status     string
	}
	rows := make(map[key]*models.TierStat)
	var order []key
	overall := models.OverallStats{}
	for _, tier := range event.TicketTiers {
		overall.TotalTickets += tier.Quantity
		overall.SoldTickets += tier.QuantitySold
	}
	for _, t := range tickets {
		k := key{t.TicketType, t.Status}
		row, ok := rows[k]
		if !ok {
			row = &models.TierStat{TicketType: t.TicketType, Status: t.Status}
			rows[k] = row
			order = append(order, k)
		}
		row.Count += t.Quantity
		row.Revenue += t.TicketPrice * float64(t.Quantity)

		switch t.Status {
		case models.TicketStatusActive:
			overall.TotalRevenue += t.TicketPrice * float64(t.Quantity)
		case models.TicketStatusUsed:
			overall.TotalRevenue += t.TicketPrice * float64(t.Quantity)
			overall.CheckedIn += t.Quantity
		}
	}

	stats := &models.TicketStats{
		TicketStats:  make([]models.TierStat, 0, len(order)),
		OverallStats: overall,
	}
	for _, k := range order {
		stats.TicketStats = append(stats.TicketStats, *rows[k])
	}
	return stats, nil
}
