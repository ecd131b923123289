// Package memory реализует внутрипроцессное хранилище для режима
// разработки и тестов. Адаптер повторяет контракт документного
// хранилища, включая атомарность резервирования тарифа: все операции
// выполняются под одним мьютексом, поэтому инвариант вместимости
// сохраняется и при конкурентных покупках.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/event-ticketing/internal/apperrors"
	"github.com/magabrotheeeer/event-ticketing/internal/models"
)

// Storage хранит пользователей, события и билеты в памяти процесса.
type Storage struct {
	mu      sync.Mutex
	users   map[string]models.User
	events  map[string]models.Event
	tickets map[string]models.Ticket
}

// New создает пустое хранилище.
func New() *Storage {
	return &Storage{
		users:   make(map[string]models.User),
		events:  make(map[string]models.Event),
		tickets: make(map[string]models.Ticket),
	}
}

// ===== USERS =====

// RegisterUser сохраняет нового пользователя и возвращает его ID.
func (s *Storage) RegisterUser(_ context.Context, user models.User) (string, error) {
	const op = "memory.RegisterUser"
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return "", fmt.Errorf("%s: email already exists: %w", op, apperrors.ErrValidation)
		}
	}
	user.ID = uuid.New().String()
	s.users[user.ID] = user
	return user.ID, nil
}

// GetUserByEmail возвращает пользователя по email.
func (s *Storage) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	const op = "memory.GetUserByEmail"
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
}

// GetUserByID возвращает пользователя по идентификатору.
func (s *Storage) GetUserByID(_ context.Context, id string) (*models.User, error) {
	const op = "memory.GetUserByID"
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
	}
	return &u, nil
}

// UpdateUserProfile обновляет имя, email и (если указана) роль пользователя.
func (s *Storage) UpdateUserProfile(_ context.Context, id, name, email, role string) (*models.User, error) {
	const op = "memory.UpdateUserProfile"
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
	}
	if email != "" && email != u.Email {
		for _, other := range s.users {
			if other.Email == email {
				return nil, fmt.Errorf("%s: email already exists: %w", op, apperrors.ErrValidation)
			}
		}
		u.Email = email
	}
	if name != "" {
		u.Name = name
	}
	if role != "" {
		u.Role = role
	}
	s.users[id] = u
	return &u, nil
}

// SetActiveRole сохраняет выбранный пользователем режим работы.
func (s *Storage) SetActiveRole(_ context.Context, id, activeRole string) (*models.User, error) {
	const op = "memory.SetActiveRole"
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
	}
	u.ActiveRole = activeRole
	s.users[id] = u
	return &u, nil
}

// ===== EVENTS =====

// CreateEvent сохраняет новое событие и возвращает его ID.
func (s *Storage) CreateEvent(_ context.Context, event models.Event) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event.ID = uuid.New().String()
	s.events[event.ID] = event
	return event.ID, nil
}

// GetEventByID возвращает событие по идентификатору.
func (s *Storage) GetEventByID(_ context.Context, id string) (*models.Event, error) {
	const op = "memory.GetEventByID"
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
	}
	e.TicketTiers = append([]models.TicketTier(nil), e.TicketTiers...)
	return &e, nil
}

// ListEvents возвращает отфильтрованную страницу событий и общее число
// событий, подходящих под фильтр.
func (s *Storage) ListEvents(_ context.Context, filter models.EventFilter) ([]*models.Event, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []*models.Event
	for id := range s.events {
		e := s.events[id]
		if !matchesFilter(&e, filter) {
			continue
		}
		ev := e
		ev.TicketTiers = append([]models.TicketTier(nil), e.TicketTiers...)
		matched = append(matched, &ev)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].StartDate.Before(matched[j].StartDate)
	})

	total := len(matched)
	if filter.Offset >= total {
		return nil, total, nil
	}
	end := filter.Offset + filter.Limit
	if filter.Limit <= 0 || end > total {
		end = total
	}
	return matched[filter.Offset:end], total, nil
}

func matchesFilter(e *models.Event, f models.EventFilter) bool {
	if f.Name != "" && !strings.Contains(strings.ToLower(e.Name), strings.ToLower(f.Name)) {
		return false
	}
	if f.EventType != "" && e.EventType != f.EventType {
		return false
	}
	if f.City != "" && !strings.Contains(strings.ToLower(e.Location.City), strings.ToLower(f.City)) {
		return false
	}
	if f.StartDate != nil && e.StartDate.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && e.EndDate.After(*f.EndDate) {
		return false
	}
	if f.Published != nil && e.Published != *f.Published {
		return false
	}
	if f.Organizer != "" && e.Organizer != f.Organizer {
		return false
	}
	return true
}

// ListEventsByOrganizer возвращает все события данного организатора.
func (s *Storage) ListEventsByOrganizer(_ context.Context, organizerID string) ([]*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*models.Event
	for id := range s.events {
		e := s.events[id]
		if e.Organizer != organizerID {
			continue
		}
		ev := e
		ev.TicketTiers = append([]models.TicketTier(nil), e.TicketTiers...)
		result = append(result, &ev)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartDate.Before(result[j].StartDate)
	})
	return result, nil
}

// UpdateEvent заменяет событие целиком.
func (s *Storage) UpdateEvent(_ context.Context, event models.Event) error {
	const op = "memory.UpdateEvent"
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[event.ID]; !ok {
		return fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
	}
	s.events[event.ID] = event
	return nil
}

// DeleteEvent удаляет событие по идентификатору.
func (s *Storage) DeleteEvent(_ context.Context, id string) error {
	const op = "memory.DeleteEvent"
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[id]; !ok {
		return fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
	}
	delete(s.events, id)
	return nil
}

// SetPublished выставляет флаг публикации и возвращает обновленное событие.
func (s *Storage) SetPublished(_ context.Context, id string, published bool) (*models.Event, error) {
	const op = "memory.SetPublished"
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
	}
	e.Published = published
	s.events[id] = e
	result := e
	result.TicketTiers = append([]models.TicketTier(nil), e.TicketTiers...)
	return &result, nil
}

// ReserveTier увеличивает quantity_sold тарифа на qty под мьютексом,
// проверяя публикацию и остаток вместимости.
func (s *Storage) ReserveTier(_ context.Context, eventID, tierName string, qty int) error {
	const op = "memory.ReserveTier"
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[eventID]
	if !ok {
		return fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
	}
	if !e.Published {
		return fmt.Errorf("%s: event is not published: %w", op, apperrors.ErrInvalidState)
	}
	for i := range e.TicketTiers {
		tier := &e.TicketTiers[i]
		if tier.Name != tierName {
			continue
		}
		if tier.QuantitySold+qty > tier.Quantity {
			return fmt.Errorf("%s: %w", op, apperrors.ErrCapacityExceeded)
		}
		tier.QuantitySold += qty
		s.events[eventID] = e
		return nil
	}
	return fmt.Errorf("%s: no ticket tier named %q: %w", op, tierName, apperrors.ErrNotFound)
}

// ReleaseTier уменьшает quantity_sold тарифа на qty, не опускаясь ниже нуля.
func (s *Storage) ReleaseTier(_ context.Context, eventID, tierName string, qty int) error {
	const op = "memory.ReleaseTier"
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[eventID]
	if !ok {
		return fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
	}
	for i := range e.TicketTiers {
		tier := &e.TicketTiers[i]
		if tier.Name != tierName {
			continue
		}
		tier.QuantitySold -= qty
		if tier.QuantitySold < 0 {
			tier.QuantitySold = 0
		}
		s.events[eventID] = e
		return nil
	}
	return fmt.Errorf("%s: no ticket tier named %q: %w", op, tierName, apperrors.ErrNotFound)
}

// ===== TICKETS =====

// CreateTicket сохраняет новый билет и возвращает его ID.
func (s *Storage) CreateTicket(_ context.Context, ticket models.Ticket) (string, error) {
	const op = "memory.CreateTicket"
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tickets {
		if t.TicketCode == ticket.TicketCode {
			return "", fmt.Errorf("%s: %w", op, apperrors.ErrDuplicateCode)
		}
	}
	ticket.ID = uuid.New().String()
	s.tickets[ticket.ID] = ticket
	return ticket.ID, nil
}

// GetTicketByID возвращает билет по идентификатору.
func (s *Storage) GetTicketByID(_ context.Context, id string) (*models.Ticket, error) {
	const op = "memory.GetTicketByID"
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tickets[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
	}
	return &t, nil
}

// GetTicketByCode возвращает билет по коду.
func (s *Storage) GetTicketByCode(_ context.Context, code string) (*models.Ticket, error) {
	const op = "memory.GetTicketByCode"
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tickets {
		if t.TicketCode == code {
			ticket := t
			return &ticket, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
}

// ListTicketsByUser возвращает билеты пользователя.
func (s *Storage) ListTicketsByUser(_ context.Context, userID string) ([]*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listTicketsLocked(func(t *models.Ticket) bool { return t.User == userID }), nil
}

// ListTicketsByEvent возвращает билеты события.
func (s *Storage) ListTicketsByEvent(_ context.Context, eventID string) ([]*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listTicketsLocked(func(t *models.Ticket) bool { return t.Event == eventID }), nil
}

func (s *Storage) listTicketsLocked(match func(*models.Ticket) bool) []*models.Ticket {
	var result []*models.Ticket
	for id := range s.tickets {
		t := s.tickets[id]
		if match(&t) {
			ticket := t
			result = append(result, &ticket)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].PurchaseDate.After(result[j].PurchaseDate)
	})
	return result
}

// UpdateTicketStatus переводит билет из статуса from в to.
func (s *Storage) UpdateTicketStatus(_ context.Context, id, from, to string) error {
	const op = "memory.UpdateTicketStatus"
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tickets[id]
	if !ok {
		return fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
	}
	if t.Status != from {
		return fmt.Errorf("%s: %w", op, apperrors.ErrInvalidState)
	}
	t.Status = to
	s.tickets[id] = t
	return nil
}

// CheckInTicket регистрирует билет на входе: Active → Used + время.
// Повторная регистрация возвращает ErrInvalidState, сохраняя
// исходную отметку времени.
func (s *Storage) CheckInTicket(_ context.Context, id string, at time.Time) error {
	const op = "memory.CheckInTicket"
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tickets[id]
	if !ok {
		return fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
	}
	if t.Status != models.TicketStatusActive {
		return fmt.Errorf("%s: ticket already checked in: %w", op, apperrors.ErrInvalidState)
	}
	t.Status = models.TicketStatusUsed
	t.CheckInTime = &at
	s.tickets[id] = t
	return nil
}
