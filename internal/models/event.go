package models

import "time"

// Типы событий, известные каталогу.
const (
	EventTypeMusic   = "Music"
	EventTypeSports  = "Sports"
	EventTypeArts    = "Arts"
	EventTypeTheatre = "Theatre"
	EventTypeComedy  = "Comedy"
	EventTypeFamily  = "Family"
	EventTypeOther   = "Other"
)

// Отображаемые статусы события. Статус не хранится в базе,
// а вычисляется при каждом чтении из дат начала и окончания.
const (
	EventStatusUpcoming  = "Upcoming"
	EventStatusOngoing   = "Ongoing"
	EventStatusCompleted = "Completed"
)

// DefaultImageURL подставляется, если организатор не указал изображение.
const DefaultImageURL = "https://images.unsplash.com/photo-1531058020387-3be344556be6?ixlib=rb-1.2.1&auto=format&fit=crop&w=1050&q=80"

// Location описывает место проведения события.
type Location struct {
	Venue   string `json:"venue" bson:"venue" validate:"required"`
	Address string `json:"address" bson:"address" validate:"required"`
	City    string `json:"city" bson:"city" validate:"required"`
	State   string `json:"state,omitempty" bson:"state,omitempty"`
	Country string `json:"country" bson:"country" validate:"required"`
	ZipCode string `json:"zipCode,omitempty" bson:"zip_code,omitempty"`
}

// TicketTier — именованная категория билетов внутри события со своей
// ценой и вместимостью. Имя уникально в пределах события и служит
// ключом при покупке; ID присваивается при создании.
// Инвариант: 0 <= QuantitySold <= Quantity.
type TicketTier struct {
	ID           string  `json:"id" bson:"id"`
	Name         string  `json:"name" bson:"name"`
	Price        float64 `json:"price" bson:"price"`
	Quantity     int     `json:"quantity" bson:"quantity"`
	QuantitySold int     `json:"quantitySold" bson:"quantity_sold"`
	Description  string  `json:"description,omitempty" bson:"description,omitempty"`
}

// Event представляет событие каталога. Событием владеет ровно один
// организатор; владелец не меняется после создания. Неопубликованные
// события видны только владельцу и администратору.
type Event struct {
	ID          string       `json:"id" bson:"_id"`
	Name        string       `json:"name" bson:"name"`
	Description string       `json:"description" bson:"description"`
	EventType   string       `json:"eventType" bson:"event_type"`
	StartDate   time.Time    `json:"startDate" bson:"start_date"`
	EndDate     time.Time    `json:"endDate" bson:"end_date"`
	Location    Location     `json:"location" bson:"location"`
	Organizer   string       `json:"organizer" bson:"organizer"`
	ImageURL    string       `json:"imageUrl" bson:"image_url"`
	TicketTiers []TicketTier `json:"ticketTiers" bson:"ticket_tiers"`
	Published   bool         `json:"published" bson:"published"`
	Status      string       `json:"status" bson:"-"` // Вычисляется при чтении
	CreatedAt   time.Time    `json:"createdAt" bson:"created_at"`
}

// EventStatusAt вычисляет отображаемый статус события на момент now.
func EventStatusAt(now, start, end time.Time) string {
	switch {
	case start.After(now):
		return EventStatusUpcoming
	case end.Before(now):
		return EventStatusCompleted
	default:
		return EventStatusOngoing
	}
}

// FindTier возвращает тариф по имени (точное совпадение, с учетом регистра)
// или nil, если такого тарифа нет.
func (e *Event) FindTier(name string) *TicketTier {
	for i := range e.TicketTiers {
		if e.TicketTiers[i].Name == name {
			return &e.TicketTiers[i]
		}
	}
	return nil
}

// Summary — краткое представление события, которым обогащаются билеты.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"startDate,omitempty"`
	EndDate   time.Time `json:"endDate,omitempty"`
	Location  Location  `json:"location,omitempty"`
	Status    string    `json:"status,omitempty"`
	ImageURL  string    `json:"imageUrl,omitempty"`
}

// SummaryOf строит краткое представление события на момент now.
func SummaryOf(e *Event, now time.Time) Summary {
	return Summary{
		ID:        e.ID,
		Name:      e.Name,
		StartDate: e.StartDate,
		EndDate:   e.EndDate,
		Location:  e.Location,
		Status:    EventStatusAt(now, e.StartDate, e.EndDate),
		ImageURL:  e.ImageURL,
	}
}

// DummyTier используется для приема тарифа из JSON-запроса
// до валидации и присвоения идентификатора.
type DummyTier struct {
	Name        string  `json:"name" validate:"required"`
	Price       float64 `json:"price" validate:"gte=0"`
	Quantity    int     `json:"quantity" validate:"required,gte=1"`
	Description string  `json:"description,omitempty"`
}

// DummyEvent используется для приема данных события из JSON-запроса.
// Даты приходят в формате RFC 3339.
type DummyEvent struct {
	Name        string      `json:"name" validate:"required,max=100"`
	Description string      `json:"description" validate:"required"`
	EventType   string      `json:"eventType,omitempty" validate:"omitempty,oneof=Music Sports Arts Theatre Comedy Family Other"`
	StartDate   time.Time   `json:"startDate" validate:"required"`
	EndDate     time.Time   `json:"endDate" validate:"required"`
	Location    Location    `json:"location" validate:"required"`
	ImageURL    string      `json:"imageUrl,omitempty"`
	TicketTiers []DummyTier `json:"ticketTiers" validate:"required,min=1,dive"`
	Published   bool        `json:"published"`
}
