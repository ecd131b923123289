package models

import (
	"encoding/json"
	"time"
)

// Статусы жизненного цикла билета. Регистрация на входе переводит
// Active → Used; отмена — Active → Cancelled. Refunded объявлен для
// совместимости клиентского API, но сервер его не выставляет.
const (
	TicketStatusActive    = "Active"
	TicketStatusUsed      = "Used"
	TicketStatusCancelled = "Cancelled"
	TicketStatusRefunded  = "Refunded"
)

// Ticket представляет купленный билет. TicketType и TicketPrice
// фиксируются на момент покупки и не меняются при изменении тарифа.
// TicketCode — уникальный человекочитаемый код, единственный вход
// операции регистрации на событии.
type Ticket struct {
	ID           string     `json:"id" bson:"_id"`
	Event        string     `json:"event" bson:"event"`
	User         string     `json:"user" bson:"user"`
	TicketType   string     `json:"ticketType" bson:"ticket_type"`
	TicketPrice  float64    `json:"ticketPrice" bson:"ticket_price"`
	Quantity     int        `json:"quantity" bson:"quantity"`
	PurchaseDate time.Time  `json:"purchaseDate" bson:"purchase_date"`
	Status       string     `json:"status" bson:"status"`
	TicketCode   string     `json:"ticketCode" bson:"ticket_code"`
	CheckInTime  *time.Time `json:"checkInTime,omitempty" bson:"check_in_time,omitempty"`
}

// IsCheckedIn сообщает, был ли билет зарегистрирован на входе.
// Статус Used — единственный авторитетный признак регистрации.
func (t *Ticket) IsCheckedIn() bool {
	return t.Status == TicketStatusUsed
}

// MarshalJSON добавляет производное поле isCheckedIn, которое ожидают
// существующие клиенты.
func (t Ticket) MarshalJSON() ([]byte, error) {
	type alias Ticket
	return json.Marshal(struct {
		alias
		IsCheckedIn bool `json:"isCheckedIn"`
	}{alias(t), t.IsCheckedIn()})
}

// EnrichedTicket — билет, дополненный кратким представлением события.
type EnrichedTicket struct {
	Ticket
	EventSummary Summary `json:"eventSummary"`
}

// MarshalJSON сериализует билет вместе с кратким представлением события.
// Встроенный Ticket продвигает свой MarshalJSON наружу, и без собственного
// маршаллера поле eventSummary терялось бы при сериализации.
func (t EnrichedTicket) MarshalJSON() ([]byte, error) {
	type alias Ticket
	return json.Marshal(struct {
		alias
		IsCheckedIn  bool    `json:"isCheckedIn"`
		EventSummary Summary `json:"eventSummary"`
	}{alias(t.Ticket), t.Ticket.IsCheckedIn(), t.EventSummary})
}

// TierStat — строка статистики продаж: количество и выручка
// по паре (тариф, статус билета).
type TierStat struct {
	TicketType string  `json:"ticketType"`
	Status     string  `json:"status"`
	Count      int     `json:"count"`
	Revenue    float64 `json:"revenue"`
}

// OverallStats — сводные показатели продаж по событию.
type OverallStats struct {
	TotalTickets int     `json:"totalTickets"`
	SoldTickets  int     `json:"soldTickets"`
	TotalRevenue float64 `json:"totalRevenue"`
	CheckedIn    int     `json:"checkedIn"`
}

// TicketStats — полный ответ операции статистики.
type TicketStats struct {
	TicketStats  []TierStat   `json:"ticketStats"`
	OverallStats OverallStats `json:"overallStats"`
}
