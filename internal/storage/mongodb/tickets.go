package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/magabrotheeeer/event-ticketing/internal/apperrors"
	"github.com/magabrotheeeer/event-ticketing/internal/models"
)

// CreateTicket сохраняет новый билет и возвращает его ID.
func (s *Storage) CreateTicket(ctx context.Context, ticket models.Ticket) (string, error) {
	const op = "mongodb.CreateTicket"

	ticket.ID = primitive.NewObjectID().Hex()
	if _, err := s.tickets.InsertOne(ctx, ticket); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", fmt.Errorf("%s: %w", op, apperrors.ErrDuplicateCode)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return ticket.ID, nil
}

// GetTicketByID возвращает билет по идентификатору.
func (s *Storage) GetTicketByID(ctx context.Context, id string) (*models.Ticket, error) {
	const op = "mongodb.GetTicketByID"

	var t models.Ticket
	if err := s.tickets.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &t, nil
}

// GetTicketByCode возвращает билет по коду.
func (s *Storage) GetTicketByCode(ctx context.Context, code string) (*models.Ticket, error) {
	const op = "mongodb.GetTicketByCode"

	var t models.Ticket
	if err := s.tickets.FindOne(ctx, bson.M{"ticket_code": code}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &t, nil
}

// ListTicketsByUser возвращает билеты пользователя.
func (s *Storage) ListTicketsByUser(ctx context.Context, userID string) ([]*models.Ticket, error) {
	const op = "mongodb.ListTicketsByUser"
	return s.listTickets(ctx, op, bson.M{"user": userID})
}

// ListTicketsByEvent возвращает билеты события.
func (s *Storage) ListTicketsByEvent(ctx context.Context, eventID string) ([]*models.Ticket, error) {
	const op = "mongodb.ListTicketsByEvent"
	return s.listTickets(ctx, op, bson.M{"event": eventID})
}

func (s *Storage) listTickets(ctx context.Context, op string, filter bson.M) ([]*models.Ticket, error) {
	cur, err := s.tickets.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "purchase_date", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer cur.Close(ctx)

	var result []*models.Ticket
	for cur.Next(ctx) {
		var t models.Ticket
		if err := cur.Decode(&t); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &t)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateTicketStatus атомарно переводит билет из статуса from в to.
// Если билет уже не в статусе from, возвращает ErrInvalidState.
func (s *Storage) UpdateTicketStatus(ctx context.Context, id, from, to string) error {
	const op = "mongodb.UpdateTicketStatus"

	res, err := s.tickets.UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to}})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, apperrors.ErrInvalidState)
	}
	return nil
}

// CheckInTicket атомарно регистрирует билет на входе: переводит статус
// Active → Used и фиксирует время. Повторная регистрация возвращает
// ErrInvalidState, не трогая исходную отметку времени.
func (s *Storage) CheckInTicket(ctx context.Context, id string, at time.Time) error {
	const op = "mongodb.CheckInTicket"

	res, err := s.tickets.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.TicketStatusActive},
		bson.M{"$set": bson.M{
			"status":        models.TicketStatusUsed,
			"check_in_time": at,
		}})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: ticket already checked in: %w", op, apperrors.ErrInvalidState)
	}
	return nil
}
