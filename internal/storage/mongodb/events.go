package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/magabrotheeeer/event-ticketing/internal/apperrors"
	"github.com/magabrotheeeer/event-ticketing/internal/models"
)

// CreateEvent сохраняет новое событие и возвращает его ID.
func (s *Storage) CreateEvent(ctx context.Context, event models.Event) (string, error) {
	const op = "mongodb.CreateEvent"

	event.ID = primitive.NewObjectID().Hex()
	if _, err := s.events.InsertOne(ctx, event); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return event.ID, nil
}

// GetEventByID возвращает событие по идентификатору.
func (s *Storage) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	const op = "mongodb.GetEventByID"

	var e models.Event
	if err := s.events.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &e, nil
}

// ListEvents возвращает отфильтрованную страницу событий и общее число
// событий, подходящих под фильтр.
func (s *Storage) ListEvents(ctx context.Context, filter models.EventFilter) ([]*models.Event, int, error) {
	const op = "mongodb.ListEvents"

	query := bson.M{}
	if filter.Name != "" {
		query["name"] = bson.M{"$regex": regexp.QuoteMeta(filter.Name), "$options": "i"}
	}
	if filter.EventType != "" {
		query["event_type"] = filter.EventType
	}
	if filter.City != "" {
		query["location.city"] = bson.M{"$regex": regexp.QuoteMeta(filter.City), "$options": "i"}
	}
	if filter.StartDate != nil {
		query["start_date"] = bson.M{"$gte": *filter.StartDate}
	}
	if filter.EndDate != nil {
		query["end_date"] = bson.M{"$lte": *filter.EndDate}
	}
	if filter.Published != nil {
		query["published"] = *filter.Published
	}
	if filter.Organizer != "" {
		query["organizer"] = filter.Organizer
	}

	total, err := s.events.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "start_date", Value: 1}}).
		SetSkip(int64(filter.Offset)).
		SetLimit(int64(filter.Limit))
	cur, err := s.events.Find(ctx, query, findOpts)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer cur.Close(ctx)

	var result []*models.Event
	for cur.Next(ctx) {
		var e models.Event
		if err := cur.Decode(&e); err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &e)
	}
	if err := cur.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return result, int(total), nil
}

// ListEventsByOrganizer возвращает все события данного организатора.
func (s *Storage) ListEventsByOrganizer(ctx context.Context, organizerID string) ([]*models.Event, error) {
	const op = "mongodb.ListEventsByOrganizer"

	cur, err := s.events.Find(ctx, bson.M{"organizer": organizerID},
		options.Find().SetSort(bson.D{{Key: "start_date", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer cur.Close(ctx)

	var result []*models.Event
	for cur.Next(ctx) {
		var e models.Event
		if err := cur.Decode(&e); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &e)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateEvent заменяет документ события целиком.
func (s *Storage) UpdateEvent(ctx context.Context, event models.Event) error {
	const op = "mongodb.UpdateEvent"

	res, err := s.events.ReplaceOne(ctx, bson.M{"_id": event.ID}, event)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
	}
	return nil
}

// DeleteEvent удаляет событие по идентификатору.
func (s *Storage) DeleteEvent(ctx context.Context, id string) error {
	const op = "mongodb.DeleteEvent"

	res, err := s.events.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
	}
	return nil
}

// SetPublished выставляет флаг публикации и возвращает обновленное событие.
func (s *Storage) SetPublished(ctx context.Context, id string, published bool) (*models.Event, error) {
	const op = "mongodb.SetPublished"

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var e models.Event
	err := s.events.FindOneAndUpdate(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"published": published}}, opts).Decode(&e)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &e, nil
}

// ReserveTier атомарно увеличивает quantity_sold тарифа на qty, но только
// если событие опубликовано и в тарифе достаточно остатка. Проверка и
// инкремент выполняются одним условным UpdateOne, поэтому конкурентные
// покупки не могут продать больше вместимости.
func (s *Storage) ReserveTier(ctx context.Context, eventID, tierName string, qty int) error {
	const op = "mongodb.ReserveTier"

	filter := bson.M{
		"_id":       eventID,
		"published": true,
		"$expr": bson.M{"$anyElementTrue": bson.M{"$map": bson.M{
			"input": "$ticket_tiers",
			"as":    "t",
			"in": bson.M{"$and": bson.A{
				bson.M{"$eq": bson.A{"$$t.name", tierName}},
				bson.M{"$lte": bson.A{
					bson.M{"$add": bson.A{"$$t.quantity_sold", qty}},
					"$$t.quantity",
				}},
			}},
		}}},
	}
	update := bson.M{"$inc": bson.M{"ticket_tiers.$[t].quantity_sold": qty}}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []any{bson.M{"t.name": tierName}},
	})

	res, err := s.events.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	// Условие не выполнено: перечитываем событие, чтобы отличить
	// отсутствие события, неопубликованность, неизвестный тариф
	// и исчерпание вместимости.
	event, err := s.GetEventByID(ctx, eventID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !event.Published {
		return fmt.Errorf("%s: event is not published: %w", op, apperrors.ErrInvalidState)
	}
	if event.FindTier(tierName) == nil {
		return fmt.Errorf("%s: no ticket tier named %q: %w", op, tierName, apperrors.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, apperrors.ErrCapacityExceeded)
}

// ReleaseTier уменьшает quantity_sold тарифа на qty, не опускаясь ниже нуля.
func (s *Storage) ReleaseTier(ctx context.Context, eventID, tierName string, qty int) error {
	const op = "mongodb.ReleaseTier"

	filter := bson.M{"_id": eventID}
	update := bson.M{"$inc": bson.M{"ticket_tiers.$[t].quantity_sold": -qty}}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []any{bson.M{
			"t.name":          tierName,
			"t.quantity_sold": bson.M{"$gte": qty},
		}},
	})

	res, err := s.events.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.ModifiedCount > 0 {
		return nil
	}

	// Остаток меньше qty: прижимаем счетчик к нулю.
	clamp := bson.M{"$set": bson.M{"ticket_tiers.$[t].quantity_sold": 0}}
	clampOpts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []any{bson.M{"t.name": tierName}},
	})
	if _, err := s.events.UpdateOne(ctx, filter, clamp, clampOpts); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
