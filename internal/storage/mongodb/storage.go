// Package mongodb реализует хранилище данных на основе MongoDB
// для пользователей, событий с тарифами билетов и билетов.
// Операции резервирования и регистрации билетов выполняются как
// одиночные условные обновления, поэтому инвариант вместимости
// тарифа сохраняется при конкурентных покупках.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Storage инкапсулирует соединение с MongoDB и доступ к коллекциям.
type Storage struct {
	client  *mongo.Client
	users   *mongo.Collection
	events  *mongo.Collection
	tickets *mongo.Collection
}

// New подключается к MongoDB и создает необходимые индексы.
func New(ctx context.Context, uri, database string) (*Storage, error) {
	const op = "mongodb.New"

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db := client.Database(database)
	s := &Storage{
		client:  client,
		users:   db.Collection("users"),
		events:  db.Collection("events"),
		tickets: db.Collection("tickets"),
	}
	if err := s.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

// EnsureIndexes создает уникальные и поисковые индексы коллекций.
func (s *Storage) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("users_email_unique"),
		},
	})
	if err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}

	_, err = s.events.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "start_date", Value: 1}},
			Options: options.Index().SetName("events_start_date"),
		},
		{
			Keys:    bson.D{{Key: "organizer", Value: 1}},
			Options: options.Index().SetName("events_organizer"),
		},
	})
	if err != nil {
		return fmt.Errorf("events indexes: %w", err)
	}

	_, err = s.tickets.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ticket_code", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("tickets_code_unique"),
		},
		{
			Keys:    bson.D{{Key: "user", Value: 1}},
			Options: options.Index().SetName("tickets_user"),
		},
		{
			Keys:    bson.D{{Key: "event", Value: 1}},
			Options: options.Index().SetName("tickets_event"),
		},
	})
	if err != nil {
		return fmt.Errorf("tickets indexes: %w", err)
	}
	return nil
}

// Close разрывает соединение с базой.
func (s *Storage) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
