package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/magabrotheeeer/event-ticketing/internal/apperrors"
	"github.com/magabrotheeeer/event-ticketing/internal/models"
)

// RegisterUser сохраняет нового пользователя и возвращает его ID.
// Повторная регистрация email возвращает ошибку валидации.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "mongodb.RegisterUser"

	user.ID = primitive.NewObjectID().Hex()
	_, err := s.users.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", fmt.Errorf("%s: email already exists: %w", op, apperrors.ErrValidation)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return user.ID, nil
}

// GetUserByEmail возвращает пользователя по email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "mongodb.GetUserByEmail"

	var u models.User
	if err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &u, nil
}

// GetUserByID возвращает пользователя по идентификатору.
func (s *Storage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "mongodb.GetUserByID"

	var u models.User
	if err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &u, nil
}

// UpdateUserProfile обновляет имя, email и (если указана) роль пользователя.
// Пустые значения означают отсутствие изменения.
func (s *Storage) UpdateUserProfile(ctx context.Context, id, name, email, role string) (*models.User, error) {
	const op = "mongodb.UpdateUserProfile"

	set := bson.M{}
	if name != "" {
		set["name"] = name
	}
	if email != "" {
		set["email"] = email
	}
	if role != "" {
		set["role"] = role
	}
	if len(set) == 0 {
		return s.GetUserByID(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u models.User
	err := s.users.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%s: email already exists: %w", op, apperrors.ErrValidation)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &u, nil
}

// SetActiveRole сохраняет выбранный пользователем режим работы.
func (s *Storage) SetActiveRole(ctx context.Context, id, activeRole string) (*models.User, error) {
	const op = "mongodb.SetActiveRole"

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u models.User
	err := s.users.FindOneAndUpdate(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"active_role": activeRole}}, opts).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &u, nil
}
