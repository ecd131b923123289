// Package auth содержит логику бизнес-уровня для регистрации,
// аутентификации и управления профилем пользователя.
package auth

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/event-ticketing/internal/apperrors"
	"github.com/magabrotheeeer/event-ticketing/internal/lib/jwt"
	"github.com/magabrotheeeer/event-ticketing/internal/lib/password"
	"github.com/magabrotheeeer/event-ticketing/internal/models"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его ID.
	RegisterUser(ctx context.Context, user models.User) (string, error)
	// GetUserByEmail возвращает пользователя по email или ошибку, если не найден.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUserByID возвращает пользователя по идентификатору.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	// UpdateUserProfile обновляет имя, email и роль; пустые значения не изменяются.
	UpdateUserProfile(ctx context.Context, id, name, email, role string) (*models.User, error)
	// SetActiveRole сохраняет выбранный пользователем режим работы.
	SetActiveRole(ctx context.Context, id, activeRole string) (*models.User, error)
}

// Service отвечает за регистрацию, авторизацию, профиль и смену
// активного режима работы аккаунта.
type Service struct {
	users    UserRepository
	jwtMaker jwt.Maker
}

// New создает новый экземпляр Service.
func New(users UserRepository, jwtMaker jwt.Maker) *Service {
	return &Service{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// Register создает нового пользователя с хэшированием пароля и выдает JWT.
// Допустимые роли при регистрации — user и organizer; пустая роль
// означает user. ActiveRole всегда начинается с user.
func (s *Service) Register(ctx context.Context, name, email, rawPassword, role string) (*models.User, string, error) {
	const op = "auth.Register"

	switch role {
	case "":
		role = models.RoleUser
	case models.RoleUser, models.RoleOrganizer:
	default:
		return nil, "", fmt.Errorf("%s: role must be user or organizer: %w", op, apperrors.ErrValidation)
	}

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		Role:         role,
		ActiveRole:   models.RoleUser,
	}
	id, err := s.users.RegisterUser(ctx, user)
	if err != nil {
		return nil, "", err
	}
	user.ID = id

	token, err := s.jwtMaker.GenerateToken(user.ID, user.Name, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	return &user, token, nil
}

// Login проверяет пароль пользователя и генерирует JWT.
// Неизвестный email и неверный пароль неразличимы для клиента.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (*models.User, string, error) {
	const op = "auth.Login"

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("%s: invalid credentials: %w", op, apperrors.ErrUnauthorized)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, "", fmt.Errorf("%s: invalid credentials: %w", op, apperrors.ErrUnauthorized)
	}
	token, err := s.jwtMaker.GenerateToken(user.ID, user.Name, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	return user, token, nil
}

// Profile возвращает данные вызывающего пользователя.
func (s *Service) Profile(ctx context.Context, userID string) (*models.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

// UpdateProfile обновляет имя и email вызывающего пользователя.
// Поле role принимается только от администратора; остальным оно
// запрещено, чтобы нельзя было выдать себе права через профиль.
func (s *Service) UpdateProfile(ctx context.Context, caller models.Identity, name, email, role string) (*models.User, error) {
	const op = "auth.UpdateProfile"

	if role != "" && caller.Role != models.RoleAdmin {
		return nil, fmt.Errorf("%s: only admin can change roles: %w", op, apperrors.ErrForbidden)
	}
	if role != "" && role != models.RoleUser && role != models.RoleOrganizer && role != models.RoleAdmin {
		return nil, fmt.Errorf("%s: unknown role %q: %w", op, role, apperrors.ErrValidation)
	}
	return s.users.UpdateUserProfile(ctx, caller.UserID, name, email, role)
}

// SwitchRole переключает активный режим аккаунта между user и organizer.
// Режим organizer доступен только пользователям с выданной ролью
// organizer или admin.
func (s *Service) SwitchRole(ctx context.Context, caller models.Identity, activeRole string) (*models.User, error) {
	const op = "auth.SwitchRole"

	if activeRole != models.RoleUser && activeRole != models.RoleOrganizer {
		return nil, fmt.Errorf("%s: active role must be user or organizer: %w", op, apperrors.ErrValidation)
	}

	user, err := s.users.GetUserByID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	if activeRole == models.RoleOrganizer && !user.IsOrganizer() {
		return nil, fmt.Errorf("%s: organizer role is not granted: %w", op, apperrors.ErrForbidden)
	}
	return s.users.SetActiveRole(ctx, caller.UserID, activeRole)
}
